package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/client/fakestore"
	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/client/persist"
	"github.com/dmitrijs2005/gophershop/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophershop/internal/common"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

func TestSessionStore_InitialState(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, StateUninitialized, e.session.State())
	_, ok := e.session.Session()
	assert.False(t, ok)
}

func TestSessionStore_LoadWithoutSession(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.session.Load(context.Background()))
	assert.Equal(t, StateSignedOut, e.session.State())
}

func TestSessionStore_LoadRestoresSessionAndFavorites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := models.Session{UID: "u1", Email: "u1@example.com", IDToken: "tok", Role: models.RoleAdmin}
	blob, _ := json.Marshal(s)
	require.NoError(t, e.kv.Set(ctx, common.KeySession, string(blob)))
	require.NoError(t, e.kv.Set(ctx, common.FavoritesKey("u1"), `["p2","p1","p2"]`))

	require.NoError(t, e.session.Load(ctx))

	assert.Equal(t, StateSignedIn, e.session.State())
	got, ok := e.session.Session()
	require.True(t, ok)
	assert.Equal(t, "u1", got.UID)
	assert.True(t, e.session.IsAdmin())
	assert.Equal(t, []string{"p1", "p2"}, e.session.Favorites())

	// the restored token is used for document requests
	_, _ = e.http.List(ctx, "products")
	reqs := e.srv.Requests()
	assert.Equal(t, "Bearer tok", reqs[len(reqs)-1].Header.Get("Authorization"))
}

func TestSessionStore_LoadKeepsExpiredSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := models.Session{UID: "u1", IDToken: "tok", ExpiresAt: time.Now().Add(-time.Hour)}
	blob, _ := json.Marshal(s)
	require.NoError(t, e.kv.Set(ctx, common.KeySession, string(blob)))

	require.NoError(t, e.session.Load(ctx))
	assert.Equal(t, StateSignedIn, e.session.State())
}

func TestSessionStore_LoadCorruptSession(t *testing.T) {
	tests := []struct {
		name      string
		blob      string
		favorites bool // whether favorites_u1 must be removed too
	}{
		{name: "not json", blob: "{{{", favorites: false},
		{name: "missing uid", blob: `{"email":"a@b.c"}`, favorites: false},
		{name: "uid but bad field", blob: `{"uid":"u1","expiresAt":"yesterday"}`, favorites: true},
		{name: "uid of wrong type", blob: `{"uid":42}`, favorites: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()
			require.NoError(t, e.kv.Set(ctx, common.KeySession, tt.blob))
			require.NoError(t, e.kv.Set(ctx, common.FavoritesKey("u1"), `["p1"]`))

			require.NoError(t, e.session.Load(ctx))

			assert.Equal(t, StateSignedOut, e.session.State())
			_, ok := e.stored(t, common.KeySession)
			assert.False(t, ok, "corrupt session must be removed")
			_, ok = e.stored(t, common.FavoritesKey("u1"))
			assert.Equal(t, !tt.favorites, ok)
		})
	}
}

func TestSessionStore_LoadCorruptFavorites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	blob, _ := json.Marshal(models.Session{UID: "u1"})
	require.NoError(t, e.kv.Set(ctx, common.KeySession, string(blob)))
	require.NoError(t, e.kv.Set(ctx, common.FavoritesKey("u1"), `not-an-array`))

	require.NoError(t, e.session.Load(ctx))

	assert.Equal(t, StateSignedIn, e.session.State())
	assert.Empty(t, e.session.Favorites())
	_, ok := e.stored(t, common.FavoritesKey("u1"))
	assert.False(t, ok)
}

func TestSessionStore_SignIn(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	e.addAccount("ana@example.com", "secret", "u1", "Ana", models.RoleUser)

	require.NoError(t, e.session.SignIn(context.Background(), " ana@example.com ", "secret"))

	assert.Equal(t, StateSignedIn, e.session.State())
	s, ok := e.session.Session()
	require.True(t, ok)
	assert.Equal(t, "u1", s.UID)
	assert.Equal(t, "Ana", s.Name)
	assert.Equal(t, "ana@example.com", s.Email)
	assert.NotEmpty(t, s.IDToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)
	assert.False(t, e.session.IsAdmin())

	// persisted before SignIn returned, without waiting for the writer
	raw, ok := e.stored(t, common.KeySession)
	require.True(t, ok)
	restored, err := models.ParseSession(raw)
	require.NoError(t, err)
	assert.Equal(t, s.UID, restored.UID)
	assert.Equal(t, s.IDToken, restored.IDToken)

	// the profile was fetched with the new token
	var profileReq *fakestore.Request
	for _, r := range e.srv.Requests() {
		if r.Method == http.MethodGet && r.Path == "users/u1" {
			r := r
			profileReq = &r
		}
	}
	require.NotNil(t, profileReq)
	assert.Equal(t, "Bearer "+s.IDToken, profileReq.Header.Get("Authorization"))
}

func TestSessionStore_SignInLoadsStoredFavorites(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	require.NoError(t, e.kv.Set(context.Background(), common.FavoritesKey("u1"), `["p9"]`))

	e.signIn(t, "u1", models.RoleUser)
	assert.True(t, e.session.IsFavorite("p9"))
}

func TestSessionStore_SignInUnknownEmail(t *testing.T) {
	e := newEnv(t)
	e.load(t)

	err := e.session.SignIn(context.Background(), "ghost@example.com", "whatever")

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, InvalidCredentials, ae.Kind)
	assert.Equal(t, "EMAIL_NOT_FOUND", ae.Code)
	assert.Contains(t, err.Error(), "invalid email or password")

	assert.Equal(t, StateSignedOut, e.session.State())
	_, ok := e.stored(t, common.KeySession)
	assert.False(t, ok)
	e.flush(t)
	_, ok = e.stored(t, common.KeySession)
	assert.False(t, ok)
}

func TestSessionStore_SignInErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    AuthErrorKind
	}{
		{"invalid password", "INVALID_PASSWORD", InvalidCredentials},
		{"invalid login credentials", "INVALID_LOGIN_CREDENTIALS", InvalidCredentials},
		{"disabled", "USER_DISABLED", SignInFailed},
		{"throttled", "TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled", SignInFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.load(t)
			e.srv.Fail(http.MethodPost, "signInWithPassword", http.StatusBadRequest, tt.message)

			err := e.session.SignIn(context.Background(), "a@example.com", "pw")
			var ae *AuthError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.want, ae.Kind)
			assert.Equal(t, StateSignedOut, e.session.State())
		})
	}
}

func TestSessionStore_SignInNetworkFailure(t *testing.T) {
	srv := fakestore.New(t)
	cfg := srv.Config()
	cfg.AuthBaseURL = "http://127.0.0.1:1"
	cfg.Timeout = time.Second
	log := logging.NewNop()
	hc := client.NewHTTPClient(cfg, log)
	e := newEnvWith(t, srv, kv.NewMemoryRepository())
	s := NewSessionStore(hc, hc, e.kv, e.writer, log)
	require.NoError(t, s.Load(context.Background()))

	err := s.SignIn(context.Background(), "a@example.com", "pw")
	require.Error(t, err)
	var ae *AuthError
	assert.False(t, errors.As(err, &ae))
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestSessionStore_SignInValidation(t *testing.T) {
	e := newEnv(t)
	e.load(t)

	err := e.session.SignIn(context.Background(), "  ", "pw")
	require.ErrorIs(t, err, common.ErrValidation)
	err = e.session.SignIn(context.Background(), "a@example.com", "")
	require.ErrorIs(t, err, common.ErrValidation)

	assert.Empty(t, e.srv.Requests())
}

func TestSessionStore_SignInWithoutProfile(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	e.srv.AddUser("ana@example.com", "secret", "u1")

	err := e.session.SignIn(context.Background(), "ana@example.com", "secret")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, StateSignedOut, e.session.State())
	_, ok := e.stored(t, common.KeySession)
	assert.False(t, ok)
}

func TestSessionStore_SignUp(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	ctx := context.Background()

	require.NoError(t, e.session.SignUp(ctx, "Bia", "bia@example.com", "secret1"))

	uid, ok := e.srv.UserID("bia@example.com")
	require.True(t, ok)
	rec, ok := e.srv.Document("users", uid)
	require.True(t, ok)
	assert.Equal(t, "Bia", rec["name"])
	assert.Equal(t, "bia@example.com", rec["email"])
	assert.Equal(t, models.RoleUser, rec["role"])
	assert.Equal(t, StateSignedOut, e.session.State(), "sign-up does not sign in")

	err := e.session.SignUp(ctx, "Bia", "bia@example.com", "secret1")
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, EmailExists, ae.Kind)

	err = e.session.SignUp(ctx, "Cy", "cy@example.com", "123")
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, SignUpFailed, ae.Kind)
	assert.Equal(t, "WEAK_PASSWORD", ae.Code)

	err = e.session.SignUp(ctx, "", "x@example.com", "secret1")
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestSessionStore_SendPasswordReset(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	ctx := context.Background()
	e.srv.AddUser("ana@example.com", "secret", "u1")

	require.NoError(t, e.session.SendPasswordReset(ctx, "ana@example.com"))
	assert.Equal(t, []string{"ana@example.com"}, e.srv.PasswordResets())

	err := e.session.SendPasswordReset(ctx, "ghost@example.com")
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, EmailNotFound, ae.Kind)

	require.ErrorIs(t, e.session.SendPasswordReset(ctx, ""), common.ErrValidation)
}

func TestSessionStore_SignOut(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	e.signIn(t, "u1", models.RoleUser)
	e.session.AddFavorite("p1")
	require.NoError(t, e.cart.AddToCart(product("p1", 10, 3), 1))
	e.flush(t)

	require.NoError(t, e.session.SignOut(context.Background()))

	assert.Equal(t, StateSignedOut, e.session.State())
	assert.Empty(t, e.session.Favorites())
	_, ok := e.session.Session()
	assert.False(t, ok)

	_, ok = e.stored(t, common.KeySession)
	assert.False(t, ok)
	_, ok = e.stored(t, common.FavoritesKey("u1"))
	assert.False(t, ok)

	assert.Equal(t, 1, e.cart.Len(), "sign-out keeps the cart")
	_, ok = e.stored(t, common.KeyCart)
	assert.True(t, ok)

	_, _ = e.http.List(context.Background(), "products")
	reqs := e.srv.Requests()
	assert.Empty(t, reqs[len(reqs)-1].Header.Get("Authorization"))
}

func TestSessionStore_FavoritesAreASet(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	e.signIn(t, "u1", models.RoleUser)

	assert.True(t, e.session.AddFavorite("p1"))
	for i := 0; i < 3; i++ {
		assert.False(t, e.session.AddFavorite("p1"))
		assert.True(t, e.session.IsFavorite("p1"))
	}
	assert.False(t, e.session.RemoveFavorite("p404"))
	assert.True(t, e.session.AddFavorite("p0"))
	assert.Equal(t, []string{"p0", "p1"}, e.session.Favorites())

	e.flush(t)
	raw, ok := e.stored(t, common.FavoritesKey("u1"))
	require.True(t, ok)
	assert.JSONEq(t, `["p0","p1"]`, raw)

	assert.True(t, e.session.RemoveFavorite("p1"))
	assert.False(t, e.session.IsFavorite("p1"))
	e.flush(t)
	raw, _ = e.stored(t, common.FavoritesKey("u1"))
	assert.JSONEq(t, `["p0"]`, raw)

	assert.False(t, e.session.AddFavorite(""))
}

func TestSessionStore_FavoritesNotPersistedWithoutUser(t *testing.T) {
	e := newEnv(t)
	e.load(t)

	e.session.AddFavorite("p1")
	assert.True(t, e.session.IsFavorite("p1"))
	e.flush(t)

	for _, key := range []string{common.FavoritesKey(""), common.KeySession} {
		_, ok := e.stored(t, key)
		assert.False(t, ok, key)
	}
}

func TestSessionStore_FavoritesSurviveRestart(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	e.signIn(t, "u1", models.RoleUser)
	e.session.AddFavorite("p3")
	e.flush(t)

	restarted := newEnvWith(t, e.srv, e.kv)
	restarted.load(t)
	assert.Equal(t, StateSignedIn, restarted.session.State())
	assert.True(t, restarted.session.IsFavorite("p3"))
}

// gatedRepository holds favorites writes until release is closed.
type gatedRepository struct {
	*kv.MemoryRepository
	release chan struct{}
}

func (r *gatedRepository) Set(ctx context.Context, key, value string) error {
	if strings.HasPrefix(key, common.FavoritesKey("")) {
		<-r.release
	}
	return r.MemoryRepository.Set(ctx, key, value)
}

func TestSessionStore_SignInAgainKeepsQueuedFavorites(t *testing.T) {
	srv := fakestore.New(t)
	srv.AddUser("ana@example.com", "secret", "u1")
	srv.PutDocument("users", "u1", docstore.Record{"name": "Ana", "email": "ana@example.com", "role": models.RoleUser})

	store := &gatedRepository{MemoryRepository: kv.NewMemoryRepository(), release: make(chan struct{})}
	log := logging.NewNop()
	hc := client.NewHTTPClient(srv.Config(), log)
	w := persist.NewWriter(store, log)
	session := NewSessionStore(hc, hc, store, w, log)
	var once sync.Once
	open := func() { once.Do(func() { close(store.release) }) }
	t.Cleanup(func() {
		open()
		_ = w.Close()
	})

	ctx := context.Background()
	require.NoError(t, session.Load(ctx))
	require.NoError(t, session.SignIn(ctx, "ana@example.com", "secret"))
	require.True(t, session.AddFavorite("p1"))

	done := make(chan error, 1)
	go func() { done <- session.SignIn(ctx, "ana@example.com", "secret") }()

	select {
	case err := <-done:
		t.Fatalf("sign-in returned before the queued favorites were written: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	open()
	require.NoError(t, <-done)
	require.NoError(t, w.Flush(ctx))

	assert.True(t, session.IsFavorite("p1"))
	raw, ok, err := store.Get(ctx, common.FavoritesKey("u1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["p1"]`, raw)
}

func TestSessionStore_ConcurrentFavorites(t *testing.T) {
	e := newEnv(t)
	e.load(t)
	e.signIn(t, "u1", models.RoleUser)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.session.AddFavorite(string(rune('a' + i%10)))
		}(i)
	}
	wg.Wait()
	e.flush(t)

	assert.Len(t, e.session.Favorites(), 10)
	raw, _ := e.stored(t, common.FavoritesKey("u1"))
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(raw), &ids))
	assert.Len(t, ids, 10)
}

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "signed in", StateSignedIn.String())
	assert.Equal(t, "SessionState(9)", SessionState(9).String())
}
