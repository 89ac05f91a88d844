package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/client/persist"
	"github.com/dmitrijs2005/gophershop/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophershop/internal/common"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

// SessionState is the lifecycle of a SessionStore.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateLoading
	StateSignedOut
	StateSignedIn
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateSignedOut:
		return "signed out"
	case StateSignedIn:
		return "signed in"
	}
	return "SessionState(" + strconv.Itoa(int(s)) + ")"
}

// SessionStore owns the signed-in user and that user's favorite products.
type SessionStore struct {
	auth   client.Auth
	docs   client.Documents
	store  kv.Repository
	writer *persist.Writer
	logger logging.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     SessionState
	session   models.Session
	favorites models.FavoriteSet
}

func NewSessionStore(auth client.Auth, docs client.Documents, store kv.Repository, writer *persist.Writer, logger logging.Logger) *SessionStore {
	return &SessionStore{
		auth:      auth,
		docs:      docs,
		store:     store,
		writer:    writer,
		logger:    logger.With("store", "session"),
		now:       time.Now,
		favorites: models.NewFavoriteSet(),
	}
}

// Load restores the persisted session. A corrupt session blob is removed,
// along with the favorites of the uid it names when that can be read, and
// the store ends up signed out.
func (s *SessionStore) Load(ctx context.Context) error {
	s.setState(StateLoading)

	raw, ok, err := s.store.Get(ctx, common.KeySession)
	if err != nil {
		s.setState(StateSignedOut)
		return fmt.Errorf("load session: %w", err)
	}
	if !ok {
		s.setState(StateSignedOut)
		return nil
	}

	session, err := models.ParseSession(raw)
	if err != nil {
		s.logger.Warn(ctx, "discarding corrupt session", "error", err)
		keys := []string{common.KeySession}
		if uid := inferUID(raw); uid != "" {
			keys = append(keys, common.FavoritesKey(uid))
		}
		if err := s.store.RemoveMany(ctx, keys); err != nil {
			s.logger.Error(ctx, "remove corrupt session", "error", err)
		}
		s.setState(StateSignedOut)
		return nil
	}

	if session.Expired(s.now()) {
		s.logger.Warn(ctx, "restored session token has expired", "uid", session.UID, "expires_at", session.ExpiresAt)
	}
	s.auth.SetIDToken(session.IDToken)
	favorites := s.loadFavorites(ctx, session.UID)

	s.mu.Lock()
	s.session = session
	s.favorites = favorites
	s.state = StateSignedIn
	s.mu.Unlock()

	s.logger.Info(ctx, "session restored", "uid", session.UID)
	return nil
}

// inferUID pulls a uid out of a blob that failed full validation.
func inferUID(raw string) string {
	var partial struct {
		UID any `json:"uid"`
	}
	if json.Unmarshal([]byte(raw), &partial) != nil {
		return ""
	}
	uid, _ := partial.UID.(string)
	return uid
}

func (s *SessionStore) loadFavorites(ctx context.Context, uid string) models.FavoriteSet {
	key := common.FavoritesKey(uid)
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Error(ctx, "load favorites", "uid", uid, "error", err)
		return models.NewFavoriteSet()
	}
	if !ok {
		return models.NewFavoriteSet()
	}

	var set models.FavoriteSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		s.logger.Warn(ctx, "discarding corrupt favorites", "uid", uid, "error", err)
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error(ctx, "remove corrupt favorites", "uid", uid, "error", err)
		}
		return models.NewFavoriteSet()
	}
	return set
}

type credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// SignIn authenticates, fetches the user's profile and persists the new
// session before reporting success. Nothing changes when any step fails.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := models.Validate(credentials{Email: email, Password: password}); err != nil {
		return err
	}

	res, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return mapAuthError(err, SignInFailed, map[string]AuthErrorKind{
			"EMAIL_NOT_FOUND":           InvalidCredentials,
			"INVALID_PASSWORD":          InvalidCredentials,
			"INVALID_LOGIN_CREDENTIALS": InvalidCredentials,
		})
	}

	doc, err := s.docs.Get(client.WithIDToken(ctx, res.IDToken), common.CollectionUsers, res.LocalID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	rec, ok := docstore.Decode(doc)
	if !ok {
		return fmt.Errorf("fetch profile: %w", common.ErrNotFound)
	}
	profile, err := models.UserProfileFromRecord(rec)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	// favorites read below must see every write already scheduled
	if err := s.writer.Flush(ctx); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	session := models.NewSession(res.LocalID, email, res.IDToken, s.tokenExpiry(ctx, res), profile)
	blob, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, common.KeySession, string(blob)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.auth.SetIDToken(session.IDToken)
	favorites := s.loadFavorites(ctx, session.UID)

	s.mu.Lock()
	s.session = session
	s.favorites = favorites
	s.state = StateSignedIn
	s.mu.Unlock()

	s.logger.Info(ctx, "signed in", "uid", session.UID, "role", session.Role)
	return nil
}

// tokenExpiry prefers the token's exp claim and falls back to expiresIn.
func (s *SessionStore) tokenExpiry(ctx context.Context, res *client.AuthResult) time.Time {
	claims, err := client.ParseIDToken(res.IDToken)
	if err == nil && !claims.ExpiresAt.IsZero() {
		return claims.ExpiresAt
	}
	if err != nil {
		s.logger.Debug(ctx, "id token is not a JWT", "error", err)
	}
	if secs, err := strconv.Atoi(res.ExpiresIn); err == nil && secs > 0 {
		return s.now().Add(time.Duration(secs) * time.Second)
	}
	return time.Time{}
}

type signUpInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// SignUp creates an account and its users/{uid} profile with the default
// role. It does not sign in.
func (s *SessionStore) SignUp(ctx context.Context, name, email, password string) error {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if err := models.Validate(signUpInput{Name: name, Email: email, Password: password}); err != nil {
		return err
	}

	res, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return mapAuthError(err, SignUpFailed, map[string]AuthErrorKind{"EMAIL_EXISTS": EmailExists})
	}

	fields := docstore.Encode(models.NewProfileRecord(name, email))
	if _, err := s.docs.Patch(client.WithIDToken(ctx, res.IDToken), common.CollectionUsers, res.LocalID, fields, models.ProfileFields); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info(ctx, "account created", "uid", res.LocalID)
	return nil
}

func (s *SessionStore) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return common.NewValidationError("email", "is required")
	}
	if err := s.auth.SendPasswordReset(ctx, email); err != nil {
		return mapAuthError(err, ResetFailed, map[string]AuthErrorKind{"EMAIL_NOT_FOUND": EmailNotFound})
	}
	return nil
}

// mapAuthError turns provider rejections into *AuthError. Network failures
// pass through unchanged.
func mapAuthError(err error, fallback AuthErrorKind, known map[string]AuthErrorKind) error {
	var te *client.TransportError
	if !errors.As(err, &te) || te.StatusCode == 0 {
		return err
	}
	code := te.Code()
	if kind, ok := known[code]; ok {
		return &AuthError{Kind: kind, Code: code}
	}
	return &AuthError{Kind: fallback, Code: code}
}

// SignOut forgets the session and the user's favorites, in memory and on
// disk. The cart is left alone.
func (s *SessionStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	uid := s.session.UID
	s.session = models.Session{}
	s.favorites = models.NewFavoriteSet()
	s.state = StateSignedOut
	s.mu.Unlock()

	s.auth.SetIDToken("")
	s.writer.ScheduleDelete(common.KeySession)
	if uid != "" {
		s.writer.ScheduleDelete(common.FavoritesKey(uid))
	}
	if err := s.writer.Flush(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.logger.Info(ctx, "signed out", "uid", uid)
	return nil
}

// AddFavorite reports whether id was newly added.
func (s *SessionStore) AddFavorite(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.favorites.Add(id) {
		return false
	}
	s.persistFavoritesLocked()
	return true
}

// RemoveFavorite reports whether id was present.
func (s *SessionStore) RemoveFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.favorites.Remove(id) {
		return false
	}
	s.persistFavoritesLocked()
	return true
}

func (s *SessionStore) persistFavoritesLocked() {
	if s.state != StateSignedIn || s.session.UID == "" {
		return
	}
	blob, err := json.Marshal(s.favorites)
	if err != nil {
		s.logger.Error(context.Background(), "encode favorites", "error", err)
		return
	}
	s.writer.Schedule(common.FavoritesKey(s.session.UID), string(blob))
}

func (s *SessionStore) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Has(id)
}

// Favorites returns the favorite product ids, sorted.
func (s *SessionStore) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.IDs()
}

func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SessionStore) Session() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.state == StateSignedIn
}

func (s *SessionStore) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateSignedIn && s.session.IsAdmin()
}

func (s *SessionStore) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
