package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
	"github.com/dmitrijs2005/gophershop/internal/client/fakestore"
	"github.com/dmitrijs2005/gophershop/internal/client/models"
	"github.com/dmitrijs2005/gophershop/internal/client/persist"
	"github.com/dmitrijs2005/gophershop/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

// ---- helpers ----

type testEnv struct {
	srv      *fakestore.Server
	http     *client.HTTPClient
	kv       *kv.MemoryRepository
	writer   *persist.Writer
	session  *SessionStore
	cart     *CartStore
	checkout *Checkout
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := fakestore.New(t)
	return newEnvWith(t, srv, kv.NewMemoryRepository())
}

// newEnvWith builds fresh stores over existing remote and local state, as
// a process restart would.
func newEnvWith(t *testing.T, srv *fakestore.Server, store *kv.MemoryRepository) *testEnv {
	t.Helper()
	log := logging.NewNop()
	hc := client.NewHTTPClient(srv.Config(), log)
	w := persist.NewWriter(store, log)
	t.Cleanup(func() { _ = w.Close() })

	session := NewSessionStore(hc, hc, store, w, log)
	cart := NewCartStore(store, w, log)
	return &testEnv{
		srv:      srv,
		http:     hc,
		kv:       store,
		writer:   w,
		session:  session,
		cart:     cart,
		checkout: NewCheckout(session, cart, hc, log),
	}
}

func (e *testEnv) load(t *testing.T) {
	t.Helper()
	require.NoError(t, e.session.Load(context.Background()))
	require.NoError(t, e.cart.Load(context.Background()))
}

func (e *testEnv) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, e.writer.Flush(context.Background()))
}

func (e *testEnv) addAccount(email, password, uid, name, role string) {
	e.srv.AddUser(email, password, uid)
	e.srv.PutDocument("users", uid, docstore.Record{"name": name, "email": email, "role": role})
}

func (e *testEnv) signIn(t *testing.T, uid, role string) {
	t.Helper()
	email := uid + "@example.com"
	e.addAccount(email, "secret", uid, "User "+uid, role)
	require.NoError(t, e.session.SignIn(context.Background(), email, "secret"))
}

func (e *testEnv) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := e.kv.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func (e *testEnv) putProduct(p models.Product) {
	e.srv.PutDocument("products", p.ID, docstore.Record{
		"name":     p.Name,
		"price":    p.Price,
		"stock":    p.Stock,
		"category": p.Category,
	})
}

func product(id string, price float64, stock int64) models.Product {
	return models.Product{ID: id, Name: "Product " + id, Price: price, Stock: stock}
}
