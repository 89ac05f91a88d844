package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophershop/internal/client/client"
	"github.com/dmitrijs2005/gophershop/internal/client/config"
	"github.com/dmitrijs2005/gophershop/internal/client/persist"
	"github.com/dmitrijs2005/gophershop/internal/client/services"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    *client.Repositories
	writer   *persist.Writer
	session  *services.SessionStore
	cart     *services.CartStore
	checkout *services.Checkout
	catalog  services.CatalogService
	orders   services.OrderService
	admin    services.AdminService
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the local state database, builds the stores over the remote
// document store and restores the persisted session and cart.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(c.LogLevel, os.Stderr)

	repos, err := client.InitDatabase(ctx, c.StatePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.StatePath, "error", err)
		return nil, err
	}

	hc := client.NewHTTPClient(client.Config{
		DocumentsBaseURL: c.DocumentsURL(),
		AuthBaseURL:      c.AuthBaseURL,
		APIKey:           c.APIKey,
		Timeout:          c.RequestTimeout,
	}, logger)

	w := persist.NewWriter(repos.KV, logger)
	session := services.NewSessionStore(hc, hc, repos.KV, w, logger)
	cart := services.NewCartStore(repos.KV, w, logger)

	a := &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		writer:   w,
		session:  session,
		cart:     cart,
		checkout: services.NewCheckout(session, cart, hc, logger),
		catalog:  services.NewCatalogService(hc, logger),
		orders:   services.NewOrderService(hc, logger),
		admin:    services.NewAdminService(hc, logger),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	// Both stores self-heal corrupt state and end up usable, so a load
	// error is reported but does not stop the app.
	if err := session.Load(ctx); err != nil {
		logger.Warn(ctx, "session not restored", "error", err)
	}
	if err := cart.Load(ctx); err != nil {
		logger.Warn(ctx, "cart not restored", "error", err)
	}

	return a, nil
}

// Run starts the REPL on stdin and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to GopherShop CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close flushes pending state writes and closes the database.
func (a *App) Close() error {
	if err := a.writer.Close(); err != nil {
		a.logger.Warn(context.Background(), "state writer close", "error", err)
	}
	return a.repos.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == services.StateSignedIn
}

func (a *App) isAdmin() bool {
	return a.session.IsAdmin()
}

// getStatus renders the prompt status: the signed-in user and the cart size.
func (a *App) getStatus() string {
	s := "guest"
	if sess, ok := a.session.Session(); ok {
		s = sess.Email
		if sess.IsAdmin() {
			s += " admin"
		}
	}
	if n := a.cart.Len(); n > 0 {
		s = fmt.Sprintf("%s, cart %d", s, n)
	}
	return fmt.Sprintf("(%s)", s)
}
