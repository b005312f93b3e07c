package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"

	"github.com/gophmart/gophmart/internal/client/api"
	"github.com/gophmart/gophmart/internal/client/chat"
	"github.com/gophmart/gophmart/internal/client/collections"
	"github.com/gophmart/gophmart/internal/client/config"
	"github.com/gophmart/gophmart/internal/client/models"
	"github.com/gophmart/gophmart/internal/client/session"
	"github.com/gophmart/gophmart/internal/client/storage"
	"github.com/gophmart/gophmart/internal/logging"

	_ "modernc.org/sqlite"
)

// App owns the wired client: the session manager, the optimistic cart and
// wishlist mirrors, the chat reconciler and the REPL I/O. All components are
// explicitly constructed here and passed their collaborators; there are no
// package-level singletons.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     *api.HTTPClient
	session *session.Manager

	cart     *collections.Cart
	wishlist *collections.Wishlist
	chat     *chat.Reconciler

	unsubscribe func()

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	// The token source closes over mgr, which needs the client to exist
	// first. Until NewManager returns there is no session, so an empty
	// token is correct.
	var mgr *session.Manager
	apiClient, err := api.NewHTTPClient(c.ServerBaseURL,
		api.WithLogger(log),
		api.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		api.WithTokenSource(func() string {
			if mgr == nil {
				return ""
			}
			return mgr.Token()
		}),
	)
	if err != nil {
		db.Close()
		return nil, err
	}
	mgr = session.NewManager(apiClient, db, log)

	a := &App{
		config:   c,
		log:      log,
		db:       db,
		api:      apiClient,
		session:  mgr,
		cart:     collections.NewCart(apiClient, mgr, log),
		wishlist: collections.NewWishlist(apiClient, mgr, log),
		chat:     chat.NewReconciler(apiClient, mgr, log, chat.WithPollInterval(c.ChatPollInterval)),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	apiClient.SetAuthHooks(mgr.HandleAuthRejected, a.promptRelogin)
	a.unsubscribe = mgr.Subscribe(a.onSession)

	return a, nil
}

// Run restores the persisted session and blocks in the REPL until the user
// exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close releases the app's resources. Safe to call after Run.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.chat.Deactivate()
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "closing database", "error", err)
	}
}

// onSession reacts to every session transition: the customer-only mirrors
// load or drop, and chat polling follows the authenticated state for either
// role. Deactivation must always run so a logout clears caches exactly once.
func (a *App) onSession(s session.Snapshot) {
	ctx := context.Background()
	switch {
	case s.Authenticated() && s.Role() == models.RoleCustomer:
		a.chat.Start(ctx)
		if err := a.cart.Refresh(ctx); err != nil {
			a.log.Warn(ctx, "initial cart refresh failed", "error", err)
		}
		if err := a.wishlist.Refresh(ctx); err != nil {
			a.log.Warn(ctx, "initial wishlist refresh failed", "error", err)
		}
	case s.Authenticated():
		a.cart.Deactivate()
		a.wishlist.Deactivate()
		a.chat.Start(ctx)
	default:
		a.cart.Deactivate()
		a.wishlist.Deactivate()
		a.chat.Deactivate()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

func (a *App) getStatus() string {
	s := a.session.Snapshot()
	if !s.Authenticated() {
		return "anonymous"
	}
	return s.User.Name + " (" + string(s.Role()) + ")"
}

func (a *App) promptRelogin() {
	printlnFn("Session expired, please login again.")
}
