package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/config"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/catalog"
	"github.com/dmitrijs2005/storefront/internal/client/services"
	"github.com/dmitrijs2005/storefront/internal/client/store"
	"github.com/dmitrijs2005/storefront/internal/client/tokens"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// cacheRetention bounds how long an offline catalog copy is kept at all.
const cacheRetention = 7 * 24 * time.Hour

type App struct {
	config    *config.Config
	db        *sql.DB
	store     *store.Store
	catalog   *services.CatalogService
	orders    *services.OrderService
	favorites *services.FavoritesService
	log       logging.Logger

	reader *bufio.Reader
	out    io.Writer

	unsubscribe func()
}

type Option func(*App)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.reader = bufio.NewReader(in)
		a.out = out
	}
}

// NewApp opens the local database and wires the transport, the store and the
// services. The caller must Close the App.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	ts := tokens.NewSQLiteStore(db)
	api, err := client.NewHTTPClient(c.APIBaseURL, ts,
		client.WithPolicy(c.Policy()),
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("init api client: %w", err), db.Close())
	}

	st := store.New(api, ts, store.WithPolicy(c.Policy()), store.WithLogger(log))
	api.SetSessionHooks(st)

	a := &App{
		config: c,
		db:     db,
		store:  st,
		catalog: services.NewCatalogService(api, catalog.NewSQLiteRepository(db), st,
			services.WithCacheTTL(c.CatalogCacheTTL),
			services.WithCatalogLogger(log),
		),
		orders:    services.NewOrderService(api, st, log),
		favorites: services.NewFavoritesService(api, st),
		log:       log.With("component", "cli"),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}
	a.unsubscribe = st.Subscribe(a.onChange)
	return a, nil
}

func (a *App) onChange(ev store.Event, snap store.Snapshot) {
	switch ev {
	case store.EventSessionExpired:
		a.println("Your session has expired. Please log in again.")
	case store.EventCartChanged:
		if snap.Cart.Cart != nil {
			a.log.Debug(context.Background(), "cart changed", "lines", len(snap.Cart.Cart.Items), "total", snap.Cart.Cart.Total.String())
		}
	}
}

// Run restores a persisted session and then serves the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) error {
	a.println("Storefront CLI (type 'help' for commands)")

	if _, err := a.catalog.PruneCache(ctx, cacheRetention); err != nil {
		a.log.Warn(ctx, "catalog cache prune failed", "err", err)
	}

	if err := a.store.ResumeSession(ctx); err != nil {
		a.println("Previous session could not be restored:", message(err))
	}
	if u := a.store.Snapshot().Session.User; u != nil {
		a.println("Welcome back,", u.Username)
	}

	runREPL(ctx, a, a.reader, a.out)
	return nil
}

// Close releases the subscription and the database.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().Session.Authenticated()
}

func (a *App) isAdmin() bool {
	u := a.store.Snapshot().Session.User
	return u != nil && u.IsAdmin
}

func (a *App) status() string {
	snap := a.store.Snapshot()
	if snap.Session.User == nil {
		return ""
	}
	s := snap.Session.User.Username
	if snap.Cart.Cart != nil {
		if n := snap.Cart.Cart.Count(); n > 0 {
			s = fmt.Sprintf("%s, cart %d", s, n)
		}
	}
	return "(" + s + ")"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
