package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/admin"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/api"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/auth"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/cart"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/catalog"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/config"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/profile"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/recommend"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/session"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/storage"
	"github.com/Harsh100101/Book-Recommendation-System/internal/client/verify"
	"github.com/Harsh100101/Book-Recommendation-System/internal/filex"
	"github.com/Harsh100101/Book-Recommendation-System/internal/logging"
)

// App is the terminal client. Everything below the reader and the writer is
// owned by the loop.
type App struct {
	config *config.Config
	loop   *loop.Loop
	store  storage.Store
	log    logging.Logger

	session *session.Session
	auth    *auth.Machine
	catalog *catalog.Engine
	gate    *verify.Gate
	cart    *cart.Engine
	recs    *recommend.Panel
	profile *profile.Page
	admin   *admin.Form

	commands []command

	reader *bufio.Reader
	out    io.Writer

	started     bool
	cartOffered bool
	seen        seen
}

// seen is what the subscriptions last reported, so that only changes are printed.
type seen struct {
	cred string
	user string

	authMsg        string
	catalogLoading bool
	notice         string
	gateOpen       bool
	gateMsg        string
	recsLoading    bool
	profileLoading bool
	ratingsLoading bool
	progress       int
	profileMsg     string
	adminMsg       string
}

type deps struct {
	client api.Client
	store  storage.Store
	clock  clockwork.Clock
	log    logging.Logger
	in     io.Reader
	out    io.Writer
}

// NewApp opens the configured storage and builds the client against the
// configured backend.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)

	store, err := openStore(ctx, c.Storage)
	if err != nil {
		log.Error(ctx, "error initializing storage", "driver", c.Storage.Driver, "err", err)
		return nil, err
	}

	client := api.NewHTTPClient(c.BaseURL,
		api.WithTimeout(c.RequestTimeout),
		api.WithRateLimit(c.RequestsPerSecond, c.Burst),
	)

	return newApp(c, deps{
		client: client,
		store:  store,
		clock:  clockwork.NewRealClock(),
		log:    log,
		in:     os.Stdin,
		out:    os.Stdout,
	}), nil
}

func openStore(ctx context.Context, s config.Storage) (storage.Store, error) {
	switch s.Driver {
	case config.DriverRedis:
		st, err := storage.OpenRedis(ctx, s.RedisAddr, s.RedisDB, s.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil
	default:
		path, err := filex.EnsureParentDir(s.Path)
		if err != nil {
			return nil, err
		}
		st, err := storage.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

func newApp(c *config.Config, d deps) *App {
	l := loop.New()
	forms := auth.NewValidator()

	a := &App{
		config: c,
		loop:   l,
		store:  d.store,
		log:    d.log,
		reader: bufio.NewReader(d.in),
		out:    &syncWriter{w: d.out},
		seen:   seen{progress: -1},
	}

	a.session = session.New(l, d.client, d.store, d.clock, d.log)
	a.auth = auth.NewMachine(l, d.client, a.session, forms, d.log)
	a.catalog = catalog.NewEngine(l, d.client, a.session, d.clock, d.log, catalog.Options{
		SearchDebounce: c.SearchDebounce,
		PriceDebounce:  c.PriceDebounce,
	})
	a.gate = verify.NewGate(l, d.client, a.session, d.clock, c.VerifyCloseDelay, d.log)
	a.cart = cart.NewEngine(d.store, d.log, c.PurchaseURLTemplate)
	a.recs = recommend.NewPanel(l, d.client, d.log)
	a.profile = profile.NewPage(l, d.client, a.session, d.log)
	a.admin = admin.NewForm(l, d.client, a.session, forms, d.log)
	a.commands = commandTable()

	a.watch()
	return a
}

// Run restores the session, issues the initial catalog query when someone is
// signed in and serves the REPL until the user exits. The saved cart is
// offered at the first prompt after sign-in.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to Bookshelf (type 'help' for commands)")

	// The loop is not running yet, so this goroutine may touch the components.
	if err := a.session.Restore(ctx); err != nil {
		a.log.Error(ctx, "restore session", "err", err)
	}
	if a.session.Authenticated() {
		a.catalog.Start()
	}
	a.started = true

	done := make(chan error, 1)
	go func() {
		done <- a.loop.Run(ctx)
	}()

	a.repl(ctx)

	a.loop.Close()
	<-done
	a.closeComponents()

	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

// offerSavedCart asks once per run, as soon as someone is signed in, whether
// to resume the cart left by a previous run. It runs on the loop and holds it
// while the user answers.
func (a *App) offerSavedCart(ctx context.Context) {
	if a.cartOffered || !a.session.Authenticated() {
		return
	}
	a.cartOffered = true

	restored, err := a.cart.CheckResume(ctx, a.confirmResume)
	if err != nil {
		a.log.Error(ctx, "check saved cart", "err", err)
	}
	if restored {
		renderCart(a.out, a.cart.Lines(), a.cart.Subtotal())
	}
}

func (a *App) confirmResume(n int) bool {
	return Confirm(a.reader, fmt.Sprintf("You have %s from your last session. Resume it?", items(n)), a.out)
}

func (a *App) closeComponents() {
	a.catalog.Close()
	a.gate.Close()
	a.recs.Close()
	a.profile.Close()
	a.admin.Close()
	a.auth.Close()
	a.session.Close()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// syncWriter serialises writes from the REPL goroutine and the loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
