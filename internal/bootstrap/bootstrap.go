package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	conninadapter "lectern/internal/modules/connectivity/adapter/in"
	connoutadapter "lectern/internal/modules/connectivity/adapter/out"
	connservice "lectern/internal/modules/connectivity/service"
	connusecase "lectern/internal/modules/connectivity/usecase"
	libraryinadapter "lectern/internal/modules/library/adapter/in"
	libraryoutadapter "lectern/internal/modules/library/adapter/out"
	libraryservice "lectern/internal/modules/library/service"
	libraryusecase "lectern/internal/modules/library/usecase"
	presenceinadapter "lectern/internal/modules/presence/adapter/in"
	presenceoutadapter "lectern/internal/modules/presence/adapter/out"
	presenceservice "lectern/internal/modules/presence/service"
	presenceusecase "lectern/internal/modules/presence/usecase"
	sessioninadapter "lectern/internal/modules/session/adapter/in"
	sessionoutadapter "lectern/internal/modules/session/adapter/out"
	sessionout "lectern/internal/modules/session/port/out"
	sessionservice "lectern/internal/modules/session/service"
	sessionusecase "lectern/internal/modules/session/usecase"
	statsinadapter "lectern/internal/modules/stats/adapter/in"
	statsoutadapter "lectern/internal/modules/stats/adapter/out"
	statsservice "lectern/internal/modules/stats/service"
	statsusecase "lectern/internal/modules/stats/usecase"
	syncinadapter "lectern/internal/modules/sync/adapter/in"
	syncoutadapter "lectern/internal/modules/sync/adapter/out"
	syncservice "lectern/internal/modules/sync/service"
	syncusecase "lectern/internal/modules/sync/usecase"
	"lectern/internal/platform/clock"
	"lectern/internal/platform/config"
	"lectern/internal/platform/id"
	"lectern/internal/platform/logger"
	"lectern/internal/platform/reactive"
	"lectern/internal/platform/remote"
	"lectern/internal/platform/sqlitedb"
	"lectern/internal/platform/tx"
	uiapp "lectern/internal/ui/app"
)

type App struct {
	BookCLI         libraryinadapter.CLIHandler
	SessionCLI      sessioninadapter.CLIHandler
	SyncCLI         syncinadapter.CLIHandler
	PresenceCLI     presenceinadapter.CLIHandler
	ConnectivityCLI conninadapter.CLIHandler
	StatsCLI        statsinadapter.CLIHandler
	Scheduler       *syncinadapter.Scheduler
	Log             *logger.Logger
	// Schedule is the configured cron expression; empty disables background sync.
	Schedule        string

	hub       *reactive.Hub
	db        *sql.DB
	transport *presenceoutadapter.WSTransport
}

type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock replaces the system clock for every time-dependent component.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New opens the local database, wires every module and restores the session
// left active by a previous process.
func New(ctx context.Context, cfg config.Config, log *logger.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = logger.Discard()
	}
	o := options{clock: clock.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	clk := o.clock
	ids := id.UUID{}
	hub := reactive.NewHub()

	db, err := sqlitedb.Open(ctx, cfg.DBPath)
	if err != nil {
		hub.Close()
		return nil, err
	}
	app := &App{Log: log, Schedule: cfg.Sync.Schedule, hub: hub, db: db}
	fail := func(err error) (*App, error) {
		_ = app.Close()
		return nil, err
	}
	txm := tx.NewSQLManager(db)

	bookStore, err := libraryoutadapter.NewSQLiteBookStore(ctx, db, hub)
	if err != nil {
		return fail(fmt.Errorf("new book store: %w", err))
	}
	libraryUC := libraryusecase.NewInteractor(libraryservice.NewBookService(clk, bookStore))

	sessionStore, err := sessionoutadapter.NewSQLiteSessionStore(ctx, db, hub)
	if err != nil {
		return fail(fmt.Errorf("new session store: %w", err))
	}
	var journal sessionout.Journal
	if cfg.JournalDir != "" {
		journal = sessionoutadapter.NewMarkdownJournal(cfg.JournalDir)
	}
	lifecycle := sessionservice.NewLifecycleService(
		clk,
		ids,
		sessionStore,
		sessionoutadapter.NewLibraryLedger(libraryUC),
		txm,
		hub,
		sessionservice.Options{MaxDelta: cfg.Session.MaxDelta, Journal: journal, Logger: log},
	)
	sessionUC := sessionusecase.NewInteractor(lifecycle)

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Token, cfg.Remote.Timeout)
	connUC := connusecase.NewInteractor(connservice.NewMonitor(clk, connoutadapter.NewHubRemote(client), hub, log))

	syncUC := syncusecase.NewInteractor(syncservice.NewReconciler(
		clk,
		syncoutadapter.NewHubRemote(client),
		syncoutadapter.NewSQLiteSyncStore(db, txm, hub),
		syncoutadapter.NewLifecycleProbe(sessionUC),
		syncoutadapter.NewConnectivityGate(connUC),
		syncoutadapter.NewFileActivityStore(cfg.DataDir),
		hub,
		log,
	))

	app.transport = presenceoutadapter.NewWSTransport(cfg.Presence.URL, cfg.Remote.Token)
	presenceUC := presenceusecase.NewInteractor(presenceservice.NewAnnouncer(
		clk,
		presenceoutadapter.NewConnectivityGate(connUC),
		app.transport,
		cfg.Presence.Timeout,
		log,
	))

	statsUC := statsusecase.NewInteractor(statsservice.NewProjector(
		clk,
		statsoutadapter.NewSessionSource(sessionUC),
		statsoutadapter.NewBookSource(libraryUC),
		statsoutadapter.NewSyncSource(syncUC),
		statsoutadapter.NewConnectivitySource(connUC),
		hub,
	))

	restored, err := sessionUC.Restore(ctx)
	if err != nil {
		return fail(fmt.Errorf("restore session: %w", err))
	}
	if restored.Orphans > 0 {
		log.Warn("session: closed orphaned sessions", "count", restored.Orphans)
	}

	app.BookCLI = libraryinadapter.NewCLIHandler(libraryUC)
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.SyncCLI = syncinadapter.NewCLIHandler(syncUC)
	app.PresenceCLI = presenceinadapter.NewCLIHandler(presenceUC)
	app.ConnectivityCLI = conninadapter.NewCLIHandler(connUC)
	app.StatsCLI = statsinadapter.NewCLIHandler(statsUC)
	app.Scheduler = syncinadapter.NewScheduler(syncUC, connUC, log)
	return app, nil
}

// Flush waits until every observer has seen the latest local change.
func (a *App) Flush(ctx context.Context) error {
	return a.hub.Flush(ctx)
}

func (a *App) Close() error {
	var errs []error
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.transport != nil {
		errs = append(errs, a.transport.Close())
	}
	a.hub.Close()
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.StatsCLI, app.SessionCLI, app.SyncCLI, app.PresenceCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
