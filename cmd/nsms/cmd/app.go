package cmd

import (
	"context"
	"database/sql"
	"time"

	nsmslog "github.com/msto63/nsms/foundation/core/log"
	"github.com/msto63/nsms/internal/command"
	"github.com/msto63/nsms/internal/message"
	"github.com/msto63/nsms/internal/registration"
	"github.com/msto63/nsms/internal/router"
	"github.com/msto63/nsms/internal/storage"
	"github.com/msto63/nsms/internal/text"
	"github.com/msto63/nsms/pkg/core/config"
	"github.com/msto63/nsms/pkg/core/logging"
)

const textCacheTTL = 5 * time.Minute

// app holds the wired platform shared by the subcommands.
type app struct {
	cfg           *config.Config
	logger        *nsmslog.Logger
	db            *sql.DB
	messages      *message.SQLiteStore
	registrations *registration.Store
	texts         *text.Store
	catalog       *text.Catalog
	dispatcher    *command.Dispatcher
	router        *router.Router
	tester        *router.TesterBackend
}

// openApp loads the config, opens the database and registers the command
// handlers and the tester backend.
func openApp(ctx context.Context, component string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	lc := logging.FromConfig(cfg, component)
	if verbose {
		lc.Level = "debug"
	}
	logger := logging.NewLogger(lc)

	db, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, db: db}

	if a.messages, err = message.NewSQLiteStore(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if a.registrations, err = registration.NewStore(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if a.texts, err = text.NewStore(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	bundles, err := text.NewBundles(cfg.Text)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.catalog = text.NewCatalog(a.texts, bundles, textCacheTTL, logger.WithName("text"))

	a.dispatcher = command.NewDispatcher(a.catalog, command.Options{
		Logger:     logger,
		Separators: cfg.SeparatorRunes(),
	})
	a.dispatcher.MustRegister(
		command.NewRegisterHandler(a.registrations),
		command.NewReportHandler(a.registrations),
		command.NewRemindHandler(a.registrations),
	)
	a.dispatcher.MustRegister(command.NewHelpHandler(a.dispatcher))

	a.router = router.New(a.messages, a.dispatcher, logger)
	a.tester = router.NewTesterBackend(cfg.Router.DefaultBackend)
	if err := a.router.AddBackend(a.tester); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the catalog cache and the database.
func (a *app) Close() error {
	a.catalog.Close()
	return a.db.Close()
}
