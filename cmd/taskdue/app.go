package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/taskdue/internal/credential"
	"github.com/nhle/taskdue/internal/dispatch"
	"github.com/nhle/taskdue/internal/gateway"
	"github.com/nhle/taskdue/internal/ledger"
	"github.com/nhle/taskdue/internal/logger"
	"github.com/nhle/taskdue/internal/model"
	"github.com/nhle/taskdue/internal/notify"
	"github.com/nhle/taskdue/internal/reminder"
	"github.com/nhle/taskdue/internal/session"
	"github.com/nhle/taskdue/internal/store"
)

// app wires the core components together for the CLI commands.
type app struct {
	configPath string

	cfg        *model.AppConfig
	log        *zap.Logger
	client     *gateway.Client
	sessions   *session.Manager
	ledger     *ledger.Ledger
	queue      *store.SQLiteStore
	scheduler  *reminder.Scheduler
	dispatcher *dispatch.Dispatcher
}

// init builds every component from configuration. It runs before each
// command; session restore happens lazily in requireUser so that
// login and signup work without an existing session.
func (a *app) init() error {
	path := a.configPath
	if path == "" {
		path = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	})

	a.client = gateway.NewClient(cfg.Gateway.Endpoint, cfg.Gateway.ProjectID)
	account := gateway.NewAccount(a.client)
	docs := gateway.NewDatabases(a.client, cfg.Gateway.DatabaseID)

	creds := credential.NewStore()
	a.sessions = session.NewManager(creds, account, a.client, a.log)

	a.ledger = ledger.New(
		docs,
		cfg.Gateway.TasksCollection,
		cfg.Gateway.CompletionsCollection,
	)

	queue, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening reminder queue: %w", err)
	}
	a.queue = queue

	notifier := notify.NewDesktopNotifier(a.log)
	a.scheduler = reminder.NewScheduler(
		queue, notifier, cfg.Reminder.DueHour, a.log,
	)

	a.dispatcher = dispatch.NewDispatcher(
		a.sessions, a.ledger, a.scheduler,
		cfg.Reminder.SnoozeMinutes, a.log,
	)

	return nil
}

// close releases resources held by init.
func (a *app) close() {
	if a.queue != nil {
		a.queue.Close()
	}
	if a.log != nil {
		a.log.Sync()
	}
}

// requireUser restores the persisted session and returns the
// authenticated owner's ID. Commands that read or write tasks call
// this first; they must not reach the gateway unauthenticated.
func (a *app) requireUser(ctx context.Context) (string, error) {
	if err := a.sessions.Restore(ctx); err != nil {
		return "", err
	}

	userID, err := a.sessions.RequireUser()
	if err != nil {
		return "", fmt.Errorf("no active session, run 'taskdue login' first: %w", err)
	}
	return userID, nil
}

// setupReminders prepares the scheduler, tolerating a platform that
// refuses notifications: scheduling simply becomes a no-op then.
func (a *app) setupReminders(ctx context.Context) {
	if err := a.scheduler.Setup(ctx); err != nil {
		a.log.Warn("reminder setup failed", zap.Error(err))
	}
}
