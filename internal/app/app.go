// Package app wires configuration, storage, the store and the services
// into one running planner.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/backup"
	"github.com/existflow/semplan/internal/config"
	"github.com/existflow/semplan/internal/service"
	"github.com/existflow/semplan/internal/storage"
	"github.com/existflow/semplan/internal/store"
	"github.com/existflow/semplan/server"
)

// App is an opened planner
type App struct {
	Config   *config.Config
	KV       storage.KV
	Store    *store.Store
	Services *service.Services
	log      *zap.Logger
}

// Open connects storage and loads the active profile. onError receives
// storage failures the user should see.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger, onError func(error)) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	kv, err := storage.OpenSQL(cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	st := store.New(kv, log, store.Options{
		PersistDelay: cfg.PersistDelay(),
		OnError:      onError,
	})
	st.Load(ctx)

	return &App{
		Config:   cfg,
		KV:       kv,
		Store:    st,
		Services: service.New(st, log),
		log:      log,
	}, nil
}

// Close flushes pending writes and closes storage
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Store.Close(ctx), a.KV.Close())
}

// Serve runs the API server, and the backup schedule when configured,
// until ctx is cancelled
func (a *App) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.Config.Listen
	}
	srv := server.New(a.Store, a.log, server.Options{})

	var sched *backup.Scheduler
	if a.Config.BackupCron != "" {
		sched = backup.NewScheduler(a.Store, a.Config.BackupDir, a.Config.BackupKeep, a.log)
		if err := sched.Start(a.Config.BackupCron); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if serr := srv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	a.log.Info("API server stopped")
	return err
}
