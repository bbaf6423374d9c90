package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/crossbridge-edu/advisory-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initMigratedStore opens the store and applies schema migrations. Every
// command goes through here so a fresh database works out of the box.
func initMigratedStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
