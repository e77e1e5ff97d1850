package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/baharkarakas/asso-backend/internal/config"
	"github.com/baharkarakas/asso-backend/internal/db"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/repository/memory"
	"github.com/baharkarakas/asso-backend/internal/repository/mongostore"
	"github.com/baharkarakas/asso-backend/internal/repository/postgres"
)

// storage is an open backend. migrate brings its schema or indexes up to date.
type storage struct {
	repos   repo.Repositories
	migrate func(ctx context.Context) error
	close   func()
}

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		return &storage{
			repos:   postgres.NewRepositories(pool),
			migrate: func(ctx context.Context) error { return db.RunMigrations(ctx, pool) },
			close:   pool.Close,
		}, nil

	case "mongo":
		client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		return &storage{
			repos:   mongostore.NewRepositories(database),
			migrate: func(ctx context.Context) error { return db.EnsureIndexes(ctx, database) },
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Warn("mongo disconnect", "err", err)
				}
			},
		}, nil

	case "memory":
		log.Warn("using in-memory storage; data is lost on restart")
		return &storage{
			repos:   memory.NewRepositories(),
			migrate: func(context.Context) error { return nil },
			close:   func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
