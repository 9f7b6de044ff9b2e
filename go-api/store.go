package main

import (
	"context"
	"fmt"
	"log/slog"
)

// Store owns the user and post collections. Implementations serialize
// mutations so uniqueness and ownership checks cannot race with writes.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	UserByUsername(ctx context.Context, username string) (User, error)

	// ListPosts returns every post in insertion order.
	ListPosts(ctx context.Context) ([]Post, error)
	CreatePost(ctx context.Context, p Post) error
	GetPost(ctx context.Context, id string) (Post, error)
	// UpdatePost applies patch if requesterID authored the post.
	UpdatePost(ctx context.Context, id, requesterID string, patch PostPatch) (Post, error)
	DeletePost(ctx context.Context, id, requesterID string) error
}

const (
	driverMemory = "memory"
	driverSQLite = "sqlite"
)

func openStore(cfg Config, log *slog.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case "", driverMemory:
		log.Info("using in-memory store")
		return newMemStore(), nil
	case driverSQLite:
		db, err := openGormDB(cfg.SQLiteDSN, log)
		if err != nil {
			return nil, err
		}
		log.Info("using sqlite store", "dsn", cfg.SQLiteDSN)
		return newGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (use %s or %s)", cfg.StoreDriver, driverMemory, driverSQLite)
	}
}
