package main

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var demoPosts = []struct{ Title, Content string }{
	{"Welcome to Postboard", "Register an account, log in, and share what you're working on."},
	{"Editing posts", "Only the author of a post can edit or delete it. Everyone can read."},
	{"Tokens", "Login tokens are valid for one hour. Log in again when yours expires."},
}

// seedDemo registers the demo account and publishes up to DemoPostLimit
// sample posts, oldest first. It is a no-op when the account exists.
func seedDemo(ctx context.Context, auth *Authenticator, store Store, cfg Config, log *slog.Logger) error {
	u, err := auth.Register(ctx, cfg.DemoUsername, cfg.DemoPassword)
	if errors.Is(err, ErrDuplicateUsername) {
		log.Info("demo user already present", "username", cfg.DemoUsername)
		return nil
	} else if err != nil {
		return err
	}

	limit := min(cfg.DemoPostLimit, len(demoPosts))
	author := Identity{UserID: u.ID, Username: u.Username}
	now := auth.now()
	for i, d := range demoPosts[:limit] {
		// spread the dates so the feed order is stable
		p, err := newPost(d.Title, d.Content, author, now.Add(time.Duration(i-limit)*time.Minute))
		if err != nil {
			return err
		}
		if err := store.CreatePost(ctx, p); err != nil {
			return err
		}
	}
	log.Info("seeded demo data", "username", u.Username, "posts", limit)
	return nil
}
