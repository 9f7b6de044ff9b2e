package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	log := newLogger(getenv("LOG_LEVEL", "info"))
	loadDotenv(log)

	cfg, err := loadConfig()
	if err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log = newLogger(cfg.LogLevel)

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		log.Warn("JWT_SECRET is not set; using a random per-process secret")
		if secret, err = randomSecret(); err != nil {
			log.Error("generate secret", "err", err)
			os.Exit(1)
		}
	}

	store, err := openStore(cfg, log)
	if err != nil {
		log.Error("open store", "err", err)
		os.Exit(1)
	}

	auth, err := NewAuthenticator(store, secret, cfg.TokenTTL, cfg.BcryptCost)
	if err != nil {
		log.Error("init authenticator", "err", err)
		os.Exit(1)
	}

	if cfg.DemoMode {
		if err := seedDemo(context.Background(), auth, store, cfg, log); err != nil {
			log.Error("seed demo data", "err", err)
			os.Exit(1)
		}
	}

	s := newServer(auth, store, log)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.routes(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("API listening", "addr", srv.Addr, "store", cfg.StoreDriver, "corsOrigins", cfg.CORSOrigins)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	s.ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}
	log.Info("HTTP server gracefully stopped")
}
