package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port            string
	JWTSecret       string
	TokenTTL        time.Duration
	BcryptCost      int
	CORSOrigins     []string
	StoreDriver     string
	SQLiteDSN       string
	LogLevel        string
	ShutdownTimeout time.Duration

	// DEMO_MODE seeds a demo account and a few posts at startup.
	DemoMode      bool
	DemoUsername  string
	DemoPassword  string
	DemoPostLimit int
}

func loadConfig() (Config, error) {
	cfg := Config{
		Port:        getenv("PORT", "5000"),
		JWTSecret:   getenv("JWT_SECRET", ""),
		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", driverMemory)),
		SQLiteDSN:   getenv("SQLITE_DSN", defaultSQLiteDSN),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DemoMode:      strings.ToLower(getenv("DEMO_MODE", "")) == "true",
		DemoUsername:  getenv("DEMO_USERNAME", "demo"),
		DemoPassword:  getenv("DEMO_PASSWORD", ""),
		DemoPostLimit: len(demoPosts),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getenv("TOKEN_TTL", "1h")); err != nil || cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", getenv("TOKEN_TTL", ""))
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getenv("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg.BcryptCost = bcrypt.DefaultCost
	if v := getenv("BCRYPT_COST", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("invalid BCRYPT_COST %q", v)
		}
		cfg.BcryptCost = n
	}

	if v := getenv("DEMO_POST_LIMIT", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid DEMO_POST_LIMIT %q", v)
		}
		cfg.DemoPostLimit = n
	}
	if cfg.DemoMode && cfg.DemoPassword == "" {
		return Config{}, fmt.Errorf("DEMO_MODE requires DEMO_PASSWORD")
	}

	// allow comma-separated list of origins
	for _, p := range strings.Split(getenv("CORS_ORIGIN", "*"), ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg, nil
}
