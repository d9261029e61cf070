// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ocms-headless/internal/auth"
	"github.com/olegiv/ocms-headless/internal/config"
	"github.com/olegiv/ocms-headless/internal/content"
	"github.com/olegiv/ocms-headless/internal/handler"
	"github.com/olegiv/ocms-headless/internal/logging"
	"github.com/olegiv/ocms-headless/internal/middleware"
	"github.com/olegiv/ocms-headless/internal/session"
	"github.com/olegiv/ocms-headless/internal/store"
	"github.com/olegiv/ocms-headless/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "hcms - headless content management API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HCMS_DB_DRIVER         Database driver: sqlite|mysql|postgres (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HCMS_DB_DSN            Data source name (default: ./data/hcms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HCMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HCMS_CORS_ORIGINS      Comma separated allowed origins (default: http://localhost:3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HCMS_REDIS_URL         Redis URL for shared sessions (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HCMS_ADMIN_USERNAME    Admin seeded on an empty database (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HCMS_ADMIN_PASSWORD    Password for the seeded admin\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Printf("hcms %s\n", info.Long())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)

	if cfg.DBDriver == store.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("initializing database", "driver", cfg.DBDriver)
	db, dialect, err := store.Open(store.DefaultDBConfig(cfg.DBDriver, cfg.DBDSN))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db, dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users := store.NewUserStore(db, dialect)
	if cfg.SeedAdmin() {
		if err := store.SeedAdmin(ctx, users, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}

	var rdb redis.UniversalClient
	if cfg.UseRedisSessions() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		rdb = client
	}
	sessions := session.New(session.SelectStore(db, dialect.Name(), rdb, cfg.RedisPrefix), session.Options{
		Lifetime: cfg.SessionLifetime,
		Secure:   !cfg.IsDevelopment(),
	})
	slog.Info("session manager initialized", "redis", rdb != nil)

	var contentOpts []content.Option
	if cfg.SanitizeHTML {
		contentOpts = append(contentOpts, content.WithSanitizer(bluemonday.UGCPolicy()))
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	router := handler.NewRouter(cfg, handler.Deps{
		DB:        db,
		Users:     users,
		Content:   content.NewService(db, dialect, contentOpts...),
		Sessions:  sessions,
		Login:     loginProtection,
		Passwords: auth.DefaultParams,
		Version:   info,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
