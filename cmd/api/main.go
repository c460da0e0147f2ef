package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/admin"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/catalog"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/leaderboard"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ledger"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ratelimit"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/clock"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/config"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/utilities"
)

func main() {
	// loads .env too, so the logger and database settings below see it
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-arcade-go")

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Environment}); err != nil {
			sugar.Warnf("sentry init failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	dbCfg := database.ConfigFromEnv()
	db, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	sugar.Infow("database connected", "driver", dbCfg.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		sugar.Fatalf("ensure schema: %v", err)
	}

	clk := clock.New()
	sessions, err := session.NewService(session.Config{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.Issuer,
		TTL:    cfg.SessionTTL,
	}, clk)
	if err != nil {
		sugar.Fatalf("session service: %v", err)
	}

	accounts := account.NewService(db, sessions, sugar, account.Options{
		StartingTokens: cfg.StartingTokens,
		Hasher:         account.BcryptHasher{Cost: cfg.BcryptCost},
		Clock:          clk,
	})
	if err := accounts.EnsureOwner(ctx, cfg.OwnerUsername); err != nil {
		sugar.Warnf("owner bootstrap failed: %v", err)
	}

	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			sugar.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, sugar)
	} else {
		mem := ratelimit.NewMemoryLimiter()
		go func() {
			t := time.NewTicker(10 * time.Minute)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					mem.Cleanup(cfg.AuthRateWindow)
				}
			}
		}()
		limiter = mem
	}

	handler := router.RegisterRoutes(sugar, router.Deps{
		DB:             db,
		Sessions:       sessions,
		Accounts:       accounts,
		Ledger:         ledger.NewService(db, clk, sugar),
		Admin:          admin.NewService(db, clk, sugar),
		Leaderboard:    leaderboard.NewService(db, sugar),
		Catalog:        catalog.NewService(),
		AllowedOrigin:  cfg.AllowedOrigin,
		Limiter:        limiter,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", cfg.Addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
