package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/app"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/config"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/router"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/database"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults to $KIOSK_CONFIG)")
	flag.Parse()

	// best-effort: a missing .env just means real env / defaults
	_ = godotenv.Load()

	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service-kiosk", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)

	db, err := database.Open(cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	c, err := app.New(cfg, db)
	if err != nil {
		sugar.Fatalf("wire services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.EnsureSchema(ctx); err != nil {
		sugar.Fatalf("ensure schema: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.RegisterRoutes(sugar, c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweeper := session.NewSweeper(c.Sessions, cfg.Session.SweepInterval, c.Clock, sugar, c.Metrics.SessionsPurged)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		sugar.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Warnf("http server shutdown failed: %v", err)
		}
		return nil
	})

	sugar.Info("service is running; press Ctrl+C to stop")
	if err := g.Wait(); err != nil {
		sugar.Errorw("service stopped with error", "err", err)
		lg.Sync()
		os.Exit(1)
	}
	sugar.Info("goodbye")
}
