package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"course_gen_backend/bootstrap"
	"course_gen_backend/config"
	"course_gen_backend/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && os.Getenv("APP_ENV") != "prod" {
		log.Println("no .env file loaded:", err)
	}

	cfg := config.LoadConfig()
	logging.Init(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logging.Logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		logging.Logger.Error("fail bootstrap", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.HttpPort
		logging.Logger.Info("Server running", "addr", addr)
		if err := app.Fiber.Listen(addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return app.ForwardProgress(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
