package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"immersionfacile/internal/app"
	"immersionfacile/internal/platform/config"
	"immersionfacile/internal/platform/logger"
)

// main wires high-level dependencies and runs the HTTP server, the event
// crawler and the assessment cron until SIGINT or SIGTERM.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close resources", "error", err)
		}
	}()

	log.Info("starting immersion-facile",
		"addr", cfg.Server.Addr,
		"repositories", cfg.Repositories,
		"email_gateway", cfg.Email.Gateway,
	)
	return a.Run(ctx)
}
