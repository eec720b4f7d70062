package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"cargo-rewards/internal/config"
	"cargo-rewards/internal/connections/database"
	"cargo-rewards/internal/connections/rabbitmq"
	"cargo-rewards/internal/httpx"
	"cargo-rewards/internal/logger"
	"cargo-rewards/internal/metrics"
	"cargo-rewards/internal/microservices/feedback"
	"cargo-rewards/internal/microservices/orders"
	"cargo-rewards/internal/microservices/preparation"
	"cargo-rewards/internal/microservices/proof"
	"cargo-rewards/internal/microservices/scan"
)

const usage = "scan-consumer | order-consumer | preparation-consumer | feedback-consumer | proof-service"

func main() {
	mode := flag.String("mode", "", usage)
	flag.Parse()
	if *mode == "" {
		fmt.Fprintln(os.Stderr, "--mode is required: "+usage)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logg := logger.New(*mode, cfg.App.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *mode, cfg, logg); err != nil {
		logg.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
	logg.Info().Msg("stopped")
}

func run(ctx context.Context, mode string, cfg *config.Config, logg zerolog.Logger) (err error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	logg.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.Database).Msg("postgres_connected")

	if cfg.App.OpsPort > 0 {
		go runOps(ctx, cfg.App.OpsPort, logg)
	}

	if mode == "proof-service" {
		return proof.Run(ctx, db, cfg, logg)
	}

	rmq, err := rabbitmq.Dial(cfg.RabbitMQ, false)
	if err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}
	defer func() { err = multierr.Append(err, rmq.Close()) }()
	if err := rmq.Ping(); err != nil {
		return fmt.Errorf("rabbitmq ping: %w", err)
	}
	logg.Info().Str("host", cfg.RabbitMQ.Host).Msg("rabbitmq_connected")

	switch mode {
	case "scan-consumer":
		return scan.Run(ctx, db, rmq, cfg, logg)
	case "order-consumer":
		return orders.Run(ctx, db, rmq, cfg, logg)
	case "preparation-consumer":
		return preparation.Run(ctx, db, rmq, cfg, logg)
	case "feedback-consumer":
		return feedback.Run(ctx, db, rmq, cfg, logg)
	default:
		return fmt.Errorf("unknown mode %q, want one of: %s", mode, usage)
	}
}

// runOps поднимает служебный HTTP: liveness и метрики Prometheus.
func runOps(ctx context.Context, port int, logg zerolog.Logger) {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler())
	if err := httpx.New(fmt.Sprintf(":%d", port), r).Run(ctx); err != nil {
		logg.Error().Err(err).Msg("ops_server_failed")
	}
}
