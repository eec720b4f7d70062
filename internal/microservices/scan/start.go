package scan

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"cargo-rewards/internal/config"
	"cargo-rewards/internal/connections/rabbitmq"
	"cargo-rewards/internal/consumer"
	"cargo-rewards/internal/microservices/scan/repository"
	"cargo-rewards/internal/microservices/scan/service"
)

func Run(ctx context.Context, db *sql.DB, rmq *rabbitmq.Client, cfg *config.Config, logg zerolog.Logger) error {
	repo := repository.NewScanRepository(db)
	svc := service.NewScanService(repo, logg)
	runner := consumer.New(rmq, cfg.Queues.Scan, "scan-consumer", svc.Handle, logg)
	return runner.Run(ctx)
}
