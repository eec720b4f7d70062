package preparation

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"cargo-rewards/internal/config"
	"cargo-rewards/internal/connections/rabbitmq"
	"cargo-rewards/internal/consumer"
	"cargo-rewards/internal/microservices/preparation/repository"
	"cargo-rewards/internal/microservices/preparation/service"
)

func Run(ctx context.Context, db *sql.DB, rmq *rabbitmq.Client, cfg *config.Config, logg zerolog.Logger) error {
	repo := repository.NewPreparationRepository(db)
	svc := service.NewPreparationService(repo, logg)
	runner := consumer.New(rmq, cfg.Queues.Preparation, "preparation-consumer", svc.Handle, logg)
	return runner.Run(ctx)
}
