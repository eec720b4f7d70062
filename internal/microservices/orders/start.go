package orders

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"cargo-rewards/internal/config"
	"cargo-rewards/internal/connections/rabbitmq"
	"cargo-rewards/internal/consumer"
	"cargo-rewards/internal/microservices/orders/repository"
	"cargo-rewards/internal/microservices/orders/service"
	"cargo-rewards/internal/scoring"
)

func Run(ctx context.Context, db *sql.DB, rmq *rabbitmq.Client, cfg *config.Config, logg zerolog.Logger) error {
	// исходящая очередь объявляется заранее: первый COMPLETED может прийти
	// раньше, чем поднимется потребитель уведомлений
	if err := rmq.DeclareQueue(cfg.Queues.Notifications); err != nil {
		return err
	}

	repo := repository.NewOrdersRepository(db, scoring.NewRepository(db))
	svc := service.NewOrdersService(repo, rmq, cfg.Queues.Notifications, cfg.Rewards, logg)
	runner := consumer.New(rmq, cfg.Queues.Orders, "order-consumer", svc.Handle, logg)
	return runner.Run(ctx)
}
