package feedback

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"cargo-rewards/internal/config"
	"cargo-rewards/internal/connections/rabbitmq"
	"cargo-rewards/internal/consumer"
	"cargo-rewards/internal/microservices/feedback/repository"
	"cargo-rewards/internal/microservices/feedback/service"
	"cargo-rewards/internal/scoring"
)

func Run(ctx context.Context, db *sql.DB, rmq *rabbitmq.Client, cfg *config.Config, logg zerolog.Logger) error {
	repo := repository.NewFeedbackRepository(db, scoring.NewRepository(db))
	svc := service.NewFeedbackService(repo, cfg.Rewards.FeedbackPoints, logg)
	runner := consumer.New(rmq, cfg.Queues.Feedback, "feedback-consumer", svc.Handle, logg)
	return runner.Run(ctx)
}
