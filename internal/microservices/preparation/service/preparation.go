package service

import (
	"context"

	"github.com/rs/zerolog"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/microservices/preparation/repository"
)

type PreparationServiceInterface interface {
	Handle(ctx context.Context, body []byte) error
}

// PreparationService пишет дискретные события подготовки заказа; баллы за
// них раздаёт процессор заказов после COMPLETED.
type PreparationService struct {
	db   repository.PreparationRepositoryInterface
	logg zerolog.Logger
}

func NewPreparationService(db repository.PreparationRepositoryInterface, logg zerolog.Logger) PreparationServiceInterface {
	return &PreparationService{db: db, logg: logg}
}

func (s *PreparationService) Handle(ctx context.Context, body []byte) error {
	msg, err := domain.DecodeEvent[domain.PreparationPayload](body)
	if err != nil {
		return err
	}

	executorID, err := s.db.WorkerIDByChatID(ctx, msg.UserID)
	if err != nil {
		return err
	}

	created, err := s.db.SavePreparation(ctx, domain.OrderPreparation{
		OrderCode:       msg.QRData,
		PreparationType: domain.PreparationType(msg.Operation),
		SourceChatID:    msg.UserID,
		ExecutorID:      executorID,
	})
	if err != nil {
		return err
	}
	if !created {
		s.logg.Debug().
			Str("order", msg.QRData).
			Str("kind", msg.Operation).
			Msg("duplicate_preparation_ignored")
		return nil
	}
	s.logg.Info().
		Str("order", msg.QRData).
		Str("kind", msg.Operation).
		Int64("chat_id", msg.UserID).
		Bool("executor_known", executorID != nil).
		Msg("preparation_recorded")
	return nil
}
