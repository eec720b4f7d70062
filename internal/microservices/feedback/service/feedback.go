package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/metrics"
	"cargo-rewards/internal/microservices/feedback/repository"
	"cargo-rewards/internal/scoring"
)

type FeedbackServiceInterface interface {
	Handle(ctx context.Context, body []byte) error
}

type FeedbackService struct {
	db     repository.FeedbackRepositoryInterface
	points decimal.Decimal
	logg   zerolog.Logger
}

func NewFeedbackService(db repository.FeedbackRepositoryInterface, points decimal.Decimal, logg zerolog.Logger) FeedbackServiceInterface {
	return &FeedbackService{db: db, points: points, logg: logg}
}

func (s *FeedbackService) Handle(ctx context.Context, body []byte) error {
	msg, err := domain.DecodeEvent[domain.FeedbackPayload](body)
	if err != nil {
		return err
	}

	orderID, err := s.db.OrderIDByCode(ctx, msg.OrderCode)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: order %q", domain.ErrUnknownIdentity, msg.OrderCode)
	}
	if err != nil {
		return err
	}
	courierID, err := s.db.WorkerIDByChatID(ctx, msg.CourierChatID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: courier with chat_id=%d", domain.ErrUnknownIdentity, msg.CourierChatID)
	}
	if err != nil {
		return err
	}

	granted, err := s.db.SaveFeedbackTx(ctx, domain.ConsumerSentiment{
		OrderID:   orderID,
		CourierID: &courierID,
		Sentiment: MapRating(msg.Rating),
		Comment:   msg.Comment,
	}, scoring.Grant{
		WorkerID: courierID,
		OrderID:  orderID,
		Points:   s.points,
		Source:   scoring.SourceFeedback,
	})
	if err != nil {
		return err
	}
	if !granted {
		// повторный отзыв по заказу: оценка перезаписана, балл не дублируем
		s.logg.Debug().Str("order", msg.OrderCode).Msg("feedback_score_already_granted")
		return nil
	}
	metrics.ScoresGranted.WithLabelValues(scoring.SourceFeedback).Inc()
	s.logg.Info().
		Str("order", msg.OrderCode).
		Int64("courier", courierID).
		Str("rating", msg.Rating).
		Msg("feedback_recorded")
	return nil
}

// MapRating переводит текстовую оценку бота в значение модели;
// незнакомый текст сохраняем как есть.
func MapRating(rating string) domain.Sentiment {
	switch rating {
	case "Отлично":
		return domain.SentimentExcellent
	case "Не отлично":
		return domain.SentimentNotExcellent
	default:
		return domain.Sentiment(rating)
	}
}
