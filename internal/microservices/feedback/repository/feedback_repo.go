package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/scoring"
)

type FeedbackRepositoryInterface interface {
	OrderIDByCode(ctx context.Context, code string) (int64, error)
	WorkerIDByChatID(ctx context.Context, chatID int64) (int64, error)
	// SaveFeedbackTx — upsert оценки (одна на заказ, побеждает последняя) и
	// начисление курьеру в одной транзакции; false — балл уже начислялся.
	SaveFeedbackTx(ctx context.Context, sentiment domain.ConsumerSentiment, grant scoring.Grant) (bool, error)
}

type FeedbackRepository struct {
	db     *sql.DB
	scores scoring.RepositoryInterface
}

func NewFeedbackRepository(db *sql.DB, scores scoring.RepositoryInterface) FeedbackRepositoryInterface {
	return &FeedbackRepository{db: db, scores: scores}
}

func (r *FeedbackRepository) OrderIDByCode(ctx context.Context, code string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM orders WHERE order_code = $1`, code).Scan(&id)
	return id, err
}

func (r *FeedbackRepository) WorkerIDByChatID(ctx context.Context, chatID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM workers WHERE chat_id = $1`, chatID).Scan(&id)
	return id, err
}

func (r *FeedbackRepository) SaveFeedbackTx(ctx context.Context, sentiment domain.ConsumerSentiment, grant scoring.Grant) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO consumer_sentiments (order_id, courier_id, sentiment, comment, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (order_id) DO UPDATE SET
			courier_id = EXCLUDED.courier_id,
			sentiment  = EXCLUDED.sentiment,
			comment    = EXCLUDED.comment
	`, sentiment.OrderID, sentiment.CourierID, sentiment.Sentiment, sentiment.Comment); err != nil {
		return false, fmt.Errorf("upsert sentiment: %w", err)
	}

	granted, err := r.scores.GrantTx(ctx, tx, grant)
	if err != nil {
		return false, err
	}
	return granted, tx.Commit()
}
