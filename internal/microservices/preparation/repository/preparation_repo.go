package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cargo-rewards/internal/domain"
)

type PreparationRepositoryInterface interface {
	// WorkerIDByChatID возвращает nil, если сотрудник не найден: запись
	// подготовки сохраняется и без исполнителя.
	WorkerIDByChatID(ctx context.Context, chatID int64) (*int64, error)
	// SavePreparation — false, если такой кортеж уже записан (повтор доставки).
	SavePreparation(ctx context.Context, p domain.OrderPreparation) (bool, error)
}

type PreparationRepository struct {
	db *sql.DB
}

func NewPreparationRepository(db *sql.DB) PreparationRepositoryInterface {
	return &PreparationRepository{db: db}
}

func (r *PreparationRepository) WorkerIDByChatID(ctx context.Context, chatID int64) (*int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM workers WHERE chat_id = $1`, chatID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *PreparationRepository) SavePreparation(ctx context.Context, p domain.OrderPreparation) (bool, error) {
	// полностью одинаковое сообщение из очереди считаем дубликатом
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO order_preparations (order_code, preparation_type, source_chat_id, executor_id, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (order_code, preparation_type, source_chat_id) DO NOTHING
	`, p.OrderCode, p.PreparationType, p.SourceChatID, p.ExecutorID)
	if err != nil {
		return false, fmt.Errorf("insert preparation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
