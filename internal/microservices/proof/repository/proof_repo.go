package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/scoring"
)

type ProofRepositoryInterface interface {
	OrderIDByCode(ctx context.Context, code string) (int64, error)
	WorkerIDByChatID(ctx context.Context, chatID int64) (int64, error)
	// SaveProofTx — одно видео на заказ; балл начисляется только вместе с
	// первой вставкой, повторная загрузка — no-op.
	SaveProofTx(ctx context.Context, proof domain.DeliveryProof, grant scoring.Grant) (bool, error)
}

type ProofRepository struct {
	db     *sql.DB
	scores scoring.RepositoryInterface
}

func NewProofRepository(db *sql.DB, scores scoring.RepositoryInterface) ProofRepositoryInterface {
	return &ProofRepository{db: db, scores: scores}
}

func (r *ProofRepository) OrderIDByCode(ctx context.Context, code string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM orders WHERE order_code = $1`, code).Scan(&id)
	return id, err
}

func (r *ProofRepository) WorkerIDByChatID(ctx context.Context, chatID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM workers WHERE chat_id = $1`, chatID).Scan(&id)
	return id, err
}

func (r *ProofRepository) SaveProofTx(ctx context.Context, proof domain.DeliveryProof, grant scoring.Grant) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO delivery_proofs (order_id, courier_id, file_name, content_type, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (order_id) DO NOTHING
	`, proof.OrderID, proof.CourierID, proof.FileName, proof.ContentType, proof.SizeBytes)
	if err != nil {
		return false, fmt.Errorf("insert proof: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, tx.Commit()
	}

	if _, err := r.scores.GrantTx(ctx, tx, grant); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
