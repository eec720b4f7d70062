package scoring

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"cargo-rewards/internal/domain"
)

// Источник начисления. Уникальность courier_scores действует в разрезе
// (order, worker, source): один и тот же исходный ивент начисляет баллы
// не больше одного раза, но разные источники по одному заказу не мешают
// друг другу.
const (
	SourceCompleted = "completed"
	SourceFeedback  = "feedback"
	SourceProof     = "proof"
)

func PreparationSource(t domain.PreparationType) string {
	return "prep_" + string(t)
}

type Grant struct {
	WorkerID int64
	OrderID  int64
	Points   decimal.Decimal
	Source   string
}

// Execer покрывает и *sql.DB, и *sql.Tx: начисление обычно идёт внутри
// транзакции процессора, вместе с его основной сущностью.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type RepositoryInterface interface {
	Grant(ctx context.Context, g Grant) (bool, error)
	GrantTx(ctx context.Context, tx Execer, g Grant) (bool, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) Grant(ctx context.Context, g Grant) (bool, error) {
	return r.GrantTx(ctx, r.db, g)
}

// GrantTx вставляет запись о начислении. Возвращает false, если начисление
// с таким ключом уже существует — это штатный повтор доставки, не ошибка.
func (r *Repository) GrantTx(ctx context.Context, tx Execer, g Grant) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO courier_scores (worker_id, order_id, points, source, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (order_id, worker_id, source) DO NOTHING
	`, g.WorkerID, g.OrderID, g.Points, g.Source)
	if err != nil {
		return false, fmt.Errorf("insert courier score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
