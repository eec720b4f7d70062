package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/scoring"
)

type OrdersRepositoryInterface interface {
	// UpsertSnapshotTx сохраняет снимок заказа (last write wins), его позиции
	// и историю; возвращает заказ и COMPLETED-акторов, привязанных к сотрудникам.
	UpsertSnapshotTx(ctx context.Context, snap domain.OrderSnapshotPayload, raw []byte) (domain.Order, []domain.Worker, error)
	// CompleteOrderTx атомарно собирает исполнителей подготовки (уникальные
	// по виду работы, в порядке первого появления), строит начисления через
	// build и ставит маркер completion_granted_at — всё под блокировкой
	// строки заказа. Пустой результат без ошибки — заказ уже оплачен баллами.
	CompleteOrderTx(ctx context.Context, orderID int64, orderCode string, build GrantsFunc) ([]scoring.Grant, error)
}

// GrantsFunc строит список начислений по исполнителям подготовки,
// увиденным внутри транзакции завершения.
type GrantsFunc func(execs map[domain.PreparationType][]int64) []scoring.Grant

type OrdersRepository struct {
	db     *sql.DB
	scores scoring.RepositoryInterface
}

func NewOrdersRepository(db *sql.DB, scores scoring.RepositoryInterface) OrdersRepositoryInterface {
	return &OrdersRepository{db: db, scores: scores}
}

func (r *OrdersRepository) UpsertSnapshotTx(ctx context.Context, snap domain.OrderSnapshotPayload, raw []byte) (domain.Order, []domain.Worker, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Денормализованные поля заказа всегда перезаписываются последним
	// сообщением; completion_granted_at апдейт не трогает.
	var order domain.Order
	order.OrderCode = snap.OrderCode
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_code, customer_firstname, customer_lastname, phone_number,
		                    total_price, order_status, raw_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (order_code) DO UPDATE SET
			customer_firstname = EXCLUDED.customer_firstname,
			customer_lastname  = EXCLUDED.customer_lastname,
			phone_number       = EXCLUDED.phone_number,
			total_price        = EXCLUDED.total_price,
			order_status       = EXCLUDED.order_status,
			raw_payload        = EXCLUDED.raw_payload,
			updated_at         = now()
		RETURNING id, completion_granted_at
	`, snap.OrderCode, snap.Customer.Firstname, snap.Customer.Lastname, snap.Customer.PhoneNumber,
		snap.TotalPrice, snap.OrderStatus, raw).Scan(&order.ID, &order.CompletionGrantedAt)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("upsert order: %w", err)
	}
	order.CustomerFirstname = snap.Customer.Firstname
	order.CustomerLastname = snap.Customer.Lastname
	order.PhoneNumber = snap.Customer.PhoneNumber

	for _, e := range snap.Entries {
		rawEntry, _ := json.Marshal(e)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_entries (order_id, entry_id, name, quantity, weight, base_price, total_price,
			                           master_product_code, master_product_name,
			                           merchant_product_sku, merchant_product_name,
			                           unit_code, unit_display_name, unit_type, raw_entry)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (order_id, entry_id) DO UPDATE SET
				name = EXCLUDED.name, quantity = EXCLUDED.quantity, weight = EXCLUDED.weight,
				base_price = EXCLUDED.base_price, total_price = EXCLUDED.total_price,
				master_product_code = EXCLUDED.master_product_code,
				master_product_name = EXCLUDED.master_product_name,
				merchant_product_sku = EXCLUDED.merchant_product_sku,
				merchant_product_name = EXCLUDED.merchant_product_name,
				unit_code = EXCLUDED.unit_code, unit_display_name = EXCLUDED.unit_display_name,
				unit_type = EXCLUDED.unit_type, raw_entry = EXCLUDED.raw_entry
		`, order.ID, e.EntryID, e.Name, e.Quantity, e.Weight, e.BasePrice, e.TotalPrice,
			e.MasterProductCode, e.MasterProductName,
			e.MerchantProductSKU, e.MerchantProductName,
			e.Unit.Code, e.Unit.DisplayName, e.Unit.Type, rawEntry); err != nil {
			return domain.Order{}, nil, fmt.Errorf("upsert entry %v: %w", e.EntryID, err)
		}
	}

	var candidates []domain.Worker
	for _, h := range snap.HistoryEntries {
		if h.CreateDate == nil {
			continue
		}
		createDate := time.UnixMilli(*h.CreateDate).UTC()

		var actor *domain.Worker
		if h.UserType == merchantUserType {
			w, err := r.resolveMerchantWorker(ctx, tx, h)
			if err != nil {
				return domain.Order{}, nil, err
			}
			actor = w
		}

		rawItem, _ := json.Marshal(h)
		var processedBy *int64
		if actor != nil {
			processedBy = &actor.ID
		}
		// Ключ идемпотентности истории — (заказ, время, действие).
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_history (order_id, create_date, action, user_type, user_name,
			                           user_email, user_phone, description, raw_data, processed_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (order_id, create_date, action) DO UPDATE SET
				user_type = EXCLUDED.user_type, user_name = EXCLUDED.user_name,
				user_email = EXCLUDED.user_email, user_phone = EXCLUDED.user_phone,
				description = EXCLUDED.description, raw_data = EXCLUDED.raw_data,
				processed_by = COALESCE(EXCLUDED.processed_by, order_history.processed_by)
		`, order.ID, createDate, h.Action, h.UserType, h.UserName,
			h.UserEmail, h.UserPhone, h.Description, rawItem, processedBy); err != nil {
			return domain.Order{}, nil, fmt.Errorf("upsert history: %w", err)
		}

		if h.Action == actionCompleted && actor != nil {
			candidates = append(candidates, *actor)
		}
	}

	return order, candidates, tx.Commit()
}

const (
	merchantUserType = "MERCHANT_USER"
	actionCompleted  = "COMPLETED"
)

// resolveMerchantWorker ищет сотрудника по email, затем по телефону; если не
// нашли — создаёт placeholder-запись для ручной проверки.
func (r *OrdersRepository) resolveMerchantWorker(ctx context.Context, tx *sql.Tx, h domain.HistoryItemPayload) (*domain.Worker, error) {
	const selectWorker = `
		SELECT id, username, COALESCE(email,''), COALESCE(phone_number,''), chat_id, placeholder
		FROM workers WHERE %s = $1 LIMIT 1`

	var w domain.Worker
	scan := func(row *sql.Row) error {
		return row.Scan(&w.ID, &w.Username, &w.Email, &w.PhoneNumber, &w.ChatID, &w.Placeholder)
	}

	if h.UserEmail != "" {
		err := scan(tx.QueryRowContext(ctx, fmt.Sprintf(selectWorker, "email"), h.UserEmail))
		if err == nil {
			return &w, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("select worker by email: %w", err)
		}
	}
	if h.UserPhone != "" {
		err := scan(tx.QueryRowContext(ctx, fmt.Sprintf(selectWorker, "phone_number"), h.UserPhone))
		if err == nil {
			return &w, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("select worker by phone: %w", err)
		}
	}

	// get-or-create под гонку: конфликт по username возвращает существующую строку
	username := placeholderUsername(h.UserName)
	err := tx.QueryRowContext(ctx, `
		INSERT INTO workers (username, email, phone_number, placeholder)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username, h.UserEmail, h.UserPhone).Scan(&w.ID)
	if err != nil {
		return nil, fmt.Errorf("create placeholder worker: %w", err)
	}
	w.Username = username
	w.Email = h.UserEmail
	w.PhoneNumber = h.UserPhone
	w.Placeholder = true
	return &w, nil
}

func placeholderUsername(name string) string {
	username := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if username == "" {
		username = "unknown_user"
	}
	if len(username) > 30 {
		username = username[:30]
	}
	return username
}

// preparationExecutors читается в той же транзакции, что и начисление:
// запись подготовки, закоммиченная до маркера, гарантированно попадает
// в раздачу.
func (r *OrdersRepository) preparationExecutors(ctx context.Context, tx *sql.Tx, orderCode string) (map[domain.PreparationType][]int64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT preparation_type, executor_id, min(id) AS first_seen
		FROM order_preparations
		WHERE order_code = $1 AND executor_id IS NOT NULL
		GROUP BY preparation_type, executor_id
		ORDER BY first_seen
	`, orderCode)
	if err != nil {
		return nil, fmt.Errorf("select preparations: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.PreparationType][]int64)
	for rows.Next() {
		var (
			kind     domain.PreparationType
			executor int64
			firstID  int64
		)
		if err := rows.Scan(&kind, &executor, &firstID); err != nil {
			return nil, err
		}
		out[kind] = append(out[kind], executor)
	}
	return out, rows.Err()
}

func (r *OrdersRepository) CompleteOrderTx(ctx context.Context, orderID int64, orderCode string, build GrantsFunc) ([]scoring.Grant, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Маркер делает проверку идемпотентности O(1) и закрывает гонку между
	// повторной доставкой и конкурирующими консюмерами.
	var grantedAt *time.Time
	if err := tx.QueryRowContext(ctx, `
		SELECT completion_granted_at FROM orders WHERE id = $1 FOR UPDATE
	`, orderID).Scan(&grantedAt); err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	if grantedAt != nil {
		return nil, tx.Commit()
	}

	execs, err := r.preparationExecutors(ctx, tx, orderCode)
	if err != nil {
		return nil, err
	}

	grants := build(execs)
	for _, g := range grants {
		if _, err := r.scores.GrantTx(ctx, tx, g); err != nil {
			return nil, err
		}
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET completion_granted_at = now(), updated_at = now() WHERE id = $1
	`, orderID); err != nil {
		return nil, fmt.Errorf("mark completion: %w", err)
	}
	return grants, tx.Commit()
}
