package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/scoring"
)

type ScanResult struct {
	WorkUnitID   int64
	TotalScore   decimal.Decimal
	Share        decimal.Decimal // доля нового участника
	Participants int
	Duplicate    bool
}

type ScanRepositoryInterface interface {
	WorkerByChatID(ctx context.Context, chatID int64) (domain.Worker, error)
	ApplyScanTx(ctx context.Context, worker domain.Worker, qr domain.ScanData, workType domain.WorkType) (ScanResult, error)
}

type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) ScanRepositoryInterface {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) WorkerByChatID(ctx context.Context, chatID int64) (domain.Worker, error) {
	var w domain.Worker
	err := r.db.QueryRowContext(ctx, `
		SELECT w.id, w.username, COALESCE(w.email,''), COALESCE(w.phone_number,''),
		       w.chat_id, w.region_id, COALESCE(reg.name,''), w.placeholder
		FROM workers w
		LEFT JOIN regions reg ON reg.id = w.region_id
		WHERE w.chat_id = $1
	`, chatID).Scan(&w.ID, &w.Username, &w.Email, &w.PhoneNumber, &w.ChatID, &w.RegionID, &w.RegionName, &w.Placeholder)
	return w, err
}

// ApplyScanTx выполняет весь эффект одного скана в одной транзакции:
// груз и работа создаются при первом упоминании, участие — уникально по
// (работа, сотрудник), доли пересчитываются под блокировкой строки работы.
func (r *ScanRepository) ApplyScanTx(ctx context.Context, worker domain.Worker, qr domain.ScanData, workType domain.WorkType) (ScanResult, error) {
	if worker.RegionID == nil {
		return ScanResult{}, fmt.Errorf("%w: worker %q has no region", domain.ErrUnroutableEvent, worker.Username)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ScanResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// Груз: создаётся первым событием, последующие ничего не перезаписывают.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cargoes (external_id, mass, volume, region_from_id, region_to_id)
		VALUES ($1, $2, $3,
			(SELECT id FROM regions WHERE name = $4),
			(SELECT id FROM regions WHERE name = $5))
		ON CONFLICT (external_id) DO NOTHING
	`, qr.ID, qr.Mass, qr.Volume, qr.CityFrom, qr.CityTo); err != nil {
		return ScanResult{}, fmt.Errorf("insert cargo: %w", err)
	}
	var cargoID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM cargoes WHERE external_id = $1`, qr.ID).Scan(&cargoID); err != nil {
		return ScanResult{}, fmt.Errorf("select cargo: %w", err)
	}

	// Тариф региона, где выполняется работа. Отсутствие тарифа — дыра в
	// конфигурации: чинится руками, автоматический повтор бесполезен.
	var tariff domain.Tariff
	err = tx.QueryRowContext(ctx, `
		SELECT region_id, points_per_mass, points_per_volume
		FROM tariffs WHERE region_id = $1
	`, *worker.RegionID).Scan(&tariff.RegionID, &tariff.PointsPerMass, &tariff.PointsPerVolume)
	if errors.Is(err, sql.ErrNoRows) {
		return ScanResult{}, fmt.Errorf("%w: region %q", domain.ErrMissingTariff, worker.RegionName)
	}
	if err != nil {
		return ScanResult{}, fmt.Errorf("select tariff: %w", err)
	}

	// Работа с грузом: total_score фиксируется при создании и не меняется,
	// сколько бы участников потом ни присоединилось.
	total := scoring.WorkUnitScore(tariff, qr.Mass, qr.Volume)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO work_units (cargo_id, region_id, work_type, mass_units, volume_units, total_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cargo_id, region_id, work_type) DO NOTHING
	`, cargoID, *worker.RegionID, workType, qr.Mass, qr.Volume, total); err != nil {
		return ScanResult{}, fmt.Errorf("insert work unit: %w", err)
	}

	// Блокировка строки работы сериализует конкурирующих участников:
	// два одновременных скана не пересчитают доли по устаревшему счётчику.
	res := ScanResult{}
	if err := tx.QueryRowContext(ctx, `
		SELECT id, total_score FROM work_units
		WHERE cargo_id = $1 AND region_id = $2 AND work_type = $3
		FOR UPDATE
	`, cargoID, *worker.RegionID, workType).Scan(&res.WorkUnitID, &res.TotalScore); err != nil {
		return ScanResult{}, fmt.Errorf("lock work unit: %w", err)
	}

	ins, err := tx.ExecContext(ctx, `
		INSERT INTO work_distributions (work_unit_id, worker_id, score_share)
		VALUES ($1, $2, 0)
		ON CONFLICT (work_unit_id, worker_id) DO NOTHING
	`, res.WorkUnitID, worker.ID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("insert distribution: %w", err)
	}
	affected, err := ins.RowsAffected()
	if err != nil {
		return ScanResult{}, err
	}
	if affected == 0 {
		// сотрудник уже учтён — повтор доставки, состояние не трогаем
		res.Duplicate = true
		return res, tx.Commit()
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM work_distributions WHERE work_unit_id = $1 ORDER BY id
	`, res.WorkUnitID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("list distributions: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return ScanResult{}, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ScanResult{}, err
	}

	shares := scoring.SplitEvenly(res.TotalScore, len(ids))
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE work_distributions SET score_share = $1 WHERE id = $2
		`, shares[i], id); err != nil {
			return ScanResult{}, fmt.Errorf("update share: %w", err)
		}
	}

	res.Participants = len(ids)
	res.Share = shares[len(shares)-1] // только что вставленная строка — последняя по id
	return res, tx.Commit()
}
