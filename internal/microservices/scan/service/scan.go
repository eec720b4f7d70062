package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/microservices/scan/repository"
)

// Сканы с операцией work — единственные, которые обрабатывает этот консюмер.
const operationWork = "work"

type ScanServiceInterface interface {
	Handle(ctx context.Context, body []byte) error
}

type ScanService struct {
	db   repository.ScanRepositoryInterface
	logg zerolog.Logger
}

func NewScanService(db repository.ScanRepositoryInterface, logg zerolog.Logger) ScanServiceInterface {
	return &ScanService{db: db, logg: logg}
}

func (s *ScanService) Handle(ctx context.Context, body []byte) error {
	msg, err := domain.DecodeEvent[domain.ScanPayload](body)
	if err != nil {
		return err
	}
	if msg.Operation != operationWork {
		return fmt.Errorf("%w: unexpected operation %q", domain.ErrMalformedEvent, msg.Operation)
	}

	worker, err := s.db.WorkerByChatID(ctx, msg.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		// данные чинит вышестоящая система, повтор доставки не поможет
		return fmt.Errorf("%w: worker with chat_id=%d", domain.ErrUnknownIdentity, msg.UserID)
	}
	if err != nil {
		return err
	}

	workType, err := ResolveWorkType(worker, msg.QRData)
	if err != nil {
		return err
	}

	res, err := s.db.ApplyScanTx(ctx, worker, msg.QRData, workType)
	if err != nil {
		return err
	}
	if res.Duplicate {
		s.logg.Debug().
			Int64("cargo", msg.QRData.ID).
			Int64("worker", worker.ID).
			Msg("duplicate_scan_ignored")
		return nil
	}
	s.logg.Info().
		Int64("cargo", msg.QRData.ID).
		Int64("worker", worker.ID).
		Str("work_type", string(workType)).
		Int("participants", res.Participants).
		Str("total_score", res.TotalScore.String()).
		Str("share", res.Share.String()).
		Msg("scan_recorded")
	return nil
}

// ResolveWorkType определяет тип работы по маршруту из QR и региону
// сотрудника: совпадение с city_from — погрузка, с city_to — разгрузка.
// Сотрудник вне маршрута — нарушение бизнес-правила, событие не обрабатываем.
func ResolveWorkType(worker domain.Worker, qr domain.ScanData) (domain.WorkType, error) {
	switch {
	case qr.CityFrom != "" && qr.CityFrom == worker.RegionName:
		return domain.WorkTypeLoad, nil
	case qr.CityTo != "" && qr.CityTo == worker.RegionName:
		return domain.WorkTypeUnload, nil
	default:
		return "", fmt.Errorf("%w: worker %q from %q is not on route %s → %s",
			domain.ErrUnroutableEvent, worker.Username, worker.RegionName,
			orDash(qr.CityFrom), orDash(qr.CityTo))
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
