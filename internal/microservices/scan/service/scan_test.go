package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/microservices/scan/repository"
)

type fakeScanRepo struct {
	worker    domain.Worker
	workerErr error
	result    repository.ScanResult
	applyErr  error

	appliedWorker domain.Worker
	appliedType   domain.WorkType
	applied       bool
}

func (f *fakeScanRepo) WorkerByChatID(_ context.Context, _ int64) (domain.Worker, error) {
	return f.worker, f.workerErr
}

func (f *fakeScanRepo) ApplyScanTx(_ context.Context, worker domain.Worker, _ domain.ScanData, wt domain.WorkType) (repository.ScanResult, error) {
	f.applied = true
	f.appliedWorker = worker
	f.appliedType = wt
	return f.result, f.applyErr
}

func almatyWorker() domain.Worker {
	region := int64(1)
	chat := int64(100)
	return domain.Worker{ID: 7, Username: "aset", ChatID: &chat, RegionID: &region, RegionName: "Алматы"}
}

func scanBody() []byte {
	return []byte(`{"operation":"work","userId":100,"qrData":{"id":55,"m":3,"v":2,"city_from":"Алматы","city_to":"Астана"}}`)
}

func TestScanHandleRecordsLoad(t *testing.T) {
	repo := &fakeScanRepo{
		worker: almatyWorker(),
		result: repository.ScanResult{
			TotalScore:   decimal.RequireFromString("9.00"),
			Share:        decimal.RequireFromString("9.00"),
			Participants: 1,
		},
	}
	svc := NewScanService(repo, zerolog.Nop())

	require.NoError(t, svc.Handle(context.Background(), scanBody()))
	require.True(t, repo.applied)
	require.Equal(t, domain.WorkTypeLoad, repo.appliedType)
	require.Equal(t, int64(7), repo.appliedWorker.ID)
}

func TestScanHandleUnknownWorkerDropped(t *testing.T) {
	repo := &fakeScanRepo{workerErr: sql.ErrNoRows}
	svc := NewScanService(repo, zerolog.Nop())

	err := svc.Handle(context.Background(), scanBody())
	require.ErrorIs(t, err, domain.ErrUnknownIdentity)
	require.True(t, domain.IsDrop(err))
	require.False(t, repo.applied)
}

func TestScanHandleWrongOperation(t *testing.T) {
	repo := &fakeScanRepo{worker: almatyWorker()}
	svc := NewScanService(repo, zerolog.Nop())

	body := []byte(`{"operation":"packing","userId":100,"qrData":{"id":55}}`)
	err := svc.Handle(context.Background(), body)
	require.ErrorIs(t, err, domain.ErrMalformedEvent)
	require.False(t, repo.applied)
}

func TestScanHandleMalformedJSON(t *testing.T) {
	svc := NewScanService(&fakeScanRepo{}, zerolog.Nop())
	err := svc.Handle(context.Background(), []byte(`{"operation":`))
	require.ErrorIs(t, err, domain.ErrMalformedEvent)
}

func TestScanHandleDuplicateIsSuccess(t *testing.T) {
	repo := &fakeScanRepo{
		worker: almatyWorker(),
		result: repository.ScanResult{Duplicate: true},
	}
	svc := NewScanService(repo, zerolog.Nop())
	require.NoError(t, svc.Handle(context.Background(), scanBody()))
}

func TestResolveWorkType(t *testing.T) {
	qr := domain.ScanData{ID: 1, CityFrom: "Алматы", CityTo: "Астана"}

	loader := domain.Worker{Username: "a", RegionName: "Алматы"}
	wt, err := ResolveWorkType(loader, qr)
	require.NoError(t, err)
	require.Equal(t, domain.WorkTypeLoad, wt)

	unloader := domain.Worker{Username: "b", RegionName: "Астана"}
	wt, err = ResolveWorkType(unloader, qr)
	require.NoError(t, err)
	require.Equal(t, domain.WorkTypeUnload, wt)

	stranger := domain.Worker{Username: "c", RegionName: "Шымкент"}
	_, err = ResolveWorkType(stranger, qr)
	require.ErrorIs(t, err, domain.ErrUnroutableEvent)
	require.True(t, domain.IsDrop(err))
	require.True(t, domain.IsLoud(err))
}

func TestResolveWorkTypeEmptyRegion(t *testing.T) {
	// сотрудник без региона не совпадает даже с пустым city_from
	worker := domain.Worker{Username: "d", RegionName: ""}
	_, err := ResolveWorkType(worker, domain.ScanData{ID: 1, CityFrom: "", CityTo: "Астана"})
	require.ErrorIs(t, err, domain.ErrUnroutableEvent)
}
