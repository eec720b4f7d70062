package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"cargo-rewards/internal/domain"
)

type fakePreparationRepo struct {
	workerID *int64
	created  bool

	saved *domain.OrderPreparation
}

func (f *fakePreparationRepo) WorkerIDByChatID(_ context.Context, _ int64) (*int64, error) {
	return f.workerID, nil
}

func (f *fakePreparationRepo) SavePreparation(_ context.Context, p domain.OrderPreparation) (bool, error) {
	f.saved = &p
	return f.created, nil
}

func TestPreparationHandleRecordsPacking(t *testing.T) {
	executor := int64(5)
	repo := &fakePreparationRepo{workerID: &executor, created: true}
	svc := NewPreparationService(repo, zerolog.Nop())

	body := []byte(`{"operation":"packing","userId":100,"qrData":"ORD-1"}`)
	require.NoError(t, svc.Handle(context.Background(), body))
	require.NotNil(t, repo.saved)
	require.Equal(t, "ORD-1", repo.saved.OrderCode)
	require.Equal(t, domain.PreparationPacking, repo.saved.PreparationType)
	require.Equal(t, int64(100), repo.saved.SourceChatID)
	require.Equal(t, &executor, repo.saved.ExecutorID)
}

func TestPreparationHandleUnknownExecutorStillRecorded(t *testing.T) {
	repo := &fakePreparationRepo{created: true}
	svc := NewPreparationService(repo, zerolog.Nop())

	body := []byte(`{"operation":"shipment","userId":100,"qrData":"ORD-1"}`)
	require.NoError(t, svc.Handle(context.Background(), body))
	require.NotNil(t, repo.saved)
	require.Nil(t, repo.saved.ExecutorID)
}

func TestPreparationHandleDuplicateIsSuccess(t *testing.T) {
	repo := &fakePreparationRepo{created: false}
	svc := NewPreparationService(repo, zerolog.Nop())

	body := []byte(`{"operation":"packing","userId":100,"qrData":"ORD-1"}`)
	require.NoError(t, svc.Handle(context.Background(), body))
	require.NotNil(t, repo.saved)
}

func TestPreparationHandleRejectsForeignOperation(t *testing.T) {
	repo := &fakePreparationRepo{}
	svc := NewPreparationService(repo, zerolog.Nop())

	// work-сканы ходят в другую очередь; здесь это битое сообщение
	body := []byte(`{"operation":"work","userId":100,"qrData":"ORD-1"}`)
	err := svc.Handle(context.Background(), body)
	require.ErrorIs(t, err, domain.ErrMalformedEvent)
	require.Nil(t, repo.saved)
}
