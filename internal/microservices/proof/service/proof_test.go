package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/scoring"
)

type fakeProofRepo struct {
	orderID    int64
	orderErr   error
	courierID  int64
	courierErr error
	granted    bool

	savedProof domain.DeliveryProof
	savedGrant scoring.Grant
	saved      bool
}

func (f *fakeProofRepo) OrderIDByCode(_ context.Context, _ string) (int64, error) {
	return f.orderID, f.orderErr
}

func (f *fakeProofRepo) WorkerIDByChatID(_ context.Context, _ int64) (int64, error) {
	return f.courierID, f.courierErr
}

func (f *fakeProofRepo) SaveProofTx(_ context.Context, proof domain.DeliveryProof, grant scoring.Grant) (bool, error) {
	f.saved = true
	f.savedProof = proof
	f.savedGrant = grant
	return f.granted, nil
}

func uploadInput() UploadInput {
	return UploadInput{
		OrderCode:   "ORD-1",
		ChatID:      100,
		FileName:    "proof.mp4",
		ContentType: "video/mp4",
		Size:        4,
		File:        strings.NewReader("data"),
	}
}

func TestProofUploadStoresFileAndGrants(t *testing.T) {
	dir := t.TempDir()
	repo := &fakeProofRepo{orderID: 10, courierID: 7, granted: true}
	svc := NewProofService(repo, dir, decimal.RequireFromString("1"), zerolog.Nop())

	res, err := svc.Upload(context.Background(), uploadInput())
	require.NoError(t, err)
	require.True(t, res.Granted)
	require.True(t, strings.HasSuffix(res.StoredName, ".mp4"))

	data, err := os.ReadFile(filepath.Join(dir, res.StoredName))
	require.NoError(t, err)
	require.Equal(t, "data", string(data))

	require.Equal(t, scoring.SourceProof, repo.savedGrant.Source)
	require.Equal(t, int64(7), repo.savedGrant.WorkerID)
	require.Equal(t, int64(10), repo.savedProof.OrderID)
}

func TestProofUploadDuplicateRemovesFile(t *testing.T) {
	dir := t.TempDir()
	repo := &fakeProofRepo{orderID: 10, courierID: 7, granted: false}
	svc := NewProofService(repo, dir, decimal.RequireFromString("1"), zerolog.Nop())

	res, err := svc.Upload(context.Background(), uploadInput())
	require.NoError(t, err)
	require.False(t, res.Granted)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestProofUploadRejectsExtension(t *testing.T) {
	repo := &fakeProofRepo{orderID: 10, courierID: 7}
	svc := NewProofService(repo, t.TempDir(), decimal.RequireFromString("1"), zerolog.Nop())

	in := uploadInput()
	in.FileName = "proof.exe"
	_, err := svc.Upload(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrMalformedEvent)
	require.False(t, repo.saved)
}

func TestProofUploadUnknownOrder(t *testing.T) {
	repo := &fakeProofRepo{orderErr: sql.ErrNoRows}
	svc := NewProofService(repo, t.TempDir(), decimal.RequireFromString("1"), zerolog.Nop())

	_, err := svc.Upload(context.Background(), uploadInput())
	require.ErrorIs(t, err, domain.ErrUnknownIdentity)
	require.False(t, repo.saved)
}

func TestProofUploadUnknownCourier(t *testing.T) {
	repo := &fakeProofRepo{orderID: 10, courierErr: sql.ErrNoRows}
	svc := NewProofService(repo, t.TempDir(), decimal.RequireFromString("1"), zerolog.Nop())

	_, err := svc.Upload(context.Background(), uploadInput())
	require.ErrorIs(t, err, domain.ErrUnknownIdentity)
}
