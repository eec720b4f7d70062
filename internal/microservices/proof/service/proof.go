package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/metrics"
	"cargo-rewards/internal/microservices/proof/repository"
	"cargo-rewards/internal/scoring"
)

// Расширения, которые принимаем как видеодоказательство доставки.
var allowedExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

type UploadInput struct {
	OrderCode   string
	ChatID      int64
	FileName    string
	ContentType string
	Size        int64
	File        io.Reader
}

type UploadResult struct {
	StoredName string
	Granted    bool
}

type ProofServiceInterface interface {
	Upload(ctx context.Context, in UploadInput) (UploadResult, error)
}

type ProofService struct {
	db       repository.ProofRepositoryInterface
	mediaDir string
	points   decimal.Decimal
	logg     zerolog.Logger
}

func NewProofService(db repository.ProofRepositoryInterface, mediaDir string, points decimal.Decimal, logg zerolog.Logger) ProofServiceInterface {
	return &ProofService{db: db, mediaDir: mediaDir, points: points, logg: logg}
}

func (s *ProofService) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(in.FileName))
	if !allowedExtensions[ext] {
		return UploadResult{}, fmt.Errorf("%w: unsupported file type %q", domain.ErrMalformedEvent, ext)
	}

	orderID, err := s.db.OrderIDByCode(ctx, in.OrderCode)
	if errors.Is(err, sql.ErrNoRows) {
		return UploadResult{}, fmt.Errorf("%w: order %q", domain.ErrUnknownIdentity, in.OrderCode)
	}
	if err != nil {
		return UploadResult{}, err
	}
	courierID, err := s.db.WorkerIDByChatID(ctx, in.ChatID)
	if errors.Is(err, sql.ErrNoRows) {
		return UploadResult{}, fmt.Errorf("%w: courier with chat_id=%d", domain.ErrUnknownIdentity, in.ChatID)
	}
	if err != nil {
		return UploadResult{}, err
	}

	storedName := uuid.NewString() + ext
	if err := s.storeFile(storedName, in.File); err != nil {
		return UploadResult{}, err
	}

	granted, err := s.db.SaveProofTx(ctx, domain.DeliveryProof{
		OrderID:     orderID,
		CourierID:   &courierID,
		FileName:    storedName,
		ContentType: in.ContentType,
		SizeBytes:   in.Size,
	}, scoring.Grant{
		WorkerID: courierID,
		OrderID:  orderID,
		Points:   s.points,
		Source:   scoring.SourceProof,
	})
	if err != nil {
		_ = os.Remove(filepath.Join(s.mediaDir, storedName))
		return UploadResult{}, err
	}
	if !granted {
		// доказательство по заказу уже есть, файл не храним второй раз
		_ = os.Remove(filepath.Join(s.mediaDir, storedName))
		s.logg.Debug().Str("order", in.OrderCode).Msg("proof_already_uploaded")
		return UploadResult{Granted: false}, nil
	}

	metrics.ScoresGranted.WithLabelValues(scoring.SourceProof).Inc()
	s.logg.Info().
		Str("order", in.OrderCode).
		Int64("courier", courierID).
		Str("file", storedName).
		Msg("proof_uploaded")
	return UploadResult{StoredName: storedName, Granted: true}, nil
}

func (s *ProofService) storeFile(name string, src io.Reader) error {
	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(s.mediaDir, name))
	if err != nil {
		return fmt.Errorf("create proof file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write proof file: %w", err)
	}
	return nil
}
