package proof

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"cargo-rewards/internal/config"
	"cargo-rewards/internal/httpx"
	"cargo-rewards/internal/microservices/proof/handler"
	"cargo-rewards/internal/microservices/proof/repository"
	"cargo-rewards/internal/microservices/proof/service"
	"cargo-rewards/internal/scoring"
)

func Run(ctx context.Context, db *sql.DB, cfg *config.Config, logg zerolog.Logger) error {
	repo := repository.NewProofRepository(db, scoring.NewRepository(db))
	svc := service.NewProofService(repo, cfg.Proof.MediaDir, cfg.Rewards.ProofPoints, logg)
	h := handler.NewProofHandler(svc, cfg.Proof.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/api/v1/delivery-proofs", h.Upload)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := fmt.Sprintf(":%d", cfg.Proof.Port)
	logg.Info().Str("addr", addr).Msg("proof_service_listening")
	return httpx.New(addr, r).Run(ctx)
}
