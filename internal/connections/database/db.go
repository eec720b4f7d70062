package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"cargo-rewards/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	maxAttempts = 10
	retryDelay  = 2 * time.Second
	pingTTL     = 5 * time.Second
)

// Connect открывает пул и ждёт готовности базы. Postgres при деплое может
// подниматься позже консюмеров, поэтому пингуем с ретраями.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConns)

	backoff := retry.WithMaxRetries(maxAttempts, retry.NewConstant(retryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pctx, cancel := context.WithTimeout(ctx, pingTTL)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxAttempts, err)
	}
	return db, nil
}
