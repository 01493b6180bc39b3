package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
)

// APIKeyRepository stores hashed admin API keys. Plaintext keys are shown
// once at generation time and never persisted.
type APIKeyRepository struct {
	Db *pgxpool.Pool
}

func (r *APIKeyRepository) Save(ctx context.Context, keyHash, keyPrefix, label string) error {
	_, err := r.Db.Exec(ctx, `
		INSERT INTO api_keys (key_hash, key_prefix, label) VALUES ($1, $2, $3)`,
		keyHash, keyPrefix, label)
	if err != nil {
		return domain.Internal(err, "save api key")
	}
	return nil
}
