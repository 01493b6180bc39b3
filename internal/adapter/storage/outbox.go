package storage

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// WebhookOutbox queues webhook deliveries in the webhook_jobs table. Enqueued
// inside the caller's transaction, a job only becomes visible to the worker
// if the business write committed.
type WebhookOutbox struct {
	Db *pgxpool.Pool
}

func (o *WebhookOutbox) Enqueue(ctx context.Context, tx port.Tx, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Internal(err, "marshal webhook payload")
	}
	_, err = queries(o.Db, tx).Exec(ctx, `
		INSERT INTO webhook_jobs (url, payload) VALUES ($1, $2)`, url, body)
	if err != nil {
		return domain.Internal(err, "enqueue webhook job")
	}
	return nil
}
