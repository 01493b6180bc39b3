package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/notifications"
)

const maxAttempts = 5

// StartWebhookWorker polls the webhook_jobs outbox and delivers order events
// to the operator's webhook URL.
func StartWebhookWorker(db *pgxpool.Pool, secret string) {
	go func() {
		slog.Info("👷 Webhook worker started")
		for {
			processJobs(db, secret)
			time.Sleep(5 * time.Second)
		}
	}()
}

func processJobs(db *pgxpool.Pool, secret string) {
	ctx := context.Background()

	// The row lock is held for the duration of the delivery; SKIP LOCKED
	// keeps a second worker instance from picking the same job.
	tx, err := db.Begin(ctx)
	if err != nil {
		return
	}
	defer tx.Rollback(ctx)

	var id, url string
	var payloadBytes []byte
	var attempts int

	err = tx.QueryRow(ctx, `
		SELECT id, url, payload, attempts
		FROM webhook_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`).Scan(&id, &url, &payloadBytes, &attempts)
	if err != nil {
		return
	}

	var payload any
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		slog.Error("worker: failed to parse payload", "error", err, "job_id", id)
		tx.Exec(ctx, "UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1", id)
		tx.Commit(ctx)
		return
	}

	slog.Info("worker: processing job", "url", url, "job_id", id)

	sendErr := notifications.SendWebhook(url, payload, secret)
	if sendErr != nil {
		slog.Error("worker: webhook failed", "error", sendErr, "attempts", attempts)
		nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)

		if attempts >= maxAttempts {
			tx.Exec(ctx, "UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1", id)
			slog.Error("worker: job marked as FAILED (max attempts reached)", "job_id", id)
		} else {
			tx.Exec(ctx, "UPDATE webhook_jobs SET attempts = attempts + 1, next_run_at = $2 WHERE id = $1", id, nextRun)
			slog.Info("worker: scheduled retry", "job_id", id, "next_run", nextRun)
		}
	} else {
		slog.Info("✅ worker: webhook sent", "job_id", id)
		tx.Exec(ctx, "UPDATE webhook_jobs SET status = 'COMPLETED' WHERE id = $1", id)
	}

	tx.Commit(ctx)
}
