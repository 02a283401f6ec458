// Package cache provides prediction caches backed by memory, SQLite, MySQL and Valkey
package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/mikey/tweet-sentiment/internal/core"
	"go.uber.org/zap"
)

type cleaner interface {
	Cleanup(ctx context.Context) error
}

// runCleanup periodically removes expired entries until stopCh is closed
func runCleanup(c cleaner, freq time.Duration, stopCh <-chan struct{}, logger *zap.Logger) {
	if freq <= 0 {
		return
	}
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}

// scanEntry reads a prediction row selected as
// key, model_used, label, prob_negative, prob_neutral, prob_positive, created_at, expires_at
func scanEntry(row *sql.Row) (*core.CacheEntry, error) {
	var entry core.CacheEntry
	var label int
	var createdAt, expiresAt int64
	err := row.Scan(
		&entry.Key,
		&entry.ModelUsed,
		&label,
		&entry.Probabilities[core.Negative],
		&entry.Probabilities[core.Neutral],
		&entry.Probabilities[core.Positive],
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Label = core.Label(label)
	entry.CreatedAt = time.Unix(createdAt, 0)
	entry.ExpiresAt = time.Unix(expiresAt, 0)
	return &entry, nil
}

const selectEntry = `
	SELECT cache_key, model_used, label, prob_negative, prob_neutral, prob_positive, created_at, expires_at
	FROM prediction_cache
	WHERE cache_key = ? AND expires_at > ?`
