package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/club-leaderboard/internal/models"
	"github.com/google/uuid"
)

// SyncLogRepository appends audit records for completed and failed runs.
type SyncLogRepository struct {
	db *PostgresDB
}

// NewSyncLogRepository creates a new sync log repository
func NewSyncLogRepository(db *PostgresDB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Append writes one audit record
func (r *SyncLogRepository) Append(ctx context.Context, entry *models.SyncLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	var detailsJSON []byte
	var err error
	if entry.Details != nil {
		detailsJSON, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal sync log details: %w", err)
		}
	}

	query := `
		INSERT INTO sync_log (id, account_id, status, details, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	if _, err := r.db.Pool().Exec(ctx, query, entry.ID, entry.AccountID, entry.Status, detailsJSON); err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

// ListByAccount returns the most recent audit records for an account
func (r *SyncLogRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, account_id, status, details, created_at
		FROM sync_log
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync log: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncLog
	for rows.Next() {
		var entry models.SyncLog
		var detailsJSON []byte
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Status, &detailsJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync log entry: %w", err)
		}
		if len(detailsJSON) > 0 {
			var details map[string]interface{}
			if err := json.Unmarshal(detailsJSON, &details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sync log details: %w", err)
			}
			entry.Details = details
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync log: %w", err)
	}

	return entries, nil
}
