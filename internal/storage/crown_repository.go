package storage

import (
	"context"
	"fmt"

	"github.com/club-leaderboard/internal/models"
	"github.com/google/uuid"
)

// CrownRepository handles segment-leadership records. The stored set is
// replaced wholesale on each sync; delete and insert run in one transaction
// so readers never observe a half-written set.
type CrownRepository struct {
	db *PostgresDB
}

// NewCrownRepository creates a new crown repository
func NewCrownRepository(db *PostgresDB) *CrownRepository {
	return &CrownRepository{db: db}
}

// ReplaceForAccount swaps the account's crown set
func (r *CrownRepository) ReplaceForAccount(ctx context.Context, accountID string, crowns []models.Crown) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin crown transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM athlete_koms WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("failed to clear crowns: %w", err)
	}

	query := `
		INSERT INTO athlete_koms (
			id, account_id, strava_segment_id, segment_name, crown_type,
			time_seconds, time_display, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	for i := range crowns {
		if crowns[i].ID == "" {
			crowns[i].ID = uuid.New().String()
		}
		c := &crowns[i]
		_, err := tx.Exec(ctx, query,
			c.ID,
			accountID,
			c.StravaSegmentID,
			c.SegmentName,
			c.Type,
			c.TimeSeconds,
			c.TimeDisplay,
		)
		if err != nil {
			return fmt.Errorf("failed to insert crown: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit crown transaction: %w", err)
	}
	return nil
}

// CountByAccount returns the number of crowns held by an account
func (r *CrownRepository) CountByAccount(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM athlete_koms WHERE account_id = $1`, accountID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count crowns: %w", err)
	}
	return count, nil
}

// ListByAccount returns an account's crowns
func (r *CrownRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Crown, error) {
	query := `
		SELECT id, account_id, strava_segment_id, segment_name, crown_type,
			time_seconds, time_display
		FROM athlete_koms
		WHERE account_id = $1
		ORDER BY segment_name ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crowns: %w", err)
	}
	defer rows.Close()

	var crowns []models.Crown
	for rows.Next() {
		var c models.Crown
		err := rows.Scan(
			&c.ID,
			&c.AccountID,
			&c.StravaSegmentID,
			&c.SegmentName,
			&c.Type,
			&c.TimeSeconds,
			&c.TimeDisplay,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crown: %w", err)
		}
		crowns = append(crowns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate crowns: %w", err)
	}

	return crowns, nil
}
