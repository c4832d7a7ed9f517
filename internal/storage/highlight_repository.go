package storage

import (
	"context"
	"fmt"

	"github.com/club-leaderboard/internal/models"
	"github.com/google/uuid"
)

// HighlightRepository handles "greatest hits" persistence. Like crowns, the
// stored set is replaced wholesale per sync inside a transaction.
type HighlightRepository struct {
	db *PostgresDB
}

// NewHighlightRepository creates a new highlight repository
func NewHighlightRepository(db *PostgresDB) *HighlightRepository {
	return &HighlightRepository{db: db}
}

// ReplaceForAccount swaps the account's highlight set
func (r *HighlightRepository) ReplaceForAccount(ctx context.Context, accountID string, highlights []models.Highlight) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin highlight transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM greatest_hits WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("failed to clear highlights: %w", err)
	}

	query := `
		INSERT INTO greatest_hits (
			id, account_id, category, title, description, stat_value, stat_label,
			segment_id, activity_strava_id, rank_in_club, percentile, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`
	for i := range highlights {
		if highlights[i].ID == "" {
			highlights[i].ID = uuid.New().String()
		}
		h := &highlights[i]
		_, err := tx.Exec(ctx, query,
			h.ID,
			accountID,
			h.Category,
			h.Title,
			h.Description,
			h.StatValue,
			h.StatLabel,
			h.SegmentID,
			h.ActivityStravaID,
			h.RankInClub,
			h.Percentile,
		)
		if err != nil {
			return fmt.Errorf("failed to insert highlight: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit highlight transaction: %w", err)
	}
	return nil
}

// ListByAccount returns an account's highlights
func (r *HighlightRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Highlight, error) {
	query := `
		SELECT id, account_id, category, title, description, stat_value, stat_label,
			segment_id, activity_strava_id, rank_in_club, percentile
		FROM greatest_hits
		WHERE account_id = $1
		ORDER BY category ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer rows.Close()

	var highlights []models.Highlight
	for rows.Next() {
		var h models.Highlight
		err := rows.Scan(
			&h.ID,
			&h.AccountID,
			&h.Category,
			&h.Title,
			&h.Description,
			&h.StatValue,
			&h.StatLabel,
			&h.SegmentID,
			&h.ActivityStravaID,
			&h.RankInClub,
			&h.Percentile,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		highlights = append(highlights, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate highlights: %w", err)
	}

	return highlights, nil
}
