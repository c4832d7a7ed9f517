package storage

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/club-leaderboard/internal/errors"
	"github.com/club-leaderboard/internal/models"
	"github.com/jackc/pgx/v5"
)

// SegmentRepository handles the club's curated segment catalog.
type SegmentRepository struct {
	db *PostgresDB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *PostgresDB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

const segmentColumns = `
	id, strava_id, name, location, distance_km, distance_mi,
	elevation_gain_ft, avg_grade, category, club_members, visible
`

// ListVisible returns the catalog segments shown on the site
func (r *SegmentRepository) ListVisible(ctx context.Context) ([]models.Segment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM segments
		WHERE visible = TRUE
		ORDER BY name ASC
	`, segmentColumns)

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	defer rows.Close()

	var segments []models.Segment
	for rows.Next() {
		var s models.Segment
		err := rows.Scan(
			&s.ID,
			&s.StravaID,
			&s.Name,
			&s.Location,
			&s.DistanceKm,
			&s.DistanceMi,
			&s.ElevGainFt,
			&s.Grade,
			&s.Category,
			&s.ClubMembers,
			&s.Visible,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate segments: %w", err)
	}

	return segments, nil
}

// GetByID retrieves one catalog segment by slug
func (r *SegmentRepository) GetByID(ctx context.Context, id string) (*models.Segment, error) {
	query := fmt.Sprintf("SELECT %s FROM segments WHERE id = $1", segmentColumns)

	var s models.Segment
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.StravaID,
		&s.Name,
		&s.Location,
		&s.DistanceKm,
		&s.DistanceMi,
		&s.ElevGainFt,
		&s.Grade,
		&s.Category,
		&s.ClubMembers,
		&s.Visible,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("segment", id)
		}
		return nil, fmt.Errorf("failed to get segment: %w", err)
	}

	return &s, nil
}
