package storage

import (
	"context"
	"fmt"

	"github.com/club-leaderboard/internal/models"
	"github.com/google/uuid"
)

// ActivityRepository handles activity history persistence. The external
// activity id is the idempotency key for upserts.
type ActivityRepository struct {
	db *PostgresDB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *PostgresDB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// UpsertBatch writes a batch of activities keyed by strava_activity_id
func (r *ActivityRepository) UpsertBatch(ctx context.Context, activities []models.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	query := `
		INSERT INTO activities (
			id, account_id, strava_activity_id, name,
			distance_mi, moving_time_seconds, elapsed_time_seconds, elevation_gain_ft,
			start_date, start_date_local,
			average_speed_mph, max_speed_mph, average_watts, kilojoules, suffer_score,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		ON CONFLICT (strava_activity_id) DO UPDATE SET
			name = EXCLUDED.name,
			distance_mi = EXCLUDED.distance_mi,
			moving_time_seconds = EXCLUDED.moving_time_seconds,
			elapsed_time_seconds = EXCLUDED.elapsed_time_seconds,
			elevation_gain_ft = EXCLUDED.elevation_gain_ft,
			start_date = EXCLUDED.start_date,
			start_date_local = EXCLUDED.start_date_local,
			average_speed_mph = EXCLUDED.average_speed_mph,
			max_speed_mph = EXCLUDED.max_speed_mph,
			average_watts = EXCLUDED.average_watts,
			kilojoules = EXCLUDED.kilojoules,
			suffer_score = EXCLUDED.suffer_score
	`

	for i := range activities {
		if activities[i].ID == "" {
			activities[i].ID = uuid.New().String()
		}
		a := &activities[i]
		_, err := r.db.Pool().Exec(ctx, query,
			a.ID,
			a.AccountID,
			a.StravaActivityID,
			a.Name,
			a.DistanceMi,
			a.MovingTimeSeconds,
			a.ElapsedTimeSeconds,
			a.ElevationGainFt,
			a.StartDate,
			a.StartDateLocal,
			a.AverageSpeedMph,
			a.MaxSpeedMph,
			a.AverageWatts,
			a.Kilojoules,
			a.SufferScore,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert activity %d: %w", a.StravaActivityID, err)
		}
	}

	return nil
}

// ListByAccount returns all of an account's activities ordered by date
func (r *ActivityRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Activity, error) {
	query := `
		SELECT id, account_id, strava_activity_id, name,
			distance_mi, moving_time_seconds, elapsed_time_seconds, elevation_gain_ft,
			start_date, start_date_local,
			average_speed_mph, max_speed_mph, average_watts, kilojoules, suffer_score
		FROM activities
		WHERE account_id = $1
		ORDER BY start_date ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		err := rows.Scan(
			&a.ID,
			&a.AccountID,
			&a.StravaActivityID,
			&a.Name,
			&a.DistanceMi,
			&a.MovingTimeSeconds,
			&a.ElapsedTimeSeconds,
			&a.ElevationGainFt,
			&a.StartDate,
			&a.StartDateLocal,
			&a.AverageSpeedMph,
			&a.MaxSpeedMph,
			&a.AverageWatts,
			&a.Kilojoules,
			&a.SufferScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}
