package storage

import (
	"context"
	"fmt"

	"github.com/club-leaderboard/internal/models"
	"github.com/google/uuid"
)

// EffortRepository handles raw segment effort persistence. The external
// effort id is the idempotency key: re-synced efforts overwrite in place.
type EffortRepository struct {
	db *PostgresDB
}

// NewEffortRepository creates a new effort repository
func NewEffortRepository(db *PostgresDB) *EffortRepository {
	return &EffortRepository{db: db}
}

// UpsertBatch writes a batch of efforts keyed by strava_effort_id
func (r *EffortRepository) UpsertBatch(ctx context.Context, efforts []models.SegmentEffort) error {
	if len(efforts) == 0 {
		return nil
	}

	query := `
		INSERT INTO segment_efforts (
			id, account_id, segment_id, strava_effort_id,
			elapsed_time, moving_time, start_date,
			average_watts, average_heartrate, max_heartrate, pr_rank,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (strava_effort_id) DO UPDATE SET
			elapsed_time = EXCLUDED.elapsed_time,
			moving_time = EXCLUDED.moving_time,
			start_date = EXCLUDED.start_date,
			average_watts = EXCLUDED.average_watts,
			average_heartrate = EXCLUDED.average_heartrate,
			max_heartrate = EXCLUDED.max_heartrate,
			pr_rank = EXCLUDED.pr_rank
	`

	for i := range efforts {
		if efforts[i].ID == "" {
			efforts[i].ID = uuid.New().String()
		}
		e := &efforts[i]
		_, err := r.db.Pool().Exec(ctx, query,
			e.ID,
			e.AccountID,
			e.SegmentID,
			e.StravaEffortID,
			e.ElapsedTime,
			e.MovingTime,
			e.StartDate,
			e.AverageWatts,
			e.AverageHR,
			e.MaxHR,
			e.PRRank,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert effort %d: %w", e.StravaEffortID, err)
		}
	}

	return nil
}

// BestBySegment returns the account's fastest effort per segment. Equal
// times break on the earlier attempt, then the lower external id, so the
// chosen row is stable across runs.
func (r *EffortRepository) BestBySegment(ctx context.Context, accountID string) (map[string]*models.SegmentEffort, error) {
	query := `
		SELECT DISTINCT ON (segment_id)
			id, account_id, segment_id, strava_effort_id,
			elapsed_time, moving_time, start_date,
			average_watts, average_heartrate, max_heartrate, pr_rank
		FROM segment_efforts
		WHERE account_id = $1
		ORDER BY segment_id, elapsed_time ASC, start_date ASC, strava_effort_id ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query best efforts: %w", err)
	}
	defer rows.Close()

	best := make(map[string]*models.SegmentEffort)
	for rows.Next() {
		var e models.SegmentEffort
		err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.SegmentID,
			&e.StravaEffortID,
			&e.ElapsedTime,
			&e.MovingTime,
			&e.StartDate,
			&e.AverageWatts,
			&e.AverageHR,
			&e.MaxHR,
			&e.PRRank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan effort: %w", err)
		}
		effort := e
		best[e.SegmentID] = &effort
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate efforts: %w", err)
	}

	return best, nil
}

// ListByAccount returns all of an account's efforts
func (r *EffortRepository) ListByAccount(ctx context.Context, accountID string) ([]models.SegmentEffort, error) {
	query := `
		SELECT id, account_id, segment_id, strava_effort_id,
			elapsed_time, moving_time, start_date,
			average_watts, average_heartrate, max_heartrate, pr_rank
		FROM segment_efforts
		WHERE account_id = $1
		ORDER BY start_date ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list efforts: %w", err)
	}
	defer rows.Close()

	var efforts []models.SegmentEffort
	for rows.Next() {
		var e models.SegmentEffort
		err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.SegmentID,
			&e.StravaEffortID,
			&e.ElapsedTime,
			&e.MovingTime,
			&e.StartDate,
			&e.AverageWatts,
			&e.AverageHR,
			&e.MaxHR,
			&e.PRRank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan effort: %w", err)
		}
		efforts = append(efforts, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate efforts: %w", err)
	}

	return efforts, nil
}
