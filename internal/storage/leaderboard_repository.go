package storage

import (
	"context"
	"fmt"

	"github.com/club-leaderboard/internal/leaderboard"
	"github.com/club-leaderboard/internal/models"
	"github.com/club-leaderboard/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LeaderboardRepository handles leaderboard entry persistence. Reconciliation
// decisions are computed by the leaderboard package; this repository applies
// them and owns the rank recomputation transaction.
type LeaderboardRepository struct {
	db *PostgresDB
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository(db *PostgresDB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

const entryColumns = `
	id, segment_id, rank, rider_name, time_seconds, time_display,
	gap_seconds, gap_display, date, speed_mph, power_watts, status,
	account_id, strava_effort_id, profile_pic
`

// ListBySegment returns all entries on a segment ordered by rank
func (r *LeaderboardRepository) ListBySegment(ctx context.Context, segmentID string) ([]models.LeaderboardEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leaderboard_entries
		WHERE segment_id = $1
		ORDER BY rank ASC
	`, entryColumns)

	rows, err := r.db.Pool().Query(ctx, query, segmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		err := rows.Scan(
			&e.ID,
			&e.SegmentID,
			&e.Rank,
			&e.RiderName,
			&e.TimeSeconds,
			&e.TimeDisplay,
			&e.GapSeconds,
			&e.GapDisplay,
			&e.Date,
			&e.SpeedMph,
			&e.PowerWatts,
			&e.Status,
			&e.AccountID,
			&e.StravaEffortID,
			&e.ProfilePic,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard entries: %w", err)
	}
	return entries, nil
}

// ApplyAction persists one reconciliation decision. Verify and update write
// identical entry state; inserts create a fresh verified row.
func (r *LeaderboardRepository) ApplyAction(ctx context.Context, action *leaderboard.Action) error {
	switch action.Kind {
	case leaderboard.ActionVerify, leaderboard.ActionUpdate:
		query := `
			UPDATE leaderboard_entries
			SET rider_name = $2,
			    time_seconds = $3,
			    time_display = $4,
			    date = $5,
			    power_watts = $6,
			    status = $7,
			    account_id = $8,
			    strava_effort_id = $9,
			    profile_pic = $10,
			    updated_at = NOW()
			WHERE id = $1
		`
		e := action.Entry
		_, err := r.db.Pool().Exec(ctx, query,
			action.EntryID,
			e.RiderName,
			e.TimeSeconds,
			e.TimeDisplay,
			e.Date,
			e.PowerWatts,
			types.EntryVerified,
			e.AccountID,
			e.StravaEffortID,
			e.ProfilePic,
		)
		if err != nil {
			return fmt.Errorf("failed to %s leaderboard entry: %w", action.Kind, err)
		}
		return nil

	case leaderboard.ActionInsert:
		query := `
			INSERT INTO leaderboard_entries (
				id, segment_id, rank, rider_name, time_seconds, time_display,
				date, power_watts, status, account_id, strava_effort_id, profile_pic,
				created_at, updated_at
			)
			VALUES ($1, $2, 0, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		`
		e := action.Entry
		_, err := r.db.Pool().Exec(ctx, query,
			uuid.New().String(),
			action.SegmentID,
			e.RiderName,
			e.TimeSeconds,
			e.TimeDisplay,
			e.Date,
			e.PowerWatts,
			types.EntryVerified,
			e.AccountID,
			e.StravaEffortID,
			e.ProfilePic,
		)
		if err != nil {
			return fmt.Errorf("failed to insert leaderboard entry: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown reconciliation action: %s", action.Kind)
	}
}

// RecomputeRanks re-derives rank and gap for every entry on a segment inside
// one transaction. Rows are locked for the duration so concurrent syncs
// touching the same segment serialize their recomputations.
func (r *LeaderboardRepository) RecomputeRanks(ctx context.Context, segmentID string) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rank transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := tx.Query(ctx, `
		SELECT id, time_seconds FROM leaderboard_entries
		WHERE segment_id = $1
		ORDER BY time_seconds ASC
		FOR UPDATE
	`, segmentID)
	if err != nil {
		return fmt.Errorf("failed to lock segment entries: %w", err)
	}

	var ids []string
	var times []int
	for rows.Next() {
		var id string
		var seconds int
		if err := rows.Scan(&id, &seconds); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan entry for ranking: %w", err)
		}
		ids = append(ids, id)
		times = append(times, seconds)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate entries for ranking: %w", err)
	}

	for _, ranked := range leaderboard.CalculateRanks(ids, times) {
		_, err := tx.Exec(ctx, `
			UPDATE leaderboard_entries
			SET rank = $2, gap_seconds = $3, gap_display = $4, updated_at = NOW()
			WHERE id = $1
		`, ranked.EntryID, ranked.Rank, ranked.GapSeconds, ranked.GapDisplay)
		if err != nil {
			return fmt.Errorf("failed to update rank: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rank transaction: %w", err)
	}
	return nil
}
