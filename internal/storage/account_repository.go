package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/club-leaderboard/internal/errors"
	"github.com/club-leaderboard/internal/models"
	"github.com/club-leaderboard/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository handles account persistence, including the sync status
// machine and progress snapshots.
type AccountRepository struct {
	db *PostgresDB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *PostgresDB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `
	id, strava_id, name, first_name, last_name, profile_pic, city, state,
	access_token, refresh_token, token_expires_at,
	sync_status, sync_progress,
	total_rides, total_distance_mi, total_elevation_ft,
	member_since, last_ride, kom_count, last_sync_at,
	created_at, updated_at
`

// Upsert creates or refreshes an account keyed by its external athlete id.
// Tokens and profile fields are overwritten on conflict; sync state and
// aggregate stats are preserved.
func (r *AccountRepository) Upsert(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.SyncStatus == "" {
		account.SyncStatus = types.SyncPending
	}

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	query := `
		INSERT INTO accounts (
			id, strava_id, name, first_name, last_name, profile_pic, city, state,
			access_token, refresh_token, token_expires_at, sync_status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (strava_id) DO UPDATE SET
			name = EXCLUDED.name,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_pic = EXCLUDED.profile_pic,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, sync_status, created_at
	`

	err := r.db.Pool().QueryRow(ctx, query,
		account.ID,
		account.StravaID,
		account.Name,
		account.FirstName,
		account.LastName,
		account.ProfilePic,
		account.City,
		account.State,
		account.AccessToken,
		account.RefreshToken,
		account.TokenExpiresAt,
		account.SyncStatus,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID, &account.SyncStatus, &account.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its internal id
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE id = $1", accountColumns)
	return r.scanOne(r.db.Pool().QueryRow(ctx, query, id), id)
}

// GetByStravaID retrieves an account by its external athlete id
func (r *AccountRepository) GetByStravaID(ctx context.Context, stravaID int64) (*models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE strava_id = $1", accountColumns)
	return r.scanOne(r.db.Pool().QueryRow(ctx, query, stravaID), fmt.Sprintf("%d", stravaID))
}

func (r *AccountRepository) scanOne(row pgx.Row, key string) (*models.Account, error) {
	var account models.Account
	var progressJSON []byte

	err := row.Scan(
		&account.ID,
		&account.StravaID,
		&account.Name,
		&account.FirstName,
		&account.LastName,
		&account.ProfilePic,
		&account.City,
		&account.State,
		&account.AccessToken,
		&account.RefreshToken,
		&account.TokenExpiresAt,
		&account.SyncStatus,
		&progressJSON,
		&account.TotalRides,
		&account.TotalDistanceMi,
		&account.TotalElevationFt,
		&account.MemberSince,
		&account.LastRide,
		&account.KomCount,
		&account.LastSyncAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", key)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if len(progressJSON) > 0 {
		var progress models.SyncProgress
		if err := json.Unmarshal(progressJSON, &progress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sync progress: %w", err)
		}
		account.SyncProgress = &progress
	}

	return &account, nil
}

// TryBeginSync atomically transitions an account into the syncing state.
// It returns false when a run is already in flight; the check-and-set is a
// single UPDATE so concurrent triggers cannot both win.
func (r *AccountRepository) TryBeginSync(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE accounts
		SET sync_status = $2, sync_progress = NULL, updated_at = NOW()
		WHERE id = $1 AND sync_status <> $2
	`

	tag, err := r.db.Pool().Exec(ctx, query, id, types.SyncRunning)
	if err != nil {
		return false, fmt.Errorf("failed to begin sync: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetSyncStatus sets the account's sync status
func (r *AccountRepository) SetSyncStatus(ctx context.Context, id string, status types.SyncStatus) error {
	query := `UPDATE accounts SET sync_status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Pool().Exec(ctx, query, id, status); err != nil {
		return fmt.Errorf("failed to set sync status: %w", err)
	}
	return nil
}

// UpdateSyncProgress replaces the account's progress snapshot. Called after
// every unit of pipeline work.
func (r *AccountRepository) UpdateSyncProgress(ctx context.Context, id string, progress *models.SyncProgress) error {
	progressJSON, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal sync progress: %w", err)
	}

	query := `UPDATE accounts SET sync_progress = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Pool().Exec(ctx, query, id, progressJSON); err != nil {
		return fmt.Errorf("failed to update sync progress: %w", err)
	}
	return nil
}

// UpdateTokens persists a refreshed credential pair
func (r *AccountRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt int64) error {
	query := `
		UPDATE accounts
		SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Pool().Exec(ctx, query, id, accessToken, refreshToken, expiresAt); err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	return nil
}

// UpdateStats finalizes the account's aggregate stats and stamps the sync time
func (r *AccountRepository) UpdateStats(ctx context.Context, id string, stats *models.AccountStats) error {
	query := `
		UPDATE accounts
		SET total_rides = $2,
		    total_distance_mi = $3,
		    total_elevation_ft = $4,
		    member_since = $5,
		    last_ride = $6,
		    kom_count = $7,
		    last_sync_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Pool().Exec(ctx, query,
		id,
		stats.TotalRides,
		stats.TotalDistanceMi,
		stats.TotalElevationFt,
		stats.MemberSince,
		stats.LastRide,
		stats.KomCount,
	)
	if err != nil {
		return fmt.Errorf("failed to update account stats: %w", err)
	}
	return nil
}
