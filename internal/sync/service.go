// Package sync implements the account sync pipeline: token refresh, effort
// and activity ingestion, crown refresh, stat finalization, leaderboard
// reconciliation, and highlight generation.
//
// Failure handling is tiered. Token refresh failure is fatal to the run.
// A per-segment fetch error skips that segment and continues. A page error
// during activity or crown pagination aborts that stage only. Progress is
// persisted after every unit of work so a poller always sees the latest
// state, including after a crash.
package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/club-leaderboard/internal/config"
	apperrors "github.com/club-leaderboard/internal/errors"
	"github.com/club-leaderboard/internal/leaderboard"
	"github.com/club-leaderboard/internal/models"
	"github.com/club-leaderboard/internal/retry"
	"github.com/club-leaderboard/internal/strava"
	"github.com/club-leaderboard/internal/types"
	"github.com/club-leaderboard/internal/units"
)

// APIClient is the slice of the external client the pipeline uses.
type APIClient interface {
	RefreshToken(ctx context.Context, refreshToken string) (*strava.Tokens, error)
	GetSegmentEfforts(ctx context.Context, accessToken string, segmentID int64, opts strava.EffortPage) ([]strava.SegmentEffortData, error)
	GetActivities(ctx context.Context, accessToken string, opts strava.ActivityPage) ([]strava.ActivityData, error)
	GetAthleteKoms(ctx context.Context, accessToken string, athleteID int64, page, perPage int) ([]strava.KomData, error)
}

// AccountStore persists account state and progress snapshots.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	TryBeginSync(ctx context.Context, id string) (bool, error)
	SetSyncStatus(ctx context.Context, id string, status types.SyncStatus) error
	UpdateSyncProgress(ctx context.Context, id string, progress *models.SyncProgress) error
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt int64) error
	UpdateStats(ctx context.Context, id string, stats *models.AccountStats) error
}

// EffortStore persists raw segment efforts.
type EffortStore interface {
	UpsertBatch(ctx context.Context, efforts []models.SegmentEffort) error
	BestBySegment(ctx context.Context, accountID string) (map[string]*models.SegmentEffort, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.SegmentEffort, error)
}

// ActivityStore persists activity history.
type ActivityStore interface {
	UpsertBatch(ctx context.Context, activities []models.Activity) error
	ListByAccount(ctx context.Context, accountID string) ([]models.Activity, error)
}

// CrownStore replaces the account's leadership records.
type CrownStore interface {
	ReplaceForAccount(ctx context.Context, accountID string, crowns []models.Crown) error
}

// LeaderboardStore applies reconciliation actions and recomputes ranks.
type LeaderboardStore interface {
	ListBySegment(ctx context.Context, segmentID string) ([]models.LeaderboardEntry, error)
	ApplyAction(ctx context.Context, action *leaderboard.Action) error
	RecomputeRanks(ctx context.Context, segmentID string) error
}

// HighlightStore replaces the account's highlight set.
type HighlightStore interface {
	ReplaceForAccount(ctx context.Context, accountID string, highlights []models.Highlight) error
}

// AuditStore appends run outcomes.
type AuditStore interface {
	Append(ctx context.Context, entry *models.SyncLog) error
}

// Cache evicts cached leaderboard reads after a segment's ranks change.
type Cache interface {
	Invalidate(ctx context.Context, segmentIDs ...string) error
}

// HighlightGenerator derives highlights from synced data.
type HighlightGenerator interface {
	Generate(accountID string, efforts []models.SegmentEffort, activities []models.Activity) []models.Highlight
}

// Results summarizes one pipeline run for the audit log.
type Results struct {
	SegmentEfforts int      `json:"segmentEfforts"`
	SegmentErrors  []string `json:"segmentErrors,omitempty"`
	Activities     int      `json:"activities"`
	ActivityPages  int      `json:"activityPages"`
	Crowns         int      `json:"crowns"`
	Verified       int      `json:"verified"`
	Updated        int      `json:"updated"`
	Inserted       int      `json:"inserted"`
	Highlights     int      `json:"highlights"`
	DurationMs     int64    `json:"durationMs"`
}

// Service orchestrates pipeline runs.
type Service struct {
	client     APIClient
	accounts   AccountStore
	efforts    EffortStore
	activities ActivityStore
	crowns     CrownStore
	board      LeaderboardStore
	highlights HighlightStore
	audit      AuditStore
	cache      Cache
	generator  HighlightGenerator

	cfg      config.SyncConfig
	retryCfg *retry.Config
}

// ServiceConfig holds sync service dependencies.
type ServiceConfig struct {
	Client     APIClient
	Accounts   AccountStore
	Efforts    EffortStore
	Activities ActivityStore
	Crowns     CrownStore
	Board      LeaderboardStore
	Highlights HighlightStore
	Audit      AuditStore
	Cache      Cache
	Generator  HighlightGenerator
	Sync       config.SyncConfig
	Retry      *retry.Config
}

// NewService creates a sync service.
func NewService(cfg *ServiceConfig) (*Service, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("api client cannot be nil")
	}
	if cfg.Accounts == nil {
		return nil, fmt.Errorf("account store cannot be nil")
	}
	if cfg.Efforts == nil || cfg.Activities == nil || cfg.Crowns == nil {
		return nil, fmt.Errorf("ingestion stores cannot be nil")
	}
	if cfg.Board == nil {
		return nil, fmt.Errorf("leaderboard store cannot be nil")
	}
	if cfg.Highlights == nil || cfg.Generator == nil {
		return nil, fmt.Errorf("highlight components cannot be nil")
	}
	if cfg.Audit == nil {
		return nil, fmt.Errorf("audit store cannot be nil")
	}

	retryCfg := cfg.Retry
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}

	syncCfg := cfg.Sync
	if syncCfg.PageSize == 0 {
		syncCfg.PageSize = 100
	}
	if syncCfg.MaxActivityPages == 0 {
		syncCfg.MaxActivityPages = 10
	}
	if syncCfg.MaxCrownPages == 0 {
		syncCfg.MaxCrownPages = 5
	}

	return &Service{
		client:     cfg.Client,
		accounts:   cfg.Accounts,
		efforts:    cfg.Efforts,
		activities: cfg.Activities,
		crowns:     cfg.Crowns,
		board:      cfg.Board,
		highlights: cfg.Highlights,
		audit:      cfg.Audit,
		cache:      cfg.Cache,
		generator:  cfg.Generator,
		cfg:        syncCfg,
		retryCfg:   retryCfg,
	}, nil
}

// TriggerSync atomically claims the account's sync slot and, on success,
// runs the pipeline in the background. Returns false when a run is already
// in flight.
func (s *Service) TriggerSync(ctx context.Context, accountID string) (bool, error) {
	started, err := s.accounts.TryBeginSync(ctx, accountID)
	if err != nil {
		return false, err
	}
	if !started {
		return false, nil
	}

	go func() {
		// Detached from the request context; a closed connection must not
		// abort the run.
		runCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.runGuarded(runCtx, accountID)
	}()

	return true, nil
}

// runGuarded executes Run and converts a panic into a failed run. Without
// this the account's sync slot would stay claimed forever, since re-sync is
// only allowed from the complete or error states.
func (s *Service) runGuarded(ctx context.Context, accountID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failRun(ctx, accountID, &Results{}, fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	if err := s.Run(ctx, accountID); err != nil {
		log.Printf("[Sync] Account %s: run failed: %v", accountID, err)
	}
}

// Run executes the full pipeline for an account. The caller must already
// hold the sync slot (via TryBeginSync or TriggerSync).
func (s *Service) Run(ctx context.Context, accountID string) error {
	start := time.Now()
	results := &Results{}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		s.failRun(ctx, accountID, results, fmt.Errorf("account lookup failed: %w", err))
		return err
	}

	log.Printf("[Sync] Account %s: starting run for %s", accountID, account.Name)

	accessToken, err := s.ensureFreshToken(ctx, account)
	if err != nil {
		s.failRun(ctx, accountID, results, err)
		return err
	}

	s.syncSegmentEfforts(ctx, account, accessToken, results)
	s.syncActivities(ctx, account, accessToken, results)
	s.syncCrowns(ctx, account, accessToken, results)

	stats, err := s.finalizeStats(ctx, account, results)
	if err != nil {
		log.Printf("[Sync] Account %s: stat finalization failed: %v", accountID, err)
	}

	s.reconcileLeaderboards(ctx, account, results)
	s.generateHighlights(ctx, account, results)

	results.DurationMs = time.Since(start).Milliseconds()
	s.completeRun(ctx, account, stats, results)

	log.Printf("[Sync] Account %s: run complete in %dms (%d efforts, %d activities, %d crowns)",
		accountID, results.DurationMs, results.SegmentEfforts, results.Activities, results.Crowns)
	return nil
}

// ensureFreshToken refreshes the stored credential pair when expired.
// Failure here is fatal: nothing downstream can proceed without a token.
func (s *Service) ensureFreshToken(ctx context.Context, account *models.Account) (string, error) {
	if !account.TokenExpired(time.Now()) {
		return account.AccessToken, nil
	}

	log.Printf("[Sync] Account %s: access token expired, refreshing", account.ID)

	tokens, err := s.client.RefreshToken(ctx, account.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := s.accounts.UpdateTokens(ctx, account.ID, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return "", apperrors.NewPersistenceError("update tokens", err)
	}

	account.AccessToken = tokens.AccessToken
	account.RefreshToken = tokens.RefreshToken
	account.TokenExpiresAt = tokens.ExpiresAt
	return tokens.AccessToken, nil
}

// syncSegmentEfforts fetches and stores the account's efforts on each club
// segment. A failed segment is recorded and skipped; the stage continues.
func (s *Service) syncSegmentEfforts(ctx context.Context, account *models.Account, accessToken string, results *Results) {
	progress := &models.SyncProgress{
		Step:          types.StepSegmentEfforts,
		SegmentsTotal: len(types.ClubSegments),
	}

	for i, segment := range types.ClubSegments {
		progress.CurrentSegment = segment.Slug
		progress.CurrentSegmentName = segment.Name
		progress.SegmentsComplete = i
		s.writeProgress(ctx, account.ID, progress)

		var fetched []strava.SegmentEffortData
		err := retry.Do(ctx, s.retryCfg, func(ctx context.Context, attempt int) error {
			var fetchErr error
			fetched, fetchErr = s.client.GetSegmentEfforts(ctx, accessToken, segment.StravaID, strava.EffortPage{
				PerPage:   s.cfg.PageSize,
				StartDate: s.cfg.WindowStart,
				EndDate:   s.cfg.WindowEnd,
			})
			return fetchErr
		})
		if err != nil {
			log.Printf("[Sync] Account %s: segment %s fetch failed, skipping: %v", account.ID, segment.Slug, err)
			results.SegmentErrors = append(results.SegmentErrors, segment.Slug)
			continue
		}

		efforts := make([]models.SegmentEffort, 0, len(fetched))
		best := 0
		bestDate := ""
		mostRecent := ""
		for _, raw := range fetched {
			effort := effortFromWire(account.ID, segment.Slug, raw)
			efforts = append(efforts, effort)
			if best == 0 || effort.ElapsedTime < best {
				best = effort.ElapsedTime
				bestDate = effort.StartDate.Format("2006-01-02")
			}
			if d := effort.StartDate.Format("2006-01-02"); d > mostRecent {
				mostRecent = d
			}
		}

		if err := s.efforts.UpsertBatch(ctx, efforts); err != nil {
			log.Printf("[Sync] Account %s: segment %s persist failed, skipping: %v", account.ID, segment.Slug, err)
			results.SegmentErrors = append(results.SegmentErrors, segment.Slug)
			continue
		}

		results.SegmentEfforts += len(efforts)
		progress.EffortsFound = results.SegmentEfforts
		if best > 0 {
			progress.BestTimeDisplay = units.SecondsToDisplay(best)
			progress.BestDate = bestDate
		}
		if mostRecent != "" {
			progress.MostRecentDate = mostRecent
		}
		progress.SegmentsComplete = i + 1
		s.writeProgress(ctx, account.ID, progress)

		log.Printf("[Sync] Account %s: segment %s done (%d efforts)", account.ID, segment.Slug, len(efforts))
	}
}

// rideActivityType is the only activity type the club counts. The history
// endpoint returns every sport the athlete recorded.
const rideActivityType = "Ride"

// syncActivities pages through the account's ride history inside the date
// window. Non-ride activities are dropped; a page error aborts the stage but
// not the run.
func (s *Service) syncActivities(ctx context.Context, account *models.Account, accessToken string, results *Results) {
	progress := &models.SyncProgress{
		Step:               types.StepActivities,
		SegmentsComplete:   len(types.ClubSegments),
		SegmentsTotal:      len(types.ClubSegments),
		EffortsFound:       results.SegmentEfforts,
		ActivityPagesTotal: s.cfg.MaxActivityPages,
	}

	var totalDistance, totalElevation float64
	var totalSeconds int
	firstRide := ""
	lastRide := ""

	for page := 1; page <= s.cfg.MaxActivityPages; page++ {
		progress.ActivitiesPage = page
		s.writeProgress(ctx, account.ID, progress)

		var fetched []strava.ActivityData
		err := retry.Do(ctx, s.retryCfg, func(ctx context.Context, attempt int) error {
			var fetchErr error
			fetched, fetchErr = s.client.GetActivities(ctx, accessToken, strava.ActivityPage{
				Page:    page,
				PerPage: s.cfg.PageSize,
				After:   s.cfg.WindowStart.Unix(),
				Before:  s.cfg.WindowEnd.Unix(),
			})
			return fetchErr
		})
		if err != nil {
			log.Printf("[Sync] Account %s: activity page %d failed, aborting stage: %v", account.ID, page, err)
			break
		}
		if len(fetched) == 0 {
			break
		}

		activities := make([]models.Activity, 0, len(fetched))
		for _, raw := range fetched {
			if raw.Type != rideActivityType {
				continue
			}
			activity := activityFromWire(account.ID, raw)
			activities = append(activities, activity)

			totalDistance += activity.DistanceMi
			totalElevation += activity.ElevationGainFt
			totalSeconds += activity.MovingTimeSeconds
			d := activity.StartDate.Format("2006-01-02")
			if firstRide == "" || d < firstRide {
				firstRide = d
			}
			if d > lastRide {
				lastRide = d
			}
		}

		if err := s.activities.UpsertBatch(ctx, activities); err != nil {
			log.Printf("[Sync] Account %s: activity page %d persist failed, aborting stage: %v", account.ID, page, err)
			break
		}

		results.Activities += len(activities)
		results.ActivityPages = page

		progress.ActivitiesFound = results.Activities
		progress.TotalDistance = fmt.Sprintf("%.0f mi", totalDistance)
		progress.TotalElevation = fmt.Sprintf("%.0f ft", totalElevation)
		progress.TotalHours = fmt.Sprintf("%.0f hrs", float64(totalSeconds)/3600)
		progress.FirstRide = firstRide
		progress.LastRide = lastRide
		s.writeProgress(ctx, account.ID, progress)

		if len(fetched) < s.cfg.PageSize {
			break
		}
	}

	log.Printf("[Sync] Account %s: activities done (%d rides over %d pages)",
		account.ID, results.Activities, results.ActivityPages)
}

// syncCrowns refreshes the account's segment-leadership records. The stored
// set is replaced wholesale; failure leaves the previous set in place.
func (s *Service) syncCrowns(ctx context.Context, account *models.Account, accessToken string, results *Results) {
	var crowns []models.Crown

	for page := 1; page <= s.cfg.MaxCrownPages; page++ {
		var fetched []strava.KomData
		err := retry.Do(ctx, s.retryCfg, func(ctx context.Context, attempt int) error {
			var fetchErr error
			fetched, fetchErr = s.client.GetAthleteKoms(ctx, accessToken, account.StravaID, page, s.cfg.PageSize)
			return fetchErr
		})
		if err != nil {
			log.Printf("[Sync] Account %s: crown page %d failed, aborting stage: %v", account.ID, page, err)
			return
		}

		for _, raw := range fetched {
			crowns = append(crowns, crownFromWire(account.ID, raw))
		}
		if len(fetched) < s.cfg.PageSize {
			break
		}
	}

	if err := s.crowns.ReplaceForAccount(ctx, account.ID, crowns); err != nil {
		log.Printf("[Sync] Account %s: crown replace failed: %v", account.ID, err)
		return
	}

	results.Crowns = len(crowns)
	log.Printf("[Sync] Account %s: crowns done (%d)", account.ID, len(crowns))
}

// finalizeStats recomputes aggregate stats from stored rows so repeated
// runs converge regardless of which stages succeeded.
func (s *Service) finalizeStats(ctx context.Context, account *models.Account, results *Results) (*models.AccountStats, error) {
	activities, err := s.activities.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	stats := &models.AccountStats{
		TotalRides: len(activities),
		KomCount:   results.Crowns,
	}
	for _, a := range activities {
		stats.TotalDistanceMi += a.DistanceMi
		stats.TotalElevationFt += a.ElevationGainFt
	}
	if len(activities) > 0 {
		first := activities[0].StartDate.Format("2006-01-02")
		last := activities[len(activities)-1].StartDate.Format("2006-01-02")
		stats.MemberSince = &first
		stats.LastRide = &last
	}

	if err := s.accounts.UpdateStats(ctx, account.ID, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// reconcileLeaderboards folds the account's best efforts into each segment
// leaderboard, then rewrites ranks and evicts cached reads for touched
// segments.
func (s *Service) reconcileLeaderboards(ctx context.Context, account *models.Account, results *Results) {
	best, err := s.efforts.BestBySegment(ctx, account.ID)
	if err != nil {
		log.Printf("[Sync] Account %s: best-effort query failed, skipping reconciliation: %v", account.ID, err)
		return
	}
	if len(best) == 0 {
		return
	}

	ghosts := make(map[string][]models.LeaderboardEntry, len(best))
	for segmentID := range best {
		entries, err := s.board.ListBySegment(ctx, segmentID)
		if err != nil {
			log.Printf("[Sync] Account %s: segment %s load failed, skipping: %v", account.ID, segmentID, err)
			delete(best, segmentID)
			continue
		}
		ghosts[segmentID] = entries
	}

	info := leaderboard.AccountInfo{
		ID:         account.ID,
		Name:       account.Name,
		ProfilePic: account.ProfilePic,
	}

	var touched []string
	for _, action := range leaderboard.Reconcile(info, best, ghosts) {
		if err := s.board.ApplyAction(ctx, &action); err != nil {
			log.Printf("[Sync] Account %s: %s on segment %s failed: %v", account.ID, action.Kind, action.SegmentID, err)
			continue
		}

		switch action.Kind {
		case leaderboard.ActionVerify:
			results.Verified++
			log.Printf("[Sync] Account %s: verified %q on %s (%ds)", account.ID, action.MatchedName, action.SegmentID, action.Entry.TimeSeconds)
		case leaderboard.ActionUpdate:
			results.Updated++
			log.Printf("[Sync] Account %s: updated %q on %s (%ds -> %ds)", account.ID, action.MatchedName, action.SegmentID, action.OldTime, action.Entry.TimeSeconds)
		case leaderboard.ActionInsert:
			results.Inserted++
			log.Printf("[Sync] Account %s: inserted on %s (%ds)", account.ID, action.SegmentID, action.Entry.TimeSeconds)
		}
		touched = append(touched, action.SegmentID)
	}

	for _, segmentID := range touched {
		if err := s.board.RecomputeRanks(ctx, segmentID); err != nil {
			log.Printf("[Sync] Account %s: rank recompute for %s failed: %v", account.ID, segmentID, err)
		}
	}

	if s.cache != nil && len(touched) > 0 {
		if err := s.cache.Invalidate(ctx, touched...); err != nil {
			log.Printf("[Sync] Account %s: cache invalidation failed: %v", account.ID, err)
		}
	}
}

// generateHighlights rebuilds the account's highlight set from synced data.
func (s *Service) generateHighlights(ctx context.Context, account *models.Account, results *Results) {
	s.writeProgress(ctx, account.ID, &models.SyncProgress{
		Step:             types.StepHighlights,
		SegmentsComplete: len(types.ClubSegments),
		SegmentsTotal:    len(types.ClubSegments),
		EffortsFound:     results.SegmentEfforts,
		ActivitiesFound:  results.Activities,
		Message:          "Generating highlights",
	})

	efforts, err := s.efforts.ListByAccount(ctx, account.ID)
	if err != nil {
		log.Printf("[Sync] Account %s: effort load for highlights failed: %v", account.ID, err)
		return
	}
	activities, err := s.activities.ListByAccount(ctx, account.ID)
	if err != nil {
		log.Printf("[Sync] Account %s: activity load for highlights failed: %v", account.ID, err)
		return
	}

	highlights := s.generator.Generate(account.ID, efforts, activities)
	if err := s.highlights.ReplaceForAccount(ctx, account.ID, highlights); err != nil {
		log.Printf("[Sync] Account %s: highlight replace failed: %v", account.ID, err)
		return
	}

	results.Highlights = len(highlights)
}

// completeRun marks the account complete and appends the audit record.
func (s *Service) completeRun(ctx context.Context, account *models.Account, stats *models.AccountStats, results *Results) {
	progress := &models.SyncProgress{
		Step:             types.StepComplete,
		SegmentsComplete: len(types.ClubSegments),
		SegmentsTotal:    len(types.ClubSegments),
		EffortsFound:     results.SegmentEfforts,
		ActivitiesFound:  results.Activities,
		Message:          "Sync complete",
	}
	if stats != nil {
		progress.TotalDistance = fmt.Sprintf("%.0f mi", stats.TotalDistanceMi)
		progress.TotalElevation = fmt.Sprintf("%.0f ft", stats.TotalElevationFt)
		if stats.MemberSince != nil {
			progress.FirstRide = *stats.MemberSince
		}
		if stats.LastRide != nil {
			progress.LastRide = *stats.LastRide
		}
	}
	s.writeProgress(ctx, account.ID, progress)

	if err := s.accounts.SetSyncStatus(ctx, account.ID, types.SyncComplete); err != nil {
		log.Printf("[Sync] Account %s: failed to mark complete: %v", account.ID, err)
	}

	s.appendAudit(ctx, account.ID, "complete", results)
}

// failRun records a fatal failure: error status, progress with the message,
// and a failed audit record.
func (s *Service) failRun(ctx context.Context, accountID string, results *Results, cause error) {
	log.Printf("[Sync] Account %s: fatal: %v", accountID, cause)

	s.writeProgress(ctx, accountID, &models.SyncProgress{
		Step:  types.StepComplete,
		Error: cause.Error(),
	})
	if err := s.accounts.SetSyncStatus(ctx, accountID, types.SyncError); err != nil {
		log.Printf("[Sync] Account %s: failed to mark errored: %v", accountID, err)
	}

	s.appendAudit(ctx, accountID, "failed", results)
}

func (s *Service) appendAudit(ctx context.Context, accountID, status string, results *Results) {
	err := s.audit.Append(ctx, &models.SyncLog{
		AccountID: accountID,
		Status:    status,
		Details:   results,
	})
	if err != nil {
		log.Printf("[Sync] Account %s: audit append failed: %v", accountID, err)
	}
}

func (s *Service) writeProgress(ctx context.Context, accountID string, progress *models.SyncProgress) {
	if err := s.accounts.UpdateSyncProgress(ctx, accountID, progress); err != nil {
		log.Printf("[Sync] Account %s: progress write failed: %v", accountID, err)
	}
}
