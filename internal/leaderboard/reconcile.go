// Package leaderboard implements the reconciliation and ranking core. All
// functions here are pure: they take snapshots of state and return actions
// or derived views, leaving persistence to the storage layer.
package leaderboard

import (
	"sort"

	"github.com/club-leaderboard/internal/models"
	"github.com/club-leaderboard/internal/types"
	"github.com/club-leaderboard/internal/units"
)

// verifyToleranceSeconds bounds the time delta under which a matched ghost
// entry is considered confirmed rather than corrected.
const verifyToleranceSeconds = 5

// AccountInfo is the slice of account state reconciliation needs.
type AccountInfo struct {
	ID         string
	Name       string
	ProfilePic *string
}

// ActionKind discriminates reconciliation outcomes.
type ActionKind string

const (
	// ActionVerify confirms a ghost entry whose time was already accurate.
	ActionVerify ActionKind = "verify"
	// ActionUpdate corrects a ghost entry whose time drifted.
	ActionUpdate ActionKind = "update"
	// ActionInsert adds a verified entry for an athlete with no ghost row.
	ActionInsert ActionKind = "insert"
)

// Action is one reconciliation decision. Verify and update persist the same
// entry state; they differ only in the audit label and the recorded old time.
type Action struct {
	Kind        ActionKind
	SegmentID   string
	EntryID     string // matched entry id, empty for inserts
	MatchedName string // ghost name that matched, for the audit trail
	OldTime     int    // previous time on the matched entry
	Entry       models.LeaderboardEntry
}

// Reconcile compares an athlete's best verified efforts against the scraped
// ghost entries per segment and decides, for each segment with an effort,
// whether to verify, update, or insert. Rank and gap fields on the returned
// entries are zero; callers recompute them after applying actions.
func Reconcile(acct AccountInfo, best map[string]*models.SegmentEffort, ghosts map[string][]models.LeaderboardEntry) []Action {
	segmentIDs := make([]string, 0, len(best))
	for id := range best {
		segmentIDs = append(segmentIDs, id)
	}
	sort.Strings(segmentIDs)

	var actions []Action
	for _, segmentID := range segmentIDs {
		effort := best[segmentID]
		if effort == nil {
			continue
		}
		actions = append(actions, reconcileSegment(acct, segmentID, effort, ghosts[segmentID]))
	}
	return actions
}

func reconcileSegment(acct AccountInfo, segmentID string, effort *models.SegmentEffort, entries []models.LeaderboardEntry) Action {
	entry := entryFromEffort(acct, segmentID, effort)

	matched := findMatch(acct, entries)
	if matched == nil {
		return Action{
			Kind:      ActionInsert,
			SegmentID: segmentID,
			Entry:     entry,
		}
	}

	kind := ActionUpdate
	if delta := effort.ElapsedTime - matched.TimeSeconds; -verifyToleranceSeconds < delta && delta < verifyToleranceSeconds {
		kind = ActionVerify
	}

	matchedName := ""
	if matched.RiderName != nil {
		matchedName = *matched.RiderName
	}

	return Action{
		Kind:        kind,
		SegmentID:   segmentID,
		EntryID:     matched.ID,
		MatchedName: matchedName,
		OldTime:     matched.TimeSeconds,
		Entry:       entry,
	}
}

// findMatch prefers an entry already linked to the account, then falls back
// to name matching against unclaimed ghost entries.
func findMatch(acct AccountInfo, entries []models.LeaderboardEntry) *models.LeaderboardEntry {
	for i := range entries {
		if entries[i].AccountID != nil && *entries[i].AccountID == acct.ID {
			return &entries[i]
		}
	}

	var candidates []models.LeaderboardEntry
	var candidateNames []string
	for _, e := range entries {
		if e.Status != types.EntryGhost || e.RiderName == nil {
			continue
		}
		candidates = append(candidates, e)
		candidateNames = append(candidateNames, *e.RiderName)
	}

	idx := FindNameMatch(acct.Name, candidateNames)
	if idx < 0 {
		return nil
	}
	return &candidates[idx]
}

func entryFromEffort(acct AccountInfo, segmentID string, effort *models.SegmentEffort) models.LeaderboardEntry {
	name := acct.Name
	effortID := effort.StravaEffortID
	date := effort.StartDate.Format("2006-01-02")

	var power *int
	if effort.AverageWatts != nil {
		w := *effort.AverageWatts
		power = &w
	}

	return models.LeaderboardEntry{
		SegmentID:      segmentID,
		RiderName:      &name,
		TimeSeconds:    effort.ElapsedTime,
		TimeDisplay:    units.SecondsToDisplay(effort.ElapsedTime),
		Date:           &date,
		PowerWatts:     power,
		Status:         types.EntryVerified,
		AccountID:      &acct.ID,
		StravaEffortID: &effortID,
		ProfilePic:     acct.ProfilePic,
	}
}
