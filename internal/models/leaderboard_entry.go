package models

import "github.com/club-leaderboard/internal/types"

// LeaderboardEntry is one ranked attempt-result row scoped to a segment.
//
// Within a segment, entries are totally ordered by time ascending and Rank
// is exactly that ordering's 1-based position. GapSeconds is null iff
// Rank == 1. Status verified implies a non-null AccountID. Rows are never
// deleted by the pipeline; name duplicates are display-filtered, not removed.
type LeaderboardEntry struct {
	ID          string            `json:"id"`
	SegmentID   string            `json:"segmentId"`
	Rank        int               `json:"rank"`
	RiderName   *string           `json:"riderName"` // null = fully unclaimed
	TimeSeconds int               `json:"timeSeconds"`
	TimeDisplay string            `json:"timeDisplay"`
	GapSeconds  *int              `json:"gapSeconds"`
	GapDisplay  *string           `json:"gapDisplay"`
	Date        *string           `json:"date"` // ISO date of the effort
	SpeedMph    *float64          `json:"speedMph"`
	PowerWatts  *int              `json:"powerWatts"`
	Status      types.EntryStatus `json:"status"`

	AccountID      *string `json:"accountId"`
	StravaEffortID *int64  `json:"stravaEffortId"` // unique when present
	ProfilePic     *string `json:"profilePic"`
}
