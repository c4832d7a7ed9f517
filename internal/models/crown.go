package models

import "github.com/club-leaderboard/internal/types"

// Crown is a segment-leadership achievement (KOM/QOM) held by an account.
// The whole set is replaced on every sync to avoid stale entries.
type Crown struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"accountId"`
	StravaSegmentID int64           `json:"stravaSegmentId"`
	SegmentName     string          `json:"segmentName"`
	Type            types.CrownType `json:"komType"`
	TimeSeconds     int             `json:"timeSeconds"`
	TimeDisplay     string          `json:"timeDisplay"`
}
