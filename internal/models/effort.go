package models

import "time"

// SegmentEffort is one raw attempt fetched from the external API. The table
// is append-only; StravaEffortID is the idempotency key, so re-running a
// sync overwrites rows with identical values instead of duplicating them.
type SegmentEffort struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"accountId"`
	SegmentID      string    `json:"segmentId"`
	StravaEffortID int64     `json:"stravaEffortId"`
	ElapsedTime    int       `json:"elapsedTime"` // seconds
	MovingTime     int       `json:"movingTime"`  // seconds
	StartDate      time.Time `json:"startDate"`
	AverageWatts   *int      `json:"averageWatts,omitempty"`
	AverageHR      *int      `json:"averageHeartrate,omitempty"`
	MaxHR          *int      `json:"maxHeartrate,omitempty"`
	PRRank         *int      `json:"prRank,omitempty"` // 1, 2, 3, or null
}
