package models

import "time"

// Activity is one ride from the account's history, unit-converted at
// ingestion. StravaActivityID is the idempotency key for upserts.
type Activity struct {
	ID                 string    `json:"id"`
	AccountID          string    `json:"accountId"`
	StravaActivityID   int64     `json:"stravaActivityId"`
	Name               string    `json:"name"`
	DistanceMi         float64   `json:"distanceMi"`
	MovingTimeSeconds  int       `json:"movingTimeSeconds"`
	ElapsedTimeSeconds int       `json:"elapsedTimeSeconds"`
	ElevationGainFt    float64   `json:"totalElevationGainFt"`
	StartDate          time.Time `json:"startDate"`
	StartDateLocal     time.Time `json:"startDateLocal"`
	AverageSpeedMph    *float64  `json:"averageSpeedMph,omitempty"`
	MaxSpeedMph        *float64  `json:"maxSpeedMph,omitempty"`
	AverageWatts       *int      `json:"averageWatts,omitempty"`
	Kilojoules         *int      `json:"kilojoules,omitempty"`
	SufferScore        *int      `json:"sufferScore,omitempty"`
}
