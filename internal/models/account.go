package models

import (
	"time"

	"github.com/club-leaderboard/internal/types"
)

// Account represents a club member linked to the external tracking service.
// Aggregate stats are computed during sync and finalized at completion.
type Account struct {
	ID         string  `json:"id"`
	StravaID   int64   `json:"stravaId"`
	Name       string  `json:"name"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	ProfilePic *string `json:"profilePic,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`

	AccessToken    string `json:"-"`
	RefreshToken   string `json:"-"`
	TokenExpiresAt int64  `json:"-"` // Unix timestamp

	SyncStatus   types.SyncStatus `json:"syncStatus"`
	SyncProgress *SyncProgress    `json:"syncProgress,omitempty"`

	TotalRides       *int       `json:"totalRides,omitempty"`
	TotalDistanceMi  *float64   `json:"totalDistanceMi,omitempty"`
	TotalElevationFt *float64   `json:"totalElevationFt,omitempty"`
	MemberSince      *string    `json:"memberSince,omitempty"` // Earliest activity date
	LastRide         *string    `json:"lastRide,omitempty"`    // Most recent activity date
	KomCount         *int       `json:"komCount,omitempty"`
	LastSyncAt       *time.Time `json:"lastSyncAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TokenExpired reports whether the stored access token has passed its expiry.
func (a *Account) TokenExpired(now time.Time) bool {
	return a.TokenExpiresAt < now.Unix()
}

// SyncProgress is the structured snapshot embedded in the account row.
// Only the latest snapshot is retained; it is written after every unit of
// work so a poller always observes monotonic progress.
type SyncProgress struct {
	Step               types.SyncStep `json:"step"`
	CurrentSegment     string         `json:"current_segment,omitempty"`
	CurrentSegmentName string         `json:"current_segment_name,omitempty"`
	SegmentsComplete   int            `json:"segments_complete"`
	SegmentsTotal      int            `json:"segments_total"`
	EffortsFound       int            `json:"efforts_found"`
	BestTimeDisplay    string         `json:"best_time_display,omitempty"`
	BestDate           string         `json:"best_date,omitempty"`
	MostRecentDate     string         `json:"most_recent_date,omitempty"`
	ActivitiesFound    int            `json:"activities_found,omitempty"`
	ActivitiesPage     int            `json:"activities_page,omitempty"`
	ActivityPagesTotal int            `json:"activities_pages_total,omitempty"`
	TotalDistance      string         `json:"total_distance,omitempty"`
	TotalElevation     string         `json:"total_elevation,omitempty"`
	TotalHours         string         `json:"total_hours,omitempty"`
	FirstRide          string         `json:"first_ride,omitempty"`
	LastRide           string         `json:"last_ride,omitempty"`
	Message            string         `json:"message,omitempty"`
	Error              string         `json:"error,omitempty"`
}
