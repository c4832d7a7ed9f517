// Package types provides common type definitions for the club leaderboard system.
package types

// SyncStatus represents the lifecycle of an account's sync pipeline run
type SyncStatus string

const (
	// SyncPending represents an account that has never been synced
	SyncPending SyncStatus = "pending"
	// SyncRunning represents an account with a pipeline run in flight
	SyncRunning SyncStatus = "syncing"
	// SyncComplete represents an account whose last run finished
	SyncComplete SyncStatus = "complete"
	// SyncError represents an account whose last run aborted fatally
	SyncError SyncStatus = "error"
)

// SyncStep identifies the stage a pipeline run is currently in
type SyncStep string

const (
	// StepSegmentEfforts is the per-segment effort fetch stage
	StepSegmentEfforts SyncStep = "segment_efforts"
	// StepActivities is the activity history pagination stage
	StepActivities SyncStep = "activities"
	// StepHighlights is the highlight generation stage
	StepHighlights SyncStep = "greatest_hits"
	// StepComplete marks a finished run
	StepComplete SyncStep = "complete"
)

// EntryStatus represents the provenance of a leaderboard row
type EntryStatus string

const (
	// EntryGhost represents a scraped row with no linked account
	EntryGhost EntryStatus = "ghost"
	// EntryClaimed represents a row nominally matched to an account by name
	EntryClaimed EntryStatus = "claimed"
	// EntryVerified represents a row backed by an account's fetched effort
	EntryVerified EntryStatus = "verified"
)

// DisplayPriority orders entry statuses for per-name display dedup.
// Higher wins: verified > claimed > ghost.
func (s EntryStatus) DisplayPriority() int {
	switch s {
	case EntryVerified:
		return 2
	case EntryClaimed:
		return 1
	default:
		return 0
	}
}

// CrownType distinguishes KOM from QOM achievements
type CrownType string

const (
	// CrownKOM represents a king-of-the-mountain achievement
	CrownKOM CrownType = "kom"
	// CrownQOM represents a queen-of-the-mountain achievement
	CrownQOM CrownType = "qom"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ClubSegment maps a club-curated course to its external identity.
type ClubSegment struct {
	Slug     string
	StravaID int64
	Name     string
}

// ClubSegments is the club's fixed course set, in the stable order the
// sync pipeline iterates it.
var ClubSegments = []ClubSegment{
	{Slug: "hawk-hill", StravaID: 229781, Name: "Hawk Hill"},
	{Slug: "radio-road", StravaID: 241885, Name: "Radio Road"},
	{Slug: "old-la-honda", StravaID: 8109834, Name: "Old La Honda"},
	{Slug: "hwy1-muir-beach", StravaID: 4793848, Name: "Hwy 1 from Muir Beach"},
	{Slug: "alpe-dhuez", StravaID: 652851, Name: "Alpe d'Huez"},
	{Slug: "four-corners", StravaID: 1173191, Name: "Four Corners"},
	{Slug: "bofax-climb", StravaID: 1707949, Name: "BoFax Climb"},
	{Slug: "bourg-doisans", StravaID: 3681888, Name: "Bourg d'Oisans"},
}

// SegmentNameBySlug returns the display name for a club slug, falling back
// to the slug itself for unknown segments.
func SegmentNameBySlug(slug string) string {
	for _, s := range ClubSegments {
		if s.Slug == slug {
			return s.Name
		}
	}
	return slug
}
