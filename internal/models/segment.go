package models

// Segment represents a club-curated course. Segments are seeded by admin
// tooling and never created by the sync pipeline; only the visibility flag
// changes after seeding.
type Segment struct {
	ID          string  `json:"id"` // URL-safe slug ("hawk-hill")
	StravaID    int64   `json:"stravaId"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	DistanceKm  float64 `json:"distanceKm"`
	DistanceMi  float64 `json:"distanceMi"`
	ElevGainFt  float64 `json:"elevGainFt"`
	Grade       float64 `json:"grade"`
	Category    string  `json:"category"` // "Cat 4" .. "HC"
	ClubMembers int     `json:"clubMembers"`
	Visible     bool    `json:"visible"`
}
