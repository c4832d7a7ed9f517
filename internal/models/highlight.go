package models

// Highlight is one personalized "greatest hit" record generated for an
// account after sync. The account's set is replaced wholesale on every run.
type Highlight struct {
	ID               string  `json:"id"`
	AccountID        string  `json:"accountId"`
	Category         string  `json:"category"`
	Title            string  `json:"title"`       // Short label: "Iron Legs"
	Description      string  `json:"description"` // "You climbed 8,400 ft on Oct 12, 2017"
	StatValue        string  `json:"statValue"`
	StatLabel        string  `json:"statLabel"`
	SegmentID        *string `json:"segmentId,omitempty"`
	ActivityStravaID *int64  `json:"activityStravaId,omitempty"`
	RankInClub       *int    `json:"rankInClub,omitempty"`
	Percentile       *int    `json:"percentile,omitempty"`
}
