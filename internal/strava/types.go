package strava

// Wire formats for the external API. Field names mirror the provider's JSON;
// only the fields the sync pipeline consumes are declared.

// SegmentEffortData is one attempt on a segment.
type SegmentEffortData struct {
	ID           int64       `json:"id"`
	ElapsedTime  int         `json:"elapsed_time"`
	MovingTime   int         `json:"moving_time"`
	StartDate    string      `json:"start_date"`
	AverageWatts *float64    `json:"average_watts,omitempty"`
	AverageHR    *float64    `json:"average_heartrate,omitempty"`
	MaxHR        *float64    `json:"max_heartrate,omitempty"`
	PRRank       *int        `json:"pr_rank,omitempty"`
	Segment      SegmentData `json:"segment"`
	Activity     RefData     `json:"activity"`
	Athlete      RefData     `json:"athlete"`
}

// SegmentData is the nested segment summary on an effort or KOM record.
type SegmentData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// RefData is a bare id reference to another resource.
type RefData struct {
	ID int64 `json:"id"`
}

// ActivityData is one entry in the athlete's activity history.
type ActivityData struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Distance           float64  `json:"distance"`            // meters
	MovingTime         int      `json:"moving_time"`         // seconds
	ElapsedTime        int      `json:"elapsed_time"`        // seconds
	TotalElevationGain float64  `json:"total_elevation_gain"` // meters
	Type               string   `json:"type"`
	StartDate          string   `json:"start_date"`
	StartDateLocal     string   `json:"start_date_local"`
	AverageSpeed       *float64 `json:"average_speed,omitempty"` // m/s
	MaxSpeed           *float64 `json:"max_speed,omitempty"`     // m/s
	AverageWatts       *float64 `json:"average_watts,omitempty"`
	Kilojoules         *float64 `json:"kilojoules,omitempty"`
	SufferScore        *float64 `json:"suffer_score,omitempty"`
}

// KomData is one segment-leadership record. The provider returns these as
// effort objects; the nested segment carries the identity.
type KomData struct {
	ID          int64       `json:"id"`
	ElapsedTime int         `json:"elapsed_time"`
	KomRank     *int        `json:"kom_rank,omitempty"`
	KomType     string      `json:"kom_type,omitempty"` // "kom" or "qom"
	Segment     SegmentData `json:"segment"`
}

// AthleteData is the authenticated athlete's profile.
type AthleteData struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Profile   string `json:"profile"`
	City      string `json:"city"`
	State     string `json:"state"`
}
