package models

// AccountStats is the aggregate snapshot finalized at the end of a sync run.
type AccountStats struct {
	TotalRides       int     `json:"totalRides"`
	TotalDistanceMi  float64 `json:"totalDistanceMi"`
	TotalElevationFt float64 `json:"totalElevationFt"`
	MemberSince      *string `json:"memberSince,omitempty"`
	LastRide         *string `json:"lastRide,omitempty"`
	KomCount         int     `json:"komCount"`
}
