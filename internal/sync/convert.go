package sync

import (
	"time"

	"github.com/club-leaderboard/internal/models"
	"github.com/club-leaderboard/internal/strava"
	"github.com/club-leaderboard/internal/types"
	"github.com/club-leaderboard/internal/units"
)

// effortFromWire converts one fetched effort into its stored form.
func effortFromWire(accountID, segmentID string, e strava.SegmentEffortData) models.SegmentEffort {
	effort := models.SegmentEffort{
		AccountID:      accountID,
		SegmentID:      segmentID,
		StravaEffortID: e.ID,
		ElapsedTime:    e.ElapsedTime,
		MovingTime:     e.MovingTime,
		PRRank:         e.PRRank,
	}
	if t, err := time.Parse(time.RFC3339, e.StartDate); err == nil {
		effort.StartDate = t
	}
	if e.AverageWatts != nil {
		w := int(*e.AverageWatts)
		effort.AverageWatts = &w
	}
	if e.AverageHR != nil {
		hr := int(*e.AverageHR)
		effort.AverageHR = &hr
	}
	if e.MaxHR != nil {
		hr := int(*e.MaxHR)
		effort.MaxHR = &hr
	}
	return effort
}

// activityFromWire converts one fetched activity, applying unit conversions
// at the ingestion boundary so everything downstream is imperial.
func activityFromWire(accountID string, a strava.ActivityData) models.Activity {
	activity := models.Activity{
		AccountID:          accountID,
		StravaActivityID:   a.ID,
		Name:               a.Name,
		DistanceMi:         units.MetersToMiles(a.Distance),
		MovingTimeSeconds:  a.MovingTime,
		ElapsedTimeSeconds: a.ElapsedTime,
		ElevationGainFt:    units.MetersToFeet(a.TotalElevationGain),
	}
	if t, err := time.Parse(time.RFC3339, a.StartDate); err == nil {
		activity.StartDate = t
	}
	if t, err := time.Parse(time.RFC3339, a.StartDateLocal); err == nil {
		activity.StartDateLocal = t
	}
	if a.AverageSpeed != nil {
		mph := units.MpsToMph(*a.AverageSpeed)
		activity.AverageSpeedMph = &mph
	}
	if a.MaxSpeed != nil {
		mph := units.MpsToMph(*a.MaxSpeed)
		activity.MaxSpeedMph = &mph
	}
	if a.AverageWatts != nil {
		w := int(*a.AverageWatts)
		activity.AverageWatts = &w
	}
	if a.Kilojoules != nil {
		kj := int(*a.Kilojoules)
		activity.Kilojoules = &kj
	}
	if a.SufferScore != nil {
		s := int(*a.SufferScore)
		activity.SufferScore = &s
	}
	return activity
}

// crownFromWire converts one fetched leadership record.
func crownFromWire(accountID string, k strava.KomData) models.Crown {
	crownType := types.CrownKOM
	if k.KomType == string(types.CrownQOM) {
		crownType = types.CrownQOM
	}
	return models.Crown{
		AccountID:       accountID,
		StravaSegmentID: k.Segment.ID,
		SegmentName:     k.Segment.Name,
		Type:            crownType,
		TimeSeconds:     k.ElapsedTime,
		TimeDisplay:     units.SecondsToDisplay(k.ElapsedTime),
	}
}
