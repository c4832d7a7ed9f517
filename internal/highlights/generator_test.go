package highlights

import (
	"testing"
	"time"

	"github.com/club-leaderboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func effort(segmentID string, elapsed int) models.SegmentEffort {
	return models.SegmentEffort{
		AccountID:   "acct-1",
		SegmentID:   segmentID,
		ElapsedTime: elapsed,
	}
}

func ride(name string, miles, feet float64, start time.Time) models.Activity {
	return models.Activity{
		AccountID:        "acct-1",
		StravaActivityID: start.Unix(),
		Name:             name,
		DistanceMi:       miles,
		ElevationGainFt:  feet,
		StartDate:        start,
		StartDateLocal:   start,
	}
}

func byCategory(highlights []models.Highlight) map[string]models.Highlight {
	m := make(map[string]models.Highlight, len(highlights))
	for _, h := range highlights {
		m[h.Category] = h
	}
	return m
}

func TestGenerate_EmptyInputs(t *testing.T) {
	g := NewGenerator()
	assert.Empty(t, g.Generate("acct-1", nil, nil))
}

func TestGenerate_FastestSegment(t *testing.T) {
	g := NewGenerator()
	efforts := []models.SegmentEffort{
		effort("hawk-hill", 420),
		effort("hawk-hill", 380),
		effort("radio-road", 610),
	}

	got := byCategory(g.Generate("acct-1", efforts, nil))
	h, ok := got[CategoryFastestSegment]
	require.True(t, ok)
	assert.Equal(t, "6:20", h.StatValue)
	assert.Equal(t, "Hawk Hill", h.StatLabel)
	require.NotNil(t, h.SegmentID)
	assert.Equal(t, "hawk-hill", *h.SegmentID)
}

func TestGenerate_MostAttempts(t *testing.T) {
	g := NewGenerator()
	efforts := []models.SegmentEffort{
		effort("hawk-hill", 420),
		effort("radio-road", 610),
		effort("radio-road", 600),
		effort("radio-road", 605),
	}

	got := byCategory(g.Generate("acct-1", efforts, nil))
	h, ok := got[CategoryMostAttempts]
	require.True(t, ok)
	assert.Equal(t, "3 attempts", h.StatValue)
	require.NotNil(t, h.SegmentID)
	assert.Equal(t, "radio-road", *h.SegmentID)
}

func TestGenerate_ActivityHighlights(t *testing.T) {
	g := NewGenerator()
	activities := []models.Activity{
		ride("Sunday Spin", 25.5, 1200, time.Date(2015, 3, 8, 9, 0, 0, 0, time.UTC)),
		ride("Century", 102.3, 4800, time.Date(2016, 6, 4, 7, 0, 0, 0, time.UTC)),
		ride("Hill Repeats", 30.1, 6200, time.Date(2016, 9, 10, 8, 0, 0, 0, time.UTC)),
	}

	got := byCategory(g.Generate("acct-1", nil, activities))

	longest := got[CategoryLongestRide]
	assert.Equal(t, "Century", longest.Description)
	assert.Equal(t, "102.3 mi", longest.StatValue)
	assert.Equal(t, "Jun 4, 2016", longest.StatLabel)

	climb := got[CategoryBiggestClimb]
	assert.Equal(t, "Hill Repeats", climb.Description)
	assert.Equal(t, "6200 ft", climb.StatValue)

	distance := got[CategoryTotalDistance]
	assert.Equal(t, "158 mi", distance.StatValue)
	assert.Equal(t, "Across 3 rides", distance.Description)

	elevation := got[CategoryTotalElevation]
	assert.Equal(t, "12200 ft", elevation.StatValue)

	first := got[CategoryFirstRide]
	assert.Equal(t, "Sunday Spin", first.Description)
	assert.Equal(t, "Mar 8, 2015", first.StatValue)
	assert.Equal(t, "25.5 mi", first.StatLabel)

	year := got[CategoryMostRidesYear]
	assert.Equal(t, "2 rides", year.StatValue)
	assert.Equal(t, "2016", year.StatLabel)
}

func TestGenerate_NoClimbHighlightWithoutElevation(t *testing.T) {
	g := NewGenerator()
	activities := []models.Activity{
		ride("Flat Loop", 12.0, 0, time.Date(2017, 1, 2, 8, 0, 0, 0, time.UTC)),
	}

	got := byCategory(g.Generate("acct-1", nil, activities))
	_, ok := got[CategoryBiggestClimb]
	assert.False(t, ok)
}

func TestGenerate_MostRidesYearTieBreaksToEarlierYear(t *testing.T) {
	g := NewGenerator()
	activities := []models.Activity{
		ride("a", 10, 100, time.Date(2014, 5, 1, 8, 0, 0, 0, time.UTC)),
		ride("b", 10, 100, time.Date(2015, 5, 1, 8, 0, 0, 0, time.UTC)),
	}

	got := byCategory(g.Generate("acct-1", nil, activities))
	h := got[CategoryMostRidesYear]
	assert.Equal(t, "2014", h.StatLabel)
	assert.Equal(t, "1 rides", h.StatValue)
}
