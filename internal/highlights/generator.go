// Package highlights derives an athlete's "greatest hits" from their synced
// efforts and activity history. Generation is pure; the sync pipeline
// replaces the stored set wholesale on each run.
package highlights

import (
	"fmt"
	"sort"

	"github.com/club-leaderboard/internal/models"
	"github.com/club-leaderboard/internal/types"
	"github.com/club-leaderboard/internal/units"
)

// Highlight categories.
const (
	CategoryFastestSegment = "fastest_segment"
	CategoryMostAttempts   = "most_attempts"
	CategoryLongestRide    = "longest_ride"
	CategoryBiggestClimb   = "biggest_climb"
	CategoryTotalDistance  = "total_distance"
	CategoryTotalElevation = "total_elevation"
	CategoryFirstRide      = "first_ride"
	CategoryMostRidesYear  = "most_rides_year"
)

// Generator builds the highlight set for an account.
type Generator struct{}

// NewGenerator creates a highlight generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate derives highlights from an athlete's efforts and activities.
// Categories with no supporting data are simply omitted.
func (g *Generator) Generate(accountID string, efforts []models.SegmentEffort, activities []models.Activity) []models.Highlight {
	var highlights []models.Highlight

	if h := g.fastestSegment(accountID, efforts); h != nil {
		highlights = append(highlights, *h)
	}
	if h := g.mostAttempts(accountID, efforts); h != nil {
		highlights = append(highlights, *h)
	}
	if h := g.longestRide(accountID, activities); h != nil {
		highlights = append(highlights, *h)
	}
	if h := g.biggestClimb(accountID, activities); h != nil {
		highlights = append(highlights, *h)
	}
	highlights = append(highlights, g.totals(accountID, activities)...)
	if h := g.firstRide(accountID, activities); h != nil {
		highlights = append(highlights, *h)
	}
	if h := g.mostRidesYear(accountID, activities); h != nil {
		highlights = append(highlights, *h)
	}

	return highlights
}

func (g *Generator) fastestSegment(accountID string, efforts []models.SegmentEffort) *models.Highlight {
	if len(efforts) == 0 {
		return nil
	}

	best := efforts[0]
	for _, e := range efforts[1:] {
		if e.ElapsedTime < best.ElapsedTime {
			best = e
		}
	}

	segmentID := best.SegmentID
	name := types.SegmentNameBySlug(segmentID)
	return &models.Highlight{
		AccountID:   accountID,
		Category:    CategoryFastestSegment,
		Title:       "Fastest Segment",
		Description: fmt.Sprintf("Your quickest climb: %s", name),
		StatValue:   units.SecondsToDisplay(best.ElapsedTime),
		StatLabel:   name,
		SegmentID:   &segmentID,
	}
}

func (g *Generator) mostAttempts(accountID string, efforts []models.SegmentEffort) *models.Highlight {
	if len(efforts) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, e := range efforts {
		counts[e.SegmentID]++
	}

	topSegment := ""
	topCount := 0
	for _, slug := range orderedSlugs() {
		if counts[slug] > topCount {
			topSegment, topCount = slug, counts[slug]
		}
	}
	if topCount == 0 {
		return nil
	}

	name := types.SegmentNameBySlug(topSegment)
	return &models.Highlight{
		AccountID:   accountID,
		Category:    CategoryMostAttempts,
		Title:       "Favorite Climb",
		Description: fmt.Sprintf("You attempted %s %d times", name, topCount),
		StatValue:   fmt.Sprintf("%d attempts", topCount),
		StatLabel:   name,
		SegmentID:   &topSegment,
	}
}

func (g *Generator) longestRide(accountID string, activities []models.Activity) *models.Highlight {
	if len(activities) == 0 {
		return nil
	}

	best := activities[0]
	for _, a := range activities[1:] {
		if a.DistanceMi > best.DistanceMi {
			best = a
		}
	}

	activityID := best.StravaActivityID
	return &models.Highlight{
		AccountID:        accountID,
		Category:         CategoryLongestRide,
		Title:            "Longest Ride",
		Description:      best.Name,
		StatValue:        fmt.Sprintf("%.1f mi", best.DistanceMi),
		StatLabel:        best.StartDateLocal.Format("Jan 2, 2006"),
		ActivityStravaID: &activityID,
	}
}

func (g *Generator) biggestClimb(accountID string, activities []models.Activity) *models.Highlight {
	if len(activities) == 0 {
		return nil
	}

	best := activities[0]
	for _, a := range activities[1:] {
		if a.ElevationGainFt > best.ElevationGainFt {
			best = a
		}
	}
	if best.ElevationGainFt == 0 {
		return nil
	}

	activityID := best.StravaActivityID
	return &models.Highlight{
		AccountID:        accountID,
		Category:         CategoryBiggestClimb,
		Title:            "Biggest Climbing Day",
		Description:      best.Name,
		StatValue:        fmt.Sprintf("%.0f ft", best.ElevationGainFt),
		StatLabel:        best.StartDateLocal.Format("Jan 2, 2006"),
		ActivityStravaID: &activityID,
	}
}

func (g *Generator) totals(accountID string, activities []models.Activity) []models.Highlight {
	if len(activities) == 0 {
		return nil
	}

	var distance, elevation float64
	for _, a := range activities {
		distance += a.DistanceMi
		elevation += a.ElevationGainFt
	}

	return []models.Highlight{
		{
			AccountID:   accountID,
			Category:    CategoryTotalDistance,
			Title:       "Total Distance",
			Description: fmt.Sprintf("Across %d rides", len(activities)),
			StatValue:   fmt.Sprintf("%.0f mi", distance),
			StatLabel:   "lifetime miles",
		},
		{
			AccountID:   accountID,
			Category:    CategoryTotalElevation,
			Title:       "Total Climbing",
			Description: fmt.Sprintf("Across %d rides", len(activities)),
			StatValue:   fmt.Sprintf("%.0f ft", elevation),
			StatLabel:   "lifetime elevation",
		},
	}
}

func (g *Generator) firstRide(accountID string, activities []models.Activity) *models.Highlight {
	if len(activities) == 0 {
		return nil
	}

	first := activities[0]
	for _, a := range activities[1:] {
		if a.StartDate.Before(first.StartDate) {
			first = a
		}
	}

	activityID := first.StravaActivityID
	return &models.Highlight{
		AccountID:        accountID,
		Category:         CategoryFirstRide,
		Title:            "Where It Started",
		Description:      first.Name,
		StatValue:        first.StartDateLocal.Format("Jan 2, 2006"),
		StatLabel:        fmt.Sprintf("%.1f mi", first.DistanceMi),
		ActivityStravaID: &activityID,
	}
}

func (g *Generator) mostRidesYear(accountID string, activities []models.Activity) *models.Highlight {
	if len(activities) == 0 {
		return nil
	}

	counts := make(map[int]int)
	for _, a := range activities {
		counts[a.StartDate.Year()]++
	}

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	topYear, topCount := 0, 0
	for _, y := range years {
		if counts[y] > topCount {
			topYear, topCount = y, counts[y]
		}
	}

	return &models.Highlight{
		AccountID:   accountID,
		Category:    CategoryMostRidesYear,
		Title:       "Biggest Year",
		Description: fmt.Sprintf("%d rides in %d", topCount, topYear),
		StatValue:   fmt.Sprintf("%d rides", topCount),
		StatLabel:   fmt.Sprintf("%d", topYear),
	}
}

func orderedSlugs() []string {
	slugs := make([]string, len(types.ClubSegments))
	for i, s := range types.ClubSegments {
		slugs[i] = s.Slug
	}
	return slugs
}
