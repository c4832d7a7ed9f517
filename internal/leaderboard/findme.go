package leaderboard

import (
	"sort"

	"github.com/club-leaderboard/internal/models"
)

// FindMeView is a windowed slice of a segment leaderboard centered on the
// requesting athlete.
type FindMeView struct {
	Found       bool                      `json:"found"`
	Rank        int                       `json:"rank,omitempty"`
	TotalRiders int                       `json:"totalRiders"`
	Entries     []models.LeaderboardEntry `json:"entries"`
	GapToTop10  *string                   `json:"gapToTop10,omitempty"`
}

// BuildFindMeView locates accountID on a segment leaderboard and returns a
// context window of contextSize entries on each side, clamped to the board
// edges. GapToTop10 is set only when the athlete sits below tenth place and
// a tenth entry exists.
func BuildFindMeView(entries []models.LeaderboardEntry, accountID string, contextSize int) FindMeView {
	sorted := make([]models.LeaderboardEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeSeconds < sorted[j].TimeSeconds
	})

	view := FindMeView{TotalRiders: len(sorted)}

	idx := -1
	for i := range sorted {
		if sorted[i].AccountID != nil && *sorted[i].AccountID == accountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return view
	}

	view.Found = true
	view.Rank = idx + 1

	lo := idx - contextSize
	if lo < 0 {
		lo = 0
	}
	hi := idx + contextSize + 1
	if hi > len(sorted) {
		hi = len(sorted)
	}
	view.Entries = sorted[lo:hi]

	if view.Rank > 10 && len(sorted) >= 10 {
		gap := sorted[idx].TimeSeconds - sorted[9].TimeSeconds
		display := FormatGap(gap)
		view.GapToTop10 = &display
	}

	return view
}

// DedupForDisplay collapses entries sharing a normalized rider name, keeping
// the highest-status one. Verified beats claimed beats ghost; ties keep the
// faster time.
func DedupForDisplay(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	best := make(map[string]models.LeaderboardEntry)
	order := make([]string, 0, len(entries))

	for _, e := range entries {
		key := ""
		if e.RiderName != nil {
			key = NormalizeName(*e.RiderName)
		}
		if key == "" {
			key = e.ID
		}

		existing, ok := best[key]
		if !ok {
			best[key] = e
			order = append(order, key)
			continue
		}
		if e.Status.DisplayPriority() > existing.Status.DisplayPriority() ||
			(e.Status.DisplayPriority() == existing.Status.DisplayPriority() && e.TimeSeconds < existing.TimeSeconds) {
			best[key] = e
		}
	}

	out := make([]models.LeaderboardEntry, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeSeconds < out[j].TimeSeconds
	})
	return out
}
