package leaderboard

import (
	"fmt"
	"sort"
)

// RankedEntry is the rank/gap assignment for one leaderboard row.
type RankedEntry struct {
	EntryID    string
	Rank       int
	GapSeconds *int    // nil for the leader
	GapDisplay *string // nil for the leader
}

// rankInput is the minimal projection CalculateRanks needs per row.
type rankInput struct {
	ID          string
	TimeSeconds int
}

// CalculateRanks re-derives rank and gap for a whole segment from scratch.
// Rows are ordered by ascending time; ranks are dense 1..n; the gap is the
// delta to the leader and is nil on the leader itself. Ties keep their
// relative input order and receive distinct consecutive ranks.
func CalculateRanks(ids []string, times []int) []RankedEntry {
	rows := make([]rankInput, len(ids))
	for i := range ids {
		rows[i] = rankInput{ID: ids[i], TimeSeconds: times[i]}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TimeSeconds < rows[j].TimeSeconds
	})

	ranked := make([]RankedEntry, len(rows))
	for i, row := range rows {
		ranked[i] = RankedEntry{EntryID: row.ID, Rank: i + 1}
		if i > 0 {
			gap := row.TimeSeconds - rows[0].TimeSeconds
			display := FormatGap(gap)
			ranked[i].GapSeconds = &gap
			ranked[i].GapDisplay = &display
		}
	}
	return ranked
}

// FormatGap renders a gap to the leader as "+Ns" under a minute, otherwise
// "+M:SS".
func FormatGap(gapSeconds int) string {
	if gapSeconds < 60 {
		return fmt.Sprintf("+%ds", gapSeconds)
	}
	return fmt.Sprintf("+%d:%02d", gapSeconds/60, gapSeconds%60)
}
