package leaderboard

import (
	"fmt"
	"testing"

	"github.com/club-leaderboard/internal/models"
	"github.com/club-leaderboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// board builds n entries with times 100, 110, 120, ... and links the entry
// at position ownIdx (0-based) to acct-1.
func board(n, ownIdx int) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, n)
	for i := range entries {
		entries[i] = models.LeaderboardEntry{
			ID:          fmt.Sprintf("e%d", i),
			SegmentID:   "hawk-hill",
			RiderName:   strPtr(fmt.Sprintf("Rider %d", i)),
			TimeSeconds: 100 + i*10,
			Status:      types.EntryGhost,
		}
	}
	if ownIdx >= 0 && ownIdx < n {
		entries[ownIdx].AccountID = strPtr("acct-1")
		entries[ownIdx].Status = types.EntryVerified
	}
	return entries
}

func TestBuildFindMeView_WindowAroundAthlete(t *testing.T) {
	// Rank 12 of 30 with context 5: window covers ranks 7 through 17.
	view := BuildFindMeView(board(30, 11), "acct-1", 5)

	assert.True(t, view.Found)
	assert.Equal(t, 12, view.Rank)
	assert.Equal(t, 30, view.TotalRiders)
	require.Len(t, view.Entries, 11)
	assert.Equal(t, "e6", view.Entries[0].ID)
	assert.Equal(t, "e16", view.Entries[10].ID)

	// Rank 12 with time 210 vs the 10th at 190.
	require.NotNil(t, view.GapToTop10)
	assert.Equal(t, "+20s", *view.GapToTop10)
}

func TestBuildFindMeView_NoGapInsideTopTen(t *testing.T) {
	view := BuildFindMeView(board(30, 2), "acct-1", 5)

	assert.True(t, view.Found)
	assert.Equal(t, 3, view.Rank)
	assert.Nil(t, view.GapToTop10)
}

func TestBuildFindMeView_ClampedAtEdges(t *testing.T) {
	// Leader with context 5: no wraparound above.
	view := BuildFindMeView(board(30, 0), "acct-1", 5)
	require.True(t, view.Found)
	require.Len(t, view.Entries, 6)
	assert.Equal(t, "e0", view.Entries[0].ID)

	// Last place: no wraparound below.
	view = BuildFindMeView(board(30, 29), "acct-1", 5)
	require.True(t, view.Found)
	require.Len(t, view.Entries, 6)
	assert.Equal(t, "e29", view.Entries[5].ID)
}

func TestBuildFindMeView_NotFound(t *testing.T) {
	view := BuildFindMeView(board(10, -1), "acct-1", 5)

	assert.False(t, view.Found)
	assert.Zero(t, view.Rank)
	assert.Equal(t, 10, view.TotalRiders)
	assert.Empty(t, view.Entries)
}

func TestBuildFindMeView_SmallBoard(t *testing.T) {
	// Last on a 5-rider board: inside the top ten, so no gap.
	view := BuildFindMeView(board(5, 4), "acct-1", 2)
	require.True(t, view.Found)
	assert.Equal(t, 5, view.Rank)
	assert.Nil(t, view.GapToTop10)
}

func TestDedupForDisplay(t *testing.T) {
	verified := models.LeaderboardEntry{
		ID: "v1", RiderName: strPtr("John Smith"), TimeSeconds: 400,
		Status: types.EntryVerified,
	}
	ghost := models.LeaderboardEntry{
		ID: "g1", RiderName: strPtr("john  smith"), TimeSeconds: 380,
		Status: types.EntryGhost,
	}
	other := models.LeaderboardEntry{
		ID: "g2", RiderName: strPtr("Jane Doe"), TimeSeconds: 390,
		Status: types.EntryGhost,
	}

	out := DedupForDisplay([]models.LeaderboardEntry{ghost, verified, other})

	require.Len(t, out, 2)
	// Verified wins over the faster ghost sharing its normalized name.
	assert.Equal(t, "g2", out[0].ID)
	assert.Equal(t, "v1", out[1].ID)
}
