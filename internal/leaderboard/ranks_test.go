package leaderboard

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRanks(t *testing.T) {
	ranked := CalculateRanks(
		[]string{"a", "b", "c"},
		[]int{400, 380, 395},
	)

	require.Len(t, ranked, 3)

	assert.Equal(t, "b", ranked[0].EntryID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Nil(t, ranked[0].GapSeconds)
	assert.Nil(t, ranked[0].GapDisplay)

	assert.Equal(t, "c", ranked[1].EntryID)
	assert.Equal(t, 2, ranked[1].Rank)
	require.NotNil(t, ranked[1].GapSeconds)
	assert.Equal(t, 15, *ranked[1].GapSeconds)
	assert.Equal(t, "+15s", *ranked[1].GapDisplay)

	assert.Equal(t, "a", ranked[2].EntryID)
	assert.Equal(t, 3, ranked[2].Rank)
	require.NotNil(t, ranked[2].GapSeconds)
	assert.Equal(t, 20, *ranked[2].GapSeconds)
}

func TestCalculateRanks_TiesKeepInputOrder(t *testing.T) {
	ranked := CalculateRanks(
		[]string{"a", "b"},
		[]int{380, 380},
	)

	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].EntryID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "b", ranked[1].EntryID)
	assert.Equal(t, 2, ranked[1].Rank)
	require.NotNil(t, ranked[1].GapSeconds)
	assert.Equal(t, 0, *ranked[1].GapSeconds)
}

func TestCalculateRanks_Empty(t *testing.T) {
	assert.Empty(t, CalculateRanks(nil, nil))
}

func TestFormatGap(t *testing.T) {
	assert.Equal(t, "+0s", FormatGap(0))
	assert.Equal(t, "+45s", FormatGap(45))
	assert.Equal(t, "+59s", FormatGap(59))
	assert.Equal(t, "+1:00", FormatGap(60))
	assert.Equal(t, "+1:05", FormatGap(65))
	assert.Equal(t, "+12:03", FormatGap(723))
}

// Ranks must always be dense 1..n with exactly one gapless leader, whatever
// the input times.
func TestCalculateRanks_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ranks are dense and gaps monotone", prop.ForAll(
		func(times []int) bool {
			ids := make([]string, len(times))
			for i := range times {
				ids[i] = fmt.Sprintf("id-%d", i)
			}

			ranked := CalculateRanks(ids, times)
			if len(ranked) != len(times) {
				return false
			}

			for i, r := range ranked {
				if r.Rank != i+1 {
					return false
				}
				if i == 0 {
					if r.GapSeconds != nil {
						return false
					}
					continue
				}
				if r.GapSeconds == nil || *r.GapSeconds < 0 {
					return false
				}
				if prev := ranked[i-1].GapSeconds; prev != nil && *r.GapSeconds < *prev {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(60, 7200)),
	))

	properties.TestingRun(t)
}
