package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetersToMiles(t *testing.T) {
	assert.Equal(t, 0.0, MetersToMiles(0))
	assert.Equal(t, 1.0, MetersToMiles(1609.344))
	assert.Equal(t, 26.22, MetersToMiles(42195))
	assert.Equal(t, 0.62, MetersToMiles(1000))
}

func TestMetersToFeet(t *testing.T) {
	assert.Equal(t, 0.0, MetersToFeet(0))
	assert.Equal(t, 3.0, MetersToFeet(1))
	assert.Equal(t, 328.0, MetersToFeet(100))
	assert.Equal(t, 29032.0, MetersToFeet(8848.86))
}

func TestMpsToMph(t *testing.T) {
	assert.Equal(t, 0.0, MpsToMph(0))
	assert.Equal(t, 22.37, MpsToMph(10))
	assert.Equal(t, 11.18, MpsToMph(5))
}

func TestSecondsToDisplay(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{380, "6:20"},
		{599, "9:59"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
		{7322, "2:02:02"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, SecondsToDisplay(tc.seconds), "seconds=%d", tc.seconds)
	}
}
