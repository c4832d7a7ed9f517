// Package units converts the metric values the external API returns into the
// imperial units the club displays, and formats durations for display.
package units

import "fmt"

// MetersToMiles converts meters to miles, rounded to two decimals.
func MetersToMiles(m float64) float64 {
	return round2(m * 0.000621371)
}

// MetersToFeet converts meters to feet, rounded to the nearest foot.
func MetersToFeet(m float64) float64 {
	return float64(int64(m*3.28084 + 0.5))
}

// MpsToMph converts meters-per-second to miles-per-hour, rounded to two decimals.
func MpsToMph(mps float64) float64 {
	return round2(mps * 2.23694)
}

// SecondsToDisplay formats a duration in seconds as "M:SS" or "H:MM:SS".
func SecondsToDisplay(seconds int) string {
	hrs := seconds / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60

	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
