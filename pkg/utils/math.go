package utils

import (
	"math"
	"time"
)

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CeilDays converts a duration to whole days, rounding up, with a floor of one day.
func CeilDays(d time.Duration) int {
	days := int(math.Ceil(d.Hours() / 24))
	if days < 1 {
		return 1
	}

	return days
}
