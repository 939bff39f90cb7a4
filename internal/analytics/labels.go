package analytics

import (
	"fmt"
	"math"
)

// WeekdayNames are the short labels used in rankings, indexed 0=Monday
var WeekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayName returns the short label for a weekday index, or "?" out of range
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return "?"
	}
	return WeekdayNames[weekday]
}

// HourLabel formats an hour slot as "H:00"
func HourLabel(hour int) string {
	return fmt.Sprintf("%d:00", hour)
}

// WindowLabel formats a weekday plus hour range, e.g. "Wed 6:00-8:00"
func WindowLabel(weekday, startHour, endHour int) string {
	return fmt.Sprintf("%s %d:00-%d:00", WeekdayName(weekday), startHour, endHour)
}

// Round1 rounds to one decimal place, matching the precision the stats API
// has always reported
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
