package schedule

import (
	"fmt"

	"github.com/mkaczor/gymflow/pkg/config"
)

// Weekday indices follow the readings themselves: 0=Monday .. 6=Sunday
const (
	Saturday = 5
	Sunday   = 6
)

// HourRange is an inclusive range of hour slots. Last is the hour at which
// the final slot starts, e.g. (6, 22) means open 6:00 with a last slot of
// 22:00-23:00.
type HourRange struct {
	First int
	Last  int
}

// Contains reports whether the hour falls inside the range
func (r HourRange) Contains(hour int) bool {
	return r.First <= hour && hour <= r.Last
}

// Hours returns every hour slot in the range in ascending order
func (r HourRange) Hours() []int {
	hours := make([]int, 0, r.Last-r.First+1)
	for h := r.First; h <= r.Last; h++ {
		hours = append(hours, h)
	}
	return hours
}

// Schedule holds the gym operating hours per day type
type Schedule struct {
	Weekday HourRange
	Weekend HourRange
}

// Default returns the reference deployment schedule:
// weekdays 6:00-23:00, weekends 8:00-20:00
func Default() Schedule {
	return Schedule{
		Weekday: HourRange{First: 6, Last: 22},
		Weekend: HourRange{First: 8, Last: 19},
	}
}

// FromConfig builds a schedule from agent configuration
func FromConfig(cfg *config.Config) Schedule {
	return Schedule{
		Weekday: HourRange{First: cfg.WeekdayFirstHour, Last: cfg.WeekdayLastHour},
		Weekend: HourRange{First: cfg.WeekendFirstHour, Last: cfg.WeekendLastHour},
	}
}

// Validate checks the first <= last <= 23 invariant on both ranges
func (s Schedule) Validate() error {
	for _, r := range []struct {
		name string
		rng  HourRange
	}{
		{"weekday", s.Weekday},
		{"weekend", s.Weekend},
	} {
		if r.rng.First < 0 || r.rng.First > r.rng.Last || r.rng.Last > 23 {
			return fmt.Errorf("invalid %s hours: first=%d last=%d", r.name, r.rng.First, r.rng.Last)
		}
	}
	return nil
}

// RangeFor returns the operating range for a weekday (0=Monday .. 6=Sunday)
func (s Schedule) RangeFor(weekday int) HourRange {
	if weekday == Saturday || weekday == Sunday {
		return s.Weekend
	}
	return s.Weekday
}

// IsOpen reports whether the gym is open at the given weekday and hour slot
func (s Schedule) IsOpen(weekday, hour int) bool {
	return s.RangeFor(weekday).Contains(hour)
}

// ExpectedHours returns all hour slots the gym is open on the given weekday
func (s Schedule) ExpectedHours(weekday int) []int {
	return s.RangeFor(weekday).Hours()
}
