package analytics

import (
	"sort"
	"time"

	"github.com/mkaczor/gymflow/internal/schedule"
)

// Reading is a single persisted occupancy sample: the cumulative count of
// people present at the time of the read, keyed by (date, hour).
type Reading struct {
	Date      string    `json:"date"` // ISO YYYY-MM-DD
	Hour      int       `json:"hour"`
	Weekday   int       `json:"weekday"` // 0=Monday .. 6=Sunday
	Occupancy int       `json:"occupancy"`
	Timestamp time.Time `json:"timestamp"`
}

// DayProfile is the per-date view of readings, restricted to hours the
// schedule marks open. Built fresh per query, never persisted.
type DayProfile struct {
	Date    string
	Weekday int
	Hours   map[int]int // hour -> occupancy
}

// SortedHours returns the profile's present hours in ascending order
func (p *DayProfile) SortedHours() []int {
	hours := make([]int, 0, len(p.Hours))
	for h := range p.Hours {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

// MaxOccupancy returns the peak concurrent presence of the day
func (p *DayProfile) MaxOccupancy() int {
	max := 0
	for _, occ := range p.Hours {
		if occ > max {
			max = occ
		}
	}
	return max
}

// GroupByDay buckets raw readings into per-date profiles, dropping readings
// that fall outside the schedule's operating hours. Input order is
// irrelevant; hours are sorted where it matters.
func GroupByDay(readings []Reading, sched schedule.Schedule) map[string]*DayProfile {
	profiles := make(map[string]*DayProfile)

	for _, r := range readings {
		if !sched.IsOpen(r.Weekday, r.Hour) {
			continue
		}

		profile, ok := profiles[r.Date]
		if !ok {
			profile = &DayProfile{
				Date:    r.Date,
				Weekday: r.Weekday,
				Hours:   make(map[int]int),
			}
			profiles[r.Date] = profile
		}
		profile.Hours[r.Hour] = r.Occupancy
	}

	return profiles
}
