package analytics

import "github.com/mkaczor/gymflow/internal/schedule"

// Thresholds are the completeness policy constants. The defaults come from
// the reference deployment; both are configurable because they encode
// operational judgment, not algorithmic necessity.
type Thresholds struct {
	// MaxMissingHours is how many expected hours may be absent from a day
	// before it is considered incomplete (ordinary scrape flakiness).
	MaxMissingHours int

	// MaxZeroRun is the length of a run of consecutive present hours with
	// zero occupancy that marks an early closure or holiday.
	MaxZeroRun int
}

// DefaultThresholds returns the reference policy: tolerate up to 3 missing
// hours, reject 4 or more consecutive zero-occupancy hours.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxMissingHours: 3,
		MaxZeroRun:      4,
	}
}

// IsComplete decides whether a day's readings are usable for averaging.
// Incomplete days signal holidays or early closures: attendance dropped to
// zero and stayed there, or too many samples never arrived.
func (t Thresholds) IsComplete(p *DayProfile, sched schedule.Schedule) bool {
	if p == nil || len(p.Hours) == 0 {
		return false
	}

	// Too many expected hours absent
	missing := 0
	for _, h := range sched.ExpectedHours(p.Weekday) {
		if _, ok := p.Hours[h]; !ok {
			missing++
		}
	}
	if missing > t.MaxMissingHours {
		return false
	}

	// Longest run of consecutive present hours reading exactly zero
	zeroRun := 0
	maxZeroRun := 0
	for _, h := range p.SortedHours() {
		if p.Hours[h] == 0 {
			zeroRun++
			if zeroRun > maxZeroRun {
				maxZeroRun = zeroRun
			}
		} else {
			zeroRun = 0
		}
	}

	return maxZeroRun < t.MaxZeroRun
}

// CompleteProfiles filters a grouped day set down to complete days only
func (t Thresholds) CompleteProfiles(profiles map[string]*DayProfile, sched schedule.Schedule) map[string]*DayProfile {
	complete := make(map[string]*DayProfile, len(profiles))
	for date, p := range profiles {
		if t.IsComplete(p, sched) {
			complete[date] = p
		}
	}
	return complete
}
