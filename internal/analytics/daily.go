package analytics

import "github.com/mkaczor/gymflow/internal/schedule"

// WeekdayAverage is the average of per-day peak occupancy across all
// complete days sharing a weekday. This is concurrent presence, not the
// entries estimate: "how full does it get on Tuesdays".
type WeekdayAverage struct {
	Weekday   int     `json:"weekday"`
	Name      string  `json:"name"`
	Average   float64 `json:"avg"`
	DaysCount int     `json:"days_count"`
}

// WeekdayAverages computes the peak-occupancy average for every weekday over
// the supplied profiles. Incomplete days are skipped so a holiday with a
// stray extreme reading cannot shift the average. The result always has
// seven elements, Monday first.
func WeekdayAverages(profiles map[string]*DayProfile, sched schedule.Schedule, th Thresholds) []WeekdayAverage {
	sums := [7]int{}
	counts := [7]int{}

	for _, p := range profiles {
		if !th.IsComplete(p, sched) {
			continue
		}
		sums[p.Weekday] += p.MaxOccupancy()
		counts[p.Weekday]++
	}

	averages := make([]WeekdayAverage, 7)
	for wd := 0; wd < 7; wd++ {
		averages[wd] = WeekdayAverage{
			Weekday:   wd,
			Name:      WeekdayName(wd),
			DaysCount: counts[wd],
		}
		if counts[wd] > 0 {
			averages[wd].Average = Round1(float64(sums[wd]) / float64(counts[wd]))
		}
	}

	return averages
}

// WeekdayHourAverage is the mean raw occupancy for one (weekday, hour) pair,
// e.g. "average Friday at 17:00". Filtering happens in memory after the
// broad date-range fetch; the sample count rides along so a bare zero is
// distinguishable from missing data.
func WeekdayHourAverage(readings []Reading, weekday, hour int) (float64, int) {
	sum := 0
	count := 0
	for _, r := range readings {
		if r.Weekday == weekday && r.Hour == hour {
			sum += r.Occupancy
			count++
		}
	}

	if count == 0 {
		return 0, 0
	}
	return Round1(float64(sum) / float64(count)), count
}
