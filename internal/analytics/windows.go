package analytics

import (
	"sort"

	"github.com/mkaczor/gymflow/internal/schedule"
)

// WindowRank is an averaged sliding 2-hour visiting window for one weekday
type WindowRank struct {
	Weekday     int     `json:"weekday"`
	WeekdayName string  `json:"weekday_name"`
	StartHour   int     `json:"start_hour"`
	EndHour     int     `json:"end_hour"`
	Average     float64 `json:"avg"`
	SampleCount int     `json:"sample_count"`
	Label       string  `json:"label"`
}

// SlidingWindowAverages evaluates every candidate 2-hour window per weekday
// over complete days. A window counts on a day when at least one of its
// hours has an entries estimate (a partial window uses the partial sum).
// Weekend windows reaching outside the weekend operating range are
// discarded entirely: the weekend schedule is narrower than the sliding
// range.
func SlidingWindowAverages(profiles map[string]*DayProfile, sched schedule.Schedule, th Thresholds) []WindowRank {
	type windowKey struct {
		weekday   int
		startHour int
	}
	sums := make(map[windowKey][]int)

	firstStart := sched.Weekday.First
	lastStart := sched.Weekday.Last - 1 // a full window still has to start inside the range

	for _, p := range profiles {
		if !th.IsComplete(p, sched) {
			continue
		}
		entries := ReconstructEntries(p)

		for start := firstStart; start <= lastStart; start++ {
			end := start + 2
			if end > 23 {
				end = 23
			}

			windowSum := 0
			hoursPresent := 0
			for h := start; h < end; h++ {
				if v, ok := entries[h]; ok {
					windowSum += v
					hoursPresent++
				}
			}

			if hoursPresent > 0 {
				key := windowKey{weekday: p.Weekday, startHour: start}
				sums[key] = append(sums[key], windowSum)
			}
		}
	}

	ranks := make([]WindowRank, 0, len(sums))
	for key, values := range sums {
		end := key.startHour + 2
		if end > 23 {
			end = 23
		}

		// Weekend clipping: drop windows starting before opening or ending
		// after close
		if key.weekday == schedule.Saturday || key.weekday == schedule.Sunday {
			if key.startHour < sched.Weekend.First || end > sched.Weekend.Last+1 {
				continue
			}
		}

		sum := 0
		for _, v := range values {
			sum += v
		}

		ranks = append(ranks, WindowRank{
			Weekday:     key.weekday,
			WeekdayName: WeekdayName(key.weekday),
			StartHour:   key.startHour,
			EndHour:     end,
			Average:     Round1(float64(sum) / float64(len(values))),
			SampleCount: len(values),
			Label:       WindowLabel(key.weekday, key.startHour, end),
		})
	}

	return ranks
}

// BestWindows returns the topN quietest windows, lowest average first
func BestWindows(windows []WindowRank, topN int) []WindowRank {
	return rankWindows(windows, topN, func(a, b WindowRank) bool {
		if a.Average != b.Average {
			return a.Average < b.Average
		}
		return windowOrder(a, b)
	})
}

// WorstWindows returns the topN busiest windows, highest average first
func WorstWindows(windows []WindowRank, topN int) []WindowRank {
	return rankWindows(windows, topN, func(a, b WindowRank) bool {
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		return windowOrder(a, b)
	})
}

// windowOrder makes rankings deterministic across map iteration order
func windowOrder(a, b WindowRank) bool {
	if a.Weekday != b.Weekday {
		return a.Weekday < b.Weekday
	}
	return a.StartHour < b.StartHour
}

func rankWindows(windows []WindowRank, topN int, less func(a, b WindowRank) bool) []WindowRank {
	ranked := make([]WindowRank, 0, len(windows))
	for _, w := range windows {
		if w.SampleCount == 0 {
			continue
		}
		ranked = append(ranked, w)
	}

	sort.Slice(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
