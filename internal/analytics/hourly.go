package analytics

import (
	"sort"

	"github.com/mkaczor/gymflow/internal/schedule"
)

// HourAverage is the average entry estimate for one hour slot across all
// complete days that have it. SampleCount disambiguates a genuine zero
// average from "no samples at all".
type HourAverage struct {
	Hour        int     `json:"hour"`
	Average     float64 `json:"avg"`
	SampleCount int     `json:"sample_count"`
	Label       string  `json:"label"`
}

// HourlyAverages computes per-hour entry averages over the weekday operating
// range. Only complete days contribute; hours with no qualifying samples
// report average 0 with SampleCount 0.
func HourlyAverages(profiles map[string]*DayProfile, sched schedule.Schedule, th Thresholds) []HourAverage {
	buckets := make(map[int][]int)
	for _, h := range sched.Weekday.Hours() {
		buckets[h] = nil
	}

	for _, p := range profiles {
		if !th.IsComplete(p, sched) {
			continue
		}
		for hour, entries := range ReconstructEntries(p) {
			if _, tracked := buckets[hour]; tracked {
				buckets[hour] = append(buckets[hour], entries)
			}
		}
	}

	averages := make([]HourAverage, 0, len(buckets))
	for _, hour := range sched.Weekday.Hours() {
		values := buckets[hour]
		avg := HourAverage{
			Hour:        hour,
			SampleCount: len(values),
			Label:       HourLabel(hour),
		}
		if len(values) > 0 {
			sum := 0
			for _, v := range values {
				sum += v
			}
			avg.Average = Round1(float64(sum) / float64(len(values)))
		}
		averages = append(averages, avg)
	}

	return averages
}

// BestHours returns the topN quietest hours, lowest average first. Hours
// without samples are excluded, as are verified-zero hours: neither makes a
// useful recommendation.
func BestHours(averages []HourAverage, topN int) []HourAverage {
	return rankHours(averages, topN, func(a, b HourAverage) bool {
		if a.Average != b.Average {
			return a.Average < b.Average
		}
		return a.Hour < b.Hour
	})
}

// WorstHours returns the topN busiest hours, highest average first
func WorstHours(averages []HourAverage, topN int) []HourAverage {
	return rankHours(averages, topN, func(a, b HourAverage) bool {
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		return a.Hour < b.Hour
	})
}

func rankHours(averages []HourAverage, topN int, less func(a, b HourAverage) bool) []HourAverage {
	ranked := make([]HourAverage, 0, len(averages))
	for _, a := range averages {
		if a.SampleCount == 0 || a.Average <= 0 {
			continue
		}
		ranked = append(ranked, a)
	}

	sort.Slice(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
