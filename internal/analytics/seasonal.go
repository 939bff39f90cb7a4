package analytics

import (
	"strconv"

	"github.com/mkaczor/gymflow/internal/schedule"
)

// MinComparisonDays is the minimum number of complete days each month must
// contribute before a seasonal comparison is reported at all
const MinComparisonDays = 3

// maxTrendWeeks caps the January week bucketing; days 29-31 fold into week 5
const maxTrendWeeks = 5

// PeakDay is the busiest complete day of a month
type PeakDay struct {
	Date      string `json:"date"`
	Occupancy int    `json:"occupancy"`
}

// MonthSummary aggregates one calendar month of complete days by their
// daily peak occupancy
type MonthSummary struct {
	Year       int            `json:"year"`
	Month      int            `json:"month"`
	DailyMax   map[string]int `json:"daily_max"`
	WeekdayMax map[int][]int  `json:"weekday_max"`
	Average    float64        `json:"average"`
	PeakDay    *PeakDay       `json:"peak_day"`
	DaysCount  int            `json:"days_count"`
}

// SummarizeMonth builds the month-level view from already-grouped profiles.
// The same complete-day filter applies as everywhere else; the average is
// the mean of daily maxima.
func SummarizeMonth(profiles map[string]*DayProfile, sched schedule.Schedule, th Thresholds, year, month int) *MonthSummary {
	summary := &MonthSummary{
		Year:       year,
		Month:      month,
		DailyMax:   make(map[string]int),
		WeekdayMax: make(map[int][]int),
	}

	peak := PeakDay{}
	sum := 0

	for date, p := range profiles {
		if !th.IsComplete(p, sched) {
			continue
		}

		maxOcc := p.MaxOccupancy()
		summary.DailyMax[date] = maxOcc
		summary.WeekdayMax[p.Weekday] = append(summary.WeekdayMax[p.Weekday], maxOcc)
		sum += maxOcc

		if maxOcc > peak.Occupancy {
			peak = PeakDay{Date: date, Occupancy: maxOcc}
		}
	}

	summary.DaysCount = len(summary.DailyMax)
	if summary.DaysCount > 0 {
		summary.Average = Round1(float64(sum) / float64(summary.DaysCount))
	}
	if peak.Date != "" {
		summary.PeakDay = &peak
	}

	return summary
}

// WeekTrendPoint is one week of the January decay trend. Percent is
// relative to the first reported week (100); Change is the
// percentage-point difference from the previous week.
type WeekTrendPoint struct {
	Week    int     `json:"week"`
	Average float64 `json:"avg"`
	Percent float64 `json:"percent"`
	Change  float64 `json:"change"`
	Days    int     `json:"days"`
}

// WeeklyTrend buckets a month's complete days into week-of-month groups
// (days 1-7 week 1, 8-14 week 2, ..., 29-31 folded into week 5) and tracks
// how each week's average compares with the first. Empty weeks are skipped.
func WeeklyTrend(profiles map[string]*DayProfile, sched schedule.Schedule, th Thresholds) []WeekTrendPoint {
	weekMax := make(map[int][]int)

	for date, p := range profiles {
		if !th.IsComplete(p, sched) {
			continue
		}

		day := dayOfMonth(date)
		if day == 0 {
			continue
		}
		week := (day-1)/7 + 1
		if week > maxTrendWeeks {
			week = maxTrendWeeks
		}
		weekMax[week] = append(weekMax[week], p.MaxOccupancy())
	}

	trend := make([]WeekTrendPoint, 0, maxTrendWeeks)
	baseline := 0.0
	prevPercent := 0.0
	havePrev := false

	for week := 1; week <= maxTrendWeeks; week++ {
		values := weekMax[week]
		if len(values) == 0 {
			continue
		}

		sum := 0
		for _, v := range values {
			sum += v
		}
		avg := Round1(float64(sum) / float64(len(values)))

		point := WeekTrendPoint{
			Week:    week,
			Average: avg,
			Days:    len(values),
		}

		if !havePrev {
			baseline = avg
			point.Percent = 100
		} else {
			if baseline > 0 {
				point.Percent = Round1(avg / baseline * 100)
			}
			point.Change = Round1(point.Percent - prevPercent)
		}

		trend = append(trend, point)
		prevPercent = point.Percent
		havePrev = true
	}

	return trend
}

// MonthStats is the per-month half of a seasonal comparison
type MonthStats struct {
	Average         float64         `json:"average"`
	PeakDay         *PeakDay        `json:"peak_day"`
	DaysCount       int             `json:"days_count"`
	WeekdayAverages map[int]float64 `json:"weekday_avg"`
}

// SeasonComparison is the December -> January attendance comparison with
// the weekly decay trend. When either month lacks enough complete days the
// comparison reports HasData false instead of misleading numbers.
type SeasonComparison struct {
	HasData              bool             `json:"has_data"`
	Reason               string           `json:"reason,omitempty"`
	December             *MonthStats      `json:"december,omitempty"`
	January              *MonthStats      `json:"january,omitempty"`
	OverallChange        float64          `json:"overall_change"`
	WeekdayChanges       map[int]float64  `json:"weekday_changes,omitempty"`
	CurrentWeekday       int              `json:"current_weekday"`
	CurrentWeekdayName   string           `json:"current_weekday_name"`
	CurrentWeekdayChange float64          `json:"current_weekday_change"`
	WeeklyTrend          []WeekTrendPoint `json:"weekly_trend,omitempty"`
	AvgWeeklyDecay       float64          `json:"avg_weekly_decay"`
}

// CompareSeasons computes the December -> January change from two month
// summaries plus the January weekly trend. currentWeekday picks which
// per-weekday change is surfaced as "today's".
func CompareSeasons(dec, jan *MonthSummary, trend []WeekTrendPoint, currentWeekday int) *SeasonComparison {
	if dec.DaysCount < MinComparisonDays || jan.DaysCount < MinComparisonDays {
		return &SeasonComparison{
			HasData: false,
			Reason:  "insufficient data",
		}
	}

	overallChange := 0.0
	if dec.Average > 0 {
		overallChange = Round1((jan.Average - dec.Average) / dec.Average * 100)
	}

	decWeekday := make(map[int]float64, 7)
	janWeekday := make(map[int]float64, 7)
	weekdayChanges := make(map[int]float64, 7)

	for wd := 0; wd < 7; wd++ {
		decAvg := meanOfInts(dec.WeekdayMax[wd])
		janAvg := meanOfInts(jan.WeekdayMax[wd])
		decWeekday[wd] = decAvg
		janWeekday[wd] = janAvg

		if decAvg > 0 {
			weekdayChanges[wd] = Round1((janAvg - decAvg) / decAvg * 100)
		} else {
			weekdayChanges[wd] = 0
		}
	}

	avgWeeklyDecay := 0.0
	if len(trend) >= 2 {
		totalDecay := trend[len(trend)-1].Percent - trend[0].Percent
		avgWeeklyDecay = Round1(totalDecay / float64(len(trend)-1))
	}

	return &SeasonComparison{
		HasData: true,
		December: &MonthStats{
			Average:         dec.Average,
			PeakDay:         dec.PeakDay,
			DaysCount:       dec.DaysCount,
			WeekdayAverages: decWeekday,
		},
		January: &MonthStats{
			Average:         jan.Average,
			PeakDay:         jan.PeakDay,
			DaysCount:       jan.DaysCount,
			WeekdayAverages: janWeekday,
		},
		OverallChange:        overallChange,
		WeekdayChanges:       weekdayChanges,
		CurrentWeekday:       currentWeekday,
		CurrentWeekdayName:   WeekdayName(currentWeekday),
		CurrentWeekdayChange: weekdayChanges[currentWeekday],
		WeeklyTrend:          trend,
		AvgWeeklyDecay:       avgWeeklyDecay,
	}
}

func meanOfInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return Round1(float64(sum) / float64(len(values)))
}

// dayOfMonth extracts the day from an ISO YYYY-MM-DD date, 0 when malformed
func dayOfMonth(date string) int {
	if len(date) < 10 {
		return 0
	}
	day, err := strconv.Atoi(date[8:10])
	if err != nil {
		return 0
	}
	return day
}
