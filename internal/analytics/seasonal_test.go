package analytics

import (
	"testing"

	"github.com/mkaczor/gymflow/internal/schedule"
)

// peakDay builds a complete day whose busiest hour reads peak
func peakDay(date string, weekday, peak int) *DayProfile {
	p := fullDay(date, weekday, peak/2)
	p.Hours[17] = peak
	return p
}

func TestSummarizeMonth(t *testing.T) {
	sched := schedule.Default()
	th := DefaultThresholds()

	profiles := map[string]*DayProfile{
		"2026-01-05": peakDay("2026-01-05", 0, 100),
		"2026-01-06": peakDay("2026-01-06", 1, 120),
		"2026-01-07": peakDay("2026-01-07", 2, 140),
		"2026-01-08": newProfile("2026-01-08", 3, map[int]int{10: 999}), // incomplete
	}

	summary := SummarizeMonth(profiles, sched, th, 2026, 1)

	if summary.DaysCount != 3 {
		t.Fatalf("days count = %d, want 3 (incomplete day excluded)", summary.DaysCount)
	}
	if summary.Average != 120.0 {
		t.Errorf("average = %v, want 120.0 (mean of daily peaks)", summary.Average)
	}
	if summary.PeakDay == nil || summary.PeakDay.Date != "2026-01-07" || summary.PeakDay.Occupancy != 140 {
		t.Errorf("peak day = %+v, want 2026-01-07 at 140", summary.PeakDay)
	}
	if got := summary.DailyMax["2026-01-06"]; got != 120 {
		t.Errorf("daily max for jan 6 = %d, want 120", got)
	}
	if got := summary.WeekdayMax[0]; len(got) != 1 || got[0] != 100 {
		t.Errorf("monday maxima = %v, want [100]", got)
	}
}

func TestSummarizeMonthEmpty(t *testing.T) {
	sched := schedule.Default()
	th := DefaultThresholds()

	summary := SummarizeMonth(map[string]*DayProfile{}, sched, th, 2026, 1)
	if summary.DaysCount != 0 || summary.Average != 0 || summary.PeakDay != nil {
		t.Errorf("empty month = %+v, want zero values and no peak day", summary)
	}
}

func TestWeeklyTrendDecay(t *testing.T) {
	sched := schedule.Default()
	th := DefaultThresholds()

	// Week 1 averages 100, week 2 averages 90
	profiles := map[string]*DayProfile{
		"2026-01-05": peakDay("2026-01-05", 0, 100),
		"2026-01-06": peakDay("2026-01-06", 1, 100),
		"2026-01-12": peakDay("2026-01-12", 0, 90),
	}

	trend := WeeklyTrend(profiles, sched, th)
	if len(trend) != 2 {
		t.Fatalf("expected 2 trend points, got %d", len(trend))
	}

	first := trend[0]
	if first.Week != 1 || first.Average != 100.0 || first.Percent != 100.0 || first.Change != 0 {
		t.Errorf("week 1 = %+v, want average 100 at baseline percent 100", first)
	}
	if first.Days != 2 {
		t.Errorf("week 1 days = %d, want 2", first.Days)
	}

	second := trend[1]
	if second.Week != 2 || second.Percent != 90.0 || second.Change != -10.0 {
		t.Errorf("week 2 = %+v, want percent 90 with change -10", second)
	}
}

func TestWeeklyTrendBucketing(t *testing.T) {
	sched := schedule.Default()
	th := DefaultThresholds()

	// Day 29 folds into week 5; empty weeks in between are skipped
	profiles := map[string]*DayProfile{
		"2026-01-07": peakDay("2026-01-07", 2, 100),
		"2026-01-29": peakDay("2026-01-29", 3, 50),
		"2026-01-30": peakDay("2026-01-30", 4, 50),
	}

	trend := WeeklyTrend(profiles, sched, th)
	if len(trend) != 2 {
		t.Fatalf("expected weeks 1 and 5 only, got %d points", len(trend))
	}
	if trend[1].Week != 5 {
		t.Errorf("late-month days should land in week 5, got week %d", trend[1].Week)
	}
	if trend[1].Percent != 50.0 {
		t.Errorf("week 5 percent = %v, want 50.0", trend[1].Percent)
	}
}

func TestCompareSeasons(t *testing.T) {
	dec := &MonthSummary{
		Year: 2025, Month: 12,
		Average:   140.0,
		DaysCount: 4,
		PeakDay:   &PeakDay{Date: "2025-12-15", Occupancy: 180},
		WeekdayMax: map[int][]int{
			0: {100},
			1: {150, 170},
		},
	}
	jan := &MonthSummary{
		Year: 2026, Month: 1,
		Average:   168.0,
		DaysCount: 5,
		PeakDay:   &PeakDay{Date: "2026-01-08", Occupancy: 200},
		WeekdayMax: map[int][]int{
			0: {110},
			1: {160, 180},
		},
	}
	trend := []WeekTrendPoint{
		{Week: 1, Percent: 100},
		{Week: 2, Percent: 90, Change: -10},
	}

	cmp := CompareSeasons(dec, jan, trend, 0)
	if !cmp.HasData {
		t.Fatalf("expected comparison with data, got reason %q", cmp.Reason)
	}
	if cmp.OverallChange != 20.0 {
		t.Errorf("overall change = %v, want +20.0", cmp.OverallChange)
	}
	if cmp.WeekdayChanges[0] != 10.0 {
		t.Errorf("monday change = %v, want +10.0", cmp.WeekdayChanges[0])
	}
	if cmp.CurrentWeekdayChange != 10.0 || cmp.CurrentWeekdayName != "Mon" {
		t.Errorf("current weekday = %q change %v, want Mon +10.0", cmp.CurrentWeekdayName, cmp.CurrentWeekdayChange)
	}
	if cmp.AvgWeeklyDecay != -10.0 {
		t.Errorf("avg weekly decay = %v, want -10.0", cmp.AvgWeeklyDecay)
	}
	if cmp.December.Average != 140.0 || cmp.January.Average != 168.0 {
		t.Errorf("month stats carry wrong averages: dec %v jan %v",
			cmp.December.Average, cmp.January.Average)
	}
}

func TestCompareSeasonsInsufficientData(t *testing.T) {
	dec := &MonthSummary{DaysCount: 2, WeekdayMax: map[int][]int{}}
	jan := &MonthSummary{DaysCount: 10, WeekdayMax: map[int][]int{}}

	cmp := CompareSeasons(dec, jan, nil, 3)
	if cmp.HasData {
		t.Error("two december days should not be enough for a comparison")
	}
	if cmp.Reason != "insufficient data" {
		t.Errorf("reason = %q, want \"insufficient data\"", cmp.Reason)
	}
	if cmp.December != nil || cmp.January != nil {
		t.Error("no month stats should be reported without data")
	}
}
