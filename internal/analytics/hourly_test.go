package analytics

import (
	"testing"

	"github.com/mkaczor/gymflow/internal/schedule"
)

func TestHourlyAveragesAcrossDays(t *testing.T) {
	sched := schedule.Default()
	th := DefaultThresholds()

	// Two complete Mondays: cumulative reads yield entry deltas
	day1 := fullDay("2026-01-05", 0, 10)
	day1.Hours[6] = 4
	day1.Hours[7] = 10 // entries: 6
	day2 := fullDay("2026-01-12", 0, 10)
	day2.Hours[6] = 6
	day2.Hours[7] = 10 // entries: 4

	profiles := map[string]*DayProfile{
		"2026-01-05": day1,
		"2026-01-12": day2,
	}

	averages := HourlyAverages(profiles, sched, th)
	if len(averages) != 17 {
		t.Fatalf("expected 17 hour slots for the weekday range, got %d", len(averages))
	}

	byHour := make(map[int]HourAverage)
	for _, a := range averages {
		byHour[a.Hour] = a
	}

	if got := byHour[6]; got.Average != 5.0 || got.SampleCount != 2 {
		t.Errorf("hour 6 = %+v, want average 5.0 with 2 samples", got)
	}
	if got := byHour[7]; got.Average != 5.0 {
		t.Errorf("hour 7 average = %v, want 5.0", got.Average)
	}
	if byHour[6].Label != "6:00" {
		t.Errorf("hour label = %q, want \"6:00\"", byHour[6].Label)
	}
}

func TestHourlyAveragesSkipsIncompleteDays(t *testing.T) {
	sched := schedule.Default()
	th := DefaultThresholds()

	profiles := map[string]*DayProfile{
		"2026-01-05": fullDay("2026-01-05", 0, 10),
		"2026-01-06": newProfile("2026-01-06", 1, map[int]int{6: 999}),
	}

	averages := HourlyAverages(profiles, sched, th)
	for _, a := range averages {
		if a.Hour == 6 && a.SampleCount != 1 {
			t.Errorf("incomplete day leaked into hour 6: %+v", a)
		}
	}
}

func TestHourlyAveragesNoSamples(t *testing.T) {
	sched := schedule.Default()
	th := DefaultThresholds()

	averages := HourlyAverages(map[string]*DayProfile{}, sched, th)
	for _, a := range averages {
		if a.SampleCount != 0 || a.Average != 0 {
			t.Errorf("empty input should yield zero samples everywhere, got %+v", a)
		}
	}
}

func TestBestHoursOrderingAndFiltering(t *testing.T) {
	averages := []HourAverage{
		{Hour: 6, Average: 3.0, SampleCount: 5},
		{Hour: 7, Average: 1.5, SampleCount: 5},
		{Hour: 8, Average: 0, SampleCount: 5},  // verified zero, excluded
		{Hour: 9, Average: 4.0, SampleCount: 0}, // no samples, excluded
		{Hour: 10, Average: 2.0, SampleCount: 5},
		{Hour: 11, Average: 1.5, SampleCount: 5},
	}

	best := BestHours(averages, 3)
	if len(best) != 3 {
		t.Fatalf("expected 3 results, got %d", len(best))
	}
	// Ties break by hour ascending
	wantHours := []int{7, 11, 10}
	for i, w := range wantHours {
		if best[i].Hour != w {
			t.Errorf("best[%d].Hour = %d, want %d", i, best[i].Hour, w)
		}
	}
}

func TestWorstHours(t *testing.T) {
	averages := []HourAverage{
		{Hour: 6, Average: 3.0, SampleCount: 5},
		{Hour: 7, Average: 9.5, SampleCount: 5},
		{Hour: 8, Average: 7.0, SampleCount: 5},
	}

	worst := WorstHours(averages, 2)
	if len(worst) != 2 {
		t.Fatalf("expected 2 results, got %d", len(worst))
	}
	if worst[0].Hour != 7 || worst[1].Hour != 8 {
		t.Errorf("worst hours = [%d %d], want [7 8]", worst[0].Hour, worst[1].Hour)
	}
}

func TestRankHoursShortInput(t *testing.T) {
	averages := []HourAverage{{Hour: 6, Average: 3.0, SampleCount: 1}}

	best := BestHours(averages, 3)
	if len(best) != 1 {
		t.Errorf("fewer qualifying hours than topN should return what exists, got %d", len(best))
	}
}
