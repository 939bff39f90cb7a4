package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkaczor/gymflow/internal/schedule"
)

// ReadingStore is the range-queryable keyed store the engine reads from.
// Records come back unordered; ISO dates sort lexicographically in
// chronological order, which the range semantics rely on.
type ReadingStore interface {
	// ReadingsSince returns all readings with date >= fromDate
	ReadingsSince(ctx context.Context, fromDate string) ([]Reading, error)

	// ReadingsBetween returns all readings with fromDate <= date < toDate
	ReadingsBetween(ctx context.Context, fromDate, toDate string) ([]Reading, error)

	// ReadingAt returns the reading for one (date, hour) key, nil when absent
	ReadingAt(ctx context.Context, date string, hour int) (*Reading, error)
}

// Options tune the engine's derived statistics
type Options struct {
	// TrailingDays is the lookback window for the rolling aggregates
	TrailingDays int

	// Thresholds is the completeness policy
	Thresholds Thresholds

	// TopResults is the length of best/worst rankings
	TopResults int

	// Now supplies the current time; overridable for tests
	Now func() time.Time
}

// DefaultOptions returns the reference deployment tuning
func DefaultOptions() Options {
	return Options{
		TrailingDays: 30,
		Thresholds:   DefaultThresholds(),
		TopResults:   3,
		Now:          time.Now,
	}
}

// Engine computes occupancy statistics as a pure function of what the store
// returns at call time. It owns no persistent or mutable state, so
// concurrent invocations need no coordination; timeouts, retries, and
// caching belong to callers.
type Engine struct {
	store  ReadingStore
	sched  schedule.Schedule
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an engine over the given store and schedule.
// Zero-valued options fall back to defaults.
func NewEngine(store ReadingStore, sched schedule.Schedule, opts Options, logger *slog.Logger) *Engine {
	if opts.TrailingDays <= 0 {
		opts.TrailingDays = DefaultOptions().TrailingDays
	}
	if opts.Thresholds.MaxZeroRun <= 0 {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.TopResults <= 0 {
		opts.TopResults = DefaultOptions().TopResults
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:  store,
		sched:  sched,
		opts:   opts,
		logger: logger,
	}
}

// HourlyStats is the chart-facing envelope: per-hour averages, the quietest
// hours, and enough data-quality context to judge them
type HourlyStats struct {
	HourlyAverages []HourAverage `json:"hourly_averages"`
	BestHours      []HourAverage `json:"best_hours"`
	DataPoints     int           `json:"data_points"`
	DaysWithData   int           `json:"days_with_data"`
	CompleteDays   int           `json:"complete_days"`
	CurrentHour    int           `json:"current_hour"`
}

// ExtendedStats is the dashboard envelope combining every rolling aggregate
type ExtendedStats struct {
	CurrentWeekday     int              `json:"current_weekday"`
	CurrentWeekdayName string           `json:"current_weekday_name"`
	CurrentHour        int              `json:"current_hour"`
	DailyAverages      []WeekdayAverage `json:"daily_averages"`
	HourlyAverages     []HourAverage    `json:"hourly_averages"`
	CurrentHourAverage float64          `json:"current_hour_avg"`
	TodayAverage       float64          `json:"today_avg"`
	TodayHourAverage   float64          `json:"today_hour_avg"`
	TodayHourSamples   int              `json:"today_hour_samples"`
	BestTimes          []WindowRank     `json:"best_times"`
	WorstTimes         []WindowRank     `json:"worst_times"`
}

// HourlyStats computes entry averages per hour over the trailing window
func (e *Engine) HourlyStats(ctx context.Context) (*HourlyStats, error) {
	readings, err := e.trailingReadings(ctx)
	if err != nil {
		return nil, err
	}

	profiles := GroupByDay(readings, e.sched)
	averages := HourlyAverages(profiles, e.sched, e.opts.Thresholds)

	completeDays := 0
	for _, p := range profiles {
		if e.opts.Thresholds.IsComplete(p, e.sched) {
			completeDays++
		}
	}

	return &HourlyStats{
		HourlyAverages: averages,
		BestHours:      BestHours(averages, e.opts.TopResults),
		DataPoints:     len(readings),
		DaysWithData:   len(profiles),
		CompleteDays:   completeDays,
		CurrentHour:    e.opts.Now().Hour(),
	}, nil
}

// ExtendedStats computes the full dashboard aggregate set in one pass over
// the trailing window
func (e *Engine) ExtendedStats(ctx context.Context) (*ExtendedStats, error) {
	readings, err := e.trailingReadings(ctx)
	if err != nil {
		return nil, err
	}

	now := e.opts.Now()
	weekday := mondayWeekday(now)
	hour := now.Hour()

	profiles := GroupByDay(readings, e.sched)
	hourly := HourlyAverages(profiles, e.sched, e.opts.Thresholds)
	daily := WeekdayAverages(profiles, e.sched, e.opts.Thresholds)
	windows := SlidingWindowAverages(profiles, e.sched, e.opts.Thresholds)

	currentHourAvg := 0.0
	for _, h := range hourly {
		if h.Hour == hour {
			currentHourAvg = h.Average
			break
		}
	}

	todayHourAvg, todayHourSamples := WeekdayHourAverage(readings, weekday, hour)

	return &ExtendedStats{
		CurrentWeekday:     weekday,
		CurrentWeekdayName: WeekdayName(weekday),
		CurrentHour:        hour,
		DailyAverages:      daily,
		HourlyAverages:     hourly,
		CurrentHourAverage: currentHourAvg,
		TodayAverage:       daily[weekday].Average,
		TodayHourAverage:   todayHourAvg,
		TodayHourSamples:   todayHourSamples,
		BestTimes:          BestWindows(windows, e.opts.TopResults),
		WorstTimes:         WorstWindows(windows, e.opts.TopResults),
	}, nil
}

// MonthSummary aggregates one calendar month
func (e *Engine) MonthSummary(ctx context.Context, year, month int) (*MonthSummary, error) {
	from, to := monthRange(year, month)

	readings, err := e.store.ReadingsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readings for %04d-%02d: %w", year, month, err)
	}

	profiles := GroupByDay(readings, e.sched)
	return SummarizeMonth(profiles, e.sched, e.opts.Thresholds, year, month), nil
}

// JanuaryWeeklyTrend computes the weekly decay trend for January of the
// given year
func (e *Engine) JanuaryWeeklyTrend(ctx context.Context, year int) ([]WeekTrendPoint, error) {
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-02-01", year)

	readings, err := e.store.ReadingsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch january readings: %w", err)
	}

	profiles := GroupByDay(readings, e.sched)
	return WeeklyTrend(profiles, e.sched, e.opts.Thresholds), nil
}

// NewYearEffect compares December attendance with the following January.
// Year 0 selects the January of interest automatically: during December
// that is the upcoming January, otherwise the current year's.
func (e *Engine) NewYearEffect(ctx context.Context, year int) (*SeasonComparison, error) {
	now := e.opts.Now()
	if year <= 0 {
		if now.Month() == time.December {
			year = now.Year() + 1
		} else {
			year = now.Year()
		}
	}

	dec, err := e.MonthSummary(ctx, year-1, 12)
	if err != nil {
		return nil, err
	}

	jan, err := e.MonthSummary(ctx, year, 1)
	if err != nil {
		return nil, err
	}

	trend, err := e.JanuaryWeeklyTrend(ctx, year)
	if err != nil {
		return nil, err
	}

	return CompareSeasons(dec, jan, trend, mondayWeekday(now)), nil
}

// WeekAgoReading returns the reading from exactly seven days ago at the
// current hour, nil when none was recorded
func (e *Engine) WeekAgoReading(ctx context.Context) (*Reading, error) {
	weekAgo := e.opts.Now().AddDate(0, 0, -7)
	return e.store.ReadingAt(ctx, isoDate(weekAgo), weekAgo.Hour())
}

// trailingReadings fetches the broad date range once; weekday, hour, and
// completeness filtering happen in memory on top of it
func (e *Engine) trailingReadings(ctx context.Context) ([]Reading, error) {
	start := e.opts.Now().AddDate(0, 0, -e.opts.TrailingDays)

	readings, err := e.store.ReadingsSince(ctx, isoDate(start))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trailing readings: %w", err)
	}

	e.logger.Debug("Fetched trailing readings",
		"since", isoDate(start),
		"count", len(readings))
	return readings, nil
}

// isoDate formats a time as YYYY-MM-DD
func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// mondayWeekday converts Go's Sunday-based weekday to the 0=Monday indexing
// the readings use
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// monthRange returns the [first, next-month-first) ISO date bounds of a month
func monthRange(year, month int) (string, string) {
	from := fmt.Sprintf("%04d-%02d-01", year, month)

	nextYear, nextMonth := year, month+1
	if month == 12 {
		nextYear, nextMonth = year+1, 1
	}
	to := fmt.Sprintf("%04d-%02d-01", nextYear, nextMonth)

	return from, to
}
