package statsapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkaczor/gymflow/internal/analytics"
	"github.com/mkaczor/gymflow/internal/schedule"
	"github.com/mkaczor/gymflow/pkg/redis"
)

func newTestService(store *memStore, cache redis.Client, ttl time.Duration) *Service {
	opts := analytics.DefaultOptions()
	opts.Now = func() time.Time { return fixedNow }
	engine := analytics.NewEngine(store, schedule.Default(), opts, testLogger())
	return NewService(engine, cache, ttl, testLogger())
}

func TestServiceCachesHourlyStats(t *testing.T) {
	store := &memStore{}
	seedDay(store, "2026-01-12", 0, 15)
	cache := newMemCache()
	svc := newTestService(store, cache, 5*time.Minute)

	ctx := context.Background()
	first, err := svc.HourlyStats(ctx)
	require.NoError(t, err)
	callsAfterFirst := store.calls

	second, err := svc.HourlyStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, store.calls, "second call should be served from cache")
	assert.Equal(t, first, second, "cached stats must match the computed ones")
	assert.Contains(t, cache.data, redis.StatsKey("hourly"))
}

func TestServiceCacheDisabled(t *testing.T) {
	store := &memStore{}
	seedDay(store, "2026-01-12", 0, 15)
	svc := newTestService(store, nil, 0)

	ctx := context.Background()
	_, err := svc.HourlyStats(ctx)
	require.NoError(t, err)
	callsAfterFirst := store.calls

	_, err = svc.HourlyStats(ctx)
	require.NoError(t, err)

	assert.Greater(t, store.calls, callsAfterFirst, "without a cache every call hits the store")
}

func TestServiceIgnoresCorruptCacheEntry(t *testing.T) {
	store := &memStore{}
	seedDay(store, "2026-01-12", 0, 15)
	cache := newMemCache()
	cache.data[redis.StatsKey("hourly")] = "{not json"
	svc := newTestService(store, cache, 5*time.Minute)

	stats, err := svc.HourlyStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DaysWithData, "corrupt cache entry should fall through to recomputation")
}

func TestServiceSeasonYearResolution(t *testing.T) {
	svc := newTestService(&memStore{}, nil, 0)

	// Mid january: the season of interest is this year's
	svc.now = func() time.Time { return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC) }
	assert.Equal(t, 2026, svc.seasonYear())

	// December: the upcoming january
	svc.now = func() time.Time { return time.Date(2025, time.December, 20, 12, 0, 0, 0, time.UTC) }
	assert.Equal(t, 2026, svc.seasonYear())
}

func TestServiceMonthSummaryCachedPerMonth(t *testing.T) {
	store := &memStore{}
	seedDay(store, "2025-12-01", 0, 40)
	cache := newMemCache()
	svc := newTestService(store, cache, 5*time.Minute)

	summary, err := svc.MonthSummary(context.Background(), 2025, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DaysCount)

	assert.Contains(t, cache.data, redis.MonthStatsKey(2025, 12))
	assert.NotContains(t, cache.data, redis.MonthStatsKey(2026, 1), "no entry for a month never queried")
}

func TestServiceInvalidateRolling(t *testing.T) {
	store := &memStore{}
	seedDay(store, "2026-01-12", 0, 15)
	cache := newMemCache()
	svc := newTestService(store, cache, 5*time.Minute)

	ctx := context.Background()
	_, err := svc.HourlyStats(ctx)
	require.NoError(t, err)
	_, err = svc.ExtendedStats(ctx)
	require.NoError(t, err)

	svc.InvalidateRolling(ctx)

	assert.NotContains(t, cache.data, redis.StatsKey("hourly"))
	assert.NotContains(t, cache.data, redis.StatsKey("extended"))
}
