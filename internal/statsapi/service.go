package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/mkaczor/gymflow/internal/analytics"
	"github.com/mkaczor/gymflow/pkg/redis"
)

// Service wraps the analytics engine with a read-through Redis cache.
// Computed aggregates are cached as JSON blobs under a short TTL; a cache
// outage degrades to computing every request, never to failing it.
type Service struct {
	engine *analytics.Engine
	cache  redis.Client
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a stats service. A nil cache or non-positive TTL
// disables caching entirely.
func NewService(engine *analytics.Engine, cache redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine: engine,
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// HourlyStats returns the per-hour entry averages, cached
func (s *Service) HourlyStats(ctx context.Context) (*analytics.HourlyStats, error) {
	key := redis.StatsKey("hourly")

	var cached analytics.HourlyStats
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.engine.HourlyStats(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, stats)
	return stats, nil
}

// ExtendedStats returns the full dashboard aggregate set, cached
func (s *Service) ExtendedStats(ctx context.Context) (*analytics.ExtendedStats, error) {
	key := redis.StatsKey("extended")

	var cached analytics.ExtendedStats
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.engine.ExtendedStats(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, stats)
	return stats, nil
}

// MonthSummary returns one calendar month's aggregate, cached per month
func (s *Service) MonthSummary(ctx context.Context, year, month int) (*analytics.MonthSummary, error) {
	key := redis.MonthStatsKey(year, month)

	var cached analytics.MonthSummary
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	summary, err := s.engine.MonthSummary(ctx, year, month)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, summary)
	return summary, nil
}

// NewYearEffect returns the December -> January comparison, cached per
// january year. Year 0 resolves to the january around the current date.
func (s *Service) NewYearEffect(ctx context.Context, year int) (*analytics.SeasonComparison, error) {
	if year <= 0 {
		year = s.seasonYear()
	}
	key := redis.SeasonStatsKey(year)

	var cached analytics.SeasonComparison
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	cmp, err := s.engine.NewYearEffect(ctx, year)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, cmp)
	return cmp, nil
}

// WeekAgoReading returns the reading from a week ago at this hour; never
// cached, the answer changes every hour anyway
func (s *Service) WeekAgoReading(ctx context.Context) (*analytics.Reading, error) {
	return s.engine.WeekAgoReading(ctx)
}

// InvalidateRolling drops the cached rolling aggregates, used after
// administrative data changes
func (s *Service) InvalidateRolling(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := []string{redis.StatsKey("hourly"), redis.StatsKey("extended")}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", "error", err)
	}
}

// seasonYear picks which january a default season query refers to
func (s *Service) seasonYear() int {
	now := s.now()
	if now.Month() == time.December {
		return now.Year() + 1
	}
	return now.Year()
}

func (s *Service) fromCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil || s.ttl <= 0 {
		return false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("Stats cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("Discarding unreadable cache entry", "key", key, "error", err)
		return false
	}

	s.logger.Debug("Stats cache hit", "key", key)
	return true
}

func (s *Service) toCache(ctx context.Context, key string, v interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Failed to marshal stats for cache", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		s.logger.Warn("Stats cache write failed", "key", key, "error", err)
	}
}
