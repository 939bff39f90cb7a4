package redis

import "fmt"

// Key construction helpers for cached statistics

// StatsKey returns the cache key for a computed stats payload
// Pattern: stats:{name}
func StatsKey(name string) string {
	return fmt.Sprintf("stats:%s", name)
}

// SeasonStatsKey returns the cache key for a seasonal comparison payload
// Pattern: stats:season:{year}
func SeasonStatsKey(year int) string {
	return fmt.Sprintf("stats:season:%d", year)
}

// MonthStatsKey returns the cache key for a month summary payload
// Pattern: stats:month:{year}-{month}
func MonthStatsKey(year, month int) string {
	return fmt.Sprintf("stats:month:%04d-%02d", year, month)
}
