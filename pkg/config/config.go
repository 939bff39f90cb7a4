package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for a gymflow agent
type Config struct {
	// MQTT configuration
	MQTTBroker   string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	// Postgres configuration
	PostgresHost               string
	PostgresPort               int
	PostgresUser               string
	PostgresPassword           string
	PostgresDB                 string
	PostgresSSLMode            string
	PostgresMaxConnections     int
	PostgresMaxIdleConnections int
	PostgresConnMaxLifetime    time.Duration

	// Redis configuration
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Service configuration
	ServiceName string
	HealthPort  int
	LogLevel    string
	APIPort     int

	// Collector configuration
	ReadingTopics []string
	Timezone      string

	// Gym schedule (inclusive hour ranges, last hour = start of last slot)
	WeekdayFirstHour int
	WeekdayLastHour  int
	WeekendFirstHour int
	WeekendLastHour  int

	// Analytics configuration
	TrailingDays     int
	MaxMissingHours  int
	MaxZeroRun       int
	TopResults       int
	StatsCacheTTLSec int

	// Optional YAML file with schedule and analytics overrides
	ConfigFile string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker:   "localhost",
		MQTTPort:     1883,
		MQTTUser:     "",
		MQTTPassword: "",
		MQTTClientID: "",

		PostgresHost:               "localhost",
		PostgresPort:               5432,
		PostgresUser:               "gymflow",
		PostgresPassword:           "",
		PostgresDB:                 "gymflow",
		PostgresSSLMode:            "disable",
		PostgresMaxConnections:     10,
		PostgresMaxIdleConnections: 5,
		PostgresConnMaxLifetime:    30 * time.Minute,

		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,

		ServiceName: "gymflow-agent",
		HealthPort:  8080,
		LogLevel:    "info",
		APIPort:     3001,

		ReadingTopics: []string{"gym/raw/occupancy/+"},
		Timezone:      "Europe/Warsaw",

		// Reference deployment hours: weekdays 6:00-23:00, weekends 8:00-20:00
		WeekdayFirstHour: 6,
		WeekdayLastHour:  22,
		WeekendFirstHour: 8,
		WeekendLastHour:  19,

		TrailingDays:     30,
		MaxMissingHours:  3,
		MaxZeroRun:       4,
		TopResults:       3,
		StatsCacheTTLSec: 300,
	}
}

// LoadFromEnv loads configuration from environment variables with GYMFLOW_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	if v := os.Getenv("GYMFLOW_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("GYMFLOW_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("GYMFLOW_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("GYMFLOW_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("GYMFLOW_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	// Postgres configuration
	if v := os.Getenv("GYMFLOW_POSTGRES_HOST"); v != "" {
		c.PostgresHost = v
	}
	if v := os.Getenv("GYMFLOW_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.PostgresPort = port
		}
	}
	if v := os.Getenv("GYMFLOW_POSTGRES_USER"); v != "" {
		c.PostgresUser = v
	}
	if v := os.Getenv("GYMFLOW_POSTGRES_PASSWORD"); v != "" {
		c.PostgresPassword = v
	}
	if v := os.Getenv("GYMFLOW_POSTGRES_DB"); v != "" {
		c.PostgresDB = v
	}
	if v := os.Getenv("GYMFLOW_POSTGRES_SSL_MODE"); v != "" {
		c.PostgresSSLMode = v
	}

	// Redis configuration
	if v := os.Getenv("GYMFLOW_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("GYMFLOW_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("GYMFLOW_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("GYMFLOW_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	// Service configuration
	if v := os.Getenv("GYMFLOW_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("GYMFLOW_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("GYMFLOW_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GYMFLOW_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.APIPort = port
		}
	}

	// Collector configuration
	if v := os.Getenv("GYMFLOW_TIMEZONE"); v != "" {
		c.Timezone = v
	}

	// Analytics configuration
	if v := os.Getenv("GYMFLOW_TRAILING_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.TrailingDays = days
		}
	}
	if v := os.Getenv("GYMFLOW_MAX_MISSING_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxMissingHours = n
		}
	}
	if v := os.Getenv("GYMFLOW_MAX_ZERO_RUN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxZeroRun = n
		}
	}
	if v := os.Getenv("GYMFLOW_TOP_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TopResults = n
		}
	}
	if v := os.Getenv("GYMFLOW_STATS_CACHE_TTL_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			c.StatsCacheTTLSec = sec
		}
	}
	if v := os.Getenv("GYMFLOW_CONFIG_FILE"); v != "" {
		c.ConfigFile = v
	}
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	// MQTT flags
	pflag.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	pflag.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	pflag.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	pflag.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	pflag.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Postgres flags
	pflag.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "Postgres hostname")
	pflag.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "Postgres port")
	pflag.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "Postgres username")
	pflag.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "Postgres password")
	pflag.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "Postgres database name")
	pflag.StringVar(&c.PostgresSSLMode, "postgres-ssl-mode", c.PostgresSSLMode, "Postgres SSL mode")

	// Redis flags
	pflag.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	pflag.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	pflag.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	pflag.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Service flags
	pflag.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	pflag.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	pflag.IntVar(&c.APIPort, "api-port", c.APIPort, "Stats HTTP API port")

	// Collector flags
	pflag.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA timezone for reading timestamps")

	// Analytics flags
	pflag.IntVar(&c.TrailingDays, "trailing-days", c.TrailingDays, "Trailing window for aggregates in days")
	pflag.IntVar(&c.MaxMissingHours, "max-missing-hours", c.MaxMissingHours, "Missing expected hours tolerated before a day is incomplete")
	pflag.IntVar(&c.MaxZeroRun, "max-zero-run", c.MaxZeroRun, "Consecutive zero-occupancy hours marking an incomplete day")
	pflag.IntVar(&c.TopResults, "top-results", c.TopResults, "Number of entries in best/worst rankings")
	pflag.IntVar(&c.StatsCacheTTLSec, "stats-cache-ttl", c.StatsCacheTTLSec, "Stats cache TTL in seconds")

	pflag.StringVar(&c.ConfigFile, "config-file", c.ConfigFile, "Optional YAML config file with schedule and analytics overrides")

	pflag.Parse()
}

// fileConfig mirrors the YAML override file layout
type fileConfig struct {
	Schedule struct {
		Weekday struct {
			First *int `yaml:"first"`
			Last  *int `yaml:"last"`
		} `yaml:"weekday"`
		Weekend struct {
			First *int `yaml:"first"`
			Last  *int `yaml:"last"`
		} `yaml:"weekend"`
	} `yaml:"schedule"`
	Analytics struct {
		TrailingDays    *int `yaml:"trailing_days"`
		MaxMissingHours *int `yaml:"max_missing_hours"`
		MaxZeroRun      *int `yaml:"max_zero_run"`
		TopResults      *int `yaml:"top_results"`
	} `yaml:"analytics"`
}

// LoadFromFile applies schedule and analytics overrides from a YAML file.
// A no-op when no file path is configured.
func (c *Config) LoadFromFile() error {
	if c.ConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", c.ConfigFile, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", c.ConfigFile, err)
	}

	if fc.Schedule.Weekday.First != nil {
		c.WeekdayFirstHour = *fc.Schedule.Weekday.First
	}
	if fc.Schedule.Weekday.Last != nil {
		c.WeekdayLastHour = *fc.Schedule.Weekday.Last
	}
	if fc.Schedule.Weekend.First != nil {
		c.WeekendFirstHour = *fc.Schedule.Weekend.First
	}
	if fc.Schedule.Weekend.Last != nil {
		c.WeekendLastHour = *fc.Schedule.Weekend.Last
	}
	if fc.Analytics.TrailingDays != nil {
		c.TrailingDays = *fc.Analytics.TrailingDays
	}
	if fc.Analytics.MaxMissingHours != nil {
		c.MaxMissingHours = *fc.Analytics.MaxMissingHours
	}
	if fc.Analytics.MaxZeroRun != nil {
		c.MaxZeroRun = *fc.Analytics.MaxZeroRun
	}
	if fc.Analytics.TopResults != nil {
		c.TopResults = *fc.Analytics.TopResults
	}

	return nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("Postgres host is required")
	}
	if c.PostgresPort <= 0 || c.PostgresPort > 65535 {
		return fmt.Errorf("Postgres port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}

	// Schedule invariant: first <= last <= 23
	if c.WeekdayFirstHour < 0 || c.WeekdayFirstHour > c.WeekdayLastHour || c.WeekdayLastHour > 23 {
		return fmt.Errorf("invalid weekday hours: first=%d last=%d", c.WeekdayFirstHour, c.WeekdayLastHour)
	}
	if c.WeekendFirstHour < 0 || c.WeekendFirstHour > c.WeekendLastHour || c.WeekendLastHour > 23 {
		return fmt.Errorf("invalid weekend hours: first=%d last=%d", c.WeekendFirstHour, c.WeekendLastHour)
	}

	if c.TrailingDays <= 0 {
		return fmt.Errorf("trailing days must be positive")
	}
	if c.MaxMissingHours < 0 {
		return fmt.Errorf("max missing hours must not be negative")
	}
	if c.MaxZeroRun <= 0 {
		return fmt.Errorf("max zero run must be positive")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %s: %w", c.Timezone, err)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresConnectionString returns the lib/pq connection string
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}

// StatsCacheTTL returns the stats cache TTL as a duration
func (c *Config) StatsCacheTTL() time.Duration {
	return time.Duration(c.StatsCacheTTLSec) * time.Second
}

// Location returns the configured timezone, falling back to UTC on error
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
