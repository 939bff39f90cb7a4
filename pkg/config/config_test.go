package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should validate: %v", err)
	}
	if cfg.WeekdayFirstHour != 6 || cfg.WeekdayLastHour != 22 {
		t.Errorf("weekday hours = %d..%d, want 6..22", cfg.WeekdayFirstHour, cfg.WeekdayLastHour)
	}
	if cfg.WeekendFirstHour != 8 || cfg.WeekendLastHour != 19 {
		t.Errorf("weekend hours = %d..%d, want 8..19", cfg.WeekendFirstHour, cfg.WeekendLastHour)
	}
	if cfg.StatsCacheTTL().Seconds() != 300 {
		t.Errorf("stats cache TTL = %v, want 5m", cfg.StatsCacheTTL())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GYMFLOW_MQTT_BROKER", "broker.example")
	t.Setenv("GYMFLOW_POSTGRES_PORT", "5433")
	t.Setenv("GYMFLOW_TRAILING_DAYS", "14")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	if cfg.MQTTBroker != "broker.example" {
		t.Errorf("mqtt broker = %q, want broker.example", cfg.MQTTBroker)
	}
	if cfg.PostgresPort != 5433 {
		t.Errorf("postgres port = %d, want 5433", cfg.PostgresPort)
	}
	if cfg.TrailingDays != 14 {
		t.Errorf("trailing days = %d, want 14", cfg.TrailingDays)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gymflow.yaml")
	content := []byte(`
schedule:
  weekday:
    first: 5
    last: 21
  weekend:
    first: 9
analytics:
  max_missing_hours: 2
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg := NewConfig()
	cfg.ConfigFile = path
	if err := cfg.LoadFromFile(); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.WeekdayFirstHour != 5 || cfg.WeekdayLastHour != 21 {
		t.Errorf("weekday hours = %d..%d, want 5..21", cfg.WeekdayFirstHour, cfg.WeekdayLastHour)
	}
	if cfg.WeekendFirstHour != 9 {
		t.Errorf("weekend first hour = %d, want 9", cfg.WeekendFirstHour)
	}
	// Untouched keys keep their defaults
	if cfg.WeekendLastHour != 19 {
		t.Errorf("weekend last hour = %d, want untouched default 19", cfg.WeekendLastHour)
	}
	if cfg.MaxMissingHours != 2 {
		t.Errorf("max missing hours = %d, want 2", cfg.MaxMissingHours)
	}
	if cfg.MaxZeroRun != 4 {
		t.Errorf("max zero run = %d, want untouched default 4", cfg.MaxZeroRun)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := NewConfig()
	cfg.ConfigFile = "/nonexistent/gymflow.yaml"
	if err := cfg.LoadFromFile(); err == nil {
		t.Error("expected error for missing config file")
	}

	cfg2 := NewConfig()
	if err := cfg2.LoadFromFile(); err != nil {
		t.Errorf("no config file should be a no-op, got %v", err)
	}
}

func TestValidateScheduleInvariant(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"first after last", func(c *Config) { c.WeekdayFirstHour = 23; c.WeekdayLastHour = 6 }, true},
		{"last beyond 23", func(c *Config) { c.WeekendLastHour = 24 }, true},
		{"negative first", func(c *Config) { c.WeekdayFirstHour = -1 }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"zero trailing days", func(c *Config) { c.TrailingDays = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
