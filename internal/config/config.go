package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port              int     `envconfig:"PORT" default:"8080"`
	DatabaseURL       string  `envconfig:"DATABASE_URL" default:""`
	SQLitePath        string  `envconfig:"SQLITE_PATH" default:"./data/planbay.db"`
	JWTSecret         string  `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AccessHash        string  `envconfig:"ACCESS_HASH" default:""`
	MaxHistory        int     `envconfig:"MAX_HISTORY" default:"50"`
	EntryZoneFraction float64 `envconfig:"ENTRY_ZONE_FRACTION" default:"0.2"`
	DebounceMs        int     `envconfig:"DEBOUNCE_MS" default:"50"`
	RetentionDays     int     `envconfig:"RETENTION_DAYS" default:"7"`
	AllowedOrigins    string  `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits the comma-separated allow list.
func (c *Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DebounceWindow converts the millisecond knob to a duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// RetentionWindow converts the day knob; zero or negative disables the
// snapshot age check.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
