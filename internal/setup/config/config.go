package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound     = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing   = errors.New("config file is missing version field")
	ErrConfigVersionMismatch  = errors.New("config file version mismatch")
	ErrBonusDistribution      = errors.New("bonus_minute_values and bonus_minute_weights must have the same length")
	ErrBonusDistributionEmpty = errors.New("bonus minute distribution must not be empty")
	ErrBonusWeightNegative    = errors.New("bonus minute weights must not be negative")
	ErrBonusWeightsZero       = errors.New("bonus minute weights must have a positive total")
)

// CurrentConfigVersion is the expected version of engine.toml.
const CurrentConfigVersion = 1

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version       int           `koanf:"version"`
	Debug         Debug         `koanf:"debug"`
	PostgreSQL    PostgreSQL    `koanf:"postgresql"`
	Redis         Redis         `koanf:"redis"`
	Wheel         Wheel         `koanf:"wheel"`
	RateLimit     RateLimit     `koanf:"rate_limit"`
	Notifications Notifications `koanf:"notifications"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum number of log session directories to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	DBName       string `koanf:"db_name"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	// Connection max lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Connection max idle time in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Wheel contains the tunable thresholds of the treat wheel.
type Wheel struct {
	// Minimum days between consecutive spins.
	CooldownDays int `koanf:"cooldown_days"`
	// Maximum spins in any trailing 7 days. Zero disables the cap.
	WeeklyLimit int `koanf:"weekly_limit"`
	// Trailing period over which measurement consistency is evaluated.
	EMAWindowDays int `koanf:"ema_window_days"`
	// Distinct calendar days with measurements required within the window.
	MinMeasurementDays int `koanf:"min_measurement_days"`
	// Progress thresholds; meeting either one qualifies.
	MinWeightLossKg      float64 `koanf:"min_weight_loss_kg"`
	MinWeightLossPercent float64 `koanf:"min_weight_loss_percent"`
	// Discrete bonus-minutes distribution drawn on each spin.
	BonusMinuteValues  []int `koanf:"bonus_minute_values"`
	BonusMinuteWeights []int `koanf:"bonus_minute_weights"`
}

// RateLimit contains per-operation fixed-window caps.
// A cap of zero or below means the operation is unlimited.
type RateLimit struct {
	SpinsPerDay       int64 `koanf:"spins_per_day"`
	CommentsPerMinute int64 `koanf:"comments_per_minute"`
	LikesPerMinute    int64 `koanf:"likes_per_minute"`
	FollowsPerMinute  int64 `koanf:"follows_per_minute"`
}

// Notifications contains notification fan-out configuration.
type Notifications struct {
	// TTL in seconds for cached unread counts.
	UnreadCacheTTL int `koanf:"unread_cache_ttl"`
}

// LoadConfig loads the configuration from the first engine.toml found in the
// search paths. Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configPaths := []string{
		".treatwheel",
		homeDir + "/.treatwheel/config",
		"/etc/treatwheel/config",
		"/app/config",
		"config",
		".",
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/engine.toml", path)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: engine.toml", ErrConfigFileNotFound)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version, CurrentConfigVersion); err != nil {
		return nil, "", err
	}

	if err := config.Wheel.Validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// Validate checks that the bonus distribution is well formed: matching slice
// lengths, at least one entry and a positive total weight. A bad distribution
// is a configuration error caught at load time, not something to coerce.
func (w *Wheel) Validate() error {
	if len(w.BonusMinuteValues) != len(w.BonusMinuteWeights) {
		return fmt.Errorf("%w: %d values, %d weights",
			ErrBonusDistribution, len(w.BonusMinuteValues), len(w.BonusMinuteWeights))
	}

	if len(w.BonusMinuteValues) == 0 {
		return ErrBonusDistributionEmpty
	}

	total := 0

	for _, weight := range w.BonusMinuteWeights {
		if weight < 0 {
			return fmt.Errorf("%w: got %d", ErrBonusWeightNegative, weight)
		}

		total += weight
	}

	if total == 0 {
		return ErrBonusWeightsZero
	}

	return nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: engine.toml", ErrConfigVersionMissing)
	}

	if current != expected {
		return fmt.Errorf("%w: engine.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch, current, expected)
	}

	return nil
}
