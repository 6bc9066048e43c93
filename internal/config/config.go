package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/bankmint/internal/logger"
)

// FileName is the config file name inside a data directory.
const FileName = "bankmint.yaml"

// Config represents the top-level bankmint.yaml configuration.
type Config struct {
	Business   BusinessConfig   `yaml:"business"`
	Storage    StorageConfig    `yaml:"storage"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Learning   LearningConfig   `yaml:"learning"`
	Import     ImportConfig     `yaml:"import"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BusinessConfig identifies the business.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// StorageConfig locates the database and audit log. Relative paths are
// resolved against the data directory.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
	LogDir string `yaml:"log_dir"`
}

// ThresholdsConfig controls auto-confirmation and review flagging.
type ThresholdsConfig struct {
	AutoConfirm float64 `yaml:"auto_confirm"`
	ReviewFlag  float64 `yaml:"review_flag"`
}

// LearningConfig controls memory rule promotion.
type LearningConfig struct {
	PromotionThreshold int `yaml:"promotion_threshold"`
}

// ImportConfig bounds CSV uploads.
type ImportConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int    `yaml:"max_bytes"`
	MaxRows  int    `yaml:"max_rows"`
	Workers  int    `yaml:"workers"`
}

// ForecastConfig holds forecast defaults.
type ForecastConfig struct {
	DefaultWeeks        int     `yaml:"default_weeks"`
	CrisisThreshold     float64 `yaml:"crisis_threshold"`
	TrendWindowDays     int     `yaml:"trend_window_days"`
	MinHistoryDays      int     `yaml:"min_history_days"`
	PatternLookbackDays int     `yaml:"pattern_lookback_days"`
	LargePayment        float64 `yaml:"large_payment"`
}

// LoggingConfig controls diagnostic logging on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Load reads a bankmint.yaml file from disk. Missing fields keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:     businessName,
			Currency: "USD",
		},
		Storage: StorageConfig{
			DBPath: "data/bankmint.db",
			LogDir: "logs",
		},
		Thresholds: ThresholdsConfig{
			AutoConfirm: 0.95,
			ReviewFlag:  0.60,
		},
		Learning: LearningConfig{
			PromotionThreshold: 3,
		},
		Import: ImportConfig{
			Dir:      "import",
			MaxBytes: 10 << 20,
			MaxRows:  50000,
			Workers:  4,
		},
		Forecast: ForecastConfig{
			DefaultWeeks:        6,
			CrisisThreshold:     10000,
			TrendWindowDays:     90,
			MinHistoryDays:      90,
			PatternLookbackDays: 365,
			LargePayment:        5000,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: LogFormatConsole,
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Thresholds.AutoConfirm < 0 || c.Thresholds.AutoConfirm > 1 {
		errs = append(errs, fmt.Errorf("thresholds.auto_confirm %v: must be within [0,1]", c.Thresholds.AutoConfirm))
	}
	if c.Thresholds.ReviewFlag < 0 || c.Thresholds.ReviewFlag > c.Thresholds.AutoConfirm {
		errs = append(errs, fmt.Errorf("thresholds.review_flag %v: must be within [0,auto_confirm]", c.Thresholds.ReviewFlag))
	}
	if c.Learning.PromotionThreshold < 1 {
		errs = append(errs, fmt.Errorf("learning.promotion_threshold %d: must be at least 1", c.Learning.PromotionThreshold))
	}
	if c.Import.Workers < 1 {
		errs = append(errs, fmt.Errorf("import.workers %d: must be at least 1", c.Import.Workers))
	}
	switch c.Forecast.DefaultWeeks {
	case 4, 6, 8:
	default:
		errs = append(errs, fmt.Errorf("forecast.default_weeks %d: must be 4, 6 or 8", c.Forecast.DefaultWeeks))
	}
	if c.Forecast.CrisisThreshold < 0 {
		errs = append(errs, fmt.Errorf("forecast.crisis_threshold %v: must not be negative", c.Forecast.CrisisThreshold))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: must be console or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// DBPath returns the database path resolved against dataDir.
func (c *Config) DBPath(dataDir string) string {
	return resolve(dataDir, c.Storage.DBPath)
}

// LogDir returns the audit log directory resolved against dataDir.
func (c *Config) LogDir(dataDir string) string {
	return resolve(dataDir, c.Storage.LogDir)
}

// ImportDir returns the drop directory for CSV files resolved against dataDir.
func (c *Config) ImportDir(dataDir string) string {
	return resolve(dataDir, c.Import.Dir)
}

func resolve(dataDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}

// LoadEnv loads envFile (or .env in the working directory when empty) and
// applies BANKMINT_* overrides to cfg. A missing default .env is ignored.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("BANKMINT_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("BANKMINT_LOG_DIR"); v != "" {
		cfg.Storage.LogDir = v
	}
	if v := os.Getenv("BANKMINT_CURRENCY"); v != "" {
		cfg.Business.Currency = v
	}
	if v := os.Getenv("BANKMINT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BANKMINT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	var err error
	if cfg.Thresholds.AutoConfirm, err = floatEnv("BANKMINT_AUTO_CONFIRM", cfg.Thresholds.AutoConfirm); err != nil {
		return err
	}
	if cfg.Thresholds.ReviewFlag, err = floatEnv("BANKMINT_REVIEW_FLAG", cfg.Thresholds.ReviewFlag); err != nil {
		return err
	}
	if cfg.Learning.PromotionThreshold, err = intEnv("BANKMINT_PROMOTION_THRESHOLD", cfg.Learning.PromotionThreshold); err != nil {
		return err
	}
	if cfg.Import.Workers, err = intEnv("BANKMINT_WORKERS", cfg.Import.Workers); err != nil {
		return err
	}
	if cfg.Forecast.DefaultWeeks, err = intEnv("BANKMINT_FORECAST_WEEKS", cfg.Forecast.DefaultWeeks); err != nil {
		return err
	}
	if cfg.Forecast.CrisisThreshold, err = floatEnv("BANKMINT_CRISIS_THRESHOLD", cfg.Forecast.CrisisThreshold); err != nil {
		return err
	}
	return nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
