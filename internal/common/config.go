package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Extraction  ExtractionConfig `toml:"extraction"`
	Validation  ValidationConfig `toml:"validation"`
	Forensic    ForensicConfig   `toml:"forensic"`
	Analysis    AnalysisConfig   `toml:"analysis"`
	Workers     WorkersConfig    `toml:"workers"`
	Market      MarketConfig     `toml:"market"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=1,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

// Storage backends.
const (
	StorageBadger = "badger"
	StorageSQLite = "sqlite"
)

type StorageConfig struct {
	Type   string       `toml:"type" validate:"oneof=badger sqlite"` // badger (default) or sqlite
	Badger BadgerConfig `toml:"badger"`
	SQLite SQLiteConfig `toml:"sqlite"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path          string `toml:"path"`
	CacheSizeMB   int    `toml:"cache_size_mb"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
	WALMode       bool   `toml:"wal_mode"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
	Dir    string   `toml:"dir"`    // log directory, defaults to ./logs beside the executable
}

// ExtractionConfig controls document parsing and currency normalization.
type ExtractionConfig struct {
	DomesticCurrency   string             `toml:"domestic_currency" validate:"len=3"`
	Rates              map[string]float64 `toml:"rates"`                       // domestic units per foreign unit
	DatedRates         []DatedRateConfig  `toml:"dated_rates" validate:"dive"` // point-in-time overrides
	DuplicateTolerance float64            `toml:"duplicate_tolerance"`         // relative difference flagged as a conflict
	FiscalYearEndMonth int                `toml:"fiscal_year_end_month" validate:"gte=1,lte=12"`
}

type DatedRateConfig struct {
	Currency string  `toml:"currency" validate:"len=3"`
	Date     string  `toml:"date" validate:"datetime=2006-01-02"`
	Rate     float64 `toml:"rate" validate:"gt=0"`
}

type ValidationConfig struct {
	RelativeTolerance    float64 `toml:"relative_tolerance" validate:"gte=0"`
	AbsoluteTolerance    float64 `toml:"absolute_tolerance" validate:"gte=0"`
	FallbackPnLTolerance float64 `toml:"fallback_pnl_tolerance" validate:"gte=0"`
	MinCompleteness      float64 `toml:"min_completeness" validate:"gte=0,lte=100"`
}

type ForensicConfig struct {
	BeneishHigh            float64            `toml:"beneish_high"`
	BeneishMedium          float64            `toml:"beneish_medium" validate:"ltefield=BeneishHigh"`
	ReceivablesMateriality float64            `toml:"receivables_materiality" validate:"gte=0"`
	InventoryMateriality   float64            `toml:"inventory_materiality" validate:"gte=0"`
	OtherIncomeMateriality float64            `toml:"other_income_materiality" validate:"gte=0"`
	ReservesMateriality    float64            `toml:"reserves_materiality" validate:"gte=0"`
	Weights                map[string]float64 `toml:"weights"` // per model, keyed beneish|altman|piotroski|jscore
	MinCoverage            float64            `toml:"min_coverage" validate:"gte=0,lte=1"`
	AvoidScore             float64            `toml:"avoid_score" validate:"gte=0,lte=100"`
	MonitorScore           float64            `toml:"monitor_score" validate:"gte=0,ltefield=AvoidScore"`
}

type AnalysisConfig struct {
	Years         int    `toml:"years" validate:"gte=1,lte=20"`
	StatementType string `toml:"statement_type" validate:"oneof=auto standalone consolidated"`
	CompanyType   string `toml:"company_type" validate:"oneof=manufacturing service emerging"`
	Listed        bool   `toml:"listed"`
	SectorsFile   string `toml:"sectors_file"` // YAML sector/peer table, optional
}

type WorkersConfig struct {
	Concurrency int `toml:"concurrency" validate:"gte=1,lte=64"`
}

// Market providers.
const (
	MarketNone   = "none"
	MarketStatic = "static"
	MarketEODHD  = "eodhd"
)

type MarketConfig struct {
	Provider string             `toml:"provider" validate:"oneof=none static eodhd"`
	Exchange string             `toml:"exchange"` // default exchange for unqualified symbols
	EODHD    EODHDConfig        `toml:"eodhd"`
	Prices   map[string]float64 `toml:"prices"` // static provider: symbol -> price
	Shares   map[string]float64 `toml:"shares"` // static provider: symbol -> shares outstanding
}

type EODHDConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url" validate:"omitempty,url"`
	RateLimit string `toml:"rate_limit"` // minimum interval between requests, e.g. "250ms"
	Timeout   string `toml:"timeout"`
}

type SchedulerConfig struct {
	Enabled   bool     `toml:"enabled"`
	Schedule  string   `toml:"schedule"` // 5-field cron expression
	Watchlist []string `toml:"watchlist"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: StorageBadger,
			Badger: BadgerConfig{
				Path: "./data/badger",
			},
			SQLite: SQLiteConfig{
				Path:          "./data/scrutor.db",
				CacheSizeMB:   64,
				BusyTimeoutMS: 5000,
				WALMode:       true,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Extraction: ExtractionConfig{
			DomesticCurrency: "INR",
			Rates: map[string]float64{
				"USD": 83.0,
				"EUR": 90.0,
				"GBP": 105.0,
			},
			DuplicateTolerance: 0.001,
			FiscalYearEndMonth: 3, // Indian fiscal year ends in March
		},
		Validation: ValidationConfig{
			RelativeTolerance:    0.001,
			AbsoluteTolerance:    1_000_000,
			FallbackPnLTolerance: 0.15,
			MinCompleteness:      60,
		},
		Forensic: ForensicConfig{
			BeneishHigh:            -2.22,
			BeneishMedium:          -2.50,
			ReceivablesMateriality: 1e7, // Rs 1 Cr
			InventoryMateriality:   1e7,
			OtherIncomeMateriality: 1e7,
			ReservesMateriality:    1e9, // Rs 100 Cr
			MinCoverage:            0.5,
			AvoidScore:             70,
			MonitorScore:           45,
		},
		Analysis: AnalysisConfig{
			Years:         5,
			StatementType: "auto",
			CompanyType:   "manufacturing",
			Listed:        true,
		},
		Workers: WorkersConfig{
			Concurrency: 4,
		},
		Market: MarketConfig{
			Provider: MarketNone,
			Exchange: "NSE",
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: "250ms",
				Timeout:   "30s",
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 19 * * 1-5", // weekdays after market close
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies SCRUTOR_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCRUTOR_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SCRUTOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCRUTOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if storageType := os.Getenv("SCRUTOR_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = strings.ToLower(storageType)
	}
	if badgerPath := os.Getenv("SCRUTOR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if sqlitePath := os.Getenv("SCRUTOR_SQLITE_PATH"); sqlitePath != "" {
		config.Storage.SQLite.Path = sqlitePath
	}

	// Logging configuration
	if level := os.Getenv("SCRUTOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if output := os.Getenv("SCRUTOR_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Analysis configuration
	if years := os.Getenv("SCRUTOR_ANALYSIS_YEARS"); years != "" {
		if y, err := strconv.Atoi(years); err == nil {
			config.Analysis.Years = y
		}
	}
	if sectors := os.Getenv("SCRUTOR_SECTORS_FILE"); sectors != "" {
		config.Analysis.SectorsFile = sectors
	}
	if concurrency := os.Getenv("SCRUTOR_WORKERS_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Workers.Concurrency = c
		}
	}

	// Market configuration
	if provider := os.Getenv("SCRUTOR_MARKET_PROVIDER"); provider != "" {
		config.Market.Provider = strings.ToLower(provider)
	}
	if apiKey := os.Getenv("SCRUTOR_EODHD_API_KEY"); apiKey != "" {
		config.Market.EODHD.APIKey = apiKey
	} else if apiKey := os.Getenv("EODHD_API_KEY"); apiKey != "" && config.Market.EODHD.APIKey == "" {
		config.Market.EODHD.APIKey = apiKey
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

var configValidator = validator.New()

// Validate checks field ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for model, w := range c.Forensic.Weights {
		switch model {
		case "beneish", "altman", "piotroski", "jscore":
		default:
			return fmt.Errorf("invalid configuration: unknown forensic model %q in weights", model)
		}
		if w < 0 {
			return fmt.Errorf("invalid configuration: weight for %s must not be negative", model)
		}
	}
	if c.Market.Provider == MarketEODHD && c.Market.EODHD.APIKey == "" {
		return fmt.Errorf("invalid configuration: market provider eodhd requires an api key (SCRUTOR_EODHD_API_KEY)")
	}
	for _, d := range []struct{ name, value string }{
		{"market.eodhd.rate_limit", c.Market.EODHD.RateLimit},
		{"market.eodhd.timeout", c.Market.EODHD.Timeout},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", d.name, err)
		}
	}
	if c.Scheduler.Enabled {
		if err := ValidateSchedule(c.Scheduler.Schedule); err != nil {
			return fmt.Errorf("invalid configuration: scheduler: %w", err)
		}
		if len(c.Scheduler.Watchlist) == 0 {
			return fmt.Errorf("invalid configuration: scheduler enabled with an empty watchlist")
		}
	}
	return nil
}

// ValidateSchedule validates a 5-field cron expression.
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// ParsedDatedRates returns the configured dated FX rates.
func (c ExtractionConfig) ParsedDatedRates() []ParsedRate {
	out := make([]ParsedRate, 0, len(c.DatedRates))
	for _, r := range c.DatedRates {
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		out = append(out, ParsedRate{Currency: strings.ToUpper(r.Currency), Date: d, Rate: r.Rate})
	}
	return out
}

type ParsedRate struct {
	Currency string
	Date     time.Time
	Rate     float64
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Duration parses a duration string, returning fallback when empty or invalid.
func Duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
