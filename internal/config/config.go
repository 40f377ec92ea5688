package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/guillermoBallester/chronicle/internal/adapter/policy"
	"github.com/guillermoBallester/chronicle/internal/core/domain"
)

type Config struct {
	// Database location.
	DatabasePath string

	// Changefeed shape.
	LogTable    string
	WithIndexes bool

	// Table selection. Tables set means audit exactly those; otherwise every
	// discovered table minus ExcludeTables.
	Tables        []string
	ExcludeTables []string

	// Optional collaborator files.
	PolicyFile string // audit policy YAML
	ReportFile string // NDJSON install report

	// Logging.
	LogLevel  slog.Level
	LogFormat string // "json" (default) or "text"

	// Observability.
	TelemetryEnabled bool
}

// Overrides holds CLI flag values that override both environment variables
// and the policy file. Pointer fields distinguish "not set" from zero values.
type Overrides struct {
	DatabasePath *string
	LogTable     *string
	Tables       []string
	Exclude      []string
	PolicyFile   *string
	ReportFile   *string
	LogLevel     *string
	LogFormat    *string

	NoIndexes        bool
	TelemetryEnabled bool
}

// Load builds a Config from environment variables, layers the policy file on
// top, then applies CLI overrides and validates the result. Precedence, lowest
// first: defaults, environment, policy file, flags.
func Load(overrides Overrides) (*Config, error) {
	cfg := defaults()

	if err := loadEnvVars(cfg); err != nil {
		return nil, err
	}

	// The policy path itself follows the same precedence.
	if overrides.PolicyFile != nil {
		cfg.PolicyFile = *overrides.PolicyFile
	}
	if cfg.PolicyFile != "" {
		pol, err := policy.LoadFromFile(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		applyPolicy(cfg, pol)
	}

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config populated with default values.
func defaults() *Config {
	return &Config{
		DatabasePath: os.Getenv("DATABASE_PATH"),
		LogTable:     domain.DefaultLogTable,
		WithIndexes:  true,
		LogFormat:    "json",
	}
}

// loadEnvVars reads all supported environment variables into cfg.
func loadEnvVars(cfg *Config) error {
	if v := os.Getenv("LOG_TABLE"); v != "" {
		cfg.LogTable = v
	}

	if v := os.Getenv("WITH_INDEXES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid WITH_INDEXES value %q: %w", v, err)
		}
		cfg.WithIndexes = b
	}

	if v := os.Getenv("TABLES"); v != "" {
		cfg.Tables = splitList(v)
	}
	if v := os.Getenv("EXCLUDE_TABLES"); v != "" {
		cfg.ExcludeTables = splitList(v)
	}

	cfg.PolicyFile = os.Getenv("POLICY_FILE")
	cfg.ReportFile = os.Getenv("REPORT_FILE")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	if v := os.Getenv("TELEMETRY_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TELEMETRY_ENABLED value %q: %w", v, err)
		}
		cfg.TelemetryEnabled = b
	}

	return nil
}

// applyPolicy layers a loaded policy file over the env-loaded config.
func applyPolicy(cfg *Config, pol *policy.Policy) {
	if pol.LogTable != "" {
		cfg.LogTable = pol.LogTable
	}
	if pol.Indexes != nil {
		cfg.WithIndexes = *pol.Indexes
	}
	if len(pol.Tables) > 0 {
		cfg.Tables = pol.Tables
	}
	if len(pol.Exclude) > 0 {
		cfg.ExcludeTables = pol.Exclude
	}
}

// applyOverrides applies CLI flag values on top of everything else.
func applyOverrides(cfg *Config, o Overrides) error {
	if o.DatabasePath != nil {
		cfg.DatabasePath = *o.DatabasePath
	}
	if o.LogTable != nil {
		cfg.LogTable = *o.LogTable
	}
	if o.Tables != nil {
		cfg.Tables = o.Tables
	}
	if o.Exclude != nil {
		cfg.ExcludeTables = o.Exclude
	}
	if o.ReportFile != nil {
		cfg.ReportFile = *o.ReportFile
	}
	if o.LogLevel != nil {
		level, err := parseLogLevel(*o.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if o.LogFormat != nil {
		cfg.LogFormat = *o.LogFormat
	}

	cfg.WithIndexes = cfg.WithIndexes && !o.NoIndexes
	cfg.TelemetryEnabled = cfg.TelemetryEnabled || o.TelemetryEnabled

	return nil
}

// validate checks cross-field constraints on the final config.
func validate(cfg *Config) error {
	if cfg.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required (give the database path as an argument or set the env var)")
	}

	if strings.TrimSpace(cfg.LogTable) == "" {
		return fmt.Errorf("LOG_TABLE must not be blank")
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT value %q: must be \"json\" or \"text\"", cfg.LogFormat)
	}

	for _, table := range cfg.Tables {
		if table == cfg.LogTable {
			return fmt.Errorf("the log table %q cannot audit itself", cfg.LogTable)
		}
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL value %q: must be debug, info, warn, or error", s)
	}
}
