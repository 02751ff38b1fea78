package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"fnocli/internal/strength"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Strength  StrengthSettings `yaml:"strength" envconfig:"STRENGTH"`
	Fetcher   FetcherConfig    `yaml:"fetcher" envconfig:"FETCHER"`
	Analysis  AnalysisConfig   `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	MaxSizeMB   int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB"`
	MaxBackups  int    `yaml:"max_backups" envconfig:"MAX_BACKUPS"`
	MaxAgeDays  int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths. Relative paths resolve against
// BaseDir, which defaults to the executable directory.
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR"`
	DownloadsDir string `yaml:"downloads_dir" envconfig:"DOWNLOADS_DIR"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	HistoryCSV   string `yaml:"history_csv" envconfig:"HISTORY_CSV"`
	IndexCSV     string `yaml:"index_csv" envconfig:"INDEX_CSV"`
}

// StrengthSettings holds the classifier parameters in their textual form
type StrengthSettings struct {
	Window               int      `yaml:"window" envconfig:"WINDOW"`
	MinHistory           int      `yaml:"min_history" envconfig:"MIN_HISTORY"`
	OIHighPercentile     float64  `yaml:"oi_high_percentile" envconfig:"OI_HIGH_PERCENTILE"`
	OILowPercentile      float64  `yaml:"oi_low_percentile" envconfig:"OI_LOW_PERCENTILE"`
	ChangeHighPercentile float64  `yaml:"change_high_percentile" envconfig:"CHANGE_HIGH_PERCENTILE"`
	ChangeLowPercentile  float64  `yaml:"change_low_percentile" envconfig:"CHANGE_LOW_PERCENTILE"`
	PutSegments          []string `yaml:"put_segments" envconfig:"PUT_SEGMENTS"`
	Method               string   `yaml:"method" envconfig:"METHOD"`
	Combine              string   `yaml:"combine" envconfig:"COMBINE"`
	Pool                 string   `yaml:"pool" envconfig:"POOL"`
}

// FetcherConfig contains NSE archive download settings
type FetcherConfig struct {
	HomeURL        string        `yaml:"home_url" envconfig:"HOME_URL"`
	ArchiveURL     string        `yaml:"archive_url" envconfig:"ARCHIVE_URL"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	Interval       time.Duration `yaml:"interval" envconfig:"INTERVAL"`
	MaxElapsed     time.Duration `yaml:"max_elapsed" envconfig:"MAX_ELAPSED"`
	BrowserSession bool          `yaml:"browser_session" envconfig:"BROWSER_SESSION"`
	Headless       bool          `yaml:"headless" envconfig:"HEADLESS"`
}

// AnalysisConfig controls batch classification runs
type AnalysisConfig struct {
	LastDays       int       `yaml:"last_days" envconfig:"LAST_DAYS"`
	Workers        int       `yaml:"workers" envconfig:"WORKERS"`
	Institutions   []string  `yaml:"institutions" envconfig:"INSTITUTIONS"`
	FlatThresholds []float64 `yaml:"flat_thresholds" envconfig:"FLAT_THRESHOLDS"`
}

// TelemetryConfig selects the OpenTelemetry exporters. Spans are created even
// with trace_exporter "none" so log lines keep their trace IDs.
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// EnvPrefix namespaces every environment variable, e.g. FNO_SERVER_PORT
const EnvPrefix = "FNO"

// Load builds the configuration from defaults, an optional YAML file, .env
// files and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// StrengthConfig converts the settings into classifier parameters
func (c *Config) StrengthConfig() (strength.Config, error) {
	s := c.Strength
	cfg := strength.DefaultConfig()

	if s.Window > 0 {
		cfg.Window = strength.Window(s.Window)
	}
	if s.MinHistory > 0 {
		cfg.MinHistory = s.MinHistory
	}
	cfg.OIPercentiles = strength.Percentiles{High: s.OIHighPercentile, Low: s.OILowPercentile}
	cfg.ChangePercentiles = strength.Percentiles{High: s.ChangeHighPercentile, Low: s.ChangeLowPercentile}

	if len(s.PutSegments) > 0 {
		cfg.PutSegments = cfg.PutSegments[:0:0]
		for _, name := range s.PutSegments {
			if strings.TrimSpace(name) == "" {
				continue
			}
			seg, err := strength.ParseSegment(name)
			if err != nil {
				return strength.Config{}, fmt.Errorf("put segments: %w", err)
			}
			cfg.PutSegments = append(cfg.PutSegments, seg)
		}
	}

	var err error
	if cfg.Method, err = strength.ParseMethod(s.Method); err != nil {
		return strength.Config{}, err
	}
	if cfg.Combine, err = strength.ParseCombineMode(s.Combine); err != nil {
		return strength.Config{}, err
	}
	if cfg.Pool, err = strength.ParsePoolMode(s.Pool); err != nil {
		return strength.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return strength.Config{}, err
	}
	return cfg, nil
}

// Institutions parses the analysis institution filter. Empty means all.
func (c *Config) Institutions() ([]strength.Institution, error) {
	var out []strength.Institution
	for _, name := range c.Analysis.Institutions {
		if strings.TrimSpace(name) == "" {
			continue
		}
		inst, err := strength.ParseInstitution(name)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q", c.Logging.Output)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis workers must be positive, got %d", c.Analysis.Workers)
	}

	switch c.Telemetry.TraceExporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("invalid telemetry trace exporter %q", c.Telemetry.TraceExporter)
	}
	switch c.Telemetry.MetricExporter {
	case "", "none", "prometheus":
	default:
		return fmt.Errorf("invalid telemetry metric exporter %q", c.Telemetry.MetricExporter)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0, 1], got %g", c.Telemetry.SampleRatio)
	}

	for _, f := range c.Analysis.FlatThresholds {
		if f < 0 {
			return fmt.Errorf("flat threshold must not be negative, got %g", f)
		}
	}

	if _, err := c.StrengthConfig(); err != nil {
		return err
	}
	if _, err := c.Institutions(); err != nil {
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "console",
			FilePath:   "logs/app.log",
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
		Paths: PathsConfig{
			DataDir:      DefaultDataDir,
			DownloadsDir: DefaultDownloadsDir,
			ReportsDir:   DefaultReportsDir,
			LogsDir:      DefaultLogsDir,
			HistoryCSV:   DefaultHistoryCSV,
			IndexCSV:     DefaultIndexCSV,
		},
		Strength: StrengthSettings{
			Window:               int(strength.DefaultWindow),
			MinHistory:           strength.DefaultMinHistory,
			OIHighPercentile:     strength.DefaultOIHighPct,
			OILowPercentile:      strength.DefaultOILowPct,
			ChangeHighPercentile: strength.DefaultChangeHighPct,
			ChangeLowPercentile:  strength.DefaultChangeLowPct,
			PutSegments:          []string{string(strength.PutOptions)},
			Method:               string(strength.MethodLinear),
			Combine:              string(strength.CombineMin),
			Pool:                 string(strength.PoolSeparate),
		},
		Fetcher: FetcherConfig{
			HomeURL:    DefaultNSEHomeURL,
			ArchiveURL: DefaultNSEArchiveURL,
			Timeout:    DefaultHTTPTimeout,
			Interval:   DefaultFetchInterval,
			MaxElapsed: DefaultFetchMaxElapsed,
			Headless:   true,
		},
		Analysis: AnalysisConfig{
			LastDays:       DefaultLastDays,
			Workers:        strength.DefaultWorkers,
			FlatThresholds: []float64{0.2, 0.3, 0.4},
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
