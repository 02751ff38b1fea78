package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"fnocli/internal/config"
	"fnocli/internal/infrastructure"
)

// CLIOptions selects the configuration a batch command runs with
type CLIOptions struct {
	// ConfigFile overrides the YAML file lookup; empty uses config.Load
	ConfigFile string
	// BaseDir overrides the directory relative paths resolve against
	BaseDir string
	// LogFile names the log file under the logs directory when file
	// logging is configured
	LogFile string
}

// CLIEnv is the configuration, resolved paths and logger shared by the
// batch commands
type CLIEnv struct {
	Config *config.Config
	Paths  *config.Paths
	Logger *slog.Logger
	closer io.Closer
}

// LoadCLI loads configuration the same way the server does, lets the caller
// apply flag overrides, then resolves paths and builds a logger writing to
// console.
func LoadCLI(opts CLIOptions, console io.Writer, override func(*config.Config)) (*CLIEnv, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFile(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.BaseDir != "" {
		cfg.Paths.BaseDir = opts.BaseDir
	}
	if override != nil {
		override(cfg)
	}

	paths, err := cfg.Paths.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	output := strings.ToLower(cfg.Logging.Output)
	if opts.LogFile != "" && (output == "file" || output == "both") {
		cfg.Logging.FilePath = paths.GetLogPath(opts.LogFile)
	}
	logger, closer, err := infrastructure.NewLogger(cfg.Logging, console)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &CLIEnv{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
		closer: closer,
	}, nil
}

// Close releases the log file, if any
func (e *CLIEnv) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}
