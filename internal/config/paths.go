package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	BaseDir      string
	DataDir      string
	DownloadsDir string
	ReportsDir   string
	CacheDir     string
	LogsDir      string

	// Input files
	HistoryCSV string
	IndexCSV   string

	// Well-known report files
	StrengthReportCSV   string
	ThresholdsReportCSV string
	NetOptionsReportCSV string
	AccuracyReportCSV   string
	StrengthWorkbook    string
}

// ExecutableDir returns the directory holding the running binary
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// GetPaths returns the default layout relative to the executable location
func GetPaths() (*Paths, error) {
	return Default().Paths.Resolve()
}

// Resolve turns the configured paths into absolute ones. Relative entries
// are joined to BaseDir, or to the executable directory when BaseDir is empty.
//
// Directory structure:
//
//	base/
//	  ├── data/
//	  │   ├── participant_oi.csv  (raw rows history)
//	  │   ├── nifty_closes.csv    (index closes)
//	  │   ├── downloads/          (NSE participant reports)
//	  │   ├── reports/            (generated reports)
//	  │   └── cache/
//	  └── logs/
func (pc PathsConfig) Resolve() (*Paths, error) {
	base := pc.BaseDir
	if base == "" {
		dir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		base = dir
	}

	abs := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	dataDir := abs(pc.DataDir, DefaultDataDir)
	reportsDir := abs(pc.ReportsDir, DefaultReportsDir)

	return &Paths{
		BaseDir:      base,
		DataDir:      dataDir,
		DownloadsDir: abs(pc.DownloadsDir, DefaultDownloadsDir),
		ReportsDir:   reportsDir,
		CacheDir:     filepath.Join(dataDir, "cache"),
		LogsDir:      abs(pc.LogsDir, DefaultLogsDir),

		HistoryCSV: abs(pc.HistoryCSV, DefaultHistoryCSV),
		IndexCSV:   abs(pc.IndexCSV, DefaultIndexCSV),

		StrengthReportCSV:   filepath.Join(reportsDir, StrengthReportFile),
		ThresholdsReportCSV: filepath.Join(reportsDir, ThresholdsReportFile),
		NetOptionsReportCSV: filepath.Join(reportsDir, NetOptionsReportFile),
		AccuracyReportCSV:   filepath.Join(reportsDir, AccuracyReportFile),
		StrengthWorkbook:    filepath.Join(reportsDir, StrengthWorkbookFile),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.DownloadsDir,
		p.ReportsDir,
		p.CacheDir,
		p.LogsDir,
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetDownloadPath returns the path for a downloaded file
func (p *Paths) GetDownloadPath(filename string) string {
	return filepath.Join(p.DownloadsDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("downloads", p.DownloadsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("cache", p.CacheDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("inputs",
			slog.String("history_csv", p.HistoryCSV),
			slog.Bool("history_exists", FileExists(p.HistoryCSV)),
			slog.String("index_csv", p.IndexCSV),
			slog.Bool("index_exists", FileExists(p.IndexCSV)),
		))
}
