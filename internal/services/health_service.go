package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"fnocli/internal/config"
	"fnocli/internal/dataprocessing"
	"fnocli/internal/files"
	"fnocli/pkg/contracts"
)

// ReadinessChecker reports whether a dependency can serve requests
type ReadinessChecker interface {
	Ready() bool
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	strength  ReadinessChecker
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds      float64 `json:"uptime_seconds"`
	TotalFiles         int     `json:"total_files"`
	TotalSizeBytes     int64   `json:"total_size_bytes"`
	ParticipantReports int     `json:"participant_reports"`
	LatestReportDate   string  `json:"latest_report_date,omitempty"`
	GoVersion          string  `json:"go_version"`
	OS                 string  `json:"os"`
	Arch               string  `json:"arch"`
}

// NewHealthService creates a new health service. strength may be nil, in
// which case readiness only checks the data directory.
func NewHealthService(version string, paths *config.Paths, strength ReadinessChecker, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		paths:     paths,
		strength:  strength,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data":     hs.checkDataHealth(),
			"strength": hs.checkStrengthHealth(),
		},
	}

	for name, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.DebugContext(ctx, "service not ready",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      hs.version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// SystemStats counts the files under the data directory
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.paths == nil {
		return stats, nil
	}

	err := filepath.WalkDir(hs.paths.DataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		stats.TotalFiles++
		stats.TotalSizeBytes += info.Size()
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk data directory: %w", err)
	}

	// a missing downloads directory just means nothing was fetched yet
	reports, err := files.NewDiscovery("").FindDated(hs.paths.DownloadsDir, dataprocessing.ParticipantFileDate)
	if err == nil {
		stats.ParticipantReports = len(reports)
		if latest, ok := files.GetLatestFile(reports); ok {
			stats.LatestReportDate = latest.Date.Format("2006-01-02")
		}
	}
	return stats, nil
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{Status: "not_ready", Message: "paths not configured"}
	}
	if _, err := os.Stat(hs.paths.DataDir); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data directory not accessible: %s", hs.paths.DataDir),
		}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkStrengthHealth() ServiceHealth {
	if hs.strength == nil || !hs.strength.Ready() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "no strength run completed yet",
		}
	}
	return ServiceHealth{Status: "ready"}
}
