package config

import (
	"time"

	"fnocli/pkg/contracts"
)

// Application constants for the F&O strength tooling
const (
	// Application Info
	AppName    = "FNO Strength"
	AppVersion = contracts.Version

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultFetchInterval   = 20 * time.Second
	DefaultFetchMaxElapsed = 2 * time.Minute
	DefaultNSEHomeURL      = "https://www.nseindia.com"
	DefaultNSEArchiveURL   = "https://nsearchives.nseindia.com"

	// File Paths (relative to the base directory)
	DefaultDataDir      = "data"
	DefaultLogsDir      = "logs"
	DefaultDownloadsDir = "data/downloads"
	DefaultReportsDir   = "data/reports"
	DefaultHistoryCSV   = "data/participant_oi.csv"
	DefaultIndexCSV     = "data/nifty_closes.csv"

	// Log rotation
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 5
	DefaultLogMaxAgeDays = 30

	// Analysis
	DefaultLastDays = 30

	// Report file names
	StrengthReportFile   = "strength_report.csv"
	ThresholdsReportFile = "strength_thresholds.csv"
	NetOptionsReportFile = "net_options_report.csv"
	AccuracyReportFile   = "accuracy_report.csv"
	StrengthWorkbookFile = "strength_report.xlsx"
)
