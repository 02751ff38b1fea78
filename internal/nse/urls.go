package nse

import (
	"net/http"
	"strings"
	"time"

	"fnocli/internal/dataprocessing"
)

const (
	// DefaultHomeURL is visited first to obtain session cookies
	DefaultHomeURL = "https://www.nseindia.com"
	// DefaultArchiveURL hosts the daily derivatives reports
	DefaultArchiveURL = "https://nsearchives.nseindia.com"

	participantPath = "/content/nsccl/"
	fiiStatsPath    = "/content/fo/"
	indexClosePath  = "/content/indices/"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.149 Safari/537.36"
)

// ParticipantURL returns the archive URL of the participant-wise open
// interest CSV for date.
func ParticipantURL(archiveURL string, date time.Time) string {
	return strings.TrimRight(archiveURL, "/") + participantPath + dataprocessing.ParticipantFileName(date)
}

// FIIStatsFileName returns the archive name of the FII derivatives statistics
// workbook, e.g. fii_stats_28-Aug-2020.xls.
func FIIStatsFileName(date time.Time) string {
	return "fii_stats_" + date.Format("02-Jan-2006") + ".xls"
}

// FIIStatsURL returns the archive URL of the FII statistics workbook
func FIIStatsURL(archiveURL string, date time.Time) string {
	return strings.TrimRight(archiveURL, "/") + fiiStatsPath + FIIStatsFileName(date)
}

// IndexCloseURL returns the archive URL of the daily index snapshot
func IndexCloseURL(archiveURL string, date time.Time) string {
	return strings.TrimRight(archiveURL, "/") + indexClosePath + dataprocessing.IndexCloseFileName(date)
}

// setBrowserHeaders makes requests look like a desktop browser; the archive
// rejects the default Go user agent.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
}
