package nse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fnocli/internal/dataprocessing"
	"fnocli/internal/files"
	"fnocli/internal/infrastructure"
	"fnocli/internal/strength"
)

// Summary describes the outcome of a range download
type Summary struct {
	Downloaded  []string    `json:"downloaded"`
	Existing    []string    `json:"existing"`
	Unpublished []time.Time `json:"unpublished"`
}

// Files returns every participant file available after the run
func (s Summary) Files() []string {
	all := append(append([]string{}, s.Existing...), s.Downloaded...)
	sort.Strings(all)
	return all
}

// TradingDays returns the weekdays in [from, to]. Exchange holidays are not
// known in advance and surface as ErrNotPublished on download.
func TradingDays(from, to time.Time) []time.Time {
	from = strength.NormalizeDate(from)
	to = strength.NormalizeDate(to)

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// DownloadRange fetches the participant OI report for every trading day in
// [from, to]. Missing reports are logged and recorded in the summary; any
// other failure aborts the run.
func (c *Client) DownloadRange(ctx context.Context, from, to time.Time, dir string) (Summary, error) {
	var summary Summary
	if to.Before(from) {
		return summary, fmt.Errorf("invalid range: %s is before %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	days := TradingDays(from, to)
	c.logger.InfoContext(ctx, "downloading participant reports",
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
		"trading_days", len(days),
		"output_dir", dir,
	)

	for _, day := range days {
		path, fetched, err := c.DownloadParticipant(ctx, day, dir)
		switch {
		case errors.Is(err, ErrNotPublished):
			c.logger.InfoContext(ctx, "no report published, likely a holiday", "date", day.Format("2006-01-02"))
			infrastructure.RecordDownload(ctx, c.metrics, "unpublished")
			summary.Unpublished = append(summary.Unpublished, day)
			continue
		case err != nil:
			infrastructure.RecordDownload(ctx, c.metrics, "failed")
			return summary, fmt.Errorf("download %s: %w", day.Format("2006-01-02"), err)
		}

		if fetched {
			infrastructure.RecordDownload(ctx, c.metrics, "downloaded")
			summary.Downloaded = append(summary.Downloaded, path)
		} else {
			infrastructure.RecordDownload(ctx, c.metrics, "existing")
			summary.Existing = append(summary.Existing, path)
		}
	}

	c.logger.InfoContext(ctx, "participant download complete",
		"downloaded", len(summary.Downloaded),
		"existing", len(summary.Existing),
		"unpublished", len(summary.Unpublished),
	)
	return summary, nil
}

// LatestDownloadedDate returns the most recent participant report date in dir
func LatestDownloadedDate(dir string) (time.Time, bool) {
	found, err := files.NewDiscovery("").FindDated(dir, dataprocessing.ParticipantFileDate)
	if err != nil {
		return time.Time{}, false
	}
	latest, ok := files.GetLatestFile(found)
	return latest.Date, ok
}
