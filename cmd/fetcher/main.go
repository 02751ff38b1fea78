package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"fnocli/internal/app"
	"fnocli/internal/config"
	"fnocli/internal/nse"
	"fnocli/internal/strength"
	"fnocli/pkg/contracts"
)

const dateLayout = "2006-01-02"

// defaultLookback is how far back an empty downloads directory is filled
const defaultLookback = 30

func main() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Fetcher panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, time.Now()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Fetch failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("fetcher", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML config file (defaults to FNO_CONFIG_FILE or ./config.yaml)")
	baseDir := fs.String("base", "", "base directory for relative paths (defaults to the executable directory)")
	fromStr := fs.String("from", "", "start date (YYYY-MM-DD); defaults to the day after the latest downloaded report")
	toStr := fs.String("to", "", "end date (YYYY-MM-DD); defaults to today")
	lookback := fs.Int("days", defaultLookback, "calendar days to fetch when nothing has been downloaded yet")
	outDir := fs.String("out", "", "directory to save reports (defaults to data/downloads)")
	homeURL := fs.String("home-url", "", "exchange home page used to establish a session")
	archiveURL := fs.String("archive-url", "", "archive base URL")
	interval := fs.Duration("interval", -1, "minimum spacing between archive requests (negative keeps the configured value)")
	browser := fs.Bool("browser", false, "establish the session with a headless Chrome instead of a plain HTTP request")
	headless := fs.Bool("headless", true, "run the browser headless")
	fiiStats := fs.Bool("fii-stats", false, "also download the FII derivatives statistics workbooks")
	indexCloses := fs.Bool("index-closes", false, "also download the daily index snapshots used by indexcsv")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("fetcher"))
		return nil
	}

	env, err := app.LoadCLI(app.CLIOptions{ConfigFile: *configFile, BaseDir: *baseDir, LogFile: "fetcher.log"}, stderr,
		func(cfg *config.Config) {
			if *outDir != "" {
				cfg.Paths.DownloadsDir = *outDir
			}
			if *homeURL != "" {
				cfg.Fetcher.HomeURL = *homeURL
			}
			if *archiveURL != "" {
				cfg.Fetcher.ArchiveURL = *archiveURL
			}
			if *interval >= 0 {
				cfg.Fetcher.Interval = *interval
			}
			if *browser {
				cfg.Fetcher.BrowserSession = true
			}
		})
	if err != nil {
		return err
	}
	defer env.Close()
	logger := env.Logger
	dir := env.Paths.DownloadsDir

	from, to, err := dateRange(*fromStr, *toStr, *lookback, dir, now)
	if err != nil {
		return err
	}
	if from.After(to) {
		logger.InfoContext(ctx, "Downloads are up to date", slog.String("latest", to.Format(dateLayout)))
		fmt.Fprintf(stdout, "Up to date through %s\n", to.Format(dateLayout))
		return nil
	}

	fc := env.Config.Fetcher
	client, err := nse.NewClient(nse.Options{
		HomeURL:    fc.HomeURL,
		ArchiveURL: fc.ArchiveURL,
		Timeout:    fc.Timeout,
		Interval:   fc.Interval,
		MaxElapsed: fc.MaxElapsed,
	}, logger)
	if err != nil {
		return err
	}

	if err := establishSession(ctx, client, fc, *headless, logger); err != nil {
		// the archive often serves files without a session
		logger.WarnContext(ctx, "Could not establish archive session", slog.String("error", err.Error()))
	}

	summary, err := client.DownloadRange(ctx, from, to, dir)
	if err != nil {
		return err
	}

	var statsFiles, indexFiles int
	if *fiiStats {
		if statsFiles, err = downloadDaily(ctx, from, to, "FII stats", func(day time.Time) (string, bool, error) {
			return client.DownloadFIIStats(ctx, day, dir)
		}); err != nil {
			return err
		}
	}
	if *indexCloses {
		if indexFiles, err = downloadDaily(ctx, from, to, "index closes", func(day time.Time) (string, bool, error) {
			return client.DownloadIndexClose(ctx, day, dir)
		}); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "Fetch complete",
		slog.String("from", from.Format(dateLayout)),
		slog.String("to", to.Format(dateLayout)),
		slog.Int("downloaded", len(summary.Downloaded)),
		slog.Int("existing", len(summary.Existing)),
		slog.Int("unpublished", len(summary.Unpublished)),
		slog.Int("fii_stats", statsFiles),
		slog.Int("index_closes", indexFiles))

	fmt.Fprintf(stdout, "Downloaded %d, already present %d, not published %d (%s to %s)\n",
		len(summary.Downloaded), len(summary.Existing), len(summary.Unpublished),
		from.Format(dateLayout), to.Format(dateLayout))
	return nil
}

// downloadDaily runs fetch for every trading day in [from, to] and counts
// the files it downloaded. Unpublished days are skipped.
func downloadDaily(ctx context.Context, from, to time.Time, what string, fetch func(time.Time) (string, bool, error)) (int, error) {
	var n int
	for _, day := range nse.TradingDays(from, to) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		_, fetched, err := fetch(day)
		switch {
		case errors.Is(err, nse.ErrNotPublished):
			continue
		case err != nil:
			return n, fmt.Errorf("download %s %s: %w", what, day.Format(dateLayout), err)
		}
		if fetched {
			n++
		}
	}
	return n, nil
}

// dateRange resolves the flags into an inclusive range. Without -from the
// range resumes after the newest report in dir, or covers lookback days.
func dateRange(fromStr, toStr string, lookback int, dir string, now time.Time) (time.Time, time.Time, error) {
	to := strength.NormalizeDate(now)
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to date %q: %w", toStr, err)
		}
		to = t
	}

	if fromStr != "" {
		f, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from date %q: %w", fromStr, err)
		}
		if f.After(to) {
			return time.Time{}, time.Time{}, fmt.Errorf("-from %s is after -to %s", fromStr, to.Format(dateLayout))
		}
		return f, to, nil
	}

	if latest, ok := nse.LatestDownloadedDate(dir); ok {
		return latest.AddDate(0, 0, 1), to, nil
	}
	return to.AddDate(0, 0, -lookback), to, nil
}

func establishSession(ctx context.Context, client *nse.Client, fc config.FetcherConfig, headless bool, logger *slog.Logger) error {
	if !fc.BrowserSession {
		return client.Bootstrap(ctx)
	}
	cookies, err := nse.BrowserCookies(ctx, fc.HomeURL, headless && fc.Headless, logger)
	if err != nil {
		return err
	}
	return client.SetCookies(fc.HomeURL, cookies)
}
