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
	"syscall"
	"time"

	"fnocli/internal/accuracy"
	"fnocli/internal/app"
	"fnocli/internal/config"
	"fnocli/internal/dataprocessing"
	"fnocli/internal/files"
	"fnocli/pkg/contracts"
)

const (
	modeInitial      = "initial"
	modeAccumulative = "accumulative"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Index extraction failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("indexcsv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", modeAccumulative, "initial | accumulative")
	configFile := fs.String("config", "", "YAML config file (defaults to FNO_CONFIG_FILE or ./config.yaml)")
	baseDir := fs.String("base", "", "base directory for relative paths (defaults to the executable directory)")
	dir := fs.String("dir", "", "directory containing ind_close_all_*.csv snapshots (defaults to data/downloads)")
	out := fs.String("out", "", "output closes CSV (defaults to data/nifty_closes.csv)")
	index := fs.String("index", dataprocessing.DefaultIndexName, "index whose closes are extracted")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("indexcsv"))
		return nil
	}
	if *mode != modeInitial && *mode != modeAccumulative {
		return fmt.Errorf("unknown mode %q (want %s or %s)", *mode, modeInitial, modeAccumulative)
	}

	env, err := app.LoadCLI(app.CLIOptions{ConfigFile: *configFile, BaseDir: *baseDir, LogFile: "indexcsv.log"}, stderr,
		func(cfg *config.Config) {
			if *dir != "" {
				cfg.Paths.DownloadsDir = *dir
			}
			if *out != "" {
				cfg.Paths.IndexCSV = *out
			}
		})
	if err != nil {
		return err
	}
	defer env.Close()
	logger := env.Logger
	inDir, outFile := env.Paths.DownloadsDir, env.Paths.IndexCSV

	logger.InfoContext(ctx, "Starting index extraction",
		slog.String("mode", *mode),
		slog.String("index", *index),
		slog.String("input_dir", inDir),
		slog.String("output_file", outFile))

	var existing []accuracy.Close
	var lastDate time.Time
	if *mode == modeAccumulative {
		closes, err := dataprocessing.LoadCloses(outFile)
		if err != nil {
			logger.WarnContext(ctx, "No existing closes CSV, switching to initial mode", slog.String("error", err.Error()))
		} else {
			existing = closes
			for _, c := range closes {
				if c.Date.After(lastDate) {
					lastDate = c.Date
				}
			}
		}
	}

	snapshots, err := findIndexFiles(inDir, lastDate)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Index files found", slog.Int("count", len(snapshots)))

	added := make([]accuracy.Close, 0, len(snapshots))
	for i, f := range snapshots {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := dataprocessing.LoadIndexCloseFile(f.Path, *index)
		if err != nil {
			logger.WarnContext(ctx, "Error processing file",
				slog.String("filename", f.Name),
				slog.String("error", err.Error()))
			continue
		}
		added = append(added, c)
		logger.DebugContext(ctx, "Added index close",
			slog.Int("current", i+1),
			slog.Int("total", len(snapshots)),
			slog.String("date", c.Date.Format("2006-01-02")),
			slog.Float64("close", c.Value))
	}

	if len(added) == 0 && len(existing) > 0 {
		fmt.Fprintf(stdout, "Index extraction complete: 0 new closes, %d total in %s\n", len(existing), outFile)
		return nil
	}

	all := append(existing, added...)
	if err := dataprocessing.SaveCloses(outFile, all); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Index extraction completed",
		slog.Int("processed_files", len(added)),
		slog.Int("total_closes", len(all)),
		slog.String("output_path", outFile))
	fmt.Fprintf(stdout, "Index extraction complete: %d new closes, %d total in %s\n", len(added), len(all), outFile)
	return nil
}

// findIndexFiles lists the snapshots in dir dated after since, oldest first
func findIndexFiles(dir string, since time.Time) ([]files.FileInfo, error) {
	found, err := files.NewDiscovery("").FindDated(dir, dataprocessing.IndexCloseFileDate)
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		return found, nil
	}
	return files.FilterFilesByDateRange(found, since.AddDate(0, 0, 1), time.Time{}), nil
}
