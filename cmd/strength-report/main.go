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
	"strings"
	"syscall"

	"fnocli/internal/app"
	"fnocli/internal/config"
	"fnocli/internal/dataprocessing"
	"fnocli/internal/exporter"
	"fnocli/internal/services"
	"fnocli/internal/strength"
	"fnocli/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Strength report failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("strength-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML config file (defaults to FNO_CONFIG_FILE or ./config.yaml)")
	baseDir := fs.String("base", "", "base directory for relative paths (defaults to the executable directory)")
	input := fs.String("in", "", "raw rows CSV (date,institution,trade_type,net_oi); defaults to data/participant_oi.csv")
	participants := fs.String("participants", "", "directory of NSE participant OI reports used when the raw rows CSV is missing")
	closes := fs.String("closes", "", "index close CSV for the accuracy back-test")
	outDir := fs.String("out", "", "output directory for reports (defaults to data/reports)")
	days := fs.Int("days", 0, "number of most recent dates to classify")
	institutions := fs.String("institutions", "", "comma separated institutions to classify (FII,DII,PRO,CLIENT)")
	window := fs.Int("window", 0, "lookback window in sessions")
	daily := fs.Bool("daily", true, "also write one strength CSV per date under reports/daily")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("strength-report"))
		return nil
	}

	env, err := app.LoadCLI(app.CLIOptions{ConfigFile: *configFile, BaseDir: *baseDir, LogFile: "strength-report.log"}, stderr,
		func(cfg *config.Config) {
			if *input != "" {
				cfg.Paths.HistoryCSV = *input
			}
			if *participants != "" {
				cfg.Paths.DownloadsDir = *participants
			}
			if *closes != "" {
				cfg.Paths.IndexCSV = *closes
			}
			if *outDir != "" {
				cfg.Paths.ReportsDir = *outDir
			}
			if *days > 0 {
				cfg.Analysis.LastDays = *days
			}
			if *institutions != "" {
				cfg.Analysis.Institutions = strings.Split(*institutions, ",")
			}
			if *window > 0 {
				cfg.Strength.Window = *window
			}
		})
	if err != nil {
		return err
	}
	defer env.Close()
	logger := env.Logger

	svcCfg, err := services.StrengthServiceConfigFrom(env.Config, env.Paths)
	if err != nil {
		return fmt.Errorf("invalid strength configuration: %w", err)
	}

	opts := dataprocessing.DefaultOptions()
	opts.Institutions = svcCfg.Institutions
	svc := services.NewStrengthService(dataprocessing.NewLoader(opts, logger), svcCfg, nil, logger)

	logger.InfoContext(ctx, "Generating strength report",
		slog.String("history_csv", env.Paths.HistoryCSV),
		slog.String("reports_dir", env.Paths.ReportsDir),
		slog.Int("last_days", svcCfg.LastDays),
		slog.Int("window", int(svcCfg.Strength.Window)))

	result, err := svc.Refresh(ctx)
	if err != nil {
		if errors.Is(err, services.ErrNoInput) {
			logger.ErrorContext(ctx, "No participant data found",
				slog.String("history_csv", env.Paths.HistoryCSV),
				slog.String("participants_dir", env.Paths.DownloadsDir),
				slog.String("hint", "Run fetcher and processor first"))
		}
		return err
	}

	written, err := services.NewReportService(env.Paths, *daily, logger).Export(ctx, result)
	if err != nil {
		return fmt.Errorf("export reports: %w", err)
	}

	logger.InfoContext(ctx, "Strength report generated successfully",
		slog.String("run_id", result.ID),
		slog.Int("results", len(result.Results)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("files", len(written)))

	printSummary(stdout, result)
	return nil
}

func printSummary(w io.Writer, run *services.Run) {
	latest := run.LatestDate()
	if latest.IsZero() {
		fmt.Fprintln(w, "No dates classified")
		return
	}

	var rows []strength.Result
	for _, r := range exporter.SortResults(run.Results) {
		if r.Date.Equal(latest) {
			rows = append(rows, r)
		}
	}

	fmt.Fprintf(w, "\n=== PARTICIPANT STRENGTH AS OF %s ===\n", latest.Format("2006-01-02"))
	fmt.Fprintln(w, "Participant | Segment        | Strength        |       Net OI |    OI Change")
	fmt.Fprintln(w, "------------|----------------|-----------------|--------------|-------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-11s | %-14s | %-15s | %12d | %12d\n",
			r.Institution, r.Segment, r.Label, r.NetOI, r.OIChange)
	}

	if len(run.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d requests (see logs for reasons)\n", len(run.Skipped))
	}

	for _, rep := range run.Accuracy {
		fmt.Fprintf(w, "\n=== ACCURACY (flat band %.2f%%, %d days) ===\n", rep.FlatThreshold, rep.Days)
		for _, inst := range strength.Institutions {
			c, ok := rep.Counts[inst]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%-7s correct %4d  wrong %4d  indecisive %4d  accuracy %6.2f%%\n",
				inst, c.Correct, c.Wrong, c.Indecisive, c.Accuracy())
		}
	}
}
