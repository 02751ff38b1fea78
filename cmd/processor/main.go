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
	"sort"
	"strings"
	"syscall"
	"time"

	"fnocli/internal/app"
	"fnocli/internal/config"
	"fnocli/internal/dataprocessing"
	"fnocli/internal/files"
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
		slog.Error("Processing failed", "error", err)
		os.Exit(1)
	}
}

// processResult summarises one processor run
type processResult struct {
	ExistingDates int
	NewDates      []time.Time
	TotalRows     int
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML config file (defaults to FNO_CONFIG_FILE or ./config.yaml)")
	baseDir := fs.String("base", "", "base directory for relative paths (defaults to the executable directory)")
	inDir := fs.String("in", "", "directory of NSE participant OI reports (defaults to data/downloads)")
	outFile := fs.String("out", "", "raw rows CSV to write (defaults to data/participant_oi.csv)")
	workbook := fs.String("xlsx", "", "optional workbook to also write the parsed long/short positions to")
	institutions := fs.String("institutions", "", "comma separated institutions to keep (defaults to all)")
	dropStock := fs.Bool("drop-stock-futures", false, "omit FUTURE-STOCK rows")
	fullRework := fs.Bool("full", false, "rebuild the CSV from every report instead of appending new dates")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("processor"))
		return nil
	}

	env, err := app.LoadCLI(app.CLIOptions{ConfigFile: *configFile, BaseDir: *baseDir, LogFile: "process.log"}, stderr,
		func(cfg *config.Config) {
			if *inDir != "" {
				cfg.Paths.DownloadsDir = *inDir
			}
			if *outFile != "" {
				cfg.Paths.HistoryCSV = *outFile
			}
			if *institutions != "" {
				cfg.Analysis.Institutions = strings.Split(*institutions, ",")
			}
		})
	if err != nil {
		return err
	}
	defer env.Close()
	logger := env.Logger

	insts, err := env.Config.Institutions()
	if err != nil {
		return err
	}
	opts := dataprocessing.DefaultOptions()
	opts.Institutions = insts
	opts.KeepStockFutures = !*dropStock

	logger.InfoContext(ctx, "Starting participant OI processing",
		slog.String("input_dir", env.Paths.DownloadsDir),
		slog.String("output_file", env.Paths.HistoryCSV),
		slog.Bool("full_rework", *fullRework))

	loader := dataprocessing.NewLoader(opts, logger)
	res, err := process(ctx, loader, env.Paths.DownloadsDir, env.Paths.HistoryCSV, opts, *fullRework, *workbook, logger)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Processing complete",
		slog.Int("existing_dates", res.ExistingDates),
		slog.Int("new_dates", len(res.NewDates)),
		slog.Int("total_rows", res.TotalRows))

	fmt.Fprintf(stdout, "Processed %d new dates (%d already present), %d rows in %s\n",
		len(res.NewDates), res.ExistingDates, res.TotalRows, env.Paths.HistoryCSV)
	return nil
}

// process parses the participant reports in inDir and writes the raw rows
// CSV. Unless full is set, dates already present in outFile are kept as
// they are and only newer reports are appended.
func process(ctx context.Context, loader *dataprocessing.Loader, inDir, outFile string, opts dataprocessing.ProcessingOptions, full bool, workbook string, logger *slog.Logger) (processResult, error) {
	var res processResult

	var existing []dataprocessing.RawRow
	if !full && config.FileExists(outFile) {
		rows, err := dataprocessing.LoadRawRows(outFile)
		if err != nil {
			return res, fmt.Errorf("load existing rows: %w", err)
		}
		existing = rows
	}
	known := rowDates(existing)
	res.ExistingDates = len(known)

	parsed, err := loader.LoadParticipantDir(ctx, inDir)
	if err != nil {
		return res, err
	}

	fresh := make([]dataprocessing.RawRow, 0, len(parsed))
	newDates := make(map[time.Time]bool)
	for _, row := range parsed {
		if known[row.Date] || !keepRow(row, opts) {
			continue
		}
		fresh = append(fresh, row)
		newDates[row.Date] = true
	}
	for d := range newDates {
		res.NewDates = append(res.NewDates, d)
	}
	sort.Slice(res.NewDates, func(i, j int) bool { return res.NewDates[i].Before(res.NewDates[j]) })

	if len(fresh) == 0 && len(existing) > 0 {
		logger.InfoContext(ctx, "No new participant reports to process")
		res.TotalRows = len(existing)
		return res, nil
	}

	all := append(existing, fresh...)
	sortRows(all)
	if err := dataprocessing.SaveRawRows(outFile, all); err != nil {
		return res, fmt.Errorf("save raw rows: %w", err)
	}
	res.TotalRows = len(all)

	if workbook != "" {
		positions, err := loadPositions(loader, inDir, newDates)
		if err != nil {
			return res, err
		}
		if err := dataprocessing.WritePositionsWorkbook(workbook, positions); err != nil {
			return res, fmt.Errorf("write positions workbook: %w", err)
		}
		logger.InfoContext(ctx, "Wrote positions workbook",
			slog.String("path", workbook),
			slog.Int("positions", len(positions)))
	}
	return res, nil
}

func keepRow(row dataprocessing.RawRow, opts dataprocessing.ProcessingOptions) bool {
	if row.TradeType == dataprocessing.TradeTypeFutureStock && !opts.KeepStockFutures {
		return false
	}
	if len(opts.Institutions) == 0 {
		return true
	}
	for _, inst := range opts.Institutions {
		if inst == row.Institution {
			return true
		}
	}
	return false
}

// loadPositions re-reads the reports for dates so the workbook carries the
// long and short legs rather than the netted rows
func loadPositions(loader *dataprocessing.Loader, dir string, dates map[time.Time]bool) ([]dataprocessing.ParticipantPosition, error) {
	reports, err := files.NewDiscovery("").FindDated(dir, dataprocessing.ParticipantFileDate)
	if err != nil {
		return nil, err
	}

	var positions []dataprocessing.ParticipantPosition
	for _, f := range reports {
		if !dates[f.Date] {
			continue
		}
		ps, err := loader.LoadParticipantFile(f.Path)
		if err != nil {
			return nil, err
		}
		positions = append(positions, ps...)
	}
	return positions, nil
}

func rowDates(rows []dataprocessing.RawRow) map[time.Time]bool {
	dates := make(map[time.Time]bool)
	for _, r := range rows {
		dates[r.Date] = true
	}
	return dates
}

func sortRows(rows []dataprocessing.RawRow) {
	rank := make(map[strength.Institution]int, len(strength.Institutions))
	for i, inst := range strength.Institutions {
		rank[inst] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Institution != b.Institution {
			return rank[a.Institution] < rank[b.Institution]
		}
		return a.TradeType < b.TradeType
	})
}
