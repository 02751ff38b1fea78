package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/config"
	"fnocli/internal/dataprocessing"
	"fnocli/internal/services"
	"fnocli/internal/strength"
)

// writeRawRows writes days of FII and DII index futures and option rows
func writeRawRows(t *testing.T, path string, days int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var rows []dataprocessing.RawRow
	for i := 0; i < days; i++ {
		day := base.AddDate(0, 0, i)
		for k, inst := range []strength.Institution{strength.FII, strength.DII} {
			for j, tt := range []string{dataprocessing.TradeTypeFutureIndex, dataprocessing.TradeTypeCall, dataprocessing.TradeTypePut} {
				rows = append(rows, dataprocessing.RawRow{
					Date:        day,
					Institution: inst,
					TradeType:   tt,
					NetOI:       int64((i%7-3)*(j+1)*1000 + k*500 + i*100),
				})
			}
		}
	}
	require.NoError(t, dataprocessing.SaveRawRows(path, rows))
}

func TestRunWritesReports(t *testing.T) {
	base := t.TempDir()
	writeRawRows(t, filepath.Join(base, config.DefaultHistoryCSV), 25)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-base", base, "-days", "2", "-institutions", "FII"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	reports := filepath.Join(base, config.DefaultReportsDir)
	assert.FileExists(t, filepath.Join(reports, config.StrengthReportFile))
	assert.FileExists(t, filepath.Join(reports, config.ThresholdsReportFile))
	assert.FileExists(t, filepath.Join(reports, config.StrengthWorkbookFile))
	assert.FileExists(t, filepath.Join(reports, "daily", "strength_2024_01_25.csv"))

	out := stdout.String()
	assert.Contains(t, out, "PARTICIPANT STRENGTH AS OF 2024-01-25")
	assert.Contains(t, out, "FII")
	assert.Contains(t, out, "NET_OPTIONS")
	assert.NotContains(t, out, "DII")
	assert.Contains(t, stderr.String(), "Strength report generated successfully")
}

func TestRunNoInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-base", t.TempDir()}, &stdout, &stderr)
	assert.ErrorIs(t, err, services.ErrNoInput)
	assert.Contains(t, stderr.String(), "No participant data found")
}

func TestRunFlags(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		var stdout bytes.Buffer
		require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &bytes.Buffer{}))
		assert.Contains(t, stdout.String(), "fnocli strength-report v")
	})

	t.Run("help", func(t *testing.T) {
		err := run(context.Background(), []string{"-h"}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.True(t, errors.Is(err, flag.ErrHelp))
	})

	t.Run("invalid window", func(t *testing.T) {
		err := run(context.Background(), []string{"-base", t.TempDir(), "-window", "10"}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, strength.ErrInvalidConfig)
	})
}

func TestPrintSummaryWithoutDates(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, &services.Run{})
	assert.Contains(t, out.String(), "No dates classified")
}
