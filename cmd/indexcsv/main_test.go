package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/config"
	"fnocli/internal/dataprocessing"
)

const indexHeader = "Index Name,Index Date,Open Index Value,High Index Value,Low Index Value,Closing Index Value,Points Change,Change(%)\n"

func writeSnapshot(t *testing.T, dir string, date time.Time, nifty float64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := indexHeader +
		fmt.Sprintf("Nifty 50,%s,0,0,0,%.2f,0,0\n", date.Format("02-01-2006"), nifty) +
		fmt.Sprintf("Nifty Bank,%s,0,0,0,%.2f,0,0\n", date.Format("02-01-2006"), nifty*2)
	path := filepath.Join(dir, dataprocessing.IndexCloseFileName(date))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRunAccumulative(t *testing.T) {
	base := t.TempDir()
	downloads := filepath.Join(base, config.DefaultDownloadsDir)
	out := filepath.Join(base, config.DefaultIndexCSV)
	day := func(d int) time.Time { return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC) }

	writeSnapshot(t, downloads, day(2), 21853.80)
	writeSnapshot(t, downloads, day(1), 21697.45)
	require.NoError(t, os.WriteFile(filepath.Join(downloads, "ind_close_all_05022024.csv"), []byte("garbage\n"), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-base", base}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "2 new closes, 2 total")
	assert.Contains(t, stderr.String(), "Error processing file")

	closes, err := dataprocessing.LoadCloses(out)
	require.NoError(t, err)
	require.Len(t, closes, 2)
	assert.Equal(t, day(1), closes[0].Date)
	assert.InDelta(t, 21853.80, closes[1].Value, 1e-9)

	writeSnapshot(t, downloads, day(6), 21929.40)
	stdout.Reset()
	require.NoError(t, run(context.Background(), []string{"-base", base}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "1 new closes, 3 total")

	stdout.Reset()
	require.NoError(t, run(context.Background(), []string{"-base", base}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "0 new closes, 3 total")
}

func TestRunInitialOtherIndex(t *testing.T) {
	base := t.TempDir()
	downloads := filepath.Join(base, config.DefaultDownloadsDir)
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	writeSnapshot(t, downloads, date, 100)

	var stdout, stderr bytes.Buffer
	args := []string{"-base", base, "-mode", "initial", "-index", "NIFTY BANK"}
	require.NoError(t, run(context.Background(), args, &stdout, &stderr), stderr.String())

	closes, err := dataprocessing.LoadCloses(filepath.Join(base, config.DefaultIndexCSV))
	require.NoError(t, err)
	require.Len(t, closes, 1)
	assert.InDelta(t, 200.0, closes[0].Value, 1e-9)
}

func TestRunInvalidMode(t *testing.T) {
	err := run(context.Background(), []string{"-mode", "weekly"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown mode")
}

func TestFindIndexFiles(t *testing.T) {
	dir := t.TempDir()
	for d := 1; d <= 3; d++ {
		writeSnapshot(t, dir, time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC), 1)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fao_participant_oi_01022024.csv"), nil, 0o644))

	files, err := findIndexFiles(dir, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, 2, files[0].Date.Day())

	_, err = findIndexFiles(filepath.Join(dir, "missing"), time.Time{})
	assert.Error(t, err)
}
