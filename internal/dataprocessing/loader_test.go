package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/shared/testutil"
	"fnocli/internal/strength"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoaderParticipantDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fao_participant_oi_28082020.csv"), sampleParticipantCSV)
	writeFile(t, filepath.Join(dir, "fao_participant_oi_31082020.csv"), "garbage\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	date := time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, WritePositionsWorkbook(filepath.Join(dir, "fao_participant_oi_01092020.xlsx"), []ParticipantPosition{
		{Date: date, Institution: strength.FII, FutureIndexLong: 130000, FutureIndexShort: 80000},
	}))

	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader(DefaultOptions(), logger)

	rows, err := loader.LoadParticipantDir(context.Background(), dir)
	require.NoError(t, err)
	// four participants from the CSV and one from the workbook, four trade types each
	assert.Len(t, rows, 20)
	assert.True(t, handler.ContainsMessage("failed to load participant file"))

	h, err := loader.BuildHistory(context.Background(), rows)
	require.NoError(t, err)

	fut := h.Series(strength.Key{Institution: strength.FII, Segment: strength.IndexFutures})
	require.Len(t, fut, 2)
	assert.Equal(t, int64(40000), fut[0].NetOI)
	assert.Equal(t, int64(50000), fut[1].NetOI)
	assert.Equal(t, int64(10000), fut[1].OIChange)
}

func TestLoaderParticipantDirErrors(t *testing.T) {
	loader := NewLoader(DefaultOptions(), nil)

	_, err := loader.LoadParticipantDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = loader.LoadParticipantDir(context.Background(), t.TempDir())
	assert.Error(t, err)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fao_participant_oi_28082020.csv"), sampleParticipantCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.LoadParticipantDir(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoaderLoadHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	writeFile(t, path, "date,institution,trade_type,net_oi\n2024-02-01,FII,CALL,10\n2024-02-02,FII,CALL,25\n")

	h, err := NewLoader(DefaultOptions(), nil).LoadHistory(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())

	o, err := h.Observation(strength.FII, strength.CallOptions, d(1))
	require.NoError(t, err)
	assert.Equal(t, int64(15), o.OIChange)
}

func TestLoadCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nifty.csv")
	writeFile(t, path, "date,close\n2024-02-01,\"21,697.45\"\n2024-02-02,21853.80\n")

	closes, err := LoadCloses(path)
	require.NoError(t, err)
	require.Len(t, closes, 2)
	assert.Equal(t, d(0), closes[0].Date)
	assert.InDelta(t, 21697.45, closes[0].Value, 1e-9)

	writeFile(t, path, "2024-02-01,abc\n")
	_, err = LoadCloses(path)
	assert.Error(t, err)
}
