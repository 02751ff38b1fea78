package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fnocli/internal/strength"
)

func TestParseWorkbook(t *testing.T) {
	date := time.Date(2020, 8, 28, 0, 0, 0, 0, time.UTC)
	positions := []ParticipantPosition{
		{Date: date, Institution: strength.CLIENT, FutureIndexLong: 10, FutureIndexShort: 4, CallLong: 7, CallShort: 2, PutLong: 1, PutShort: 3},
		{Date: date, Institution: strength.FII, FutureIndexLong: 120000, FutureIndexShort: 80000, CallLong: 300000, CallShort: 200000, PutLong: 250000, PutShort: 400000},
	}

	path := filepath.Join(t.TempDir(), ParticipantFileName(date)+".xlsx")
	require.NoError(t, WritePositionsWorkbook(path, positions))

	t.Run("explicit date", func(t *testing.T) {
		got, err := ParseWorkbook(path, date)
		require.NoError(t, err)
		assert.Equal(t, positions, got)
	})

	t.Run("date from title", func(t *testing.T) {
		got, err := ParseWorkbook(path, time.Time{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, date, got[0].Date)
	})
}

func TestParseWorkbookWithoutParticipantSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "nothing here"))

	path := filepath.Join(t.TempDir(), "other.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := ParseWorkbook(path, time.Now())
	assert.Error(t, err)
}

func TestParseWorkbookMissingFile(t *testing.T) {
	_, err := ParseWorkbook(filepath.Join(os.TempDir(), "does-not-exist.xlsx"), time.Now())
	assert.Error(t, err)
}
