package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fnocli/internal/accuracy"
	"fnocli/internal/config"
	"fnocli/internal/strength"
)

func sampleReports() []accuracy.Report {
	return []accuracy.Report{
		{
			FlatThreshold: 0.2,
			Days:          10,
			Counts: map[strength.Institution]accuracy.Counts{
				strength.CLIENT: {Correct: 3, Wrong: 1, Indecisive: 6},
				strength.FII:    {Correct: 6, Wrong: 2, Indecisive: 2},
			},
		},
	}
}

func TestExportAccuracy(t *testing.T) {
	exp := NewAccuracyExporter(setupTestPaths(t), nil)

	path, err := exp.ExportAccuracy(sampleReports(), config.AccuracyReportFile)
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, AccuracyHeaders, records[0])
	// FII sorts ahead of CLIENT in report order
	assert.Equal(t, []string{"0.20", "FII", "10", "6", "2", "2", "75.00"}, records[1])
	assert.Equal(t, []string{"0.20", "CLIENT", "10", "3", "1", "6", "75.00"}, records[2])
}

func TestExportWorkbook(t *testing.T) {
	exp := NewWorkbookExporter(setupTestPaths(t), nil)

	path, err := exp.ExportWorkbook(sampleResults(), sampleReports(), config.StrengthWorkbookFile)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t,
		[]string{"Index Futures", "Call Options", "Put Options", "Net Options", AccuracySheet},
		f.GetSheetList())

	rows, err := f.GetRows("Index Futures")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "FII"}, rows[0])
	assert.Equal(t, []string{"2024-03-01", "MILD BULLISH"}, rows[1])

	acc, err := f.GetRows(AccuracySheet)
	require.NoError(t, err)
	assert.Len(t, acc, 3)
}

func TestExportWorkbookEmpty(t *testing.T) {
	exp := NewWorkbookExporter(setupTestPaths(t), nil)

	path, err := exp.ExportWorkbook(nil, nil, "empty.xlsx")
	require.NoError(t, err)
	assert.FileExists(t, path)
}
