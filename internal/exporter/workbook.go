package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"fnocli/internal/accuracy"
	"fnocli/internal/config"
	"fnocli/internal/strength"
)

// AccuracySheet is the name of the workbook sheet holding accuracy tables
const AccuracySheet = "Accuracy"

// workbookSegments are the segment sheets in workbook order
var workbookSegments = append(append([]strength.Segment{}, strength.Segments...), strength.NetOptions)

// WorkbookExporter writes the strength report as an xlsx workbook
type WorkbookExporter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter(paths *config.Paths, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{paths: paths, logger: logger}
}

type workbookStyles struct {
	header  int
	bullish int
	bearish int
	other   int
}

// ExportWorkbook writes one sheet per segment with dates down the rows and
// participants across the columns, and an accuracy sheet when reports are
// given. Segments without results get no sheet.
func (w *WorkbookExporter) ExportWorkbook(results []strength.Result, reports []accuracy.Report, outputPath string) (string, error) {
	fullPath := NewCSVWriter(w.paths, w.logger).ResolvePath(outputPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return "", err
	}

	bySegment := make(map[strength.Segment][]strength.Result)
	for _, r := range results {
		bySegment[r.Segment] = append(bySegment[r.Segment], r)
	}

	defaultSheet := f.GetSheetName(0)
	sheets := 0
	for _, seg := range workbookSegments {
		segResults := bySegment[seg]
		if len(segResults) == 0 {
			continue
		}
		if err := w.writeSegmentSheet(f, seg.DisplayName(), segResults, styles); err != nil {
			return "", fmt.Errorf("write %s sheet: %w", seg, err)
		}
		sheets++
	}

	if len(reports) > 0 {
		if err := writeAccuracySheet(f, reports, styles); err != nil {
			return "", fmt.Errorf("write accuracy sheet: %w", err)
		}
		sheets++
	}

	if sheets > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return "", fmt.Errorf("remove default sheet: %w", err)
		}
		f.SetActiveSheet(0)
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("strength workbook exported",
		slog.String("path", fullPath),
		slog.Int("sheets", sheets),
		slog.Int("results", len(results)))
	return fullPath, nil
}

func (w *WorkbookExporter) writeSegmentSheet(f *excelize.File, sheet string, results []strength.Result, styles workbookStyles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	instSet := make(map[strength.Institution]bool)
	labels := make(map[time.Time]map[strength.Institution]strength.Label)
	for _, r := range results {
		d := strength.NormalizeDate(r.Date)
		instSet[r.Institution] = true
		if labels[d] == nil {
			labels[d] = make(map[strength.Institution]strength.Label)
		}
		labels[d][r.Institution] = r.Label
	}

	var insts []strength.Institution
	for _, inst := range strength.Institutions {
		if instSet[inst] {
			insts = append(insts, inst)
		}
	}

	dates := make([]time.Time, 0, len(labels))
	for d := range labels {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	header := []interface{}{"Date"}
	for _, inst := range insts {
		header = append(header, string(inst))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, styles.header); err != nil {
		return err
	}

	for i, d := range dates {
		rowNum := i + 2
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), formatDate(d)); err != nil {
			return err
		}
		for j, inst := range insts {
			label, ok := labels[d][inst]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+2, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, label.String()); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, styles.forLabel(label)); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(sheet, "A", lastColumn(len(header)), 18)
}

func writeAccuracySheet(f *excelize.File, reports []accuracy.Report, styles workbookStyles) error {
	if _, err := f.NewSheet(AccuracySheet); err != nil {
		return err
	}

	header := make([]interface{}, len(AccuracyHeaders))
	for i, h := range AccuracyHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(AccuracySheet, "A1", &header); err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(AccuracySheet, "A1", lastHeader, styles.header); err != nil {
		return err
	}

	rowNum := 2
	for _, rep := range reports {
		for _, inst := range reportInstitutions(rep) {
			c := rep.Counts[inst]
			row := []interface{}{
				rep.FlatThreshold, string(inst), rep.Days,
				c.Correct, c.Wrong, c.Indecisive, c.Accuracy(),
			}
			if err := f.SetSheetRow(AccuracySheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return err
			}
			rowNum++
		}
	}

	return f.SetColWidth(AccuracySheet, "A", lastColumn(len(header)), 16)
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.bullish, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("create bullish style: %w", err)
	}
	if s.bearish, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("create bearish style: %w", err)
	}
	if s.other, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#7F7F7F"},
	}); err != nil {
		return s, fmt.Errorf("create neutral style: %w", err)
	}
	return s, nil
}

func (s workbookStyles) forLabel(l strength.Label) int {
	switch l.Direction {
	case strength.Bullish:
		return s.bullish
	case strength.Bearish:
		return s.bearish
	default:
		return s.other
	}
}

func lastColumn(n int) string {
	name, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return "A"
	}
	return name
}
