package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads a participant-wise open interest report saved as an
// Excel workbook. The sheet is located by its "Client Type" header row.
func ParseWorkbook(filePath string, date time.Time) ([]ParticipantPosition, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var rows [][]string
	var sheetName string
	for _, name := range f.GetSheetList() {
		testRows, testErr := f.GetRows(name)
		if testErr != nil {
			continue
		}
		if hasParticipantHeader(testRows) {
			rows = testRows
			sheetName = name
			break
		}
	}

	if rows == nil {
		return nil, fmt.Errorf("could not find participant data sheet in %s", filePath)
	}

	slog.Debug("found participant data in sheet",
		slog.String("file", filePath),
		slog.String("sheet_name", sheetName),
		slog.Int("total_rows", len(rows)))

	return parseParticipantRecords(rows, date)
}

// WritePositionsWorkbook writes positions in the NSE report layout so that
// ParseWorkbook and ParseParticipantOI read them back.
func WritePositionsWorkbook(filePath string, positions []ParticipantPosition) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Participant OI"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if len(positions) > 0 {
		title := "Participant wise Open Interest (no. of contracts) in Equity Derivatives as on " +
			positions[0].Date.Format("Jan 02, 2006")
		if err := f.SetCellValue(sheet, "A1", title); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
	}

	header := []interface{}{
		"Client Type", "Future Index Long", "Future Index Short", "Future Stock Long", "Future Stock Short",
		"Option Index Call Long", "Option Index Put Long", "Option Index Call Short", "Option Index Put Short",
	}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range positions {
		row := []interface{}{
			participantLabel(string(p.Institution)),
			p.FutureIndexLong, p.FutureIndexShort, p.FutureStockLong, p.FutureStockShort,
			p.CallLong, p.PutLong, p.CallShort, p.PutShort,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+3, err)
		}
	}

	return f.SaveAs(filePath)
}

func hasParticipantHeader(rows [][]string) bool {
	for i := 0; i < len(rows) && i < 5; i++ {
		text := strings.ToLower(strings.Join(rows[i], " "))
		if strings.Contains(text, "client type") && strings.Contains(text, "future index long") {
			return true
		}
	}
	return false
}

// participantLabel returns the first-column spelling NSE uses
func participantLabel(inst string) string {
	switch inst {
	case "CLIENT":
		return "Client"
	case "PRO":
		return "Pro"
	default:
		return inst
	}
}
