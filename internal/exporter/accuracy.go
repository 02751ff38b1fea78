package exporter

import (
	"log/slog"
	"sort"

	"fnocli/internal/accuracy"
	"fnocli/internal/config"
	"fnocli/internal/strength"
)

// AccuracyHeaders are the columns of the accuracy report
var AccuracyHeaders = []string{
	"Flat Threshold %", "Participant", "Days", "Correct", "Wrong", "Indecisive", "Accuracy %",
}

// AccuracyExporter writes prediction accuracy tables
type AccuracyExporter struct {
	csvWriter *CSVWriter
}

// NewAccuracyExporter creates a new accuracy report exporter
func NewAccuracyExporter(paths *config.Paths, logger *slog.Logger) *AccuracyExporter {
	return &AccuracyExporter{csvWriter: NewCSVWriter(paths, logger)}
}

// ExportAccuracy writes one row per flat band and participant
func (a *AccuracyExporter) ExportAccuracy(reports []accuracy.Report, outputPath string) (string, error) {
	return a.csvWriter.WriteReport(outputPath, AccuracyHeaders, accuracyRecords(reports))
}

func accuracyRecords(reports []accuracy.Report) [][]string {
	var records [][]string
	for _, rep := range reports {
		for _, inst := range reportInstitutions(rep) {
			c := rep.Counts[inst]
			records = append(records, []string{
				formatFloat(rep.FlatThreshold),
				string(inst),
				formatInt(int64(rep.Days)),
				formatInt(int64(c.Correct)),
				formatInt(int64(c.Wrong)),
				formatInt(int64(c.Indecisive)),
				formatFloat(c.Accuracy()),
			})
		}
	}
	return records
}

// reportInstitutions lists the participants of a report in report order
func reportInstitutions(rep accuracy.Report) []strength.Institution {
	insts := make([]strength.Institution, 0, len(rep.Counts))
	for inst := range rep.Counts {
		insts = append(insts, inst)
	}
	sort.Slice(insts, func(i, j int) bool {
		ri, rj := institutionRank(insts[i]), institutionRank(insts[j])
		if ri != rj {
			return ri < rj
		}
		return insts[i] < insts[j]
	})
	return insts
}
