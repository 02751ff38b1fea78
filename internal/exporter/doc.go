// Package exporter writes strength classification output to disk.
//
// CSVWriter is the shared writer. Relative paths land in the reports
// directory, or the downloads directory under a "downloads/" prefix. Tables
// are rendered in memory and swapped in with a rename, and report files carry
// a UTF-8 BOM so Excel opens them correctly.
//
// StrengthExporter writes the classification report with the columns
// Date, Participant, Segment, Strength, Net OI and OI Change, one file per
// trading day, and the percentile thresholds behind each label.
//
// AccuracyExporter writes the per-participant prediction accuracy tables.
//
// WorkbookExporter builds a single xlsx workbook with one sheet per segment,
// laid out as dates by participants, plus an accuracy sheet.
//
// Example usage:
//
//	paths, _ := config.GetPaths()
//	exp := exporter.NewStrengthExporter(paths, logger)
//	path, err := exp.ExportResults(results, config.StrengthReportFile)
package exporter
