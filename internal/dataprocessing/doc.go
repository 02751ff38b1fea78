// Package dataprocessing turns participant-wise derivatives data into
// classifier input.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parsers: NSE participant OI reports (CSV or xlsx) and raw net rows
// 2. Processor: pivots raw rows into per-segment observations with daily changes
// 3. Loader: reads directories and files and builds a strength.History
//
// # Usage
//
// Building a history from a raw rows export:
//
//	loader := dataprocessing.NewLoader(dataprocessing.DefaultOptions(), logger)
//	h, err := loader.LoadHistory(ctx, "data/processed_options_futures.csv")
//	if err != nil {
//	    return err
//	}
//
// Converting downloaded NSE reports:
//
//	rows, err := loader.LoadParticipantDir(ctx, "data/participant_oi")
//	if err != nil {
//	    return err
//	}
//	err = dataprocessing.SaveRawRows("data/raw_rows.csv", rows)
//
// # Data Flow
//
//	NSE report → ParticipantPosition → RawRow (LONG - SHORT) → Observation (with change) → History
//
// Raw rows carry one net value per date, participant and trade type
// (FUTURE-INDEX, FUTURE-STOCK, CALL, PUT; CASH is accepted and dropped).
// The first observation of every series has a change of 0.
package dataprocessing
