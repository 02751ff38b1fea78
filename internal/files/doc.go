// Package files locates the dated reports kept under the data directories
// and writes files atomically.
//
// Archive files carry their trading date in the name
// (fao_participant_oi_28082020.csv, ind_close_all_28082020.csv). Discovery
// lists one such family with a caller supplied DateParser and returns them
// oldest first:
//
//	reports, err := files.NewDiscovery(paths.DataDir).
//		FindDated("downloads", dataprocessing.ParticipantFileDate)
//	latest, ok := files.GetLatestFile(reports)
//
// WriteFileAtomic stages data in a temporary file beside the target and
// renames it into place, so a crashed download never leaves a truncated
// report that later runs would treat as present.
package files
