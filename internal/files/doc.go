// Package files finds race record files and moves them around the data
// directory.
//
// Discovery lists record files (.xlsx, .xlsm, .csv) in a directory and reads
// the race date many sources embed in their file names, so that a batch can
// be limited to a date range:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	cards, err := discovery.FindByDateRange("", from, to)
//
// Manager archives processed inputs under data/processed.
package files
