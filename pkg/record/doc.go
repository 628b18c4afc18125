// Package record loads WSN discovery logs into immutable observations.
//
// # Overview
//
// Every sensor node periodically logs which neighbors it heard, which of
// them it adopted as its routing parent, and the signal strength of each
// link. The sink collects these rows into a CSV file:
//
//	Timestamp,Source,Address,Parent,Role,RSSI,ParentRSSI
//	2024-03-01 10:00:00,2,7,7,PARENT,-41,-41
//	2024-03-01 10:00:05,3,2,2,NEIGHBOUR,-63,-48
//
// [ReadCSV] and [ImportCSV] parse such a file into a [Dataset]. Column order
// does not matter and extra columns are ignored, but every column listed in
// [Columns] must be present.
//
// # Row Errors
//
// By default a row with an unparseable field is skipped and reported in
// [Dataset.Skipped] so the caller can log it. With [ReadOptions.Strict] the
// first bad row aborts the read with a PARSE_ERROR.
package record
