package record

import (
	"fmt"
	"strings"
	"time"
)

// Role is the relation a node reported for the other side of an observation.
type Role string

// RoleParent marks an observation where Source adopted Address as its parent.
// Every other role value is treated as a plain neighbor sighting.
const RoleParent Role = "PARENT"

// IsParent reports whether the role is PARENT (case-insensitive).
func (r Role) IsParent() bool {
	return strings.EqualFold(string(r), string(RoleParent))
}

// Observation is one parsed row of the discovery log.
type Observation struct {
	Timestamp  time.Time
	Source     int     // node that logged the row
	Address    int     // node on the other side of the observation
	Parent     int     // Source's parent at the time; <= 0 means none
	Role       Role    // PARENT or any other role
	RSSI       float64 // signal strength of the Source/Address link
	ParentRSSI float64 // signal strength towards Parent
	Row        int     // zero-based data row index in the input
}

// HasParent reports whether the row carries a parent reference.
func (o Observation) HasParent() bool { return o.Parent > 0 }

// NewerThan reports whether o should replace other as the latest record for
// a key. Equal timestamps fall back to input order, so the earlier row wins.
func (o Observation) NewerThan(other Observation) bool {
	if o.Timestamp.Equal(other.Timestamp) {
		return o.Row < other.Row
	}
	return o.Timestamp.After(other.Timestamp)
}

// RowError describes a data row that could not be parsed.
type RowError struct {
	Line   int    // 1-based line number in the file, header included
	Column string // offending column
	Value  string // raw field value
	Err    error
}

// Error implements the error interface.
func (e RowError) Error() string {
	return fmt.Sprintf("line %d: column %s: %q: %v", e.Line, e.Column, e.Value, e.Err)
}

// Unwrap returns the underlying parse error.
func (e RowError) Unwrap() error { return e.Err }

// Dataset is the result of reading a discovery log.
type Dataset struct {
	Records []Observation
	Skipped []RowError
}

// Len returns the number of parsed records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Empty reports whether the dataset holds no records.
func (d *Dataset) Empty() bool { return d.Len() == 0 }
