package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	tmerrors "github.com/matzehuels/topomap/pkg/errors"
)

// Column names required in every discovery log.
const (
	ColTimestamp  = "Timestamp"
	ColSource     = "Source"
	ColAddress    = "Address"
	ColParent     = "Parent"
	ColRole       = "Role"
	ColRSSI       = "RSSI"
	ColParentRSSI = "ParentRSSI"
)

// Columns lists the required columns in canonical order.
var Columns = []string{ColTimestamp, ColSource, ColAddress, ColParent, ColRole, ColRSSI, ColParentRSSI}

// ReadOptions controls how rows are parsed.
type ReadOptions struct {
	// Strict fails on the first bad row instead of skipping it.
	Strict bool
}

// ReadCSV decodes a discovery log from r.
//
// The first row must be a header containing every column in [Columns]
// (case-insensitive). A missing column returns a SCHEMA_ERROR naming all
// missing columns. An empty input, or a header without data rows, returns
// an empty dataset and no error.
//
// ReadCSV does not close r.
func ReadCSV(r io.Reader, opts ReadOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Dataset{}, nil
	}
	if err != nil {
		return nil, tmerrors.Wrap(tmerrors.ErrCodeIO, err, "read header")
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{}
	line := 1
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rowErr := RowError{Line: line, Column: "*", Err: perr.Err}
				if opts.Strict {
					return nil, tmerrors.Wrap(tmerrors.ErrCodeParse, rowErr, "malformed row")
				}
				ds.Skipped = append(ds.Skipped, rowErr)
				continue
			}
			return nil, tmerrors.Wrap(tmerrors.ErrCodeIO, err, "read line %d", line)
		}
		if isBlank(fields) {
			continue
		}

		obs, rowErr := idx.parse(fields, line, len(ds.Records))
		if rowErr != nil {
			if opts.Strict {
				return nil, tmerrors.Wrap(tmerrors.ErrCodeParse, *rowErr, "malformed row")
			}
			ds.Skipped = append(ds.Skipped, *rowErr)
			continue
		}
		ds.Records = append(ds.Records, obs)
	}
	return ds, nil
}

// ImportCSV reads the discovery log at path. See [ReadCSV].
func ImportCSV(path string, opts ReadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, tmerrors.Wrap(tmerrors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	ds, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// columnIndex maps each required column to its field position.
type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		key := strings.ToLower(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	idx := make(columnIndex, len(Columns))
	var missing []string
	for _, c := range Columns {
		i, ok := pos[strings.ToLower(c)]
		if !ok {
			missing = append(missing, c)
			continue
		}
		idx[c] = i
	}
	if len(missing) > 0 {
		return nil, tmerrors.New(tmerrors.ErrCodeSchema, "missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func (idx columnIndex) field(fields []string, col string) string {
	i := idx[col]
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func (idx columnIndex) parse(fields []string, line, row int) (Observation, *RowError) {
	fail := func(col string, err error) *RowError {
		return &RowError{Line: line, Column: col, Value: idx.field(fields, col), Err: err}
	}

	ts, err := ParseTimestamp(idx.field(fields, ColTimestamp))
	if err != nil {
		return Observation{}, fail(ColTimestamp, err)
	}
	src, err := parseAddr(idx.field(fields, ColSource), true)
	if err != nil {
		return Observation{}, fail(ColSource, err)
	}
	addr, err := parseAddr(idx.field(fields, ColAddress), true)
	if err != nil {
		return Observation{}, fail(ColAddress, err)
	}
	parent, err := parseAddr(idx.field(fields, ColParent), false)
	if err != nil {
		return Observation{}, fail(ColParent, err)
	}
	rssi, err := parseSignal(idx.field(fields, ColRSSI))
	if err != nil {
		return Observation{}, fail(ColRSSI, err)
	}
	prssi, err := parseSignal(idx.field(fields, ColParentRSSI))
	if err != nil {
		return Observation{}, fail(ColParentRSSI, err)
	}

	return Observation{
		Timestamp:  ts,
		Source:     src,
		Address:    addr,
		Parent:     parent,
		Role:       Role(strings.ToUpper(idx.field(fields, ColRole))),
		RSSI:       rssi,
		ParentRSSI: prssi,
		Row:        row,
	}, nil
}

var errEmptyField = errors.New("empty value")

// parseAddr parses a node address. Float spellings such as "7.0" are
// accepted because spreadsheet exports often write integers that way.
func parseAddr(s string, required bool) (int, error) {
	if s == "" {
		if required {
			return 0, errEmptyField
		}
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer address")
	}
	return int(f), nil
}

var errNonFinite = errors.New("signal strength must be a finite number")

func parseSignal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNonFinite
	}
	return f, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
