package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// LoadOptions controls how a file is read. The zero value is usable.
type LoadOptions struct {
	// Delimiter for delimited text. If 0, chosen by file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet; SheetIndex (1-based) is used when empty.
	SheetName  string
	SheetIndex int
	// TimeLayouts are tried before the built-in timestamp layouts.
	TimeLayouts []string
}

// Source reads one file format into header-first string records.
type Source interface {
	CanLoad(path string) bool
	Records(path string, opt LoadOptions) ([][]string, error)
}

var registry []Source

// Register adds a Source. Sources are consulted in registration order.
func Register(s Source) {
	registry = append(registry, s)
}

func init() {
	Register(gzipSource{})
	Register(xlsxSource{})
	Register(delimitedSource{})
}

// nanValues are the cell spellings treated as missing.
var nanValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// Load reads a delimited table (or a gzip-compressed one, or an XLSX sheet)
// and returns a Dataset. It fails with *AccessError when the file cannot be
// read and with *ValidationError when the Timestamp column is absent or
// holds a value that does not parse.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	src := sourceFor(path)
	records, err := src.Records(path, opt)
	if err != nil {
		return nil, err
	}
	return FromRecords(filepath.Base(path), records, opt)
}

func sourceFor(path string) Source {
	for _, s := range registry {
		if s.CanLoad(path) {
			return s
		}
	}
	// Anything unrecognized is read as delimited text.
	return delimitedSource{}
}

// FromRecords builds a Dataset from header-first records. Rows shorter than
// the header are padded with missing cells; longer rows are truncated.
func FromRecords(name string, records [][]string, opt LoadOptions) (*Dataset, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &ValidationError{Op: "load", Msg: "no header row"}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	tsIdx := -1
	for i, h := range header {
		if h == TimestampColumn {
			tsIdx = i
			break
		}
	}
	if tsIdx < 0 {
		return nil, &ValidationError{Op: "load", Msg: "missing required columns", Fields: []string{TimestampColumn}}
	}

	ncol := len(header)
	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	for _, rec := range records[1:] {
		row := make([]string, ncol)
		copy(row, rec)
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		rows = append(rows, row)
	}

	var frame dataframe.DataFrame
	if len(rows) == 1 {
		cols := make([]series.Series, ncol)
		for i, h := range header {
			cols[i] = series.New([]string{}, series.String, h)
		}
		frame = dataframe.New(cols...)
	} else {
		frame = dataframe.LoadRecords(rows,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(true),
			dataframe.DefaultType(series.Float),
			dataframe.NaNValues(nanValues),
			dataframe.WithTypes(map[string]series.Type{TimestampColumn: series.String}),
		)
	}
	if frame.Err != nil {
		return nil, &ValidationError{Op: "load", Msg: frame.Err.Error()}
	}

	n := len(rows) - 1
	ds := &Dataset{name: name, frame: frame, times: make([]time.Time, n), valid: make([]bool, n)}
	layouts := append(append([]string{}, opt.TimeLayouts...), timeLayouts...)
	for i := 1; i <= n; i++ {
		raw := rows[i][tsIdx]
		if isNaN(raw) {
			continue
		}
		t, ok := parseTime(raw, layouts)
		if !ok {
			return nil, &ValidationError{
				Op:  "load",
				Msg: fmt.Sprintf("unparseable %s %q at row %d", TimestampColumn, raw, i),
			}
		}
		ds.times[i-1] = t
		ds.valid[i-1] = true
	}
	return ds, nil
}

func isNaN(s string) bool {
	for _, v := range nanValues {
		if s == v {
			return true
		}
	}
	return false
}
