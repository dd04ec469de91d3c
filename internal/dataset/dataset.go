// Package dataset loads solar-farm sensor tables into an immutable, typed
// in-memory Dataset.
package dataset

import (
	"math"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// TimestampColumn is the column every Dataset must carry.
const TimestampColumn = "Timestamp"

// Dataset is an ordered, read-only table of sensor records. The Timestamp
// column is kept both as raw text in the frame and as parsed times.
// All accessors return copies; nothing handed out aliases internal state.
type Dataset struct {
	name  string
	frame dataframe.DataFrame
	times []time.Time
	valid []bool
}

// Name is the base name of the file the Dataset was loaded from.
func (d *Dataset) Name() string { return d.name }

// Rows returns the number of records.
func (d *Dataset) Rows() int {
	if d == nil {
		return 0
	}
	return d.frame.Nrow()
}

// Columns returns the column names in header order.
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	return d.frame.Names()
}

// HasColumn reports whether a column with the exact name exists.
func (d *Dataset) HasColumn(name string) bool {
	for _, n := range d.Columns() {
		if n == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether the column exists and holds integer or
// floating-point values. The timestamp column is never numeric.
func (d *Dataset) IsNumeric(name string) bool {
	if name == TimestampColumn || !d.HasColumn(name) {
		return false
	}
	switch d.frame.Col(name).Type() {
	case series.Float, series.Int:
		return true
	}
	return false
}

// NumericColumns returns the numeric column names in header order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, n := range d.Columns() {
		if d.IsNumeric(n) {
			out = append(out, n)
		}
	}
	return out
}

// Float returns a copy of a numeric column's values with NaN for missing
// entries. ok is false when the column is absent or not numeric.
func (d *Dataset) Float(name string) (vals []float64, ok bool) {
	if !d.IsNumeric(name) {
		return nil, false
	}
	return d.frame.Col(name).Float(), true
}

// Missing counts null entries in a column; 0 for an absent column.
func (d *Dataset) Missing(name string) int {
	if !d.HasColumn(name) {
		return 0
	}
	if name == TimestampColumn {
		n := 0
		for _, ok := range d.valid {
			if !ok {
				n++
			}
		}
		return n
	}
	n := 0
	for _, na := range d.frame.Col(name).IsNaN() {
		if na {
			n++
		}
	}
	return n
}

// Timestamps returns the parsed Timestamp column. Missing entries are the
// zero time; use TimestampValid to tell them apart.
func (d *Dataset) Timestamps() []time.Time {
	out := make([]time.Time, len(d.times))
	copy(out, d.times)
	return out
}

// TimestampValid reports, per row, whether the timestamp was present.
func (d *Dataset) TimestampValid() []bool {
	out := make([]bool, len(d.valid))
	copy(out, d.valid)
	return out
}

// Head returns up to n records as display strings, missing cells empty.
func (d *Dataset) Head(n int) [][]string {
	rows := d.Rows()
	if n > rows {
		n = rows
	}
	if n <= 0 {
		return nil
	}
	cols := d.Columns()
	out := make([][]string, n)
	for i := range out {
		out[i] = make([]string, len(cols))
	}
	for j, c := range cols {
		s := d.frame.Col(c)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				continue
			}
			if c != TimestampColumn && s.Type() == series.Float {
				out[i][j] = formatFloat(e.Float())
				continue
			}
			out[i][j] = e.String()
		}
	}
	return out
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
