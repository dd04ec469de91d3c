// Package analysis turns a sensor Dataset into derived summaries: descriptive
// statistics, data-quality counts, monthly averages, a correlation matrix and
// wind distributions. Every function is a pure read of the Dataset.
package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/solarlens/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Designated sensor columns.
const (
	FieldGHI  = "GHI"
	FieldDNI  = "DNI"
	FieldDHI  = "DHI"
	FieldTamb = "Tamb"
	FieldWS   = "WS"
	FieldWD   = "WD"
	FieldRH   = "RH"
)

// Summary holds descriptive statistics over the non-missing values of one
// numeric column. Undefined values are NaN.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	Std    float64 // sample standard deviation (n-1)
	Min    float64
	Max    float64
}

// SummaryStatistics computes a Summary for every numeric column.
func SummaryStatistics(ds *dataset.Dataset) (map[string]Summary, error) {
	cols := ds.NumericColumns()
	if len(cols) == 0 {
		return nil, &dataset.ValidationError{Op: "summary statistics", Msg: "no numeric columns found"}
	}
	out := make(map[string]Summary, len(cols))
	for _, c := range cols {
		vals, _ := ds.Float(c)
		out[c] = summarize(present(vals))
	}
	return out, nil
}

func summarize(v []float64) Summary {
	nan := math.NaN()
	s := Summary{Count: len(v), Mean: nan, Median: nan, Std: nan, Min: nan, Max: nan}
	if len(v) == 0 {
		return s
	}
	s.Min = floats.Min(v)
	s.Max = floats.Max(v)
	// Summation rounding can push the mean of a constant column past its bounds.
	s.Mean = math.Max(s.Min, math.Min(s.Max, stat.Mean(v, nil)))
	s.Median = quantile(sorted(v), 0.5)
	if len(v) > 1 {
		s.Std = stat.StdDev(v, nil)
	}
	return s
}

// present drops NaN entries.
func present(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func sorted(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// quantile interpolates linearly between the closest ranks of an ascending
// slice: position q*(n-1).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// checkColumns splits required names into those absent from ds and those
// present but not numeric.
func checkColumns(ds *dataset.Dataset, names []string) (missing, nonNumeric []string) {
	for _, n := range names {
		switch {
		case !ds.HasColumn(n):
			missing = append(missing, n)
		case !ds.IsNumeric(n):
			nonNumeric = append(nonNumeric, n)
		}
	}
	return missing, nonNumeric
}

func requireNumeric(op string, ds *dataset.Dataset, names []string) error {
	missing, nonNumeric := checkColumns(ds, names)
	if len(missing) > 0 {
		return &dataset.ValidationError{Op: op, Msg: "missing required columns", Fields: missing}
	}
	if len(nonNumeric) > 0 {
		return &dataset.ValidationError{Op: op, Msg: "columns are not numeric", Fields: nonNumeric}
	}
	return nil
}
