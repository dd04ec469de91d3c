package analysis

import (
	"math"

	"github.com/KaramelBytes/solarlens/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// CorrelationFields are the columns of the correlation matrix, in order.
var CorrelationFields = []string{FieldGHI, FieldDNI, FieldDHI, FieldTamb, FieldWS, FieldRH}

// CorrMatrix holds a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// At returns the coefficient for a pair of column names; ok is false if
// either name is not in the matrix.
func (m *CorrMatrix) At(a, b string) (r float64, ok bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// Correlations computes pairwise Pearson coefficients over CorrelationFields
// using rows where both values are present. The diagonal is 1. A pair with
// fewer than two complete rows, or with zero variance, is NaN.
func Correlations(ds *dataset.Dataset) (*CorrMatrix, error) {
	if err := requireNumeric("correlations", ds, CorrelationFields); err != nil {
		return nil, err
	}
	n := len(CorrelationFields)
	cols := make([][]float64, n)
	for i, f := range CorrelationFields {
		cols[i], _ = ds.Float(f)
	}
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		mat[a][a] = 1
		for b := a + 1; b < n; b++ {
			r := pearson(cols[a], cols[b])
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	names := make([]string, n)
	copy(names, CorrelationFields)
	return &CorrMatrix{Columns: names, Values: mat}, nil
}

func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}
