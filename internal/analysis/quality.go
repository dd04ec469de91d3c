package analysis

import "github.com/KaramelBytes/solarlens/internal/dataset"

// IQRMultiplier scales the interquartile range into outlier fences.
const IQRMultiplier = 1.5

// Quality holds per-column missing counts (every column) and IQR outlier
// counts (numeric columns).
type Quality struct {
	Missing  map[string]int
	Outliers map[string]int
}

// DataQuality never fails; an empty Dataset yields zero counts everywhere.
func DataQuality(ds *dataset.Dataset) Quality {
	q := Quality{Missing: map[string]int{}, Outliers: map[string]int{}}
	for _, c := range ds.Columns() {
		q.Missing[c] = ds.Missing(c)
	}
	for _, c := range ds.NumericColumns() {
		vals, _ := ds.Float(c)
		q.Outliers[c] = countOutliers(present(vals))
	}
	return q
}

// IQRFences returns [Q1-1.5*IQR, Q3+1.5*IQR] for an ascending slice.
func IQRFences(sorted []float64) (lower, upper float64) {
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - IQRMultiplier*iqr, q3 + IQRMultiplier*iqr
}

// countOutliers counts values strictly outside the fences. With IQR=0 every
// value different from Q1 is counted.
func countOutliers(vals []float64) int {
	if len(vals) == 0 {
		return 0
	}
	lower, upper := IQRFences(sorted(vals))
	n := 0
	for _, v := range vals {
		if v < lower || v > upper {
			n++
		}
	}
	return n
}
