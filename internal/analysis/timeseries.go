package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/solarlens/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// MonthlyFields are averaged per month by TimeSeries.
var MonthlyFields = []string{FieldGHI, FieldDNI, FieldDHI, FieldTamb}

// MonthlySeries maps a field name to its month-of-year means. Months with no
// records are absent, not zero.
type MonthlySeries map[string]map[time.Month]float64

// Months returns every month present in any field, ascending.
func (m MonthlySeries) Months() []time.Month {
	seen := map[time.Month]struct{}{}
	for _, byMonth := range m {
		for mo := range byMonth {
			seen[mo] = struct{}{}
		}
	}
	out := make([]time.Month, 0, len(seen))
	for mo := range seen {
		out = append(out, mo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MonthGroups projects the Dataset onto month-of-year, returning row indices
// per month. Rows with a missing timestamp belong to no group.
func MonthGroups(ds *dataset.Dataset) map[time.Month][]int {
	groups := map[time.Month][]int{}
	valid := ds.TimestampValid()
	for i, t := range ds.Timestamps() {
		if !valid[i] {
			continue
		}
		groups[t.Month()] = append(groups[t.Month()], i)
	}
	return groups
}

// TimeSeries computes the mean of each MonthlyFields column per month.
// A month whose values for a field are all missing maps to NaN.
func TimeSeries(ds *dataset.Dataset) (MonthlySeries, error) {
	const op = "time series"
	if !ds.HasColumn(dataset.TimestampColumn) {
		return nil, &dataset.ValidationError{Op: op, Msg: "missing required columns", Fields: []string{dataset.TimestampColumn}}
	}
	if err := requireNumeric(op, ds, MonthlyFields); err != nil {
		return nil, err
	}

	groups := MonthGroups(ds)
	out := make(MonthlySeries, len(MonthlyFields))
	for _, f := range MonthlyFields {
		vals, _ := ds.Float(f)
		byMonth := make(map[time.Month]float64, len(groups))
		for mo, rows := range groups {
			picked := make([]float64, 0, len(rows))
			for _, r := range rows {
				if !math.IsNaN(vals[r]) {
					picked = append(picked, vals[r])
				}
			}
			if len(picked) == 0 {
				byMonth[mo] = math.NaN()
				continue
			}
			byMonth[mo] = stat.Mean(picked, nil)
		}
		out[f] = byMonth
	}
	return out, nil
}
