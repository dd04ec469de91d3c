package report

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/parquet-go/parquet-go"
)

// MonthlyRow is one long-format record of the monthly averages export.
// Mean is null when every value of the field was missing that month.
type MonthlyRow struct {
	Field string   `parquet:"field"`
	Month int32    `parquet:"month"`
	Mean  *float64 `parquet:"mean,optional"`
}

// MonthlyRows flattens a MonthlySeries ordered by field, then month.
func MonthlyRows(ms analysis.MonthlySeries) []MonthlyRow {
	var rows []MonthlyRow
	months := ms.Months()
	for _, f := range analysis.MonthlyFields {
		byMonth, ok := ms[f]
		if !ok {
			continue
		}
		for _, mo := range months {
			v, ok := byMonth[mo]
			if !ok {
				continue
			}
			rows = append(rows, MonthlyRow{Field: f, Month: int32(mo), Mean: ptr(v)})
		}
	}
	return rows
}

// WriteMonthlyParquet writes the monthly averages as a Parquet file.
func WriteMonthlyParquet(ms analysis.MonthlySeries, w io.Writer) error {
	pw := parquet.NewGenericWriter[MonthlyRow](w)
	rows := MonthlyRows(ms)
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
