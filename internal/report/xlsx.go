package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetRun           = "Run"
	SheetSummary       = "Summary"
	SheetQuality       = "Quality"
	SheetMonthly       = "Monthly"
	SheetCorrelations  = "Correlations"
	SheetWindSpeed     = "Wind Speed"
	SheetWindDirection = "Wind Direction"
	SheetPreview       = "Preview"
)

// WriteXLSX writes one sheet per computed section plus a Run sheet.
// Missing values are left as empty cells.
func WriteXLSX(res *analysis.Results, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("Solar sensor report - %s", res.Dataset),
		Subject:     "Solar farm sensor analysis",
		Creator:     "solarlens",
		Identifier:  res.RunID,
		Description: fmt.Sprintf("run %s over %d rows", res.RunID, res.Rows),
		Created:     res.GeneratedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("set doc props: %w", err)
	}

	// The default sheet becomes the Run sheet so the workbook never starts empty.
	if err := f.SetSheetName("Sheet1", SheetRun); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	x := &xlsxWriter{f: f}
	x.rows(SheetRun, [][]any{
		{"Run ID", res.RunID},
		{"Dataset", res.Dataset},
		{"Rows", res.Rows},
		{"Generated", res.GeneratedAt.UTC().Format(time.RFC3339)},
	})

	if s := res.Summary; s != nil {
		x.sheet(SheetSummary)
		if s.Err != nil {
			x.failed(SheetSummary, s.Err)
		} else {
			out := [][]any{{"Field", "Count", "Mean", "Median", "Std", "Min", "Max"}}
			for _, c := range s.Columns {
				st := s.Stats[c]
				out = append(out, []any{c, st.Count, cell(st.Mean), cell(st.Median), cell(st.Std), cell(st.Min), cell(st.Max)})
			}
			x.rows(SheetSummary, out)
		}
	}
	if q := res.Quality; q != nil {
		x.sheet(SheetQuality)
		out := [][]any{{"Column", "Missing", "Outliers"}}
		for _, c := range q.Columns {
			var n any
			if v, ok := q.Outliers[c]; ok {
				n = v
			}
			out = append(out, []any{c, q.Missing[c], n})
		}
		x.rows(SheetQuality, out)
	}
	if ts := res.TimeSeries; ts != nil {
		x.sheet(SheetMonthly)
		if ts.Err != nil {
			x.failed(SheetMonthly, ts.Err)
		} else {
			head := []any{"Month"}
			for _, fld := range analysis.MonthlyFields {
				head = append(head, fld)
			}
			out := [][]any{head}
			for _, mo := range ts.Series.Months() {
				row := []any{mo.String()}
				for _, fld := range analysis.MonthlyFields {
					v, ok := ts.Series[fld][mo]
					if !ok {
						row = append(row, nil)
						continue
					}
					row = append(row, cell(v))
				}
				out = append(out, row)
			}
			x.rows(SheetMonthly, out)
		}
	}
	if c := res.Correlations; c != nil {
		x.sheet(SheetCorrelations)
		if c.Err != nil {
			x.failed(SheetCorrelations, c.Err)
		} else {
			head := []any{""}
			for _, name := range c.Matrix.Columns {
				head = append(head, name)
			}
			out := [][]any{head}
			for i, name := range c.Matrix.Columns {
				row := []any{name}
				for _, v := range c.Matrix.Values[i] {
					row = append(row, cell(v))
				}
				out = append(out, row)
			}
			x.rows(SheetCorrelations, out)
		}
	}
	if wr := res.Wind; wr != nil {
		x.sheet(SheetWindSpeed)
		x.sheet(SheetWindDirection)
		if wr.Err != nil {
			x.failed(SheetWindSpeed, wr.Err)
			x.failed(SheetWindDirection, wr.Err)
		} else {
			speed := [][]any{{"Speed", "Frequency"}}
			for _, b := range wr.Wind.SpeedBuckets() {
				speed = append(speed, []any{b.Speed, b.Frequency})
			}
			x.rows(SheetWindSpeed, speed)
			dir := [][]any{{"Sector", "Frequency"}}
			for _, b := range wr.Wind.DirectionBuckets() {
				dir = append(dir, []any{string(b.Sector), b.Frequency})
			}
			x.rows(SheetWindDirection, dir)
		}
	}
	if len(res.Preview.Rows) > 0 {
		x.sheet(SheetPreview)
		out := make([][]any, 0, len(res.Preview.Rows)+1)
		out = append(out, strs(res.Preview.Columns))
		for _, r := range res.Preview.Rows {
			out = append(out, strs(r))
		}
		x.rows(SheetPreview, out)
	}
	if x.err != nil {
		return x.err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// xlsxWriter keeps the first error so callers can write sheets without
// checking after every cell.
type xlsxWriter struct {
	f   *excelize.File
	err error
}

func (x *xlsxWriter) sheet(name string) {
	if x.err != nil {
		return
	}
	if _, err := x.f.NewSheet(name); err != nil {
		x.err = fmt.Errorf("new sheet %s: %w", name, err)
	}
}

func (x *xlsxWriter) rows(sheet string, rows [][]any) {
	for i, r := range rows {
		if x.err != nil {
			return
		}
		r := r
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			x.err = err
			return
		}
		if err := x.f.SetSheetRow(sheet, ref, &r); err != nil {
			x.err = fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if x.err == nil && len(rows) > 0 {
		last, _ := excelize.ColumnNumberToName(len(rows[0]))
		_ = x.f.SetColWidth(sheet, "A", last, 14)
	}
}

func (x *xlsxWriter) failed(sheet string, err error) {
	x.rows(sheet, [][]any{{"error", err.Error()}})
}

// cell maps NaN to an empty cell.
func cell(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func strs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
