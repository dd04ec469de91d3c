// Package report renders analysis Results for people and for other tools:
// Markdown for the terminal, JSON/YAML documents, an XLSX workbook and a
// Parquet export of the monthly averages.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/solarlens/internal/analysis"
)

// Markdown renders a compact report with one bracketed block per section.
func Markdown(res *analysis.Results) string {
	var b strings.Builder
	b.WriteString("[DATASET]\n")
	if res.Dataset != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", res.Dataset))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", res.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(res.Preview.Columns)))
	b.WriteString(fmt.Sprintf("Run: %s\n", res.RunID))

	if s := res.Summary; s != nil {
		b.WriteString("\n[SUMMARY STATISTICS]\n")
		if s.Err != nil {
			writeErr(&b, s.Err)
		} else {
			table(&b, []string{"Field", "Count", "Mean", "Median", "Std", "Min", "Max"}, summaryRows(s))
		}
	}
	if q := res.Quality; q != nil {
		b.WriteString("\n[DATA QUALITY]\n")
		table(&b, []string{"Column", "Missing", "Outliers (IQR)"}, qualityRows(q))
	}
	if ts := res.TimeSeries; ts != nil {
		b.WriteString("\n[MONTHLY AVERAGES]\n")
		if ts.Err != nil {
			writeErr(&b, ts.Err)
		} else if len(ts.Series.Months()) == 0 {
			b.WriteString("(no timestamped records)\n")
		} else {
			table(&b, append([]string{"Month"}, analysis.MonthlyFields...), monthlyRows(ts.Series))
		}
	}
	if c := res.Correlations; c != nil {
		b.WriteString("\n[CORRELATIONS]\n")
		if c.Err != nil {
			writeErr(&b, c.Err)
		} else {
			table(&b, append([]string{""}, c.Matrix.Columns...), corrRows(c.Matrix))
		}
	}
	if w := res.Wind; w != nil {
		b.WriteString("\n[WIND]\n")
		if w.Err != nil {
			writeErr(&b, w.Err)
		} else {
			b.WriteString("Speed distribution:\n")
			for _, sb := range w.Wind.SpeedBuckets() {
				b.WriteString(fmt.Sprintf("- %s: %.3f\n", num(sb.Speed), sb.Frequency))
			}
			b.WriteString("Direction distribution:\n")
			for _, sb := range w.Wind.DirectionBuckets() {
				b.WriteString(fmt.Sprintf("- %s: %.3f\n", sb.Sector, sb.Frequency))
			}
		}
	}
	if len(res.Preview.Rows) > 0 {
		b.WriteString("\n")
		b.WriteString(PreviewMarkdown(res.Preview, res.Rows))
	}
	if failed := res.Failed(); len(failed) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, s := range failed {
			b.WriteString(fmt.Sprintf("- section %s skipped\n", s))
		}
	}
	return b.String()
}

func writeErr(b *strings.Builder, err error) {
	b.WriteString("error: ")
	b.WriteString(err.Error())
	b.WriteString("\n")
}

func summaryRows(s *analysis.SummaryResult) [][]string {
	rows := make([][]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		st := s.Stats[c]
		rows = append(rows, []string{c, fmt.Sprint(st.Count), num(st.Mean), num(st.Median), num(st.Std), num(st.Min), num(st.Max)})
	}
	return rows
}

func qualityRows(q *analysis.QualityResult) [][]string {
	rows := make([][]string, 0, len(q.Columns))
	for _, c := range q.Columns {
		out := "-"
		if n, ok := q.Outliers[c]; ok {
			out = fmt.Sprint(n)
		}
		rows = append(rows, []string{c, fmt.Sprint(q.Missing[c]), out})
	}
	return rows
}

func monthlyRows(ms analysis.MonthlySeries) [][]string {
	months := ms.Months()
	rows := make([][]string, 0, len(months))
	for _, mo := range months {
		row := []string{mo.String()}
		for _, f := range analysis.MonthlyFields {
			v, ok := ms[f][mo]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, num(v))
		}
		rows = append(rows, row)
	}
	return rows
}

func corrRows(m *analysis.CorrMatrix) [][]string {
	rows := make([][]string, len(m.Columns))
	for i, c := range m.Columns {
		row := []string{c}
		for j := range m.Columns {
			if math.IsNaN(m.Values[i][j]) {
				row = append(row, "NaN")
				continue
			}
			row = append(row, fmt.Sprintf("%.3f", m.Values[i][j]))
		}
		rows[i] = row
	}
	return rows
}

func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells(header, len(header)), " | "))
	b.WriteString(" |\n|")
	b.WriteString(strings.Repeat(" --- |", len(header)))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(cells(r, len(header)), " | "))
		b.WriteString(" |\n")
	}
}

// cells pads or truncates a row to n display-safe cells.
func cells(row []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(row); i++ {
		v := row[i]
		if len(v) > 80 {
			v = v[:77] + "..."
		}
		out[i] = safeVal(v)
	}
	return out
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func num(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", f)
}

// PreviewMarkdown renders only the raw data table.
func PreviewMarkdown(p analysis.Preview, totalRows int) string {
	var b strings.Builder
	b.WriteString("[RAW DATA PREVIEW]\n")
	b.WriteString(fmt.Sprintf("Showing %d of %d rows\n", len(p.Rows), totalRows))
	if len(p.Columns) > 0 {
		table(&b, p.Columns, p.Rows)
	}
	return b.String()
}
