package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/solarlens/internal/dataset"
	"github.com/KaramelBytes/solarlens/internal/logger"
	"github.com/google/uuid"
)

// Section names one independently recoverable analysis.
type Section string

const (
	SectionSummary      Section = "summary"
	SectionQuality      Section = "quality"
	SectionTimeSeries   Section = "timeseries"
	SectionCorrelations Section = "correlations"
	SectionWind         Section = "wind"
)

// AllSections in report order.
var AllSections = []Section{SectionSummary, SectionQuality, SectionTimeSeries, SectionCorrelations, SectionWind}

// ParseSections validates section names. An empty list selects all sections.
func ParseSections(names []string) ([]Section, error) {
	if len(names) == 0 {
		return append([]Section(nil), AllSections...), nil
	}
	var out []Section
	seen := map[Section]bool{}
	for _, n := range names {
		s := Section(strings.ToLower(strings.TrimSpace(n)))
		if s == "" {
			continue
		}
		valid := false
		for _, a := range AllSections {
			if s == a {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("unknown section %q (use %s)", n, joinSections(AllSections))
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

func joinSections(ss []Section) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return strings.Join(parts, "|")
}

type SummaryResult struct {
	Columns []string // numeric columns in header order
	Stats   map[string]Summary
	Err     error
}

type QualityResult struct {
	Columns        []string
	NumericColumns []string
	Quality
}

type TimeSeriesResult struct {
	Series MonthlySeries
	Err    error
}

type CorrelationResult struct {
	Matrix *CorrMatrix
	Err    error
}

type WindResult struct {
	Wind *Wind
	Err  error
}

// Preview is the first rows of the raw table.
type Preview struct {
	Columns []string
	Rows    [][]string
}

// Results collects one pass over a Dataset. Sections that were not requested
// are nil; a section that failed validation carries its error and the rest
// are unaffected.
type Results struct {
	RunID       string
	Dataset     string
	Rows        int
	GeneratedAt time.Time
	Preview     Preview

	Summary      *SummaryResult
	Quality      *QualityResult
	TimeSeries   *TimeSeriesResult
	Correlations *CorrelationResult
	Wind         *WindResult
}

// Failed lists the sections that returned an error.
func (r *Results) Failed() []Section {
	var out []Section
	if r.Summary != nil && r.Summary.Err != nil {
		out = append(out, SectionSummary)
	}
	if r.TimeSeries != nil && r.TimeSeries.Err != nil {
		out = append(out, SectionTimeSeries)
	}
	if r.Correlations != nil && r.Correlations.Err != nil {
		out = append(out, SectionCorrelations)
	}
	if r.Wind != nil && r.Wind.Err != nil {
		out = append(out, SectionWind)
	}
	return out
}

// RunOptions selects what Run computes.
type RunOptions struct {
	Sections    []Section // empty means all
	PreviewRows int
}

// Run executes the requested sections against one loaded Dataset.
// Validation failures are recorded per section and logged, never returned.
func Run(ds *dataset.Dataset, log logger.Logger, opt RunOptions) *Results {
	if log == nil {
		log = logger.Nop()
	}
	sections := opt.Sections
	if len(sections) == 0 {
		sections = AllSections
	}
	res := &Results{
		RunID:       uuid.NewString(),
		Dataset:     ds.Name(),
		Rows:        ds.Rows(),
		GeneratedAt: time.Now(),
		Preview:     Preview{Columns: ds.Columns(), Rows: ds.Head(opt.PreviewRows)},
	}
	log = log.WithFields(map[string]interface{}{"run_id": res.RunID, "dataset": res.Dataset})

	for _, s := range sections {
		sectionLog := log.WithField("section", string(s))
		switch s {
		case SectionSummary:
			sectionLog.Info("Calculating summary statistics...")
			stats, err := SummaryStatistics(ds)
			res.Summary = &SummaryResult{Columns: ds.NumericColumns(), Stats: stats, Err: err}
			report(sectionLog, "Summary statistics calculated.", err)
		case SectionQuality:
			sectionLog.Info("Checking data quality...")
			res.Quality = &QualityResult{Columns: ds.Columns(), NumericColumns: ds.NumericColumns(), Quality: DataQuality(ds)}
			report(sectionLog, "Data quality check complete.", nil)
		case SectionTimeSeries:
			sectionLog.Info("Performing time series analysis...")
			series, err := TimeSeries(ds)
			res.TimeSeries = &TimeSeriesResult{Series: series, Err: err}
			report(sectionLog, "Time series analysis complete.", err)
		case SectionCorrelations:
			sectionLog.Info("Calculating correlations...")
			m, err := Correlations(ds)
			res.Correlations = &CorrelationResult{Matrix: m, Err: err}
			report(sectionLog, "Correlation analysis complete.", err)
		case SectionWind:
			sectionLog.Info("Analyzing wind data...")
			w, err := WindAnalysis(ds)
			res.Wind = &WindResult{Wind: w, Err: err}
			report(sectionLog, "Wind data analysis complete.", err)
		}
	}
	return res
}

func report(log logger.Logger, done string, err error) {
	if err != nil {
		log.Warnf("section skipped: %v", err)
		return
	}
	log.Info(done)
}
