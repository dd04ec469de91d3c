package report

import (
	"math"
	"time"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/KaramelBytes/solarlens/internal/utils"
	"gopkg.in/yaml.v3"
)

// Document is the serializable form of Results. Maps are flattened into
// ordered slices and NaN becomes null.
type Document struct {
	RunID        string            `json:"run_id" yaml:"run_id"`
	Dataset      string            `json:"dataset" yaml:"dataset"`
	Rows         int               `json:"rows" yaml:"rows"`
	GeneratedAt  time.Time         `json:"generated_at" yaml:"generated_at"`
	Summary      *SummaryDoc       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Quality      []QualityDoc      `json:"quality,omitempty" yaml:"quality,omitempty"`
	TimeSeries   *TimeSeriesDoc    `json:"timeseries,omitempty" yaml:"timeseries,omitempty"`
	Correlations *CorrelationDoc   `json:"correlations,omitempty" yaml:"correlations,omitempty"`
	Wind         *WindDoc          `json:"wind,omitempty" yaml:"wind,omitempty"`
	Preview      map[string]any    `json:"preview,omitempty" yaml:"preview,omitempty"`
	Errors       map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type SummaryDoc struct {
	Fields []FieldSummary `json:"fields" yaml:"fields"`
}

type FieldSummary struct {
	Field  string   `json:"field" yaml:"field"`
	Count  int      `json:"count" yaml:"count"`
	Mean   *float64 `json:"mean" yaml:"mean"`
	Median *float64 `json:"median" yaml:"median"`
	Std    *float64 `json:"std" yaml:"std"`
	Min    *float64 `json:"min" yaml:"min"`
	Max    *float64 `json:"max" yaml:"max"`
}

type QualityDoc struct {
	Column   string `json:"column" yaml:"column"`
	Missing  int    `json:"missing" yaml:"missing"`
	Outliers *int   `json:"outliers,omitempty" yaml:"outliers,omitempty"`
}

type TimeSeriesDoc struct {
	Months []MonthDoc `json:"months" yaml:"months"`
}

type MonthDoc struct {
	Month int                 `json:"month" yaml:"month"`
	Name  string              `json:"name" yaml:"name"`
	Means map[string]*float64 `json:"means" yaml:"means"`
}

type CorrelationDoc struct {
	Columns []string     `json:"columns" yaml:"columns"`
	Values  [][]*float64 `json:"values" yaml:"values"`
}

type WindDoc struct {
	Speed     []SpeedDoc     `json:"speed" yaml:"speed"`
	Direction []DirectionDoc `json:"direction" yaml:"direction"`
}

type SpeedDoc struct {
	Speed     float64 `json:"speed" yaml:"speed"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
}

type DirectionDoc struct {
	Sector    string  `json:"sector" yaml:"sector"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
}

// NewDocument flattens Results. Sections that were not run are omitted;
// failed sections appear under Errors.
func NewDocument(res *analysis.Results) *Document {
	d := &Document{
		RunID:       res.RunID,
		Dataset:     res.Dataset,
		Rows:        res.Rows,
		GeneratedAt: res.GeneratedAt,
		Errors:      map[string]string{},
	}
	if s := res.Summary; s != nil {
		if s.Err != nil {
			d.Errors[string(analysis.SectionSummary)] = s.Err.Error()
		} else {
			sd := &SummaryDoc{}
			for _, c := range s.Columns {
				st := s.Stats[c]
				sd.Fields = append(sd.Fields, FieldSummary{
					Field: c, Count: st.Count,
					Mean: ptr(st.Mean), Median: ptr(st.Median), Std: ptr(st.Std),
					Min: ptr(st.Min), Max: ptr(st.Max),
				})
			}
			d.Summary = sd
		}
	}
	if q := res.Quality; q != nil {
		for _, c := range q.Columns {
			qd := QualityDoc{Column: c, Missing: q.Missing[c]}
			if n, ok := q.Outliers[c]; ok {
				n := n
				qd.Outliers = &n
			}
			d.Quality = append(d.Quality, qd)
		}
	}
	if ts := res.TimeSeries; ts != nil {
		if ts.Err != nil {
			d.Errors[string(analysis.SectionTimeSeries)] = ts.Err.Error()
		} else {
			td := &TimeSeriesDoc{Months: []MonthDoc{}}
			for _, mo := range ts.Series.Months() {
				md := MonthDoc{Month: int(mo), Name: mo.String(), Means: map[string]*float64{}}
				for _, f := range analysis.MonthlyFields {
					if v, ok := ts.Series[f][mo]; ok {
						md.Means[f] = ptr(v)
					}
				}
				td.Months = append(td.Months, md)
			}
			d.TimeSeries = td
		}
	}
	if c := res.Correlations; c != nil {
		if c.Err != nil {
			d.Errors[string(analysis.SectionCorrelations)] = c.Err.Error()
		} else {
			cd := &CorrelationDoc{Columns: c.Matrix.Columns, Values: make([][]*float64, len(c.Matrix.Values))}
			for i, row := range c.Matrix.Values {
				cd.Values[i] = make([]*float64, len(row))
				for j, v := range row {
					cd.Values[i][j] = ptr(v)
				}
			}
			d.Correlations = cd
		}
	}
	if w := res.Wind; w != nil {
		if w.Err != nil {
			d.Errors[string(analysis.SectionWind)] = w.Err.Error()
		} else {
			wd := &WindDoc{Speed: []SpeedDoc{}, Direction: []DirectionDoc{}}
			for _, sb := range w.Wind.SpeedBuckets() {
				wd.Speed = append(wd.Speed, SpeedDoc{Speed: sb.Speed, Frequency: sb.Frequency})
			}
			for _, sb := range w.Wind.DirectionBuckets() {
				wd.Direction = append(wd.Direction, DirectionDoc{Sector: string(sb.Sector), Frequency: sb.Frequency})
			}
			d.Wind = wd
		}
	}
	if len(res.Preview.Rows) > 0 {
		d.Preview = map[string]any{"columns": res.Preview.Columns, "rows": res.Preview.Rows}
	}
	if len(d.Errors) == 0 {
		d.Errors = nil
	}
	return d
}

// JSON renders Results as indented JSON.
func JSON(res *analysis.Results) ([]byte, error) {
	return utils.PrettyJSON(NewDocument(res))
}

// YAML renders Results as a YAML document.
func YAML(res *analysis.Results) ([]byte, error) {
	return yaml.Marshal(NewDocument(res))
}

// ptr returns nil for NaN so the value encodes as null.
func ptr(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
