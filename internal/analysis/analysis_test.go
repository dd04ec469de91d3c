package analysis

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KaramelBytes/solarlens/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build parses comma-joined lines (header first) into a Dataset.
func build(t *testing.T, lines ...string) *dataset.Dataset {
	t.Helper()
	recs := make([][]string, len(lines))
	for i, l := range lines {
		recs[i] = strings.Split(l, ",")
	}
	ds, err := dataset.FromRecords("test.csv", recs, dataset.LoadOptions{})
	require.NoError(t, err)
	return ds
}

// twoMonths returns 24 hourly-ish rows, 12 in January and 12 in February.
func twoMonths(t *testing.T) *dataset.Dataset {
	t.Helper()
	lines := []string{"Timestamp,GHI,DNI,DHI,Tamb,WS,WD,RH"}
	for i := 0; i < 24; i++ {
		month := 1 + i/12
		day := 1 + i%12
		lines = append(lines, fmt.Sprintf("2022-%02d-%02d 12:00,%d,%d,%d,%d,%d,%d,%d",
			month, day, 100*month, 10*month, month, 20+month, 1+i%3, (i*45)%360, 50+i))
	}
	return build(t, lines...)
}

func TestSummaryStatistics(t *testing.T) {
	ds := build(t,
		"Timestamp,GHI,Label",
		"2022-01-01,1,a",
		"2022-01-02,2,b",
		"2022-01-03,,c",
		"2022-01-04,3,d",
		"2022-01-05,4,e",
	)
	stats, err := SummaryStatistics(ds)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	s := stats["GHI"]
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
}

func TestSummaryStatisticsBounds(t *testing.T) {
	ds := build(t,
		"Timestamp,A,B",
		"2022-01-01,0.1,-3",
		"2022-01-02,0.1,7.25",
		"2022-01-03,0.1,1e3",
	)
	stats, err := SummaryStatistics(ds)
	require.NoError(t, err)
	for name, s := range stats {
		assert.LessOrEqual(t, s.Min, s.Mean, name)
		assert.LessOrEqual(t, s.Mean, s.Max, name)
	}
}

func TestSummaryStatisticsSingleValue(t *testing.T) {
	ds := build(t, "Timestamp,GHI", "2022-01-01,7")
	stats, err := SummaryStatistics(ds)
	require.NoError(t, err)
	assert.Equal(t, 7.0, stats["GHI"].Median)
	assert.True(t, math.IsNaN(stats["GHI"].Std))
}

func TestSummaryStatisticsNoNumeric(t *testing.T) {
	ds := build(t, "Timestamp,Label", "2022-01-01,x")
	_, err := SummaryStatistics(ds)
	require.Error(t, err)
	assert.True(t, dataset.IsValidation(err))
	assert.Contains(t, err.Error(), "no numeric columns")
}

func TestDataQuality(t *testing.T) {
	ds := build(t,
		"Timestamp,GHI,Flat,Steady,Label",
		"2022-01-01,1,5,5,a",
		"2022-01-02,2,5,5,",
		"2022-01-03,3,5,5,c",
		"2022-01-04,4,5,5,",
		"2022-01-05,100,6,5,e",
		",,5,5,f",
	)
	q := DataQuality(ds)

	assert.Equal(t, map[string]int{"Timestamp": 1, "GHI": 1, "Flat": 0, "Steady": 0, "Label": 2}, q.Missing)
	// GHI: Q1=2, Q3=4, fences [-1, 7]
	assert.Equal(t, 1, q.Outliers["GHI"])
	// IQR=0: every value different from Q1 is flagged.
	assert.Equal(t, 1, q.Outliers["Flat"])
	assert.Equal(t, 0, q.Outliers["Steady"])
	_, ok := q.Outliers["Label"]
	assert.False(t, ok)
}

func TestDataQualityEmpty(t *testing.T) {
	ds := build(t, "Timestamp,GHI")
	q := DataQuality(ds)
	assert.Equal(t, map[string]int{"Timestamp": 0, "GHI": 0}, q.Missing)
	assert.Empty(t, q.Outliers)
}

func TestIQRFences(t *testing.T) {
	lo, hi := IQRFences([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)

	// interpolated quartiles: Q1=1.75, Q3=3.25
	lo, hi = IQRFences([]float64{1, 2, 3, 4})
	assert.InDelta(t, -0.5, lo, 1e-12)
	assert.InDelta(t, 5.5, hi, 1e-12)
}

func TestTimeSeriesTwoMonths(t *testing.T) {
	ds := twoMonths(t)
	before := ds.Columns()

	series, err := TimeSeries(ds)
	require.NoError(t, err)
	require.Len(t, series, 4)
	for _, f := range MonthlyFields {
		assert.Len(t, series[f], 2, f)
	}
	assert.Equal(t, 100.0, series["GHI"][time.January])
	assert.Equal(t, 200.0, series["GHI"][time.February])
	assert.Equal(t, 22.0, series["Tamb"][time.February])
	assert.Equal(t, []time.Month{time.January, time.February}, series.Months())

	// grouping is a projection; the Dataset gains no column
	assert.Equal(t, before, ds.Columns())
}

func TestTimeSeriesSkipsMissing(t *testing.T) {
	ds := build(t,
		"Timestamp,GHI,DNI,DHI,Tamb",
		"2022-03-01,10,,1,20",
		"2022-03-02,20,,3,22",
		",999,999,999,999",
	)
	series, err := TimeSeries(ds)
	require.NoError(t, err)
	assert.Equal(t, 15.0, series["GHI"][time.March])
	assert.True(t, math.IsNaN(series["DNI"][time.March]))
	assert.Len(t, series["GHI"], 1)
}

func TestTimeSeriesMissingFields(t *testing.T) {
	ds := build(t, "Timestamp,GHI,DNI", "2022-01-01,1,2")
	_, err := TimeSeries(ds)
	require.Error(t, err)
	var ve *dataset.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"DHI", "Tamb"}, ve.Fields)
}

func TestTimeSeriesNonNumeric(t *testing.T) {
	ds := build(t, "Timestamp,GHI,DNI,DHI,Tamb", "2022-01-01,high,2,3,4")
	_, err := TimeSeries(ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric: GHI")
}

func TestCorrelations(t *testing.T) {
	ds := build(t,
		"Timestamp,GHI,DNI,DHI,Tamb,WS,RH",
		"2022-01-01,1,2,-1,1,3,10",
		"2022-01-02,2,4,-2,4,3,30",
		"2022-01-03,3,6,-3,9,3,20",
		"2022-01-04,4,8,-4,16,3,50",
		"2022-01-05,5,,-5,25,3,40",
	)
	m, err := Correlations(ds)
	require.NoError(t, err)
	assert.Equal(t, CorrelationFields, m.Columns)
	require.Len(t, m.Values, 6)

	for i := range m.Columns {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Columns {
			if !math.IsNaN(m.Values[i][j]) {
				assert.Equal(t, m.Values[i][j], m.Values[j][i])
			}
		}
	}
	r, ok := m.At("GHI", "DNI")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)
	r, _ = m.At("GHI", "DHI")
	assert.InDelta(t, -1.0, r, 1e-12)
	r, _ = m.At("GHI", "Tamb")
	assert.Greater(t, r, 0.9)
	r, _ = m.At("WS", "RH")
	assert.True(t, math.IsNaN(r), "zero variance yields NaN")
	_, ok = m.At("GHI", "WD")
	assert.False(t, ok)
}

func TestCorrelationsMissingRH(t *testing.T) {
	ds := build(t, "Timestamp,GHI,DNI,DHI,Tamb,WS", "2022-01-01,1,2,3,4,5")
	_, err := Correlations(ds)
	require.Error(t, err)
	assert.True(t, dataset.IsValidation(err))
	assert.Contains(t, err.Error(), "RH")
}

func TestCorrelationsNamesEveryMissingField(t *testing.T) {
	ds := build(t, "Timestamp,GHI,DNI", "2022-01-01,1,2")
	_, err := Correlations(ds)
	require.Error(t, err)
	for _, f := range []string{"DHI", "Tamb", "WS", "RH"} {
		assert.Contains(t, err.Error(), f)
	}
}

func TestWindAnalysisScenario(t *testing.T) {
	ds := build(t,
		"Timestamp,WS,WD",
		"2022-01-01,1,10",
		"2022-01-02,2,100",
		"2022-01-03,2,190",
	)
	w, err := WindAnalysis(ds)
	require.NoError(t, err)

	require.Len(t, w.Speed, 2)
	assert.InDelta(t, 1.0/3, w.Speed[1], 1e-9)
	assert.InDelta(t, 2.0/3, w.Speed[2], 1e-9)

	require.Len(t, w.Direction, 3)
	assert.InDelta(t, 1.0/3, w.Direction[North], 1e-9)
	assert.InDelta(t, 1.0/3, w.Direction[East], 1e-9)
	assert.InDelta(t, 1.0/3, w.Direction[South], 1e-9)

	assert.Equal(t, []SpeedBucket{{1, 1.0 / 3}, {2, 2.0 / 3}}, w.SpeedBuckets())
	dirs := w.DirectionBuckets()
	require.Len(t, dirs, 3)
	assert.Equal(t, []Sector{North, East, South}, []Sector{dirs[0].Sector, dirs[1].Sector, dirs[2].Sector})
}

func TestWindAnalysisExcludesOutOfRange(t *testing.T) {
	ds := build(t,
		"Timestamp,WS,WD",
		"2022-01-01,0.5,45",
		"2022-01-02,,360",
		"2022-01-03,1.5,-1",
		"2022-01-04,2.5,400",
		"2022-01-05,3.5,",
	)
	w, err := WindAnalysis(ds)
	require.NoError(t, err)

	var sum float64
	for _, f := range w.Speed {
		sum += f
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, w.Speed, 4)

	assert.Equal(t, map[Sector]float64{NorthEast: 0.5, NorthWest: 0.5}, w.Direction)
	assert.LessOrEqual(t, len(w.Direction), len(Sectors))
}

func TestWindAnalysisRequiresColumns(t *testing.T) {
	ds := build(t, "Timestamp,WS", "2022-01-01,1")
	_, err := WindAnalysis(ds)
	require.Error(t, err)
	assert.True(t, dataset.IsValidation(err))
	assert.Contains(t, err.Error(), "WD")
}

func TestSectorOf(t *testing.T) {
	cases := []struct {
		deg  float64
		want Sector
		ok   bool
	}{
		{0, North, true},
		{44.999, North, true},
		{45, NorthEast, true},
		{90, East, true},
		{135, SouthEast, true},
		{180, South, true},
		{225, SouthWest, true},
		{270, West, true},
		{315, NorthWest, true},
		{359.9, NorthWest, true},
		{360, NorthWest, true},
		{-0.1, "", false},
		{360.1, "", false},
		{math.NaN(), "", false},
	}
	for _, c := range cases {
		got, ok := SectorOf(c.deg)
		assert.Equal(t, c.ok, ok, "deg %v", c.deg)
		assert.Equal(t, c.want, got, "deg %v", c.deg)
	}
}

func TestRunIsolatesSectionFailures(t *testing.T) {
	ds := build(t,
		"Timestamp,GHI,DNI,DHI,Tamb,WS,WD",
		"2022-01-01,1,2,3,4,5,10",
		"2022-02-01,2,3,4,5,6,200",
	)
	res := Run(ds, nil, RunOptions{PreviewRows: 1})

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "test.csv", res.Dataset)
	require.Len(t, res.Preview.Rows, 1)

	require.NotNil(t, res.Summary)
	assert.NoError(t, res.Summary.Err)
	require.NotNil(t, res.Quality)
	require.NotNil(t, res.TimeSeries)
	assert.NoError(t, res.TimeSeries.Err)
	require.NotNil(t, res.Wind)
	assert.NoError(t, res.Wind.Err)

	require.NotNil(t, res.Correlations)
	require.Error(t, res.Correlations.Err)
	assert.Contains(t, res.Correlations.Err.Error(), "RH")
	assert.Equal(t, []Section{SectionCorrelations}, res.Failed())
}

func TestRunSelectedSections(t *testing.T) {
	ds := twoMonths(t)
	res := Run(ds, nil, RunOptions{Sections: []Section{SectionWind}})
	assert.Nil(t, res.Summary)
	assert.Nil(t, res.Quality)
	assert.Nil(t, res.TimeSeries)
	assert.Nil(t, res.Correlations)
	require.NotNil(t, res.Wind)
	assert.Empty(t, res.Failed())
}

func TestParseSections(t *testing.T) {
	all, err := ParseSections(nil)
	require.NoError(t, err)
	assert.Equal(t, AllSections, all)

	got, err := ParseSections([]string{"Wind", " summary", "wind"})
	require.NoError(t, err)
	assert.Equal(t, []Section{SectionWind, SectionSummary}, got)

	_, err = ParseSections([]string{"heatmap"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heatmap")
}

func TestAnalysesRunConcurrently(t *testing.T) {
	ds := twoMonths(t)
	want, err := TimeSeries(ds)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 8; i++ {
		wg.Add(5)
		go func() { defer wg.Done(); _, err := SummaryStatistics(ds); errs <- err }()
		go func() { defer wg.Done(); DataQuality(ds); errs <- nil }()
		go func() {
			defer wg.Done()
			got, err := TimeSeries(ds)
			if err == nil && !assert.Equal(t, want, got) {
				err = fmt.Errorf("time series changed under concurrency")
			}
			errs <- err
		}()
		go func() { defer wg.Done(); _, err := Correlations(ds); errs <- err }()
		go func() { defer wg.Done(); _, err := WindAnalysis(ds); errs <- err }()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
