package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/solarlens/internal/dataset"
)

// Sector is a 45° compass sector.
type Sector string

const (
	North     Sector = "N"
	NorthEast Sector = "NE"
	East      Sector = "E"
	SouthEast Sector = "SE"
	South     Sector = "S"
	SouthWest Sector = "SW"
	West      Sector = "W"
	NorthWest Sector = "NW"
)

// Sectors lists the compass sectors clockwise from North; sector k covers
// [45k, 45k+45) degrees and NorthWest also takes 360.
var Sectors = []Sector{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

const sectorWidth = 360.0 / 8

// SectorOf bins a direction in degrees. ok is false for missing values and
// values outside [0, 360].
func SectorOf(deg float64) (s Sector, ok bool) {
	if math.IsNaN(deg) || deg < 0 || deg > 360 {
		return "", false
	}
	i := int(deg / sectorWidth)
	if i >= len(Sectors) {
		i = len(Sectors) - 1
	}
	return Sectors[i], true
}

// Wind holds normalized frequency distributions. Speed has one bucket per
// distinct observed value. Direction omits empty sectors.
type Wind struct {
	Speed     map[float64]float64
	Direction map[Sector]float64
}

// SpeedBucket is one entry of the speed distribution.
type SpeedBucket struct {
	Speed     float64
	Frequency float64
}

// SectorBucket is one entry of the direction distribution.
type SectorBucket struct {
	Sector    Sector
	Frequency float64
}

// SpeedBuckets returns the speed distribution in ascending speed order.
func (w *Wind) SpeedBuckets() []SpeedBucket {
	out := make([]SpeedBucket, 0, len(w.Speed))
	for s, f := range w.Speed {
		out = append(out, SpeedBucket{Speed: s, Frequency: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Speed < out[j].Speed })
	return out
}

// DirectionBuckets returns the non-empty sectors in clockwise order.
func (w *Wind) DirectionBuckets() []SectorBucket {
	out := make([]SectorBucket, 0, len(w.Direction))
	for _, s := range Sectors {
		if f, ok := w.Direction[s]; ok {
			out = append(out, SectorBucket{Sector: s, Frequency: f})
		}
	}
	return out
}

// WindAnalysis computes the speed frequency table and the 8-sector direction
// distribution. Missing or out-of-range values are left out of both the
// counts and the denominator.
func WindAnalysis(ds *dataset.Dataset) (*Wind, error) {
	if err := requireNumeric("wind analysis", ds, []string{FieldWS, FieldWD}); err != nil {
		return nil, err
	}
	ws, _ := ds.Float(FieldWS)
	wd, _ := ds.Float(FieldWD)

	w := &Wind{Speed: map[float64]float64{}, Direction: map[Sector]float64{}}

	speeds := present(ws)
	for _, v := range speeds {
		w.Speed[v]++
	}
	for k := range w.Speed {
		w.Speed[k] /= float64(len(speeds))
	}

	binned := 0
	for _, v := range wd {
		if s, ok := SectorOf(v); ok {
			w.Direction[s]++
			binned++
		}
	}
	for k := range w.Direction {
		w.Direction[k] /= float64(binned)
	}
	return w, nil
}
