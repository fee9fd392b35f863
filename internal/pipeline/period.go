package pipeline

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/geowatch-data/landcover.report/internal/classify"
)

// PeriodSummary holds the spatially averaged mean index values for one
// time window over a region of interest, as supplied by the external
// imagery/aggregation service (already cloud-masked and composited).
type PeriodSummary struct {
	Label string  `json:"label,omitempty"`
	NDVI  float64 `json:"ndvi"`
	NDBI  float64 `json:"ndbi"`
	BSI   float64 `json:"bsi"`
	NBR   float64 `json:"nbr"`
}

// PeriodSample is one dated observation in an index time series.
type PeriodSample struct {
	Date string  `json:"date"` // ISO date, lexicographic order == chronological
	NDVI float64 `json:"ndvi"`
	NDBI float64 `json:"ndbi"`
	BSI  float64 `json:"bsi"`
	NBR  float64 `json:"nbr"`
}

// PeriodComparison is the aggregate-mode result: one classification for
// the whole ROI, no geometry beyond the ROI the caller already knows.
type PeriodComparison struct {
	ROI            string             `json:"roi,omitempty"`
	IndicesStart   PeriodSummary      `json:"indices_start"`
	IndicesEnd     PeriodSummary      `json:"indices_end"`
	Deltas         map[string]float64 `json:"deltas"`
	Classification classify.Result    `json:"classification"`
}

// ComparePeriods computes end-minus-start deltas and classifies them.
// Aggregate mode carries no NDWI, so the water rules stay inactive.
func ComparePeriods(roi string, start, end PeriodSummary) PeriodComparison {
	deltas := classify.Deltas{
		NDVI: round4(end.NDVI - start.NDVI),
		NDBI: round4(end.NDBI - start.NDBI),
		BSI:  round4(end.BSI - start.BSI),
		NBR:  round4(end.NBR - start.NBR),
	}
	cls := classify.Classify(deltas)
	diagf("period compare roi=%q deltas ndvi=%.4f ndbi=%.4f bsi=%.4f nbr=%.4f -> %s (%.3f)",
		roi, deltas.NDVI, deltas.NDBI, deltas.BSI, deltas.NBR, cls.Type, cls.Confidence)
	return PeriodComparison{
		ROI:          roi,
		IndicesStart: start,
		IndicesEnd:   end,
		Deltas: map[string]float64{
			"ndvi": deltas.NDVI,
			"ndbi": deltas.NDBI,
			"bsi":  deltas.BSI,
			"nbr":  deltas.NBR,
		},
		Classification: cls,
	}
}

// CompareSeries splits a dated index series at its midpoint into two
// periods, averages each half, and classifies the difference. The
// series is sorted by date first; at least two samples are required.
func CompareSeries(roi string, samples []PeriodSample) (PeriodComparison, error) {
	if len(samples) < 2 {
		return PeriodComparison{}, fmt.Errorf("period series needs at least 2 samples, got %d", len(samples))
	}
	sorted := make([]PeriodSample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	mid := len(sorted) / 2
	start := summarize(sorted[:mid], "start")
	end := summarize(sorted[mid:], "end")
	return ComparePeriods(roi, start, end), nil
}

func summarize(samples []PeriodSample, label string) PeriodSummary {
	n := len(samples)
	ndvi := make([]float64, n)
	ndbi := make([]float64, n)
	bsi := make([]float64, n)
	nbr := make([]float64, n)
	for i, s := range samples {
		ndvi[i] = s.NDVI
		ndbi[i] = s.NDBI
		bsi[i] = s.BSI
		nbr[i] = s.NBR
	}
	return PeriodSummary{
		Label: label,
		NDVI:  round4(stat.Mean(ndvi, nil)),
		NDBI:  round4(stat.Mean(ndbi, nil)),
		BSI:   round4(stat.Mean(bsi, nil)),
		NBR:   round4(stat.Mean(nbr, nil)),
	}
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
