package pipeline

import (
	"math"
	"testing"

	"github.com/geowatch-data/landcover.report/internal/classify"
)

func TestComparePeriodsDeltasAndClassification(t *testing.T) {
	start := PeriodSummary{NDVI: 0.65, NDBI: -0.20, BSI: -0.10, NBR: 0.40}
	end := PeriodSummary{NDVI: 0.38, NDBI: -0.18, BSI: -0.08, NBR: 0.31}

	cmp := ComparePeriods("farm-42", start, end)
	if cmp.ROI != "farm-42" {
		t.Errorf("roi = %q", cmp.ROI)
	}
	if got := cmp.Deltas["ndvi"]; math.Abs(got+0.27) > 1e-9 {
		t.Errorf("ndvi delta = %v, want -0.27", got)
	}
	// Strong NDVI loss, no built-up or burn signal.
	if cmp.Classification.Type != classify.TypeDeforestation {
		t.Errorf("type = %s, want deforestation", cmp.Classification.Type)
	}
	if cmp.IndicesStart != start || cmp.IndicesEnd != end {
		t.Error("input summaries must pass through unchanged")
	}
}

func TestComparePeriodsWaterRulesInactive(t *testing.T) {
	// Aggregate mode has no NDWI; even a flooded ROI classifies from
	// the four available indices only.
	start := PeriodSummary{NDVI: 0.30}
	end := PeriodSummary{NDVI: 0.31}
	cmp := ComparePeriods("", start, end)
	if cmp.Classification.Type == classify.TypeWaterIncrease || cmp.Classification.Type == classify.TypeWaterDecrease {
		t.Errorf("water type %s from aggregate mode", cmp.Classification.Type)
	}
	if _, ok := cmp.Deltas["ndwi"]; ok {
		t.Error("aggregate deltas must not include ndwi")
	}
}

func TestComparePeriodsRoundsToFourDecimals(t *testing.T) {
	start := PeriodSummary{NDVI: 0.1}
	end := PeriodSummary{NDVI: 0.123456789}
	cmp := ComparePeriods("", start, end)
	if got := cmp.Deltas["ndvi"]; got != 0.0235 {
		t.Errorf("ndvi delta = %v, want 0.0235", got)
	}
}

func TestCompareSeriesRequiresTwoSamples(t *testing.T) {
	if _, err := CompareSeries("", nil); err == nil {
		t.Error("expected error for empty series")
	}
	if _, err := CompareSeries("", []PeriodSample{{Date: "2026-01-01"}}); err == nil {
		t.Error("expected error for single sample")
	}
}

func TestCompareSeriesSplitsAtMidpoint(t *testing.T) {
	// Delivered out of order; sorting must put the high-NDVI samples
	// in the first half and the collapsed ones in the second.
	samples := []PeriodSample{
		{Date: "2026-07-01", NDVI: 0.20},
		{Date: "2026-01-01", NDVI: 0.70},
		{Date: "2026-08-01", NDVI: 0.22},
		{Date: "2026-02-01", NDVI: 0.72},
	}

	cmp, err := CompareSeries("plot-7", samples)
	if err != nil {
		t.Fatal(err)
	}
	if got := cmp.IndicesStart.NDVI; got != 0.71 {
		t.Errorf("start mean ndvi = %v, want 0.71", got)
	}
	if got := cmp.IndicesEnd.NDVI; got != 0.21 {
		t.Errorf("end mean ndvi = %v, want 0.21", got)
	}
	if cmp.Classification.Type != classify.TypeDeforestation {
		t.Errorf("type = %s, want deforestation", cmp.Classification.Type)
	}
}

func TestCompareSeriesDoesNotMutateInput(t *testing.T) {
	samples := []PeriodSample{
		{Date: "2026-03-01", NDVI: 0.5},
		{Date: "2026-01-01", NDVI: 0.6},
	}
	if _, err := CompareSeries("", samples); err != nil {
		t.Fatal(err)
	}
	if samples[0].Date != "2026-03-01" {
		t.Error("CompareSeries reordered the caller's slice")
	}
}
