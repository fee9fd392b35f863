package classify

import (
	"math"
	"testing"
)

func TestClassifyDecisionTable(t *testing.T) {
	tests := []struct {
		name           string
		d              Deltas
		wantType       ChangeType
		wantConfidence float64
		wantAlert      AlertLevel
	}{
		{
			// Strong NBR drop with vegetation loss wins over the
			// deforestation rule further down the table.
			name:           "burn scar",
			d:              Deltas{NDVI: -0.20, NDBI: 0.05, BSI: 0.10, NBR: -0.30},
			wantType:       TypeBurnScar,
			wantConfidence: 0.4,
			wantAlert:      AlertCritical,
		},
		{
			name:           "new construction",
			d:              Deltas{NDVI: -0.20, NDBI: 0.15, BSI: 0.05, NBR: -0.05},
			wantType:       TypeConstruction,
			wantConfidence: 0.35,
			wantAlert:      AlertWarning,
		},
		{
			name:           "bare soil exposure",
			d:              Deltas{NDVI: -0.18, NDBI: 0.02, BSI: 0.20, NBR: -0.05},
			wantType:       TypeBareSoil,
			wantConfidence: 0.38,
			wantAlert:      AlertCritical,
		},
		{
			// NDBI and BSI each above half-threshold but below the
			// dedicated construction and bare-soil cuts.
			name:           "urban expansion",
			d:              Deltas{NDVI: -0.16, NDBI: 0.08, BSI: 0.10, NBR: -0.05},
			wantType:       TypeUrbanExpansion,
			wantConfidence: 0.17,
			wantAlert:      AlertWarning,
		},
		{
			// Strong vegetation loss with no built-up or soil signal.
			name:           "deforestation",
			d:              Deltas{NDVI: -0.25, NDBI: 0.02, BSI: 0.05, NBR: -0.10},
			wantType:       TypeDeforestation,
			wantConfidence: 0.25,
			wantAlert:      AlertCritical,
		},
		{
			name:           "vegetation growth",
			d:              Deltas{NDVI: 0.25, NDBI: -0.05, BSI: -0.10, NBR: 0.05},
			wantType:       TypeVegetationGrowth,
			wantConfidence: 0.25,
			wantAlert:      AlertSuccess,
		},
		{
			name:           "water increase",
			d:              Deltas{NDVI: -0.05, NDWI: 0.30, HasNDWI: true},
			wantType:       TypeWaterIncrease,
			wantConfidence: 0.6,
			wantAlert:      AlertInfo,
		},
		{
			name:           "water decrease",
			d:              Deltas{NDVI: 0.05, NDWI: -0.25, HasNDWI: true},
			wantType:       TypeWaterDecrease,
			wantConfidence: 0.5,
			wantAlert:      AlertInfo,
		},
		{
			name:           "soil movement bucket",
			d:              Deltas{NDVI: -0.12, NDBI: 0.03},
			wantType:       TypeSoilMovement,
			wantConfidence: 0.4,
			wantAlert:      AlertInfo,
		},
		{
			name:           "no change",
			d:              Deltas{NDVI: 0.02, NDBI: 0.01, BSI: 0.01, NBR: 0.01},
			wantType:       TypeNoChange,
			wantConfidence: 0,
			wantAlert:      AlertInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.d)
			if got.Type != tt.wantType {
				t.Fatalf("type = %s, want %s", got.Type, tt.wantType)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
			if got.Alert != tt.wantAlert {
				t.Errorf("alert = %s, want %s", got.Alert, tt.wantAlert)
			}
			if got.Description == "" {
				t.Error("description must not be empty")
			}
		})
	}
}

func TestWaterRulesRequireNDWI(t *testing.T) {
	// Same NDWI delta, but aggregate mode carries no NDWI plane.
	d := Deltas{NDVI: 0.02, NDWI: 0.5, HasNDWI: false}
	if got := Classify(d); got.Type == TypeWaterIncrease {
		t.Error("water rule fired without NDWI available")
	}
}

func TestFirstMatchWins(t *testing.T) {
	// Satisfies burn scar, construction, and deforestation; burn scar
	// sits first in the table.
	d := Deltas{NDVI: -0.30, NDBI: 0.20, BSI: 0.20, NBR: -0.40}
	if got := Classify(d); got.Type != TypeBurnScar {
		t.Errorf("type = %s, want burn_scar (first matching rule)", got.Type)
	}
}

func TestBareSoilGuardIsStrictAtNDBIGain(t *testing.T) {
	// At exactly the NDBI gain threshold the bare-soil guard must not
	// match; the mixed signal falls through to urban expansion.
	d := Deltas{NDVI: -0.16, NDBI: NDBIGain, BSI: 0.16}
	got := Classify(d)
	if got.Type != TypeUrbanExpansion {
		t.Errorf("type = %s, want urban_expansion at NDBI == gain threshold", got.Type)
	}

	// Just below the threshold the bare-soil rule still fires.
	d.NDBI = 0.09
	if got := Classify(d); got.Type != TypeBareSoil {
		t.Errorf("type = %s, want bare_soil below gain threshold", got.Type)
	}
}

func TestConfidenceClampedAndRounded(t *testing.T) {
	// |NBR| + 0.5|NDVI| would exceed 1 unclamped.
	d := Deltas{NDVI: -0.9, NBR: -0.9}
	got := Classify(d)
	if got.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", got.Confidence)
	}

	// 0.5*(0.151+0.051+0.076) = 0.139 exactly at 3 decimals.
	d = Deltas{NDVI: -0.151, NDBI: 0.051, BSI: 0.076}
	got = Classify(d)
	if got.Type != TypeUrbanExpansion {
		t.Fatalf("type = %s, want urban_expansion", got.Type)
	}
	if got.Confidence != 0.139 {
		t.Errorf("confidence = %v, want 0.139 (3-decimal rounding)", got.Confidence)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	d := Deltas{NDVI: -0.22, NDBI: 0.12, BSI: 0.08, NBR: -0.18}
	first := Classify(d)
	for i := 0; i < 10; i++ {
		if got := Classify(d); got != first {
			t.Fatalf("classification varied on repeat %d: %+v vs %+v", i, got, first)
		}
	}
}
