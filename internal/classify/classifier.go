// Package classify assigns a land-cover change type to a set of
// spectral index deltas using an ordered rule table. The table is
// evaluated first-match-wins, so every input maps to exactly one
// outcome; the final fallback rule guarantees there is no ambiguity to
// surface.
package classify

import "math"

// ChangeType enumerates the detectable land-cover change kinds.
type ChangeType string

const (
	TypeBurnScar         ChangeType = "burn_scar"
	TypeConstruction     ChangeType = "new_construction"
	TypeBareSoil         ChangeType = "bare_soil_exposure"
	TypeUrbanExpansion   ChangeType = "urban_expansion"
	TypeDeforestation    ChangeType = "deforestation"
	TypeVegetationGrowth ChangeType = "vegetation_growth"
	TypeWaterIncrease    ChangeType = "water_increase"
	TypeWaterDecrease    ChangeType = "water_decrease"
	TypeSoilMovement     ChangeType = "soil_movement"
	TypeNoChange         ChangeType = "no_change"
)

// AlertLevel grades how urgent a change type is for a reviewer.
type AlertLevel string

const (
	AlertCritical AlertLevel = "critical"
	AlertWarning  AlertLevel = "warning"
	AlertInfo     AlertLevel = "info"
	AlertSuccess  AlertLevel = "success"
)

// Canonical classification thresholds. Two slightly diverging threshold
// sets exist in the field for this rule table (strong NDVI loss at
// -0.20 vs -0.25, BSI gain at +0.10 vs +0.15); this is the variant
// whose constants are internally consistent with the four-index rules.
const (
	NDVILossModerate = -0.15 // meaningful vegetation loss
	NDVILossStrong   = -0.20 // vegetation mostly gone
	NDVIGain         = 0.15  // meaningful vegetation gain
	NDBIGain         = 0.10  // built-up signal
	BSIGain          = 0.15  // exposed-soil signal
	NBRDrop          = -0.25 // burn signal
	NDWIGain         = 0.20  // open-water signal

	// Sub-threshold bounds for the residual "moderate change" bucket.
	NDVIModerate = 0.10
	NDBIModerate = 0.05

	// Fixed confidence for the residual bucket.
	soilMovementConfidence = 0.4
)

// Deltas carries after-minus-before mean index changes. Indices the
// scene's bands could not produce stay at zero, which keeps them below
// every rule threshold. HasNDWI distinguishes pixel-pair mode (water
// rules active) from aggregate period mode (no NDWI supplied).
type Deltas struct {
	NDVI    float64
	NDBI    float64
	BSI     float64
	NBR     float64
	NDWI    float64
	HasNDWI bool
}

// Result is the classification outcome for one region or period pair.
type Result struct {
	Type        ChangeType `json:"change_type"`
	Confidence  float64    `json:"confidence"`
	Description string     `json:"description"`
	Alert       AlertLevel `json:"alert_level"`
}

var descriptions = map[ChangeType]string{
	TypeBurnScar:         "Spectral pattern consistent with a recently burned area.",
	TypeConstruction:     "Vegetation removed and replaced by built-up surface; indicates new construction.",
	TypeBareSoil:         "Exposed soil detected; likely earthworks, grading, or material deposit.",
	TypeUrbanExpansion:   "Urban area expanding over previously non-urbanized ground.",
	TypeDeforestation:    "Significant loss of vegetation cover without replacement by construction.",
	TypeVegetationGrowth: "Increase in vegetation cover; natural regrowth or planting.",
	TypeWaterIncrease:    "Open water expanded over previously dry ground.",
	TypeWaterDecrease:    "Open water receded, exposing previously submerged ground.",
	TypeSoilMovement:     "Moderate spectral change below classification thresholds; possible soil movement.",
	TypeNoChange:         "No significant change detected over the analyzed period.",
}

var alertLevels = map[ChangeType]AlertLevel{
	TypeBurnScar:         AlertCritical,
	TypeConstruction:     AlertWarning,
	TypeBareSoil:         AlertCritical,
	TypeUrbanExpansion:   AlertWarning,
	TypeDeforestation:    AlertCritical,
	TypeVegetationGrowth: AlertSuccess,
	TypeWaterIncrease:    AlertInfo,
	TypeWaterDecrease:    AlertInfo,
	TypeSoilMovement:     AlertInfo,
	TypeNoChange:         AlertInfo,
}

// rule pairs a predicate with its outcome. Keeping the decision table
// as data lets each rule be tested in isolation and makes the
// evaluation order explicit.
type rule struct {
	name    string
	match   func(Deltas) bool
	outcome func(Deltas) Result
}

var rules = []rule{
	{
		name:  "burn_scar",
		match: func(d Deltas) bool { return d.NBR < NBRDrop && d.NDVI < NDVILossModerate },
		outcome: func(d Deltas) Result {
			return result(TypeBurnScar, math.Abs(d.NBR)+0.5*math.Abs(d.NDVI))
		},
	},
	{
		name:  "new_construction",
		match: func(d Deltas) bool { return d.NDVI < NDVILossModerate && d.NDBI > NDBIGain },
		outcome: func(d Deltas) Result {
			return result(TypeConstruction, math.Abs(d.NDVI)+d.NDBI)
		},
	},
	{
		name: "bare_soil",
		match: func(d Deltas) bool {
			return d.NDVI < NDVILossModerate && d.BSI > BSIGain && d.NDBI < NDBIGain
		},
		outcome: func(d Deltas) Result {
			return result(TypeBareSoil, math.Abs(d.NDVI)+d.BSI)
		},
	},
	{
		name: "urban_expansion",
		match: func(d Deltas) bool {
			return d.NDVI < NDVILossModerate && d.NDBI > NDBIGain*0.5 && d.BSI > BSIGain*0.5
		},
		outcome: func(d Deltas) Result {
			return result(TypeUrbanExpansion, 0.5*(math.Abs(d.NDVI)+d.NDBI+d.BSI))
		},
	},
	{
		name:  "deforestation",
		match: func(d Deltas) bool { return d.NDVI < NDVILossStrong },
		outcome: func(d Deltas) Result {
			return result(TypeDeforestation, math.Abs(d.NDVI))
		},
	},
	{
		name:  "vegetation_growth",
		match: func(d Deltas) bool { return d.NDVI > NDVIGain },
		outcome: func(d Deltas) Result {
			return result(TypeVegetationGrowth, d.NDVI)
		},
	},
	{
		name:  "water_increase",
		match: func(d Deltas) bool { return d.HasNDWI && d.NDWI > NDWIGain },
		outcome: func(d Deltas) Result {
			return result(TypeWaterIncrease, 2*d.NDWI)
		},
	},
	{
		name:  "water_decrease",
		match: func(d Deltas) bool { return d.HasNDWI && d.NDWI < -NDWIGain },
		outcome: func(d Deltas) Result {
			return result(TypeWaterDecrease, 2*math.Abs(d.NDWI))
		},
	},
	{
		name: "soil_movement",
		match: func(d Deltas) bool {
			return math.Abs(d.NDVI) > NDVIModerate || math.Abs(d.NDBI) > NDBIModerate
		},
		outcome: func(d Deltas) Result {
			return result(TypeSoilMovement, soilMovementConfidence)
		},
	},
}

// Classify evaluates the rule table in order and returns the first
// matching outcome. Falls through to a zero-confidence no-change
// result, so classification never fails.
func Classify(d Deltas) Result {
	for _, r := range rules {
		if r.match(d) {
			return r.outcome(d)
		}
	}
	return result(TypeNoChange, 0)
}

// result assembles the outcome with confidence clamped to [0,1] and
// rounded to 3 decimals.
func result(t ChangeType, confidence float64) Result {
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return Result{
		Type:        t,
		Confidence:  math.Round(confidence*1000) / 1000,
		Description: descriptions[t],
		Alert:       alertLevels[t],
	}
}
