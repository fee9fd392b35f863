package pipeline

import (
	"fmt"

	"github.com/geowatch-data/landcover.report/internal/classify"
	"github.com/geowatch-data/landcover.report/internal/config"
	"github.com/geowatch-data/landcover.report/internal/geometry"
	"github.com/geowatch-data/landcover.report/internal/raster"
	"github.com/geowatch-data/landcover.report/internal/segment"
	"github.com/geowatch-data/landcover.report/internal/spectral"
)

// Error wraps a pipeline failure with the stage it occurred in. A
// failed comparison yields an Error and no records — never a partial
// record list alongside an error.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures one Detector. Zero values are invalid; use
// DefaultOptions or OptionsFromTuning.
type Options struct {
	Threshold  float64 // change-magnitude cut in (0, 1]
	MinArea    int     // minimum region size in pixels
	GSD        float64 // ground-sample distance, meters per pixel
	MaxRecords int     // cap on records per comparison, 0 = unlimited
}

// DefaultOptions returns the built-in defaults (Sentinel-2 10 m scale).
func DefaultOptions() Options {
	return OptionsFromTuning(config.EmptyTuningConfig())
}

// OptionsFromTuning builds Options from a loaded TuningConfig.
func OptionsFromTuning(cfg *config.TuningConfig) Options {
	return Options{
		Threshold:  cfg.GetThreshold(),
		MinArea:    cfg.GetMinArea(),
		GSD:        cfg.GetGroundSampleDistanceM(),
		MaxRecords: cfg.GetMaxRecordsPerRun(),
	}
}

// Validate rejects out-of-range options before a run starts.
func (o Options) Validate() error {
	if o.Threshold <= 0 || o.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", o.Threshold)
	}
	if o.MinArea <= 0 {
		return fmt.Errorf("min_area must be positive, got %d", o.MinArea)
	}
	return nil
}

// Detector runs the pixel-pair change-detection pipeline. It holds no
// per-run state: every invocation works on its own scenes and planes,
// so one Detector may serve concurrent comparisons.
type Detector struct {
	opts       Options
	loader     LoaderStage
	indexer    IndexerStage
	classifier ClassifierStage
}

// NewDetector constructs a Detector with the default stage wiring.
func NewDetector(opts Options) (*Detector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Detector{
		opts:       opts,
		loader:     defaultLoader{},
		indexer:    defaultIndexer{},
		classifier: defaultClassifier{},
	}, nil
}

// DetectChanges compares two raster observations of the same area and
// returns the classified change records, ordered by region centroid.
// An empty result is a valid outcome (no change exceeded the
// threshold), not a failure.
func (d *Detector) DetectChanges(before, after raster.Source) ([]*geometry.ChangeRecord, error) {
	// Loading
	sceneBefore, sceneAfter, err := d.loader.Load(before, after)
	if err != nil {
		opsf("load failed: %v", err)
		return nil, &Error{Stage: StageLoading, Err: err}
	}
	diagf("loaded scenes %dx%d georeferenced=%v",
		sceneBefore.Width, sceneBefore.Height, sceneBefore.IsGeoreferenced() || sceneAfter.IsGeoreferenced())

	// Indexing
	idxBefore := d.indexer.Indices(sceneBefore)
	idxAfter := d.indexer.Indices(sceneAfter)

	// Segmenting
	seg := &segment.Segmenter{Threshold: d.opts.Threshold, MinArea: d.opts.MinArea}
	regions, mask := seg.Segment(idxBefore, idxAfter)
	diagf("mask pixels=%d regions=%d (threshold=%.3f min_area=%d)",
		mask.Count(), len(regions), d.opts.Threshold, d.opts.MinArea)
	if len(regions) == 0 {
		return nil, nil
	}
	if d.opts.MaxRecords > 0 && len(regions) > d.opts.MaxRecords {
		diagf("capping regions %d -> %d", len(regions), d.opts.MaxRecords)
		regions = regions[:d.opts.MaxRecords]
	}

	// Classifying + Building. The first available transform wins, same
	// as treating either scene's georeferencing as authoritative for
	// the shared grid.
	geo := sceneBefore.Geo
	if geo == nil {
		geo = sceneAfter.Geo
	}
	builder := &geometry.Builder{Geo: geo, GSD: d.opts.GSD}

	records := make([]*geometry.ChangeRecord, 0, len(regions))
	for _, region := range regions {
		cls := d.classifier.Classify(regionDeltas(region))
		records = append(records, builder.Build(region, cls))
	}
	return records, nil
}

// regionDeltas maps a region's aggregated index deltas onto the
// classifier's input. Indices the bands could not produce stay zero,
// below every rule threshold.
func regionDeltas(r *segment.Region) classify.Deltas {
	deltas := r.Deltas()
	return classify.Deltas{
		NDVI:    deltas[spectral.IndexNDVI],
		NDBI:    deltas[spectral.IndexNDBI],
		BSI:     deltas[spectral.IndexBSI],
		NBR:     deltas[spectral.IndexNBR],
		NDWI:    deltas[spectral.IndexNDWI],
		HasNDWI: true,
	}
}

// Ensure the default stages satisfy their contracts.
var (
	_ LoaderStage     = defaultLoader{}
	_ IndexerStage    = defaultIndexer{}
	_ ClassifierStage = defaultClassifier{}
	_ SegmenterStage  = (*segment.Segmenter)(nil)
	_ BuilderStage    = (*geometry.Builder)(nil)
)
