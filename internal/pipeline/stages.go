package pipeline

import (
	"github.com/geowatch-data/landcover.report/internal/classify"
	"github.com/geowatch-data/landcover.report/internal/geometry"
	"github.com/geowatch-data/landcover.report/internal/raster"
	"github.com/geowatch-data/landcover.report/internal/segment"
	"github.com/geowatch-data/landcover.report/internal/spectral"
)

// Stage names the pipeline's processing states. A run advances
// Loading → Indexing → Segmenting → Classifying → Building → Done;
// Failed is terminal and reachable from any stage.
type Stage string

const (
	StageLoading     Stage = "loading"
	StageIndexing    Stage = "indexing"
	StageSegmenting  Stage = "segmenting"
	StageClassifying Stage = "classifying"
	StageBuilding    Stage = "building"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// ---------------------------------------------------------------------------
// Stage interfaces — contracts between the detector and its stages.
// The default implementations are thin adapters over the stage
// packages; tests substitute their own.
// ---------------------------------------------------------------------------

// LoaderStage turns raster sources into reconciled scenes.
type LoaderStage interface {
	// Load reads both sources and resamples them to a common grid.
	Load(before, after raster.Source) (*raster.Scene, *raster.Scene, error)
}

// IndexerStage derives spectral index planes from a scene.
type IndexerStage interface {
	Indices(s *raster.Scene) *spectral.IndexSet
}

// SegmenterStage extracts candidate change regions from index pairs.
type SegmenterStage interface {
	Segment(before, after *spectral.IndexSet) ([]*segment.Region, *segment.Mask)
}

// ClassifierStage assigns a change type to a region's index deltas.
type ClassifierStage interface {
	Classify(d classify.Deltas) classify.Result
}

// BuilderStage assembles the final record for a classified region.
type BuilderStage interface {
	Build(region *segment.Region, cls classify.Result) *geometry.ChangeRecord
}

// Default stage implementations.

type defaultLoader struct{}

func (defaultLoader) Load(before, after raster.Source) (*raster.Scene, *raster.Scene, error) {
	a, err := raster.LoadScene(before)
	if err != nil {
		return nil, nil, err
	}
	b, err := raster.LoadScene(after)
	if err != nil {
		return nil, nil, err
	}
	a, b = raster.Reconcile(a, b)
	return a, b, nil
}

type defaultIndexer struct{}

func (defaultIndexer) Indices(s *raster.Scene) *spectral.IndexSet {
	return spectral.ComputeIndexSet(s)
}

type defaultClassifier struct{}

func (defaultClassifier) Classify(d classify.Deltas) classify.Result {
	return classify.Classify(d)
}
