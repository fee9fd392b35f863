package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/geowatch-data/landcover.report/internal/classify"
	"github.com/geowatch-data/landcover.report/internal/geometry"
	"github.com/geowatch-data/landcover.report/internal/raster"
)

func fillPlane(w, h int, v float32) *raster.Plane {
	p := raster.NewPlane(w, h)
	for i := range p.Pix {
		p.Pix[i] = v
	}
	return p
}

// sixBandSource builds an in-memory source with uniform reflectances:
// r, g, b, nir, swir1, swir2.
func sixBandSource(name string, w, h int, refl [6]float32, geo *raster.GeoTransform) *raster.MemorySource {
	planes := make([]*raster.Plane, 6)
	for i, v := range refl {
		planes[i] = fillPlane(w, h, v)
	}
	return &raster.MemorySource{Name: name, Planes: planes, Geo: geo}
}

// vegetation and cleared reflectance profiles for synthetic scenes.
var (
	vegReflectance     = [6]float32{0.05, 0.08, 0.04, 0.50, 0.20, 0.10}
	clearedReflectance = [6]float32{0.25, 0.22, 0.20, 0.28, 0.35, 0.30}
)

// clearPatch rewrites a rectangle of every band to the cleared profile.
func clearPatch(src *raster.MemorySource, x0, y0, x1, y1 int) {
	for b, plane := range src.Planes {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				plane.Set(x, y, clearedReflectance[b])
			}
		}
	}
}

func testOptions() Options {
	return Options{Threshold: 0.15, MinArea: 10, GSD: 10, MaxRecords: 100}
}

func TestDetectChangesEndToEnd(t *testing.T) {
	const size = 32
	before := sixBandSource("before", size, size, vegReflectance, nil)
	after := sixBandSource("after", size, size, vegReflectance, nil)
	clearPatch(after, 8, 8, 19, 19)

	d, err := NewDetector(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	records, err := d.DetectChanges(before, after)
	if err != nil {
		t.Fatalf("DetectChanges failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.ID == "" {
		t.Error("record id missing")
	}
	if rec.IsGeoreferenced {
		t.Error("no transform supplied, record must not be georeferenced")
	}
	// Vegetation cleared and replaced by bright dry surface: NDVI falls
	// hard, so a loss type must come out, not growth or no_change.
	switch rec.Type {
	case classify.TypeDeforestation, classify.TypeBareSoil, classify.TypeConstruction, classify.TypeUrbanExpansion, classify.TypeBurnScar:
	default:
		t.Errorf("change type = %s, want a vegetation-loss type", rec.Type)
	}
	if rec.Confidence <= 0 || rec.Confidence > 1 {
		t.Errorf("confidence = %v, out of (0, 1]", rec.Confidence)
	}
	// 12x12 patch, minus the rim morphology may shave.
	if rec.AreaPixels < 100 || rec.AreaPixels > 144 {
		t.Errorf("area = %v pixels, want near 144", rec.AreaPixels)
	}
	if rec.Spectral["ndvi"] >= 0 {
		t.Errorf("ndvi delta = %v, want negative", rec.Spectral["ndvi"])
	}
}

func TestDetectChangesIdenticalScenes(t *testing.T) {
	before := sixBandSource("a", 16, 16, vegReflectance, nil)
	after := sixBandSource("b", 16, 16, vegReflectance, nil)

	d, _ := NewDetector(testOptions())
	records, err := d.DetectChanges(before, after)
	if err != nil {
		t.Fatalf("no-change comparison failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("identical scenes produced %d records", len(records))
	}
}

func TestDetectChangesGeoreferenced(t *testing.T) {
	geo := raster.NewGeoTransform(-46.70, -23.50, 0.0001, -0.0001, "EPSG:4326")
	before := sixBandSource("before", 32, 32, vegReflectance, geo)
	after := sixBandSource("after", 32, 32, vegReflectance, geo)
	clearPatch(after, 8, 8, 19, 19)

	d, _ := NewDetector(testOptions())
	records, err := d.DetectChanges(before, after)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if !rec.IsGeoreferenced {
		t.Fatal("expected georeferenced record")
	}
	if rec.Centroid[0] > -46 || rec.Centroid[0] < -47 {
		t.Errorf("centroid lon = %v, not in scene extent", rec.Centroid[0])
	}
	// Pixel area times gsd squared.
	if rec.Area != rec.AreaPixels*100 {
		t.Errorf("area = %v, want %v", rec.Area, rec.AreaPixels*100)
	}
}

func TestDetectChangesLoadFailure(t *testing.T) {
	bad := &raster.FileSource{Paths: []string{"/nonexistent/band.tif"}}
	good := sixBandSource("after", 8, 8, vegReflectance, nil)

	d, _ := NewDetector(testOptions())
	_, err := d.DetectChanges(bad, good)
	if err == nil {
		t.Fatal("expected load failure")
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected pipeline Error, got %T", err)
	}
	if perr.Stage != StageLoading {
		t.Errorf("failed stage = %s, want %s", perr.Stage, StageLoading)
	}
	var rre *raster.RasterReadError
	if !errors.As(err, &rre) {
		t.Error("expected wrapped RasterReadError")
	}
}

func TestDetectChangesDeterministicModuloIDs(t *testing.T) {
	before := sixBandSource("before", 32, 32, vegReflectance, nil)
	after := sixBandSource("after", 32, 32, vegReflectance, nil)
	clearPatch(after, 4, 4, 12, 12)
	clearPatch(after, 20, 18, 28, 27)

	d, _ := NewDetector(testOptions())
	first, err := d.DetectChanges(before, after)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.DetectChanges(before, after)
	if err != nil {
		t.Fatal(err)
	}

	ignoreIDs := cmpopts.IgnoreFields(geometry.ChangeRecord{}, "ID")
	if diff := cmp.Diff(first, second, ignoreIDs); diff != "" {
		t.Errorf("repeat run differed (-first +second):\n%s", diff)
	}
}

func TestDetectChangesMaxRecordsCap(t *testing.T) {
	before := sixBandSource("before", 32, 32, vegReflectance, nil)
	after := sixBandSource("after", 32, 32, vegReflectance, nil)
	clearPatch(after, 2, 2, 10, 10)
	clearPatch(after, 20, 2, 28, 10)
	clearPatch(after, 2, 20, 10, 28)
	clearPatch(after, 20, 20, 28, 28)

	opts := testOptions()
	opts.MaxRecords = 2
	d, err := NewDetector(opts)
	if err != nil {
		t.Fatal(err)
	}
	records, err := d.DetectChanges(before, after)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want cap of 2", len(records))
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"zero threshold", Options{Threshold: 0, MinArea: 10}, true},
		{"threshold above one", Options{Threshold: 1.5, MinArea: 10}, true},
		{"zero min area", Options{Threshold: 0.2, MinArea: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDetectorRejectsInvalidOptions(t *testing.T) {
	if _, err := NewDetector(Options{}); err == nil {
		t.Error("expected error for zero options")
	}
}
