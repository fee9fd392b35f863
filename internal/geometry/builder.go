// Package geometry turns mask regions into geo-referenced change
// records: boundary simplification, ring closure, coordinate
// conversion, area computation, and record assembly.
package geometry

import (
	"github.com/google/uuid"

	"github.com/geowatch-data/landcover.report/internal/classify"
	"github.com/geowatch-data/landcover.report/internal/raster"
	"github.com/geowatch-data/landcover.report/internal/segment"
)

// Simplification epsilon as a fraction of the contour perimeter.
// Matches the common contour-approximation setting for satellite-scale
// regions: detail below 2% of the outline length is noise.
const simplifyPerimeterFraction = 0.02

// DefaultGroundSampleDistance is the per-pixel ground size in meters
// for the expected Sentinel-2 10 m products.
const DefaultGroundSampleDistance = 10.0

// Builder assembles ChangeRecords from segmented regions. A nil Geo
// produces pixel-unit records flagged as not georeferenced.
type Builder struct {
	Geo *raster.GeoTransform
	GSD float64 // ground-sample distance in meters per pixel
}

// NewBuilder returns a builder for the given transform (may be nil)
// using the default ground-sample distance.
func NewBuilder(geo *raster.GeoTransform) *Builder {
	return &Builder{Geo: geo, GSD: DefaultGroundSampleDistance}
}

// Build constructs the final record for one classified region. Each
// call mints a fresh opaque id.
func (b *Builder) Build(region *segment.Region, cls classify.Result) *ChangeRecord {
	eps := simplifyPerimeterFraction * Perimeter(region.Boundary)
	ring := CloseRing(Simplify(region.Boundary, eps))

	rec := &ChangeRecord{
		ID:             uuid.New().String(),
		Type:           cls.Type,
		Confidence:     cls.Confidence,
		Alert:          cls.Alert,
		Description:    cls.Description,
		AreaPixels:     region.PixelArea,
		Spectral:       make(map[string]float64, len(region.MeanAfter)),
		SpectralBefore: make(map[string]float64, len(region.MeanBefore)),
		SpectralAfter:  make(map[string]float64, len(region.MeanAfter)),
	}
	for idx, d := range region.Deltas() {
		rec.Spectral[string(idx)] = d
	}
	for idx, v := range region.MeanBefore {
		rec.SpectralBefore[string(idx)] = v
	}
	for idx, v := range region.MeanAfter {
		rec.SpectralAfter[string(idx)] = v
	}

	if b.Geo != nil {
		rec.IsGeoreferenced = true
		geoRing := b.Geo.PolygonToGeo(ring)
		lon, lat := b.Geo.PixelToGeo(region.Centroid[0], region.Centroid[1])
		rec.Centroid = [2]float64{lon, lat}
		rec.Geometry = Geometry{Type: "Polygon", Coordinates: [][][2]float64{geoRing}}
		gsd := b.GSD
		if gsd <= 0 {
			gsd = DefaultGroundSampleDistance
		}
		rec.Area = PixelAreaM2(region.PixelArea, gsd)
	} else {
		rec.Centroid = region.Centroid
		rec.Geometry = Geometry{Type: "Polygon", Coordinates: [][][2]float64{ring}}
		rec.Area = region.PixelArea
	}
	return rec
}
