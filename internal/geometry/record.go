package geometry

import "github.com/geowatch-data/landcover.report/internal/classify"

// Geometry is a GeoJSON-style Polygon: one exterior ring, coordinates
// in (lon, lat) when georeferenced, (x, y) pixels otherwise.
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// ChangeRecord is the externally visible unit of detection output. It
// is immutable once built and owned by the caller; the pipeline keeps
// no reference after returning it.
type ChangeRecord struct {
	ID              string                 `json:"id"`
	Type            classify.ChangeType    `json:"type"`
	Confidence      float64                `json:"confidence"`
	Alert           classify.AlertLevel    `json:"alert_level"`
	Description     string                 `json:"description"`
	Area            float64                `json:"area"`        // m² when georeferenced, else pixels
	AreaPixels      float64                `json:"area_pixels"` // always pixel units
	Centroid        [2]float64             `json:"centroid"`
	Geometry        Geometry               `json:"geometry"`
	IsGeoreferenced bool                   `json:"is_georeferenced"`
	Spectral        map[string]float64     `json:"spectral"` // index name → delta
	SpectralBefore  map[string]float64     `json:"spectral_before,omitempty"`
	SpectralAfter   map[string]float64     `json:"spectral_after,omitempty"`
}
