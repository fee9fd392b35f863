package raster

// GeoTransform maps pixel coordinates to geographic coordinates using a
// GDAL-style affine transform:
//
//	lon = OriginX + x*PixelWidth + y*RotationX
//	lat = OriginY + x*RotationY + y*PixelHeight
//
// PixelHeight is normally negative (north-up rasters have row 0 at the
// northern edge). A GeoTransform is immutable after construction.
type GeoTransform struct {
	OriginX     float64
	OriginY     float64
	PixelWidth  float64
	PixelHeight float64
	RotationX   float64
	RotationY   float64
	CRS         string
}

// NewGeoTransform builds a north-up transform without rotation terms,
// the common case for satellite products.
func NewGeoTransform(originX, originY, pixelWidth, pixelHeight float64, crs string) *GeoTransform {
	return &GeoTransform{
		OriginX:     originX,
		OriginY:     originY,
		PixelWidth:  pixelWidth,
		PixelHeight: pixelHeight,
		CRS:         crs,
	}
}

// PixelToGeo converts a pixel coordinate to (lon, lat).
func (g *GeoTransform) PixelToGeo(x, y float64) (lon, lat float64) {
	lon = g.OriginX + x*g.PixelWidth + y*g.RotationX
	lat = g.OriginY + x*g.RotationY + y*g.PixelHeight
	return lon, lat
}

// PolygonToGeo converts an ordered pixel-coordinate ring to geographic
// coordinates, preserving order and closure.
func (g *GeoTransform) PolygonToGeo(pixelCoords [][2]float64) [][2]float64 {
	geo := make([][2]float64, len(pixelCoords))
	for i, pc := range pixelCoords {
		lon, lat := g.PixelToGeo(pc[0], pc[1])
		geo[i] = [2]float64{lon, lat}
	}
	return geo
}

// Rescale returns a transform adjusted for a raster resampled from
// (oldW, oldH) to (newW, newH) over the same geographic extent.
func (g *GeoTransform) Rescale(oldW, oldH, newW, newH int) *GeoTransform {
	if oldW == newW && oldH == newH {
		return g
	}
	out := *g
	sx := float64(oldW) / float64(newW)
	sy := float64(oldH) / float64(newH)
	out.PixelWidth *= sx
	out.PixelHeight *= sy
	out.RotationX *= sy
	out.RotationY *= sx
	return &out
}
