package geometry

import "math"

// GeodesicAreaM2 approximates the area of a closed lon/lat ring in
// square meters. Degrees are scaled to meters with latitude-dependent
// coefficients evaluated at the ring's mid latitude, then the shoelace
// formula is applied. Good to well under a percent at the few-kilometer
// scale this system operates on.
func GeodesicAreaM2(ring [][2]float64) float64 {
	if len(ring) < 4 {
		return 0
	}

	minLat, maxLat := ring[0][1], ring[0][1]
	for _, p := range ring {
		minLat = math.Min(minLat, p[1])
		maxLat = math.Max(maxLat, p[1])
	}
	latMid := (minLat + maxLat) / 2 * math.Pi / 180

	// Meters per degree of latitude and longitude at latMid.
	kLat := 111132.92 - 559.82*math.Cos(2*latMid)
	kLon := 111412.84 * math.Cos(latMid)

	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		x1, y1 := ring[i][0]*kLon, ring[i][1]*kLat
		x2, y2 := ring[i+1][0]*kLon, ring[i+1][1]*kLat
		sum += x1*y2 - x2*y1
	}
	return math.Abs(sum) / 2
}

// PixelAreaM2 converts a pixel count to square meters using the
// sensor's ground-sample distance (meters per pixel side).
func PixelAreaM2(pixelArea, gsd float64) float64 {
	return pixelArea * gsd * gsd
}
