package raster

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPixelToGeo(t *testing.T) {
	g := NewGeoTransform(-46.70, -23.50, 0.0001, -0.0001, "EPSG:4326")

	lon, lat := g.PixelToGeo(0, 0)
	if !almostEqual(lon, -46.70) || !almostEqual(lat, -23.50) {
		t.Errorf("origin maps to (%v, %v), want (-46.70, -23.50)", lon, lat)
	}

	lon, lat = g.PixelToGeo(100, 200)
	if !almostEqual(lon, -46.69) {
		t.Errorf("lon = %v, want -46.69", lon)
	}
	if !almostEqual(lat, -23.52) {
		t.Errorf("lat = %v, want -23.52", lat)
	}
}

func TestPixelToGeoWithRotation(t *testing.T) {
	g := &GeoTransform{OriginX: 10, OriginY: 20, PixelWidth: 1, PixelHeight: -1, RotationX: 0.5, RotationY: 0.25}

	lon, lat := g.PixelToGeo(2, 4)
	if !almostEqual(lon, 10+2*1+4*0.5) {
		t.Errorf("lon = %v", lon)
	}
	if !almostEqual(lat, 20+2*0.25+4*-1) {
		t.Errorf("lat = %v", lat)
	}
}

func TestPolygonToGeoPreservesOrderAndClosure(t *testing.T) {
	g := NewGeoTransform(0, 0, 2, -2, "")
	ring := [][2]float64{{0, 0}, {3, 0}, {3, 3}, {0, 3}, {0, 0}}
	geo := g.PolygonToGeo(ring)

	if len(geo) != len(ring) {
		t.Fatalf("ring length changed: %d != %d", len(geo), len(ring))
	}
	if geo[0] != geo[len(geo)-1] {
		t.Error("closed ring should stay closed after conversion")
	}
	if geo[1][0] != 6 || geo[1][1] != 0 {
		t.Errorf("vertex 1 = %v, want (6, 0)", geo[1])
	}
}

func TestRescale(t *testing.T) {
	g := NewGeoTransform(0, 0, 0.001, -0.001, "EPSG:4326")

	// Halving resolution doubles pixel size over the same extent.
	r := g.Rescale(100, 100, 50, 50)
	if !almostEqual(r.PixelWidth, 0.002) || !almostEqual(r.PixelHeight, -0.002) {
		t.Errorf("rescaled pixel size = (%v, %v), want (0.002, -0.002)", r.PixelWidth, r.PixelHeight)
	}
	if !almostEqual(r.OriginX, 0) || !almostEqual(r.OriginY, 0) {
		t.Error("origin must not move on rescale")
	}

	// No-op rescale returns the same transform.
	if g.Rescale(100, 100, 100, 100) != g {
		t.Error("identity rescale should return the receiver")
	}
}
