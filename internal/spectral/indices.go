// Package spectral computes normalized-difference spectral indices from
// band planes. Every function here is pure: planes in, a fresh clamped
// plane out, no shared state.
//
// Index values always land in [-1, 1]; degenerate pixels (0/0 from
// zero-reflectance denominators) map to 0 rather than NaN so that
// downstream delta math never sees non-finite values.
package spectral

import (
	"math"

	"github.com/geowatch-data/landcover.report/internal/raster"
)

// Index identifies one of the supported spectral indices.
type Index string

const (
	IndexNDVI Index = "ndvi" // vegetation: (nir-red)/(nir+red)
	IndexNDBI Index = "ndbi" // built-up:   (swir1-nir)/(swir1+nir)
	IndexNDWI Index = "ndwi" // water:      (green-nir)/(green+nir)
	IndexBSI  Index = "bsi"  // bare soil:  ((swir1+red)-(nir+blue))/((swir1+red)+(nir+blue))
	IndexNBR  Index = "nbr"  // burn:       (nir-swir2)/(nir+swir2)
)

// denominator guard: anything smaller in magnitude is treated as 0/0.
const epsilon = 1e-10

// safeRatio divides num by den, mapping degenerate and non-finite
// results to 0 and clamping to [-1, 1].
func safeRatio(num, den float64) float32 {
	if math.Abs(den) < epsilon {
		return 0
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return float32(v)
}

// NDVI computes the Normalized Difference Vegetation Index.
// Dense vegetation sits around 0.6-0.9, bare soil near 0, water below 0.
func NDVI(nir, red *raster.Plane) *raster.Plane {
	out := raster.NewPlane(nir.Width, nir.Height)
	for i := range out.Pix {
		n, r := float64(nir.Pix[i]), float64(red.Pix[i])
		out.Pix[i] = safeRatio(n-r, n+r)
	}
	return out
}

// NDBI computes the Normalized Difference Built-up Index. Requires a
// short-wave-infrared band; higher values indicate built-up surfaces.
func NDBI(swir1, nir *raster.Plane) *raster.Plane {
	out := raster.NewPlane(swir1.Width, swir1.Height)
	for i := range out.Pix {
		s, n := float64(swir1.Pix[i]), float64(nir.Pix[i])
		out.Pix[i] = safeRatio(s-n, s+n)
	}
	return out
}

// NDWI computes the Normalized Difference Water Index.
func NDWI(green, nir *raster.Plane) *raster.Plane {
	out := raster.NewPlane(green.Width, green.Height)
	for i := range out.Pix {
		g, n := float64(green.Pix[i]), float64(nir.Pix[i])
		out.Pix[i] = safeRatio(g-n, g+n)
	}
	return out
}

// BSI computes the Bare Soil Index. Requires swir1.
func BSI(swir1, red, nir, blue *raster.Plane) *raster.Plane {
	out := raster.NewPlane(swir1.Width, swir1.Height)
	for i := range out.Pix {
		s := float64(swir1.Pix[i])
		r := float64(red.Pix[i])
		n := float64(nir.Pix[i])
		b := float64(blue.Pix[i])
		out.Pix[i] = safeRatio((s+r)-(n+b), (s+r)+(n+b))
	}
	return out
}

// NBR computes the Normalized Burn Ratio. Requires swir2. A sharp NBR
// drop between observations is the primary burn-scar signal.
func NBR(nir, swir2 *raster.Plane) *raster.Plane {
	out := raster.NewPlane(nir.Width, nir.Height)
	for i := range out.Pix {
		n, s := float64(nir.Pix[i]), float64(swir2.Pix[i])
		out.Pix[i] = safeRatio(n-s, n+s)
	}
	return out
}

// IndexSet holds the index planes computed for one scene. NDVI and NDWI
// are always present; the SWIR-derived planes are nil when the scene
// lacks the required bands.
type IndexSet struct {
	NDVI *raster.Plane
	NDWI *raster.Plane
	NDBI *raster.Plane
	BSI  *raster.Plane
	NBR  *raster.Plane
}

// ComputeIndexSet derives every index the scene's bands allow.
func ComputeIndexSet(s *raster.Scene) *IndexSet {
	set := &IndexSet{
		NDVI: NDVI(s.Band(raster.BandNIR), s.Band(raster.BandRed)),
		NDWI: NDWI(s.Band(raster.BandGreen), s.Band(raster.BandNIR)),
	}
	if s.HasBand(raster.BandSWIR1) {
		set.NDBI = NDBI(s.Band(raster.BandSWIR1), s.Band(raster.BandNIR))
		set.BSI = BSI(s.Band(raster.BandSWIR1), s.Band(raster.BandRed), s.Band(raster.BandNIR), s.Band(raster.BandBlue))
	}
	if s.HasBand(raster.BandSWIR2) {
		set.NBR = NBR(s.Band(raster.BandNIR), s.Band(raster.BandSWIR2))
	}
	return set
}
