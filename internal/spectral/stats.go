package spectral

import (
	"gonum.org/v1/gonum/stat"

	"github.com/geowatch-data/landcover.report/internal/raster"
)

// MeanAt returns the mean plane value over the given flat pixel
// indices. Used for per-region index aggregation; regions are small
// relative to the scene so the float64 copy is cheap.
func MeanAt(p *raster.Plane, idxs []int) float64 {
	if p == nil || len(idxs) == 0 {
		return 0
	}
	vals := make([]float64, len(idxs))
	for i, idx := range idxs {
		vals[i] = float64(p.Pix[idx])
	}
	return stat.Mean(vals, nil)
}

// Mean returns the mean over the whole plane.
func Mean(p *raster.Plane) float64 {
	if p == nil || len(p.Pix) == 0 {
		return 0
	}
	vals := make([]float64, len(p.Pix))
	for i, v := range p.Pix {
		vals[i] = float64(v)
	}
	return stat.Mean(vals, nil)
}
