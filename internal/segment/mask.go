// Package segment derives a binary change mask from per-scene index
// planes and extracts the connected change regions from it. It is the
// middle of the detection pipeline: indices in, candidate regions out.
package segment

import (
	"math"

	"github.com/geowatch-data/landcover.report/internal/raster"
	"github.com/geowatch-data/landcover.report/internal/spectral"
)

// Fixed combination weights for the change-magnitude plane. NDVI change
// is the primary signal; NDWI and NDBI contribute at reduced weight so
// water glint and roof reflectance do not dominate vegetation change.
// These are design constants, deliberately not tunable.
const (
	ndwiWeight = 0.7
	ndbiWeight = 0.8
)

// Mask is a binary plane marking changed pixels.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates a cleared mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At returns the bit at (x, y).
func (m *Mask) At(x, y int) bool { return m.Bits[y*m.Width+x] }

// Set writes the bit at (x, y).
func (m *Mask) Set(x, y int, v bool) { m.Bits[y*m.Width+x] = v }

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Magnitude combines absolute index deltas into a single change
// magnitude plane:
//
//	mag = max(|Δndvi|, 0.7*|Δndwi|[, 0.8*|Δndbi|])
//
// NDBI participates only when both index sets carry it.
func Magnitude(before, after *spectral.IndexSet) *raster.Plane {
	out := raster.NewPlane(before.NDVI.Width, before.NDVI.Height)
	useNDBI := before.NDBI != nil && after.NDBI != nil
	for i := range out.Pix {
		mag := math.Abs(float64(after.NDVI.Pix[i]) - float64(before.NDVI.Pix[i]))
		if dw := ndwiWeight * math.Abs(float64(after.NDWI.Pix[i])-float64(before.NDWI.Pix[i])); dw > mag {
			mag = dw
		}
		if useNDBI {
			if db := ndbiWeight * math.Abs(float64(after.NDBI.Pix[i])-float64(before.NDBI.Pix[i])); db > mag {
				mag = db
			}
		}
		out.Pix[i] = float32(mag)
	}
	return out
}

// ThresholdMask marks pixels whose magnitude strictly exceeds the
// threshold.
func ThresholdMask(magnitude *raster.Plane, threshold float64) *Mask {
	m := NewMask(magnitude.Width, magnitude.Height)
	t := float32(threshold)
	for i, v := range magnitude.Pix {
		m.Bits[i] = v > t
	}
	return m
}
