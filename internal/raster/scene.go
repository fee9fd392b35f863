package raster

// Canonical band names. Sentinel-2 products delivered in the expected
// layout map B4, B3, B2, B8 to the first four bands, with B11/B12 as
// optional fifth and sixth.
const (
	BandRed   = "red"
	BandGreen = "green"
	BandBlue  = "blue"
	BandNIR   = "nir"
	BandSWIR1 = "swir1"
	BandSWIR2 = "swir2"
)

// Scene is an in-memory raster: named band planes sharing one pixel
// grid, plus optional geo-referencing metadata. Scenes are built once
// by the loader and never mutated afterwards.
type Scene struct {
	Width  int
	Height int
	Bands  map[string]*Plane
	Geo    *GeoTransform
}

// Band returns the named plane, or nil when absent.
func (s *Scene) Band(name string) *Plane { return s.Bands[name] }

// HasBand reports whether the named band is present.
func (s *Scene) HasBand(name string) bool {
	_, ok := s.Bands[name]
	return ok
}

// IsGeoreferenced reports whether the scene carries an affine transform.
func (s *Scene) IsGeoreferenced() bool { return s.Geo != nil }

// resampled returns a copy of the scene with every band resampled to
// (width, height). The geo transform is rescaled to keep the same extent.
func (s *Scene) resampled(width, height int) *Scene {
	if width == s.Width && height == s.Height {
		return s
	}
	out := &Scene{
		Width:  width,
		Height: height,
		Bands:  make(map[string]*Plane, len(s.Bands)),
	}
	for name, p := range s.Bands {
		out.Bands[name] = ResizeBilinear(p, width, height)
	}
	if s.Geo != nil {
		out.Geo = s.Geo.Rescale(s.Width, s.Height, width, height)
	}
	return out
}

// Reconcile resamples two scenes to their common smaller grid so that
// pixel-wise comparison is valid. Downsampling only: the larger raster
// loses detail rather than the smaller one inventing it. Scenes that
// already share a grid are returned unchanged.
func Reconcile(a, b *Scene) (*Scene, *Scene) {
	if a.Width == b.Width && a.Height == b.Height {
		return a, b
	}
	w := min(a.Width, b.Width)
	h := min(a.Height, b.Height)
	return a.resampled(w, h), b.resampled(w, h)
}
