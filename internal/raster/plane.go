package raster

// Plane is a single-channel 2D float32 raster stored in a flat backing
// slice, row-major. All band and index math in this module operates on
// planes; values are reflectance (bands) or normalized indices.
type Plane struct {
	Width  int
	Height int
	Pix    []float32
}

// NewPlane allocates a zeroed plane of the given dimensions.
func NewPlane(width, height int) *Plane {
	return &Plane{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height),
	}
}

// Idx converts (x, y) to the flat backing-slice index.
func (p *Plane) Idx(x, y int) int { return y*p.Width + x }

// At returns the value at (x, y). No bounds checking beyond the slice's own.
func (p *Plane) At(x, y int) float32 { return p.Pix[y*p.Width+x] }

// Set writes the value at (x, y).
func (p *Plane) Set(x, y int, v float32) { p.Pix[y*p.Width+x] = v }

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	out := &Plane{Width: p.Width, Height: p.Height, Pix: make([]float32, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

// SameShape reports whether two planes have identical dimensions.
func (p *Plane) SameShape(q *Plane) bool {
	return p.Width == q.Width && p.Height == q.Height
}

// Scale multiplies every pixel by f and returns a new plane.
func (p *Plane) Scale(f float32) *Plane {
	out := NewPlane(p.Width, p.Height)
	for i, v := range p.Pix {
		out.Pix[i] = v * f
	}
	return out
}
