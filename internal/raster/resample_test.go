package raster

import (
	"math"
	"testing"
)

func TestResizeBilinearDimensions(t *testing.T) {
	p := NewPlane(10, 8)
	out := ResizeBilinear(p, 5, 4)
	if out.Width != 5 || out.Height != 4 {
		t.Errorf("resized to %dx%d, want 5x4", out.Width, out.Height)
	}
}

func TestResizeBilinearPreservesConstant(t *testing.T) {
	p := filledPlane(9, 9, 0.42)
	out := ResizeBilinear(p, 4, 4)
	for i, v := range out.Pix {
		if math.Abs(float64(v)-0.42) > 1e-6 {
			t.Fatalf("pixel %d = %v, want 0.42", i, v)
		}
	}
}

func TestResizeBilinearPreservesGradientOrder(t *testing.T) {
	// Horizontal ramp; downsampling must keep values monotonic.
	p := NewPlane(16, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 16; x++ {
			p.Set(x, y, float32(x))
		}
	}
	out := ResizeBilinear(p, 7, 2)
	for x := 1; x < out.Width; x++ {
		if out.At(x, 0) <= out.At(x-1, 0) {
			t.Fatalf("gradient not monotonic at x=%d: %v <= %v", x, out.At(x, 0), out.At(x-1, 0))
		}
	}
}

func TestResizeBilinearIdentity(t *testing.T) {
	p := NewPlane(4, 4)
	for i := range p.Pix {
		p.Pix[i] = float32(i)
	}
	out := ResizeBilinear(p, 4, 4)
	for i := range p.Pix {
		if math.Abs(float64(out.Pix[i]-p.Pix[i])) > 1e-6 {
			t.Fatalf("identity resize changed pixel %d: %v != %v", i, out.Pix[i], p.Pix[i])
		}
	}
}

func TestReconcileResamplesToSmaller(t *testing.T) {
	a := &Scene{Width: 8, Height: 8, Bands: map[string]*Plane{
		BandRed: filledPlane(8, 8, 0.1), BandGreen: filledPlane(8, 8, 0.2),
		BandBlue: filledPlane(8, 8, 0.3), BandNIR: filledPlane(8, 8, 0.4),
	}}
	b := &Scene{Width: 4, Height: 6, Bands: map[string]*Plane{
		BandRed: filledPlane(4, 6, 0.1), BandGreen: filledPlane(4, 6, 0.2),
		BandBlue: filledPlane(4, 6, 0.3), BandNIR: filledPlane(4, 6, 0.4),
	}}

	ra, rb := Reconcile(a, b)
	if ra.Width != 4 || ra.Height != 6 {
		t.Errorf("scene a reconciled to %dx%d, want 4x6", ra.Width, ra.Height)
	}
	if rb.Width != 4 || rb.Height != 6 {
		t.Errorf("scene b reconciled to %dx%d, want 4x6", rb.Width, rb.Height)
	}
	// Already-matching scenes pass through untouched.
	sa, sb := Reconcile(rb, rb)
	if sa != rb || sb != rb {
		t.Error("matching scenes should not be copied")
	}
}
