package raster

import "math"

// ResizeBilinear resamples a plane to (width, height) with bilinear
// interpolation. Band planes hold float32 reflectance, so the usual
// image-resizing libraries (which quantise through 8/16-bit channels)
// are not applicable; this mirrors their bilinear kernel directly on
// the float backing slice.
func ResizeBilinear(p *Plane, width, height int) *Plane {
	if width == p.Width && height == p.Height {
		return p.Clone()
	}
	out := NewPlane(width, height)
	if width <= 0 || height <= 0 || p.Width == 0 || p.Height == 0 {
		return out
	}

	xRatio := float64(p.Width) / float64(width)
	yRatio := float64(p.Height) / float64(height)

	for y := 0; y < height; y++ {
		// Sample at pixel centers to avoid a half-pixel shift.
		srcY := (float64(y)+0.5)*yRatio - 0.5
		y0 := int(math.Floor(srcY))
		fy := srcY - float64(y0)
		y1 := y0 + 1
		if y0 < 0 {
			y0, y1, fy = 0, 0, 0
		}
		if y1 >= p.Height {
			y1 = p.Height - 1
			if y0 > y1 {
				y0 = y1
			}
		}
		for x := 0; x < width; x++ {
			srcX := (float64(x)+0.5)*xRatio - 0.5
			x0 := int(math.Floor(srcX))
			fx := srcX - float64(x0)
			x1 := x0 + 1
			if x0 < 0 {
				x0, x1, fx = 0, 0, 0
			}
			if x1 >= p.Width {
				x1 = p.Width - 1
				if x0 > x1 {
					x0 = x1
				}
			}

			v00 := float64(p.At(x0, y0))
			v10 := float64(p.At(x1, y0))
			v01 := float64(p.At(x0, y1))
			v11 := float64(p.At(x1, y1))

			top := v00 + (v10-v00)*fx
			bot := v01 + (v11-v01)*fx
			out.Set(x, y, float32(top+(bot-top)*fy))
		}
	}
	return out
}
