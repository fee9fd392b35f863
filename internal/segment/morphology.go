package segment

// 3x3 elliptical structuring element: the center plus its 4-neighbors.
// At kernel size 3 an ellipse degenerates to this cross shape.
var kernel = [][2]int{{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Erode clears every pixel whose structuring-element neighborhood is
// not fully set. Pixels outside the mask count as unset, so regions
// touching the border erode from the edge like any other.
func Erode(m *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			keep := true
			for _, k := range kernel {
				nx, ny := x+k[0], y+k[1]
				if nx < 0 || nx >= m.Width || ny < 0 || ny >= m.Height || !m.At(nx, ny) {
					keep = false
					break
				}
			}
			out.Set(x, y, keep)
		}
	}
	return out
}

// Dilate sets every pixel with at least one set pixel in its
// structuring-element neighborhood.
func Dilate(m *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			for _, k := range kernel {
				nx, ny := x+k[0], y+k[1]
				if nx >= 0 && nx < m.Width && ny >= 0 && ny < m.Height && m.At(nx, ny) {
					out.Set(x, y, true)
					break
				}
			}
		}
	}
	return out
}

// Open removes isolated speckle: erosion followed by dilation.
func Open(m *Mask) *Mask { return Dilate(Erode(m)) }

// Close fills small gaps: dilation followed by erosion.
func Close(m *Mask) *Mask { return Erode(Dilate(m)) }

// Denoise applies the standard cleanup sequence, opening then closing.
func Denoise(m *Mask) *Mask { return Close(Open(m)) }
