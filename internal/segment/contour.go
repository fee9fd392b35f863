package segment

// Clockwise 8-neighborhood in image coordinates (x right, y down):
// E, SE, S, SW, W, NW, N, NE.
var dirs8 = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// TraceBoundary walks the external boundary of one labeled component
// using Moore-neighbor tracing and returns the ordered boundary pixels.
// The walk starts at the component's topmost-leftmost pixel and stops
// with Jacob's criterion: when the walk is back at the start and about
// to repeat its first move. Revisiting the start alone is not enough;
// when the start is a cut vertex the walk must pass through it once per
// arm to cover the whole boundary. A single-pixel component yields a
// one-point boundary.
func TraceBoundary(labels []int32, width, height int, label int32) [][2]float64 {
	inComp := func(x, y int) bool {
		if x < 0 || x >= width || y < 0 || y >= height {
			return false
		}
		return labels[y*width+x] == label
	}

	// Scan-order first pixel is topmost-leftmost.
	sx, sy := -1, -1
	for y := 0; y < height && sx < 0; y++ {
		for x := 0; x < width; x++ {
			if labels[y*width+x] == label {
				sx, sy = x, y
				break
			}
		}
	}
	if sx < 0 {
		return nil
	}

	dirOf := func(from, to [2]int) int {
		dx, dy := to[0]-from[0], to[1]-from[1]
		for i, d := range dirs8 {
			if d[0] == dx && d[1] == dy {
				return i
			}
		}
		return 4 // west fallback, unreachable for adjacent pixels
	}

	// step advances one Moore move: scan the 8-neighborhood clockwise
	// from just past the backtrack pixel, return the first component
	// pixel and the empty pixel preceding it as the new backtrack.
	step := func(cur, back [2]int) (next, nextBack [2]int, ok bool) {
		bd := dirOf(cur, back)
		prev := back
		for i := 1; i <= 8; i++ {
			d := (bd + i) % 8
			n := [2]int{cur[0] + dirs8[d][0], cur[1] + dirs8[d][1]}
			if inComp(n[0], n[1]) {
				return n, prev, true
			}
			prev = n
		}
		return cur, back, false
	}

	start := [2]int{sx, sy}
	cur := start
	// The start pixel has no component pixel to its west, so the west
	// neighbor is a valid initial backtrack.
	back := [2]int{sx - 1, sy}
	boundary := [][2]float64{{float64(sx), float64(sy)}}
	var firstNext [2]int

	// A boundary cannot exceed the perimeter of the bounding box by
	// much; 4*(w*h) is a generous hard stop against pathological loops.
	limit := 4 * width * height
	for iter := 0; iter < limit; iter++ {
		next, nextBack, ok := step(cur, back)
		if !ok {
			// Isolated pixel.
			return boundary
		}
		if iter == 0 {
			firstNext = next
		} else if cur == start && next == firstNext {
			return boundary
		}
		if next != start {
			boundary = append(boundary, [2]float64{float64(next[0]), float64(next[1])})
		}
		cur, back = next, nextBack
	}
	return boundary
}

// Moments holds the zeroth and first image moments of a component.
type Moments struct {
	M00 float64
	M10 float64
	M01 float64
}

// ComputeMoments accumulates moments over the component's pixels.
func ComputeMoments(idxs []int, width int) Moments {
	var m Moments
	for _, idx := range idxs {
		x := float64(idx % width)
		y := float64(idx / width)
		m.M00++
		m.M10 += x
		m.M01 += y
	}
	return m
}

// Centroid returns the first-moment centroid, and false when the
// zeroth moment is degenerate.
func (m Moments) Centroid() (cx, cy float64, ok bool) {
	if m.M00 == 0 {
		return 0, 0, false
	}
	return m.M10 / m.M00, m.M01 / m.M00, true
}
