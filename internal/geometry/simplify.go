package geometry

import "math"

// Perimeter returns the length of an open polyline in its own units.
func Perimeter(points [][2]float64) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += dist(points[i-1], points[i])
	}
	return total
}

func dist(a, b [2]float64) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// Simplify reduces a polyline with the Douglas-Peucker algorithm:
// points farther than epsilon from the chord between kept endpoints are
// retained recursively, everything else is dropped. Endpoints are
// always kept.
func Simplify(points [][2]float64, epsilon float64) [][2]float64 {
	if len(points) < 3 || epsilon <= 0 {
		out := make([][2]float64, len(points))
		copy(out, points)
		return out
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	simplifyRange(points, 0, len(points)-1, epsilon, keep)

	var out [][2]float64
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func simplifyRange(points [][2]float64, first, last int, epsilon float64, keep []bool) {
	if last <= first+1 {
		return
	}
	maxDist := 0.0
	maxIdx := first
	for i := first + 1; i < last; i++ {
		if d := pointToSegment(points[i], points[first], points[last]); d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist > epsilon {
		keep[maxIdx] = true
		simplifyRange(points, first, maxIdx, epsilon, keep)
		simplifyRange(points, maxIdx, last, epsilon, keep)
	}
}

// pointToSegment returns the distance from p to the segment ab.
func pointToSegment(p, a, b [2]float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return dist(p, a)
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return dist(p, [2]float64{a[0] + t*dx, a[1] + t*dy})
}

// CloseRing appends the first vertex when the ring is open. Rings with
// fewer than three distinct vertices are replaced by the bounding
// pixel box so every emitted polygon has at least four coordinates.
func CloseRing(points [][2]float64) [][2]float64 {
	distinct := distinctCount(points)
	if distinct < 3 {
		return boundingBoxRing(points)
	}
	if points[0] != points[len(points)-1] {
		points = append(points, points[0])
	}
	return points
}

func distinctCount(points [][2]float64) int {
	seen := make(map[[2]float64]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// boundingBoxRing builds a closed half-pixel-padded box around the
// given points. Used for degenerate (one- or two-point) boundaries.
func boundingBoxRing(points [][2]float64) [][2]float64 {
	if len(points) == 0 {
		return nil
	}
	minX, minY := points[0][0], points[0][1]
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}
	minX -= 0.5
	minY -= 0.5
	maxX += 0.5
	maxY += 0.5
	return [][2]float64{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}
}
