package segment

import "testing"

func labeledMask(rows ...string) ([]int32, int, int) {
	m := maskFromRows(rows...)
	labels, _ := LabelComponents(m)
	return labels, m.Width, m.Height
}

func TestTraceBoundarySinglePixel(t *testing.T) {
	labels, w, h := labeledMask(
		"...",
		".#.",
		"...",
	)
	b := TraceBoundary(labels, w, h, 1)
	if len(b) != 1 {
		t.Fatalf("boundary length = %d, want 1", len(b))
	}
	if b[0] != [2]float64{1, 1} {
		t.Errorf("boundary = %v, want (1,1)", b[0])
	}
}

func TestTraceBoundarySquare(t *testing.T) {
	labels, w, h := labeledMask(
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	)
	b := TraceBoundary(labels, w, h, 1)

	// A 3x3 square has 8 boundary pixels; the interior pixel stays out.
	if len(b) != 8 {
		t.Fatalf("boundary length = %d, want 8", len(b))
	}
	if b[0] != [2]float64{1, 1} {
		t.Errorf("boundary starts at %v, want topmost-leftmost (1,1)", b[0])
	}
	for _, p := range b {
		if p == [2]float64{2, 2} {
			t.Error("interior pixel appeared on boundary")
		}
	}
}

func TestTraceBoundaryCutVertexCoversBothArms(t *testing.T) {
	// The topmost-leftmost pixel (1,0) is a cut vertex: its two
	// diagonal neighbors are only connected through it. The walk has to
	// pass through the start once per arm, so stopping on the first
	// revisit of the start would drop an arm entirely.
	labels, w, h := labeledMask(
		".#.",
		"#.#",
	)
	b := TraceBoundary(labels, w, h, 1)

	for _, want := range [][2]float64{{1, 0}, {0, 1}, {2, 1}} {
		found := false
		for _, p := range b {
			if p == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("boundary %v missing component pixel %v", b, want)
		}
	}
	if b[0] != [2]float64{1, 0} {
		t.Errorf("boundary starts at %v, want topmost-leftmost (1,0)", b[0])
	}
}

func TestTraceBoundaryMissingLabel(t *testing.T) {
	labels, w, h := labeledMask(
		"#.",
		"..",
	)
	if b := TraceBoundary(labels, w, h, 99); b != nil {
		t.Errorf("expected nil boundary for absent label, got %v", b)
	}
}

func TestComputeMomentsAndCentroid(t *testing.T) {
	// 2x2 block at (1,1)-(2,2) in a 4-wide grid.
	idxs := []int{
		1*4 + 1, 1*4 + 2,
		2*4 + 1, 2*4 + 2,
	}
	m := ComputeMoments(idxs, 4)
	if m.M00 != 4 {
		t.Errorf("M00 = %v, want 4", m.M00)
	}
	cx, cy, ok := m.Centroid()
	if !ok {
		t.Fatal("expected valid centroid")
	}
	if cx != 1.5 || cy != 1.5 {
		t.Errorf("centroid = (%v, %v), want (1.5, 1.5)", cx, cy)
	}
}

func TestCentroidDegenerate(t *testing.T) {
	var m Moments
	if _, _, ok := m.Centroid(); ok {
		t.Error("zero-area moments must report no centroid")
	}
}
