package segment

import "testing"

func TestLabelComponentsCounts(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want int
	}{
		{"empty", []string{"....", "....", "...."}, 0},
		{"single block", []string{"##..", "##..", "...."}, 1},
		{"two separated", []string{"#..#", "#..#", "...."}, 2},
		{"diagonal is connected", []string{"#...", ".#..", "..#."}, 1},
		{"full mask", []string{"####", "####"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, count := LabelComponents(maskFromRows(tt.rows...))
			if count != tt.want {
				t.Errorf("count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestLabelComponentsScanOrder(t *testing.T) {
	// Labels must follow scan order of first encounter, so identical
	// inputs always produce identical numbering.
	m := maskFromRows(
		"..#",
		"...",
		"#..",
	)
	labels, count := LabelComponents(m)
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if labels[2] != 1 {
		t.Errorf("top-right pixel label = %d, want 1", labels[2])
	}
	if labels[6] != 2 {
		t.Errorf("bottom-left pixel label = %d, want 2", labels[6])
	}
}

func TestLabelComponentsLabelsCoverMask(t *testing.T) {
	m := maskFromRows(
		"##.#",
		"##.#",
	)
	labels, _ := LabelComponents(m)
	for i, set := range m.Bits {
		if set && labels[i] == 0 {
			t.Errorf("set pixel %d left unlabeled", i)
		}
		if !set && labels[i] != 0 {
			t.Errorf("background pixel %d labeled %d", i, labels[i])
		}
	}
}
