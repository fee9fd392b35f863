package segment

// LabelComponents assigns 8-connected component labels to a mask.
// Returns a plane of labels (0 = background, components numbered from
// 1) and the component count. Labels are assigned in scan order, which
// keeps the downstream region list deterministic for identical inputs.
func LabelComponents(m *Mask) (labels []int32, count int) {
	labels = make([]int32, len(m.Bits))
	var next int32

	// Iterative flood fill with an explicit stack; recursion would
	// overflow on large scenes with one dominant region.
	stack := make([][2]int, 0, 256)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			idx := y*m.Width + x
			if !m.Bits[idx] || labels[idx] != 0 {
				continue
			}
			next++
			labels[idx] = next
			stack = append(stack[:0], [2]int{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p[0]+dx, p[1]+dy
						if nx < 0 || nx >= m.Width || ny < 0 || ny >= m.Height {
							continue
						}
						nidx := ny*m.Width + nx
						if m.Bits[nidx] && labels[nidx] == 0 {
							labels[nidx] = next
							stack = append(stack, [2]int{nx, ny})
						}
					}
				}
			}
		}
	}
	return labels, int(next)
}
