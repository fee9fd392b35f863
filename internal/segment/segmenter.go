package segment

import (
	"sort"

	"github.com/geowatch-data/landcover.report/internal/spectral"
)

// Region is one connected component of the cleaned change mask, with
// its per-region spectral aggregates attached.
type Region struct {
	PixelArea float64
	Centroid  [2]float64   // pixel coordinates
	Boundary  [][2]float64 // ordered pixel boundary, not closed
	PixelIdxs []int        // flat indices into the reconciled planes

	// Mean index values over the region's pixels, keyed by index name.
	// Only indices computable from the available bands appear.
	MeanBefore map[spectral.Index]float64
	MeanAfter  map[spectral.Index]float64
}

// Deltas returns after-minus-before mean deltas per index.
func (r *Region) Deltas() map[spectral.Index]float64 {
	out := make(map[spectral.Index]float64, len(r.MeanAfter))
	for k, after := range r.MeanAfter {
		out[k] = after - r.MeanBefore[k]
	}
	return out
}

// Segmenter extracts change regions from a pair of index sets.
// Threshold is the magnitude cut in (0, 1]; MinArea is the minimum
// component size in pixels — the sole region filter.
type Segmenter struct {
	Threshold float64
	MinArea   int
}

// Segment builds the change mask, denoises it, and extracts regions of
// at least MinArea pixels. The returned regions are sorted by centroid
// (y, then x) so identical inputs always produce identical ordering.
// The cleaned mask is returned alongside for diagnostics.
func (s *Segmenter) Segment(before, after *spectral.IndexSet) ([]*Region, *Mask) {
	mag := Magnitude(before, after)
	mask := Denoise(ThresholdMask(mag, s.Threshold))

	labels, count := LabelComponents(mask)
	if count == 0 {
		return nil, mask
	}

	// Gather pixel indices per label in one pass.
	pixels := make([][]int, count+1)
	for idx, lbl := range labels {
		if lbl != 0 {
			pixels[lbl] = append(pixels[lbl], idx)
		}
	}

	var regions []*Region
	for lbl := int32(1); lbl <= int32(count); lbl++ {
		idxs := pixels[lbl]
		if len(idxs) < s.MinArea {
			continue
		}
		m := ComputeMoments(idxs, mask.Width)
		cx, cy, ok := m.Centroid()
		if !ok {
			// Degenerate component, skip silently.
			continue
		}
		r := &Region{
			PixelArea:  m.M00,
			Centroid:   [2]float64{cx, cy},
			Boundary:   TraceBoundary(labels, mask.Width, mask.Height, lbl),
			PixelIdxs:  idxs,
			MeanBefore: regionMeans(before, idxs),
			MeanAfter:  regionMeans(after, idxs),
		}
		regions = append(regions, r)
	}

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Centroid[1] != regions[j].Centroid[1] {
			return regions[i].Centroid[1] < regions[j].Centroid[1]
		}
		return regions[i].Centroid[0] < regions[j].Centroid[0]
	})
	return regions, mask
}

func regionMeans(set *spectral.IndexSet, idxs []int) map[spectral.Index]float64 {
	means := map[spectral.Index]float64{
		spectral.IndexNDVI: spectral.MeanAt(set.NDVI, idxs),
		spectral.IndexNDWI: spectral.MeanAt(set.NDWI, idxs),
	}
	if set.NDBI != nil {
		means[spectral.IndexNDBI] = spectral.MeanAt(set.NDBI, idxs)
	}
	if set.BSI != nil {
		means[spectral.IndexBSI] = spectral.MeanAt(set.BSI, idxs)
	}
	if set.NBR != nil {
		means[spectral.IndexNBR] = spectral.MeanAt(set.NBR, idxs)
	}
	return means
}
