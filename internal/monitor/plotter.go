// Package monitor provides diagnostic output for detection runs: PNG
// plots of index profiles and magnitude distributions, and HTML charts
// for stored results. None of it sits on the detection path.
package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/geowatch-data/landcover.report/internal/raster"
	"github.com/geowatch-data/landcover.report/internal/spectral"
)

// indexColors keeps line colours stable across plots so before/after
// pairs of the same index are visually comparable.
var indexColors = map[spectral.Index]color.Color{
	spectral.IndexNDVI: color.RGBA{R: 46, G: 139, B: 87, A: 255},
	spectral.IndexNDWI: color.RGBA{R: 30, G: 144, B: 255, A: 255},
	spectral.IndexNDBI: color.RGBA{R: 178, G: 34, B: 34, A: 255},
	spectral.IndexBSI:  color.RGBA{R: 205, G: 133, B: 63, A: 255},
	spectral.IndexNBR:  color.RGBA{R: 105, G: 105, B: 105, A: 255},
}

// RunPlotter writes diagnostic plots for one detection run to a
// directory. Zero value is disabled; call Start before use.
type RunPlotter struct {
	enabled   bool
	outputDir string
}

// Start creates outputDir and enables plotting.
func (rp *RunPlotter) Start(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	rp.outputDir = outputDir
	rp.enabled = true
	return nil
}

// IsEnabled reports whether plots will be written.
func (rp *RunPlotter) IsEnabled() bool { return rp.enabled }

// PlotIndexProfiles plots the per-row mean of each index plane for the
// before and after scenes on one chart per index. Row profiles make
// broad land-cover shifts visible at a glance without a full raster
// renderer.
func (rp *RunPlotter) PlotIndexProfiles(before, after *spectral.IndexSet) error {
	if !rp.enabled {
		return nil
	}

	pairs := []struct {
		name          spectral.Index
		before, after *raster.Plane
	}{
		{spectral.IndexNDVI, before.NDVI, after.NDVI},
		{spectral.IndexNDWI, before.NDWI, after.NDWI},
		{spectral.IndexNDBI, before.NDBI, after.NDBI},
		{spectral.IndexBSI, before.BSI, after.BSI},
		{spectral.IndexNBR, before.NBR, after.NBR},
	}

	for _, pair := range pairs {
		if pair.before == nil || pair.after == nil {
			continue
		}
		if err := rp.plotProfile(pair.name, pair.before, pair.after); err != nil {
			return fmt.Errorf("%s profile: %w", pair.name, err)
		}
	}
	return nil
}

func (rp *RunPlotter) plotProfile(name spectral.Index, before, after *raster.Plane) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Row Mean Profile", name)
	p.X.Label.Text = "Row"
	p.Y.Label.Text = "Index Value"
	p.Y.Min = -1
	p.Y.Max = 1

	beforeLine, err := plotter.NewLine(rowMeans(before))
	if err != nil {
		return err
	}
	beforeLine.Color = indexColors[name]
	beforeLine.Width = vg.Points(1)
	beforeLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	afterLine, err := plotter.NewLine(rowMeans(after))
	if err != nil {
		return err
	}
	afterLine.Color = indexColors[name]
	afterLine.Width = vg.Points(1)

	p.Add(beforeLine, afterLine)
	p.Legend.Add("before", beforeLine)
	p.Legend.Add("after", afterLine)
	p.Legend.Top = true

	file := filepath.Join(rp.outputDir, fmt.Sprintf("profile_%s.png", name))
	if err := p.Save(10*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("save profile plot: %w", err)
	}
	return nil
}

// PlotMagnitudeHistogram plots the distribution of change magnitudes
// with the detection threshold marked, showing how much of the scene
// sits near the cut.
func (rp *RunPlotter) PlotMagnitudeHistogram(magnitude *raster.Plane, threshold float64) error {
	if !rp.enabled {
		return nil
	}

	vals := make(plotter.Values, 0, len(magnitude.Pix))
	for _, v := range magnitude.Pix {
		vals = append(vals, float64(v))
	}

	p := plot.New()
	p.Title.Text = "Change Magnitude Distribution"
	p.X.Label.Text = "Magnitude"
	p.Y.Label.Text = "Pixels"

	hist, err := plotter.NewHist(vals, 64)
	if err != nil {
		return err
	}
	p.Add(hist)

	_, _, _, ymax := hist.DataRange()
	cut, err := plotter.NewLine(plotter.XYs{
		{X: threshold, Y: 0},
		{X: threshold, Y: ymax},
	})
	if err != nil {
		return err
	}
	cut.Color = color.RGBA{R: 220, A: 255}
	cut.Width = vg.Points(1.5)
	p.Add(cut)
	p.Legend.Add(fmt.Sprintf("threshold %.2f", threshold), cut)
	p.Legend.Top = true

	file := filepath.Join(rp.outputDir, "magnitude_hist.png")
	if err := p.Save(10*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("save magnitude histogram: %w", err)
	}
	return nil
}

// rowMeans reduces a plane to one (row, mean) point per row.
func rowMeans(p *raster.Plane) plotter.XYs {
	pts := make(plotter.XYs, 0, p.Height)
	for y := 0; y < p.Height; y++ {
		row := p.Pix[y*p.Width : (y+1)*p.Width]
		sum := 0.0
		for _, v := range row {
			sum += float64(v)
		}
		pts = append(pts, plotter.XY{X: float64(y), Y: sum / float64(p.Width)})
	}
	return pts
}
