// Command detect runs one change-detection comparison from the command
// line and prints the resulting records as JSON. Useful for scripting
// and for inspecting a scene pair without the server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/geowatch-data/landcover.report/internal/config"
	"github.com/geowatch-data/landcover.report/internal/monitor"
	"github.com/geowatch-data/landcover.report/internal/pipeline"
	"github.com/geowatch-data/landcover.report/internal/raster"
	"github.com/geowatch-data/landcover.report/internal/security"
	"github.com/geowatch-data/landcover.report/internal/segment"
	"github.com/geowatch-data/landcover.report/internal/spectral"
)

var (
	beforePaths = flag.String("before", "", "Comma-separated band TIFF paths for the earlier scene")
	afterPaths  = flag.String("after", "", "Comma-separated band TIFF paths for the later scene")
	configPath  = flag.String("config", "", "Tuning config path (JSON); built-in defaults if empty")
	geoOrigin   = flag.String("geo", "", "Geo transform as 'originX,originY,pixelW,pixelH' (optional)")
	plotsDir    = flag.String("plots", "", "Write diagnostic plots to this directory")
	pretty      = flag.Bool("pretty", true, "Indent JSON output")
)

func parsePathList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseGeo(s string) (*raster.GeoTransform, error) {
	if s == "" {
		return nil, nil
	}
	var originX, originY, pw, ph float64
	n, err := fmt.Sscanf(s, "%f,%f,%f,%f", &originX, &originY, &pw, &ph)
	if err != nil || n != 4 {
		return nil, fmt.Errorf("geo must be 'originX,originY,pixelW,pixelH', got %q", s)
	}
	return &raster.GeoTransform{
		OriginX:     originX,
		OriginY:     originY,
		PixelWidth:  pw,
		PixelHeight: ph,
	}, nil
}

// writePlots reloads the scene pair and renders index profiles and the
// magnitude histogram. Loading twice keeps the plotting path out of the
// detector entirely.
func writePlots(before, after []string, geo *raster.GeoTransform, threshold float64, dir string) error {
	sceneBefore, err := raster.LoadScene(&raster.FileSource{Paths: before, Geo: geo})
	if err != nil {
		return err
	}
	sceneAfter, err := raster.LoadScene(&raster.FileSource{Paths: after, Geo: geo})
	if err != nil {
		return err
	}
	sceneBefore, sceneAfter = raster.Reconcile(sceneBefore, sceneAfter)

	idxBefore := spectral.ComputeIndexSet(sceneBefore)
	idxAfter := spectral.ComputeIndexSet(sceneAfter)

	var rp monitor.RunPlotter
	if err := rp.Start(dir); err != nil {
		return err
	}
	if err := rp.PlotIndexProfiles(idxBefore, idxAfter); err != nil {
		return err
	}
	return rp.PlotMagnitudeHistogram(segment.Magnitude(idxBefore, idxAfter), threshold)
}

func main() {
	flag.Parse()

	before := parsePathList(*beforePaths)
	after := parsePathList(*afterPaths)
	if len(before) == 0 || len(after) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	geo, err := parseGeo(*geoOrigin)
	if err != nil {
		log.Fatal(err)
	}

	tuning := config.MustLoadDefaultConfig()
	if *configPath != "" {
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	detector, err := pipeline.NewDetector(pipeline.OptionsFromTuning(tuning))
	if err != nil {
		log.Fatalf("invalid tuning: %v", err)
	}

	records, err := detector.DetectChanges(
		&raster.FileSource{Paths: before, Geo: geo},
		&raster.FileSource{Paths: after, Geo: geo},
	)
	if err != nil {
		log.Fatalf("detection failed: %v", err)
	}

	if *plotsDir != "" {
		if err := security.ValidateExportPath(*plotsDir); err != nil {
			log.Fatalf("plots dir: %v", err)
		}
		if err := writePlots(before, after, geo, tuning.GetThreshold(), *plotsDir); err != nil {
			log.Printf("plots: %v", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		log.Fatalf("encode records: %v", err)
	}
}
