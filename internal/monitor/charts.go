package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/geowatch-data/landcover.report/internal/httputil"
	"github.com/geowatch-data/landcover.report/internal/pipeline"
	"github.com/geowatch-data/landcover.report/internal/storage/sqlite"
)

// ChartServer renders quick HTML charts of stored results using
// go-echarts. These are debugging endpoints (no auth) for eyeballing a
// run without a frontend.
type ChartServer struct {
	changes *sqlite.ChangeStore
}

func NewChartServer(changes *sqlite.ChangeStore) *ChartServer {
	return &ChartServer{changes: changes}
}

// Register attaches the chart endpoints to mux.
func (cs *ChartServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("/debug/charts/run", cs.handleRunChart)
	mux.HandleFunc("/debug/charts/periods", cs.handlePeriodChart)
}

// handleRunChart renders a bar chart of total changed area per change
// type for one run. Query params:
//   - run_id (required)
func (cs *ChartServer) handleRunChart(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "run_id is required")
		return
	}
	if cs.changes == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no database attached")
		return
	}

	records, err := cs.changes.ListByRun(runID)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if len(records) == 0 {
		httputil.NotFound(w, "no change records for run")
		return
	}

	areaByType := make(map[string]float64)
	countByType := make(map[string]int)
	var order []string
	for _, rec := range records {
		key := string(rec.Type)
		if _, seen := areaByType[key]; !seen {
			order = append(order, key)
		}
		areaByType[key] += rec.Area
		countByType[key]++
	}

	areas := make([]opts.BarData, 0, len(order))
	counts := make([]opts.BarData, 0, len(order))
	for _, key := range order {
		areas = append(areas, opts.BarData{Value: areaByType[key]})
		counts = append(counts, opts.BarData{Value: countByType[key]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Change Detection Run", Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Changed Area by Type", Subtitle: fmt.Sprintf("run=%s records=%d", runID, len(records))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(order).
		AddSeries("area", areas).
		AddSeries("regions", counts)

	cs.render(w, bar)
}

// handlePeriodChart renders an index time-series line chart from a
// POSTed JSON array of period samples.
func (cs *ChartServer) handlePeriodChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var samples []pipeline.PeriodSample
	if err := json.NewDecoder(r.Body).Decode(&samples); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid samples: %v", err))
		return
	}
	if len(samples) == 0 {
		httputil.BadRequest(w, "at least one sample is required")
		return
	}

	dates := make([]string, 0, len(samples))
	series := map[string][]opts.LineData{
		"ndvi": {}, "ndbi": {}, "bsi": {}, "nbr": {},
	}
	for _, s := range samples {
		dates = append(dates, s.Date)
		series["ndvi"] = append(series["ndvi"], opts.LineData{Value: s.NDVI})
		series["ndbi"] = append(series["ndbi"], opts.LineData{Value: s.NDBI})
		series["bsi"] = append(series["bsi"], opts.LineData{Value: s.BSI})
		series["nbr"] = append(series["nbr"], opts.LineData{Value: s.NBR})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Index Time Series", Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Spectral Index Time Series", Subtitle: fmt.Sprintf("samples=%d", len(samples))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: 1}),
	)
	line.SetXAxis(dates)
	for _, name := range []string{"ndvi", "ndbi", "bsi", "nbr"} {
		line.AddSeries(name, series[name], charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	}

	cs.render(w, line)
}

type chartRenderer interface {
	Render(w io.Writer) error
}

func (cs *ChartServer) render(w http.ResponseWriter, chart chartRenderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
