// Package api exposes the change-detection pipeline over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/geowatch-data/landcover.report/internal/classify"
	"github.com/geowatch-data/landcover.report/internal/db"
	"github.com/geowatch-data/landcover.report/internal/geometry"
	"github.com/geowatch-data/landcover.report/internal/httputil"
	"github.com/geowatch-data/landcover.report/internal/pipeline"
	"github.com/geowatch-data/landcover.report/internal/raster"
	"github.com/geowatch-data/landcover.report/internal/security"
	"github.com/geowatch-data/landcover.report/internal/storage/sqlite"
	"github.com/geowatch-data/landcover.report/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	detector *pipeline.Detector
	opts     pipeline.Options
	db       *db.DB
	runs     *sqlite.RunStore
	changes  *sqlite.ChangeStore
	dataRoot string
}

// NewServer wires a detector and the stores backed by database. The
// database may be nil, in which case detection results are returned but
// not persisted and the listing endpoints report an error.
func NewServer(detector *pipeline.Detector, opts pipeline.Options, database *db.DB) *Server {
	s := &Server{
		detector: detector,
		opts:     opts,
		db:       database,
	}
	if database != nil {
		s.runs = sqlite.NewRunStore(database.DB)
		s.changes = sqlite.NewChangeStore(database.DB)
	}
	return s
}

// SetDataRoot restricts raster band paths in detect requests to dir.
// Requests naming files outside it are rejected.
func (s *Server) SetDataRoot(dir string) {
	s.dataRoot = dir
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/detect", s.detectHandler)
	mux.HandleFunc("/api/periods/compare", s.comparePeriodsHandler)
	mux.HandleFunc("/api/changes", s.listChangesHandler)
	mux.HandleFunc("/api/runs", s.listRunsHandler)
	mux.HandleFunc("/healthz", s.healthHandler)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	httputil.WriteJSON(w, status, v)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	httputil.WriteJSONError(w, status, msg)
}

// geoTransformRequest mirrors raster.GeoTransform for request payloads.
type geoTransformRequest struct {
	OriginX     float64 `json:"origin_x"`
	OriginY     float64 `json:"origin_y"`
	PixelWidth  float64 `json:"pixel_width"`
	PixelHeight float64 `json:"pixel_height"`
	RotationX   float64 `json:"rotation_x"`
	RotationY   float64 `json:"rotation_y"`
	CRS         string  `json:"crs,omitempty"`
}

func (g *geoTransformRequest) toGeoTransform() *raster.GeoTransform {
	if g == nil {
		return nil
	}
	return &raster.GeoTransform{
		OriginX:     g.OriginX,
		OriginY:     g.OriginY,
		PixelWidth:  g.PixelWidth,
		PixelHeight: g.PixelHeight,
		RotationX:   g.RotationX,
		RotationY:   g.RotationY,
		CRS:         g.CRS,
	}
}

type detectRequest struct {
	Label     string               `json:"label,omitempty"`
	Before    []string             `json:"before"`
	After     []string             `json:"after"`
	BeforeGeo *geoTransformRequest `json:"before_geo,omitempty"`
	AfterGeo  *geoTransformRequest `json:"after_geo,omitempty"`
}

type detectResponse struct {
	RunID   string                   `json:"run_id,omitempty"`
	Count   int                      `json:"count"`
	Records []*geometry.ChangeRecord `json:"records"`
}

// detectHandler runs the full pipeline on a before/after pair of raster
// files and persists the outcome when a database is attached.
func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if len(req.Before) == 0 || len(req.After) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "before and after band paths are required")
		return
	}
	if s.dataRoot != "" {
		for _, path := range append(append([]string{}, req.Before...), req.After...) {
			if err := security.ValidatePathWithinDirectory(path, s.dataRoot); err != nil {
				s.writeJSONError(w, http.StatusForbidden, fmt.Sprintf("band path rejected: %v", err))
				return
			}
		}
	}

	before := &raster.FileSource{Paths: req.Before, Geo: req.BeforeGeo.toGeoTransform()}
	after := &raster.FileSource{Paths: req.After, Geo: req.AfterGeo.toGeoTransform()}

	records, err := s.detector.DetectChanges(before, after)
	if err != nil {
		s.writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := detectResponse{Count: len(records), Records: records}
	if resp.Records == nil {
		resp.Records = []*geometry.ChangeRecord{}
	}

	if s.runs != nil {
		run := &sqlite.AnalysisRun{
			Label:        req.Label,
			BeforeSource: before.Describe(),
			AfterSource:  after.Describe(),
			Threshold:    s.opts.Threshold,
			MinArea:      s.opts.MinArea,
			RecordCount:  len(records),
		}
		if err := s.runs.Insert(run); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("persist run: %v", err))
			return
		}
		if err := s.changes.InsertRecords(run.RunID, records); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("persist records: %v", err))
			return
		}
		resp.RunID = run.RunID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type comparePeriodsRequest struct {
	ROI     string                  `json:"roi,omitempty"`
	Start   *pipeline.PeriodSummary `json:"start,omitempty"`
	End     *pipeline.PeriodSummary `json:"end,omitempty"`
	Samples []pipeline.PeriodSample `json:"samples,omitempty"`
}

// comparePeriodsHandler classifies aggregate mean-index deltas, either
// from an explicit start/end pair or from a dated sample series.
func (s *Server) comparePeriodsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req comparePeriodsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	switch {
	case len(req.Samples) > 0:
		cmp, err := pipeline.CompareSeries(req.ROI, req.Samples)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, cmp)
	case req.Start != nil && req.End != nil:
		cmp := pipeline.ComparePeriods(req.ROI, *req.Start, *req.End)
		s.writeJSON(w, http.StatusOK, cmp)
	default:
		s.writeJSONError(w, http.StatusBadRequest, "either samples or start and end summaries are required")
	}
}

// listChangesHandler returns stored change records, filtered by run_id
// or by change type.
func (s *Server) listChangesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.changes == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no database attached")
		return
	}

	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	var (
		changes []*sqlite.StoredChange
		err     error
	)
	switch {
	case q.Get("run_id") != "":
		changes, err = s.changes.ListByRun(q.Get("run_id"))
	case q.Get("type") != "":
		changes, err = s.changes.ListByType(classify.ChangeType(q.Get("type")), limit)
	default:
		s.writeJSONError(w, http.StatusBadRequest, "run_id or type query parameter is required")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if changes == nil {
		changes = []*sqlite.StoredChange{}
	}
	s.writeJSON(w, http.StatusOK, changes)
}

func (s *Server) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.runs == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no database attached")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.runs.List(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*sqlite.AnalysisRun{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "version": version.Version}
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded", "db": err.Error(),
			})
			return
		}
		status["db"] = "ok"
	}
	s.writeJSON(w, http.StatusOK, status)
}
