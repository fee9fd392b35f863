// Command landcover-server runs the change-detection HTTP service: the
// detection endpoints from api/, plus the debugging chart endpoints
// from internal/monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/geowatch-data/landcover.report/api"
	"github.com/geowatch-data/landcover.report/internal/config"
	"github.com/geowatch-data/landcover.report/internal/db"
	"github.com/geowatch-data/landcover.report/internal/monitor"
	"github.com/geowatch-data/landcover.report/internal/pipeline"
	"github.com/geowatch-data/landcover.report/internal/storage/sqlite"
	"github.com/geowatch-data/landcover.report/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbFile        = flag.String("db", "landcover.db", "SQLite database path")
	configPath    = flag.String("config", "", "Tuning config path (JSON); built-in defaults if empty")
	migrationsDir = flag.String("migrations", "migrations", "Schema migrations directory")
	dataRoot      = flag.String("data-root", "", "Restrict raster band paths to this directory (empty disables the check)")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("landcover-server %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	log.Printf("landcover-server %s (%s)", version.Version, version.GitSHA)

	tuning := config.MustLoadDefaultConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}
	opts := pipeline.OptionsFromTuning(tuning)

	detector, err := pipeline.NewDetector(opts)
	if err != nil {
		log.Fatalf("invalid tuning: %v", err)
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(detector, opts, database)
	if *dataRoot != "" {
		srv.SetDataRoot(*dataRoot)
	}

	mux := http.NewServeMux()
	mux.Handle("/", srv.ServeMux())
	monitor.NewChartServer(sqlite.NewChangeStore(database.DB)).Register(mux)

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	go func() {
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
