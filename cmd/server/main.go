/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Mirage settlement server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, MIRAGE_* variables), then apply flags
  2. Initialize SQLite archive
  3. Register an extra edition file, if any
  4. Create API handler and reload archived custom editions
  5. Start the retention scheduler
  6. Configure HTTP router
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port          HTTP server port (default: 8080)
  -db            SQLite database path (default: mirage.db)
                 Use ":memory:" for in-memory database
  -edition       Default edition (default: classic)
  -edition-file  JSON/YAML edition registered at startup
  -retention     Archive age before purge, 0 keeps forever (default: 720h)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the retention scheduler
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/mirage.db"

  # Run with a house edition as default
  ./server -edition-file=house.yaml -edition=house

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mirage-sim/settlement-engine/api"
	"github.com/mirage-sim/settlement-engine/config"
	"github.com/mirage-sim/settlement-engine/edition"
	"github.com/mirage-sim/settlement-engine/factory"
	"github.com/mirage-sim/settlement-engine/observability"
	"github.com/mirage-sim/settlement-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.DefaultEdition, "edition", cfg.DefaultEdition, "Default edition")
	flag.StringVar(&cfg.EditionFile, "edition-file", cfg.EditionFile, "Edition file registered at startup")
	flag.DurationVar(&cfg.Retention, "retention", cfg.Retention, "Archive age before purge (0 keeps forever)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if cfg.EditionFile != "" {
		p, err := factory.LoadEditionFile(cfg.EditionFile)
		if err != nil {
			log.Fatalf("Failed to load edition file %s: %v", cfg.EditionFile, err)
		}
		if err := edition.Register(p); err != nil {
			log.Fatalf("Failed to register edition %q: %v", p.Name, err)
		}
		log.Printf("Registered edition %q from %s", p.Name, cfg.EditionFile)
	}

	// Initialize handler
	handler := api.NewHandler(store, observability.NewMetrics("mirage"))
	handler.Editions = store
	handler.DefaultEdition = cfg.DefaultEdition

	// Load archived custom editions into the registry
	loaded, skipped := handler.LoadEditions(context.Background())
	for _, err := range skipped {
		log.Printf("Warning: Skipped archived edition: %v", err)
	}
	if loaded > 0 {
		log.Printf("Loaded %d archived editions", loaded)
	}
	if _, ok := edition.Lookup(cfg.DefaultEdition); !ok {
		log.Fatalf("Default edition %q is not registered (have %v)", cfg.DefaultEdition, edition.Names())
	}

	// Retention
	retention := api.NewRetentionScheduler(store, handler.Metrics, cfg.Retention)
	retention.CheckInterval = cfg.RetentionEvery
	retention.Start()
	defer retention.Stop()

	// Create router
	router := api.NewRouter(handler, cfg.CORSOrigins)

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (edition %s)", cfg.Port, cfg.DefaultEdition)
		log.Printf("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return
	}

	log.Println("Server stopped")
}
