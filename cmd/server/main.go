/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave tracker server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env / environment), apply flag overrides
  2. Open SQLite store and migrate the schema
  3. Bootstrap the default admin account
  4. Configure HTTP router and start the status scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides APP_PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the status scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/ausencias.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment variables
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pliniou/Project-Ausencias/api"
	"github.com/pliniou/Project-Ausencias/auth"
	"github.com/pliniou/Project-Ausencias/config"
	"github.com/pliniou/Project-Ausencias/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the environment.
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DB.Path, "SQLite database path")
	flag.Parse()

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	authService := auth.NewService(store, cfg.JWT.Secret, cfg.JWT.Expiration)
	if err := authService.Bootstrap(context.Background(), cfg.Admin.Password); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	handler := api.NewHandler(store, authService)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.CORS.Origins,
		LogLevel:    api.ParseLogLevel(cfg.App.LogLevel),
		AppEnv:      cfg.App.Env,
	})

	scheduler := api.NewStatusScheduler(store, slog.Default())
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
