package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dualcam/syncview/internal/api"
	"github.com/dualcam/syncview/internal/config"
	"github.com/dualcam/syncview/internal/httputil"
	"github.com/dualcam/syncview/internal/timeutil"
	"github.com/dualcam/syncview/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	configPath    = flag.String("config", "", "Path to JSON config file")
	consensusFlag = flag.String("consensus", "", "Consensus endpoint URL (overrides config)")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *consensusFlag != "" {
		cfg.ConsensusURL = consensusFlag
	}

	// The consensus oracle's requests ride on a short timeout; a stale hint
	// is more useful than a late one.
	var client httputil.HTTPClient
	if cfg.GetConsensusURL() != "" {
		client = httputil.NewStandardClient(&http.Client{Timeout: 2 * time.Second})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer := api.NewServer(cfg, client, timeutil.RealClock{})
	defer apiServer.Close()

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(apiServer.ServeMux()),
	}

	// Start server in a goroutine so it doesn't block
	go func() {
		log.Printf("syncview %s listening on %s", version.String(), *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	// Create a shutdown context with a timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Printf("Graceful shutdown complete")
}
