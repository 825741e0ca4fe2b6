package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"asset-explorer/internal/cache"
	"asset-explorer/internal/export"
	"asset-explorer/internal/handlers"
	"asset-explorer/internal/logging"
	"asset-explorer/internal/middleware"
	"asset-explorer/internal/scan"
	"asset-explorer/internal/startup"
	"asset-explorer/internal/transcoder"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Initialize snapshot cache
	cacheStart := time.Now()
	store, err := cache.NewStore(config.CacheDir, cache.Options{
		MaxBytes:   config.CacheMaxBytes,
		MaxEntries: config.CacheMaxEntries,
		MaxAge:     config.CacheMaxAge,
	})
	if err != nil {
		logging.Fatal("Failed to initialize snapshot cache: %v", err)
	}
	startup.LogCacheInit(config.CacheDir, time.Since(cacheStart))

	// Initialize transcoder; conversion stays disabled if ffmpeg is
	// unavailable.
	trans, err := transcoder.New(config.FFmpegPath)
	if err != nil {
		startup.LogTranscoderInit(false, err.Error())
	} else {
		startup.LogTranscoderInit(true, config.FFmpegPath)
	}

	// Initialize managers
	scans := scan.NewManager(store, nil, startup.Version)
	exports := export.NewManager(trans, nil, config.TempDir)

	// Setup router
	h := handlers.New(scans, exports, config)
	router := mux.NewRouter()
	h.Register(router)
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply compression middleware
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics are served on their own port so the API surface can be
	// exposed without them.
	if config.MetricsEnabled {
		go serveMetrics(config.MetricsPort)
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, exports, trans)

	// Start server
	startup.LogServerStarted(config.Port, config.MetricsPort, config.MetricsEnabled, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func serveMetrics(port string) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, metricsMux); err != nil {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, exports *export.Manager, trans *transcoder.Transcoder) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trans.Cleanup()
	startup.LogShutdownStepComplete("Transcoder cleanup complete")

	exports.CleanupTemp()
	startup.LogShutdownStepComplete("Temp directories removed")

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
