package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"osonaiAPI/handlers"
	"osonaiAPI/internal/config"
	"osonaiAPI/internal/generation"
	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/render"
	"osonaiAPI/internal/workers"
	"osonaiAPI/middleware"
	"osonaiAPI/services"

	_ "net/http/pprof"
)

var (
	cfg               *config.Config
	sceneManager      *services.SceneManager
	sceneService      *services.SceneService
	exportService     *services.ExportService
	generationService *services.GenerationService
	directFetcher     *imagesource.DirectFetcher
)

func init() {
	cfg = config.Load()

	provider := generation.NewProvider(cfg.Generation.OpenAI)
	fetcher := imagesource.NewFetcher(cfg.Images.RelayURL, cfg.Images.FetchTimeout, cfg.Images.MaxPixels)
	if cfg.Images.RelayURL != "" {
		log.Printf("Fetching export images through relay %s", cfg.Images.RelayURL)
	}
	directFetcher = imagesource.NewDirectFetcher(cfg.Images.FetchTimeout)

	sceneManager = services.NewSceneManager()
	sceneService = services.NewSceneService(sceneManager, cfg.Images.UploadMaxBytes, cfg.Images.MaxPixels)
	exportService = services.NewExportService(sceneManager, render.NewRenderer(fetcher, nil))
	generationService = services.NewGenerationService(provider, cfg.Generation.Timeout, sceneManager)

	middleware.InitPrometheus()
	services.RegisterMetrics()
}

func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize handlers
	h := handlers.Handlers{
		Scenes:     handlers.NewSceneHandler(sceneService, exportService, cfg.Images.UploadMaxBytes),
		Generation: handlers.NewGenerationHandler(generationService, cfg.Generation.Timeout),
		Gestures:   handlers.NewGestureHandler(sceneManager),
		Proxy:      handlers.NewProxyHandler(directFetcher),
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)

	handlers.RegisterGestureRoutes(r, h)

	standardRouter := r.PathPrefix("/").Subrouter()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.CleanupVisitors(ctx, time.Minute, 3*time.Minute)

	standardRouter.Use(limiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.Metrics.User, cfg.Metrics.Pass)(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.Metrics.PprofSecret)(http.DefaultServeMux))

	handlers.RegisterRoutes(standardRouter, h)

	workers.StartSessionSweeper(ctx, sceneManager, cfg.Sessions.IdleTTL, cfg.Sessions.SweepInterval)

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition", "X-Export-Skipped"}),
		gorilllaHandlers.AllowCredentials(),
	)

	// generation requests must be able to finish before the write deadline
	writeTimeout := cfg.Server.WriteTimeout
	if floor := cfg.Generation.Timeout + 5*time.Second; writeTimeout < floor {
		writeTimeout = floor
	}

	server := http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Starting osonai server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
