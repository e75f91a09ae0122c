package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/slide_render/internal/convert"
	"github.com/Vovarama1992/slide_render/internal/delivery"
	"github.com/Vovarama1992/slide_render/internal/error_notificator"
	"github.com/Vovarama1992/slide_render/internal/infra"
	"github.com/Vovarama1992/slide_render/internal/ports"
	"github.com/Vovarama1992/slide_render/internal/retention"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / CONFIG INIT
	// =========================================================================

	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg, err := convert.LoadConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	var store ports.ArtifactStore
	staticDir := ""

	switch os.Getenv("ARTIFACT_STORE") {
	case "s3":
		store, err = infra.NewS3Store()
		if err != nil {
			log.Fatalf("failed to init s3 store: %v", err)
		}
	default:
		staticDir = os.Getenv("STATIC_DIR")
		if staticDir == "" {
			staticDir = "./static"
		}
		localStore, err := infra.NewLocalStore(staticDir, os.Getenv("PUBLIC_BASE_URL"))
		if err != nil {
			log.Fatalf("failed to init local store: %v", err)
		}
		store = localStore
	}

	runner := infra.NewExecRunner()
	workspaces := infra.NewTempWorkspaceManager(os.Getenv("WORKSPACE_ROOT"))

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var notify convert.Notifier
	errInfra, err := error_notificator.NewInfraFromEnv()
	if err != nil {
		log.Fatalf("failed to init error notificator: %v", err)
	}
	if errInfra != nil {
		notify = error_notificator.NewService(errInfra)
	}

	// =========================================================================
	// RETENTION
	// =========================================================================

	scheduler := retention.NewScheduler(store, zl)
	defer scheduler.Close()

	if removed, err := scheduler.SweepOrphans(context.Background(), cfg.ArtifactTTL); err != nil {
		log.Printf("[sweep] failed: %v", err)
	} else if removed > 0 {
		log.Printf("[sweep] removed %d orphaned artifacts", removed)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	normalizer := convert.NewSofficeNormalizer(runner, cfg)
	rasterizer := convert.NewMagickRasterizer(runner, cfg)

	convService := convert.NewService(cfg, workspaces, normalizer, rasterizer, store, scheduler, notify, zl)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	convertHandler := delivery.NewConvertHandler(convService, store, cfg.ArtifactTTL, zl)
	delivery.RegisterRoutes(r, convertHandler, staticDir)

	// =========================================================================
	// START SERVER
	// =========================================================================

	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		scheduler.Close()
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at :" + port,
		Service: "slide_render",
	})

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
