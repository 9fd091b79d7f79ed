package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"fleetguard-backend/config"
	"fleetguard-backend/internal/ai"
	"fleetguard-backend/internal/api"
	"fleetguard-backend/internal/db"
	"fleetguard-backend/internal/handoff"
	"fleetguard-backend/internal/notification"
	"fleetguard-backend/internal/severity"
	"fleetguard-backend/internal/shift"
	"fleetguard-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "fleetguard ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Classifier and summarizer share one collaborator. Without an API key
	// the service still runs; severity scoring degrades to its fallbacks.
	var classifier severity.DamageClassifier = ai.Unavailable{}
	var summarizer severity.DisputeSummarizer = ai.Unavailable{}
	if cfg.AI.APIKey != "" {
		gemini, err := ai.NewGemini(ctx, &cfg.AI)
		if err != nil {
			logger.Fatalf("failed to initialize AI collaborator: %v", err)
		}
		classifier, summarizer = gemini, gemini
		logger.Printf("AI collaborator initialized (model %s)", cfg.AI.Model)
	} else {
		logger.Println("Warning: no AI API key configured; damage scoring will use fallbacks")
	}

	aggregator := severity.NewAggregator(classifier, summarizer)
	notifier := notification.NewNotifier(appStore, &webpushOptions)
	shiftSvc := shift.NewService(appStore, aggregator, notifier)
	resolver := handoff.NewResolver(appStore)

	router := api.NewRouter(&cfg.Server, appStore, shiftSvc, resolver, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
