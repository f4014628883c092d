package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamedocs.dev/interview-wizard/internal/api"
	"gamedocs.dev/interview-wizard/internal/config"
	"gamedocs.dev/interview-wizard/internal/core"
	"gamedocs.dev/interview-wizard/internal/export"
	"gamedocs.dev/interview-wizard/internal/gateway"
	"gamedocs.dev/interview-wizard/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	ctx := context.Background()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Initialize the model gateway
	gemini, err := gateway.New(ctx, config.AppConfig.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize model gateway: %v", err)
	}
	defer gemini.Close()

	// Remote mirroring is optional; without cloud credentials the service
	// still runs, it just skips the bucket upload.
	uploader, err := export.NewUploader(ctx)
	if err != nil {
		log.Printf("Storage uploader unavailable, remote mirroring disabled: %v", err)
		uploader = nil
	} else {
		defer uploader.Close()
	}

	// Initialize services
	interviewService := core.NewInterviewService(gemini)
	sessionService := core.NewSessionService(dbStore, interviewService)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(
		sessionService,
		interviewService,
		dbStore,
		uploader,
		config.AppConfig.TagVocabulary,
		config.AppConfig.ExportDir,
	)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second, // Adjusted for potentially slower LLM handshakes
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received
	log.Println("Shutting down server...")

	// Give active connections time to finish before forcing exit.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
