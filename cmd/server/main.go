// cmd/server/main.go
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

	"github.com/gin-gonic/gin"

	"github.com/sobrazero/sobrazero-backend/internal/cache"
	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/database"
	"github.com/sobrazero/sobrazero-backend/internal/i18n"
	"github.com/sobrazero/sobrazero-backend/internal/router"
	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := database.SeedInitialData(db); err != nil {
		log.Fatal("Failed to seed initial data:", err)
	}

	// Initialize i18n
	if err := i18n.Initialize(); err != nil {
		log.Fatal("Failed to initialize i18n:", err)
	}

	// Optional redis catalog cache
	catalogCache := cache.New(cfg.Redis, 2*time.Minute)
	defer catalogCache.Close()

	// Worker pool for webhook processing
	pool := worker.NewPool(4, 256, 30*time.Second)

	// Background expiry sweeper
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go services.NewSweeperService(db).RunPeriodic(sweepCtx, time.Minute)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(db, cfg, catalogCache, pool)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopSweeper()

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// Drain queued webhook jobs before exiting
	pool.Stop()

	log.Println("Server exited")
}
