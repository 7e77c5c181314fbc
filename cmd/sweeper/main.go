// cmd/sweeper/main.go
//
// One-shot expiry pass over pending reservations, meant for cron. The
// server runs the same sweep on a ticker; both can overlap safely.
package main

import (
	"context"
	"log"
	"time"

	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/database"
	"github.com/sobrazero/sobrazero-backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := services.NewSweeperService(db).Sweep(ctx)
	if err != nil {
		log.Fatal("Sweep failed:", err)
	}

	log.Printf("Sweep done: scanned=%d expired=%d skipped=%d errored=%d",
		summary.Scanned, summary.Expired, summary.AlreadyOK, summary.Errored)
}
