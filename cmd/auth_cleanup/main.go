package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"memberhub/internal/database"
	"memberhub/internal/repository"
)

// One-shot counterpart of the in-process daily sweep, for running from cron
// or by hand.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	refreshRepo := repository.NewRefreshTokenRepository(db)
	deleted, err := refreshRepo.DeleteExpiredBefore(context.Background(), time.Now())
	if err != nil {
		log.Fatalf("cleanup refresh_tokens failed: %v", err)
	}

	log.Printf("auth cleanup completed: refresh_tokens=%d", deleted)
}
