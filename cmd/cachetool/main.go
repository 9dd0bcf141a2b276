package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/adapters/cache"
)

// cachetool initializes or clears the lookup-option cache database.
// Usage: cachetool [init|clear]
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cmd := "init"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	dbPath := getEnv("CACHE_DB_PATH", "data/options.db")
	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	switch cmd {
	case "init":
		log.Println("Initializing option cache schema...")
		if err := cache.InitSchema(db); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")
	case "clear":
		if err := cache.InitSchema(db); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Clearing option cache...")
		if err := cache.Clear(db); err != nil {
			log.Fatalf("clear failed: %v", err)
		}
		log.Println("Cache cleared.")
	default:
		log.Fatalf("unknown command %q (want init or clear)", cmd)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}
