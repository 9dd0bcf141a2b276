package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/adapters/backend"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/adapters/cache"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/api"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
)

// main is the application composition root.
// It wires the ERP gateway and option cache behind ports and starts the
// HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := getEnv("PORT", "8080")
	cachePath := getEnv("CACHE_DB_PATH", "data/options.db")
	company := getEnv("ERP_COMPANY", "SUB000")

	baseURL := os.Getenv("ERP_BASE_URL")
	if strings.TrimSpace(baseURL) == "" {
		log.Fatal("ERP_BASE_URL is required")
	}
	apiKey := os.Getenv("ERP_API_KEY")
	if strings.TrimSpace(apiKey) == "" {
		log.Fatal("ERP_API_KEY is required")
	}

	client, err := backend.NewClient(baseURL, apiKey, company)
	if err != nil {
		log.Fatal(err)
	}
	gw := backend.NewErpGateway(client)

	// Option lookups are cached in sqlite so warm sessions survive
	// restarts; without a database the cache degrades to in-memory.
	var optionCache ports.OptionCache
	if db, err := openDB(cachePath); err != nil {
		log.Printf("option cache db unavailable, using in-memory cache: %v", err)
		optionCache = cache.NewMemoryOptionCache()
	} else {
		defer db.Close()
		if err := cache.InitSchema(db); err != nil {
			log.Fatal(err)
		}
		optionCache = cache.NewSqliteOptionCache(db)
	}

	router := api.NewRouter(gw, optionCache)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
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
