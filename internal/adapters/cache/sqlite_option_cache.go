package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

// SQLite backed option cache so warm lookups survive restarts. Option
// lists are stored as one JSON document per (kind, key) so an empty
// fetched list is still a cache hit, distinct from a miss.
type SqliteOptionCache struct {
	DB *sql.DB
}

func NewSqliteOptionCache(db *sql.DB) *SqliteOptionCache {
	return &SqliteOptionCache{DB: db}
}

// InitSchema creates the cache table when missing.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS option_cache (
        kind     TEXT NOT NULL,
        key      TEXT NOT NULL,
        options  TEXT NOT NULL,
        PRIMARY KEY (kind, key)
    );
	`)
	if err != nil {
		return fmt.Errorf("init option cache schema: %w", err)
	}
	return nil
}

// Clear empties the cache.
func Clear(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM option_cache;`); err != nil {
		return fmt.Errorf("clear option cache: %w", err)
	}
	return nil
}

func (s *SqliteOptionCache) Get(kind domain.LookupKind, key string) ([]domain.LookupOption, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("option cache: db is nil")
	}

	var doc string
	err := s.DB.QueryRow(`
	SELECT options
    FROM option_cache
    WHERE kind = ? AND key = ?;
	`, string(kind), key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get option cache kind=%s key=%q: %w", kind, key, err)
	}

	var opts []domain.LookupOption
	if err := json.Unmarshal([]byte(doc), &opts); err != nil {
		return nil, false, fmt.Errorf("get option cache kind=%s key=%q: decode: %w", kind, key, err)
	}
	return opts, true, nil
}

func (s *SqliteOptionCache) Put(kind domain.LookupKind, key string, opts []domain.LookupOption) error {
	if s.DB == nil {
		return errors.New("option cache: db is nil")
	}

	doc, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("insert option cache kind=%s key=%q: encode: %w", kind, key, err)
	}

	_, err = s.DB.Exec(`
	INSERT OR REPLACE INTO option_cache (
        kind,
        key,
        options
    )
    VALUES (?, ?, ?);
	`, string(kind), key, string(doc))
	if err != nil {
		return fmt.Errorf("insert option cache kind=%s key=%q: %w", kind, key, err)
	}
	return nil
}
