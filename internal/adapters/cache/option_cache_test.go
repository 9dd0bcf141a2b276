package cache

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

var sampleOptions = []domain.LookupOption{
	{Code: "A-01", QtyOnHand: decimal.RequireFromString("25")},
	{Code: "A-02", QtyOnHand: decimal.RequireFromString("0.5")},
}

func TestMemoryOptionCache(t *testing.T) {
	c := NewMemoryOptionCache()

	if _, ok, err := c.Get(domain.LookupBin, "P-100|MAIN|LOT-7"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%t err=%v", ok, err)
	}

	if err := c.Put(domain.LookupBin, "P-100|MAIN|LOT-7", sampleOptions); err != nil {
		t.Fatalf("put: %v", err)
	}

	opts, ok, err := c.Get(domain.LookupBin, "P-100|MAIN|LOT-7")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%t err=%v", ok, err)
	}
	if len(opts) != 2 || opts[0].Code != "A-01" {
		t.Fatalf("unexpected options: %+v", opts)
	}

	// Same key under a different kind is a distinct entry.
	if _, ok, _ := c.Get(domain.LookupLot, "P-100|MAIN|LOT-7"); ok {
		t.Fatalf("kinds must not share entries")
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func TestSqliteOptionCacheRoundTrip(t *testing.T) {
	c := NewSqliteOptionCache(openTestDB(t))

	if _, ok, err := c.Get(domain.LookupBin, "P-100|MAIN|LOT-7"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%t err=%v", ok, err)
	}

	if err := c.Put(domain.LookupBin, "P-100|MAIN|LOT-7", sampleOptions); err != nil {
		t.Fatalf("put: %v", err)
	}

	opts, ok, err := c.Get(domain.LookupBin, "P-100|MAIN|LOT-7")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%t err=%v", ok, err)
	}
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}
	if !opts[1].QtyOnHand.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("quantity lost in round trip: %s", opts[1].QtyOnHand)
	}
}

func TestSqliteOptionCacheEmptyListIsAHit(t *testing.T) {
	c := NewSqliteOptionCache(openTestDB(t))

	if err := c.Put(domain.LookupWarehouse, "P-404", []domain.LookupOption{}); err != nil {
		t.Fatalf("put: %v", err)
	}

	opts, ok, err := c.Get(domain.LookupWarehouse, "P-404")
	if err != nil || !ok {
		t.Fatalf("an empty cached list is still a hit, got ok=%t err=%v", ok, err)
	}
	if len(opts) != 0 {
		t.Fatalf("expected empty list, got %+v", opts)
	}
}

func TestSqliteOptionCachePutReplaces(t *testing.T) {
	c := NewSqliteOptionCache(openTestDB(t))

	if err := c.Put(domain.LookupLot, "P-100", sampleOptions); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(domain.LookupLot, "P-100", sampleOptions[:1]); err != nil {
		t.Fatalf("replace: %v", err)
	}

	opts, ok, err := c.Get(domain.LookupLot, "P-100")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%t err=%v", ok, err)
	}
	if len(opts) != 1 {
		t.Fatalf("expected replaced entry with 1 option, got %d", len(opts))
	}
}

func TestSqliteOptionCacheNilDB(t *testing.T) {
	c := NewSqliteOptionCache(nil)
	if _, _, err := c.Get(domain.LookupBin, "x"); err == nil {
		t.Fatal("expected error for nil db")
	}
	if err := c.Put(domain.LookupBin, "x", nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}
