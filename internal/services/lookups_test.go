package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/adapters/backend"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/adapters/cache"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/records"
)

func seedWarehouse(gw *backend.MockGateway, part, code, desc string) {
	gw.SeedLookupRow(records.WarehouseTable, map[string]any{
		"PartNum": part, "WarehouseCode": code, "Description": desc,
	})
}

func seedBin(gw *backend.MockGateway, part, wh, lot, bin, qtyOnHand string) {
	gw.SeedLookupRow(records.BinTable, map[string]any{
		"PartNum": part, "WarehouseCode": wh, "LotNum": lot,
		"BinNum": bin, "QtyOnHand": qtyOnHand,
	})
}

func TestWarehouseOptionsCacheHitSkipsGateway(t *testing.T) {
	gw := backend.NewMockGateway()
	seedWarehouse(gw, "P-100", "MAIN", "Main warehouse")

	lk := &Lookups{Gateway: gw, Cache: cache.NewMemoryOptionCache()}
	ctx := context.Background()

	first := lk.WarehouseOptions(ctx, "P-100")
	require.Len(t, first, 1)
	assert.Equal(t, "MAIN", first[0].Code)
	assert.Equal(t, 1, gw.CallsMatching("lookup "+records.WarehouseTable))

	second := lk.WarehouseOptions(ctx, "P-100")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gw.CallsMatching("lookup "+records.WarehouseTable),
		"second fetch should be served from cache")
}

func TestLookupsDegradeToEmptyOnFailure(t *testing.T) {
	gw := backend.NewMockGateway()
	gw.FailLookup[records.WarehouseTable] = &domain.TransportError{Status: 502, Message: "bad gateway"}

	lk := &Lookups{Gateway: gw}
	opts := lk.WarehouseOptions(context.Background(), "P-100")

	assert.NotNil(t, opts)
	assert.Empty(t, opts)
}

func TestEmptyResultsAreNotCached(t *testing.T) {
	gw := backend.NewMockGateway()
	lk := &Lookups{Gateway: gw, Cache: cache.NewMemoryOptionCache()}
	ctx := context.Background()

	require.Empty(t, lk.BinOptions(ctx, "P-100", "MAIN", "LOT-7", ""))

	// Stock shows up mid-session; the earlier empty answer must not
	// shadow it.
	seedBin(gw, "P-100", "MAIN", "LOT-7", "A-01", "25")
	opts := lk.BinOptions(ctx, "P-100", "MAIN", "LOT-7", "")
	require.Len(t, opts, 1)
	assert.Equal(t, "A-01", opts[0].Code)
	assert.Equal(t, 2, gw.CallsMatching("lookup "+records.BinTable))
}

func TestBinOptionsSynthesizeCurrent(t *testing.T) {
	gw := backend.NewMockGateway()
	seedBin(gw, "P-100", "MAIN", "LOT-7", "A-01", "25")

	lk := &Lookups{Gateway: gw}
	opts := lk.BinOptions(context.Background(), "P-100", "MAIN", "LOT-7", "OLD-BIN")

	require.Len(t, opts, 2)
	assert.Equal(t, "A-01", opts[0].Code)
	assert.Equal(t, "25", opts[0].QtyOnHand.String())

	cur := opts[1]
	assert.Equal(t, "OLD-BIN", cur.Code)
	assert.Equal(t, "(Current)", cur.Desc)
	assert.True(t, cur.Current)
	assert.True(t, cur.QtyOnHand.IsZero())
}

func TestBinOptionsCurrentNotDuplicated(t *testing.T) {
	gw := backend.NewMockGateway()
	seedBin(gw, "P-100", "MAIN", "LOT-7", "A-01", "25")

	lk := &Lookups{Gateway: gw}
	opts := lk.BinOptions(context.Background(), "P-100", "MAIN", "LOT-7", "A-01")

	require.Len(t, opts, 1)
	assert.False(t, opts[0].Current)
}

func TestBinOptionsWithoutWarehouse(t *testing.T) {
	gw := backend.NewMockGateway()
	lk := &Lookups{Gateway: gw}

	// No warehouse selected yet: nothing to query, but a saved bin still
	// shows up.
	opts := lk.BinOptions(context.Background(), "P-100", "", "LOT-7", "OLD-BIN")
	require.Len(t, opts, 1)
	assert.Equal(t, "OLD-BIN", opts[0].Code)
	assert.Zero(t, gw.CallsMatching("lookup "+records.BinTable))
}

func TestLotOptionsScopedByPart(t *testing.T) {
	gw := backend.NewMockGateway()
	gw.SeedLookupRow(records.LotTable, map[string]any{"PartNum": "P-100", "LotNum": "LOT-7", "QtyOnHand": "10"})
	gw.SeedLookupRow(records.LotTable, map[string]any{"PartNum": "P-200", "LotNum": "LOT-9", "QtyOnHand": "4"})

	lk := &Lookups{Gateway: gw}
	opts := lk.LotOptions(context.Background(), "P-100", "")

	require.Len(t, opts, 1)
	assert.Equal(t, "LOT-7", opts[0].Code)
}
