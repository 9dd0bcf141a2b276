package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/adapters/backend"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/adapters/cache"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/records"
)

var sessionPeriod = time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

func newSession(t *testing.T) (*EditSession, *backend.MockGateway) {
	t.Helper()
	gw := backend.NewMockGateway()
	s := NewEditSession(gw, &Lookups{Gateway: gw, Cache: cache.NewMemoryOptionCache()})
	_, err := s.Create(context.Background(), sessionPeriod, &domain.ShipmentHeader{ShipFrom: "MFG1", ShipTo: "MFG2"})
	require.NoError(t, err)
	return s, gw
}

func ingest(t *testing.T, s *EditSession, raw string) *domain.ScanEvent {
	t.Helper()
	ev, err := s.IngestScan(context.Background(), raw, time.Now())
	require.NoError(t, err)
	return ev
}

func TestSessionCreateAllocatesKey(t *testing.T) {
	s, _ := newSession(t)
	h := s.Header()
	assert.Equal(t, "26090001", h.PackNum)
	assert.False(t, h.Record.IsZero())
	assert.Equal(t, domain.StatusOpen, h.Status())
}

func TestIngestScanRejectsLocalDuplicateGUID(t *testing.T) {
	s, _ := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")

	_, err := s.IngestScan(context.Background(), "P-100;Widget;LOT-7;2;g-1", time.Now())
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ConflictDuplicateGUID, conflict.Kind)

	// The rejected scan must not have touched the aggregate.
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, "2", s.Lines()[0].Qty.String())
	assert.Len(t, s.Events(), 1)
}

func TestSetLineWarehouseAutoSelectsSingleBin(t *testing.T) {
	s, gw := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	seedBin(gw, "P-100", "MAIN", "LOT-7", "A-01", "25")

	require.NoError(t, s.SetLineWarehouse(context.Background(), 1, "MAIN"))

	l := s.Lines()[0]
	assert.Equal(t, "MAIN", l.WhTo)
	assert.Equal(t, "A-01", l.BinTo)
	require.Len(t, s.Options(1).Bins, 1)
}

func TestSetLineWarehouseClearsStaleBin(t *testing.T) {
	s, gw := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	seedBin(gw, "P-100", "MAIN", "LOT-7", "A-01", "25")
	seedBin(gw, "P-100", "OTHER", "LOT-7", "B-01", "5")
	seedBin(gw, "P-100", "OTHER", "LOT-7", "B-02", "9")

	require.NoError(t, s.SetLineWarehouse(context.Background(), 1, "MAIN"))
	require.Equal(t, "A-01", s.Lines()[0].BinTo)

	// Two candidates in the new warehouse: nothing auto-selected, and the
	// old warehouse's bin never leaks through.
	require.NoError(t, s.SetLineWarehouse(context.Background(), 1, "OTHER"))
	l := s.Lines()[0]
	assert.Equal(t, "OTHER", l.WhTo)
	assert.Empty(t, l.BinTo)
	assert.Len(t, s.Options(1).Bins, 2)
}

func TestBinOptionsForLineSynthesizesPersistedBin(t *testing.T) {
	s, gw := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	require.NoError(t, s.SetLineWarehouse(context.Background(), 1, "MAIN"))
	require.NoError(t, s.EditLine(LineEdit{LineNum: 1, BinTo: strPtr("GONE-BIN")}))

	seedBin(gw, "P-100", "MAIN", "LOT-7", "A-01", "25")

	bins, err := s.BinOptionsForLine(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, bins, 2)
	assert.Equal(t, "GONE-BIN", bins[1].Code)
	assert.True(t, bins[1].Current)
}

func TestEditLineQtyRules(t *testing.T) {
	s, _ := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	_, err := s.AddManualLine(context.Background(), "P-200", "Bracket", "PCS")
	require.NoError(t, err)

	qty := decimal.RequireFromString("7")
	err = s.EditLine(LineEdit{LineNum: 1, Qty: &qty})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve, "scanned line quantity is not editable")

	require.NoError(t, s.EditLine(LineEdit{LineNum: 2, Qty: &qty}))
	assert.Equal(t, "7", s.Lines()[1].Qty.String())

	neg := decimal.RequireFromString("-1")
	err = s.EditLine(LineEdit{LineNum: 2, Qty: &neg})
	require.ErrorAs(t, err, &ve)
}

func TestRemoveLineDiscardsUnsavedEvents(t *testing.T) {
	s, _ := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	ingest(t, s, "P-200;Other;LOT-9;3;g-2")

	require.NoError(t, s.RemoveLine(1))

	require.Len(t, s.Lines(), 1)
	assert.Equal(t, "P-200", s.Lines()[0].PartNum)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "g-2", s.Events()[0].GUID)

	// A never-saved line burns its number but queues no delete.
	require.NoError(t, s.Save(context.Background()))
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 2, s.Lines()[0].LineNum)
}

func TestRemoveLineDropsPersistedEvents(t *testing.T) {
	s, gw := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	ingest(t, s, "P-200;Other;LOT-9;3;g-2")
	require.NoError(t, s.Save(context.Background()))

	require.NoError(t, s.RemoveLine(1))

	// The stored event leaves the working set immediately, not at the
	// next save.
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "g-2", s.Events()[0].GUID)

	require.NoError(t, s.Save(context.Background()))
	require.Len(t, s.Lines(), 1)
	require.Len(t, s.Events(), 1)

	// Backend holds exactly line 2 and its event.
	rows, err := gw.Lookup(context.Background(), records.ChildTable, map[string]string{"Key1": s.Header().PackNum})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSaveRoundTrip(t *testing.T) {
	s, _ := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	ingest(t, s, "P-100;Widget;LOT-7;3;g-2")

	require.NoError(t, s.Save(context.Background()))

	// Refetched state carries identities and keeps qty == sum of events.
	lines, events := s.Lines(), s.Events()
	require.Len(t, lines, 1)
	require.Len(t, events, 2)
	assert.False(t, lines[0].IsNew())
	assert.Equal(t, "5", lines[0].Qty.String())
	assert.True(t, lines[0].Qty.Equal(lines[0].SumEvents(events)))
	for _, ev := range events {
		assert.False(t, ev.IsNew)
		assert.False(t, ev.Record.IsZero())
	}
}

func TestSaveAbortsOnForeignGUID(t *testing.T) {
	s, gw := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	ingest(t, s, "P-200;Other;LOT-9;3;g-foreign")

	// The unit was already recorded on some other shipment.
	gw.KnownGUIDs["g-foreign"] = true

	err := s.Save(context.Background())
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ConflictDuplicateGUID, conflict.Kind)

	// Nothing was written, not even the clean sibling scan.
	assert.Zero(t, gw.CallsMatching("batch "+records.ChildTable))
	assert.Zero(t, gw.CallsMatching("update "+records.HeaderTable))

	// The session resynced to ground truth: both unsaved scans are gone.
	assert.Empty(t, s.Lines())
	assert.Empty(t, s.Events())
}

func TestSavePartialFailureKeepsHeaderAndSiblings(t *testing.T) {
	s, gw := newSession(t)
	for _, part := range []string{"P-1", "P-2", "P-3"} {
		_, err := s.AddManualLine(context.Background(), part, "", "PCS")
		require.NoError(t, err)
	}
	require.NoError(t, s.EditHeader(HeaderEdit{Comment: strPtr("first save")}))

	pack := s.Header().PackNum
	gw.FailCreate[backend.RowKey(map[string]any{
		"Key1": pack, "ChildKey1": "L", "ChildKey2": records.FormatLineNum(2),
	})] = &domain.TransportError{Status: 500, Message: "write failed"}

	err := s.Save(context.Background())
	var partial *domain.PartialBatchError
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, 2, partial.Failures[0].LineNum)

	// Header committed, siblings landed; the refetched working set shows
	// exactly what the backend holds.
	assert.Equal(t, "first save", s.Header().Comment)
	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].LineNum)
	assert.Equal(t, 3, lines[1].LineNum)
}

func TestSaveIsIdempotentWhenClean(t *testing.T) {
	s, gw := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")
	require.NoError(t, s.Save(context.Background()))

	before := gw.CallsMatching("create " + records.ChildTable)
	require.NoError(t, s.Save(context.Background()))

	// Second save re-issues line updates but creates nothing new.
	assert.Equal(t, before, gw.CallsMatching("create "+records.ChildTable))
}

func TestAccessorsDetachFromWorkingState(t *testing.T) {
	s, _ := newSession(t)
	ingest(t, s, "P-100;Widget;LOT-7;2;g-1")

	// Mutating a returned value must not leak into the session.
	h := s.Header()
	h.Comment = "scribble"
	assert.Empty(t, s.Header().Comment)

	l := s.Lines()[0]
	l.PartNum = "P-XXX"
	assert.Equal(t, "P-100", s.Lines()[0].PartNum)

	// Concurrent reads race header edits only if accessors hand out live
	// state; copies keep this clean under the race detector.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			c := fmt.Sprintf("comment %d", i)
			require.NoError(t, s.EditHeader(HeaderEdit{Comment: &c}))
		}
	}()
	for i := 0; i < 200; i++ {
		_ = s.Header().Comment
		_ = s.Lines()
		_ = s.Events()
	}
	<-done
}

func strPtr(s string) *string { return &s }
