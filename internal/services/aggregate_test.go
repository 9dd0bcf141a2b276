package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

func qrLine(num int, part, lot, qty string) *domain.ShipmentLine {
	return &domain.ShipmentLine{
		LineNum: num,
		PartNum: part,
		LotNum:  lot,
		Qty:     decimal.RequireFromString(qty),
		Source:  domain.SourceQR,
	}
}

func scanEvent(part, lot, qty string) *domain.ScanEvent {
	return &domain.ScanEvent{
		GUID:    part + "-" + lot + "-" + qty,
		PartNum: part,
		LotNum:  lot,
		Qty:     decimal.RequireFromString(qty),
		IsNew:   true,
	}
}

func TestApplyScanFoldsIntoMatchingLine(t *testing.T) {
	lines := []*domain.ShipmentLine{qrLine(1, "P-100", "LOT-7", "10")}

	ev := scanEvent("P-100", "LOT-7", "2.5")
	lines, owner, created := applyScan(lines, nil, ev)

	assert.False(t, created)
	require.Len(t, lines, 1)
	assert.Equal(t, "12.5", owner.Qty.String())
	assert.Equal(t, 1, ev.LineNum)
}

func TestApplyScanSeedsNewLine(t *testing.T) {
	lines := []*domain.ShipmentLine{qrLine(1, "P-100", "LOT-7", "10")}

	// Same part, different lot: a lot is a distinct aggregation bucket.
	ev := scanEvent("P-100", "LOT-8", "3")
	lines, owner, created := applyScan(lines, nil, ev)

	assert.True(t, created)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, owner.LineNum)
	assert.Equal(t, domain.SourceQR, owner.Source)
	assert.Equal(t, "3", owner.Qty.String())
	assert.Equal(t, 2, ev.LineNum)
}

func TestApplyScanRespectsDestinationBuckets(t *testing.T) {
	routed := qrLine(1, "P-100", "LOT-7", "10")
	routed.WhTo = "MAIN"

	// A line already routed to a destination is a closed bucket; the
	// destination-less scan seeds a fresh line instead of folding in.
	lines, owner, created := applyScan([]*domain.ShipmentLine{routed}, nil, scanEvent("P-100", "LOT-7", "2"))

	assert.True(t, created)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, owner.LineNum)
	assert.Empty(t, owner.WhTo)
	assert.Equal(t, "10", routed.Qty.String())

	// Further scans keep folding into the open bucket.
	lines, next, created := applyScan(lines, nil, scanEvent("P-100", "LOT-7", "3"))
	assert.False(t, created)
	require.Len(t, lines, 2)
	assert.Same(t, owner, next)
	assert.Equal(t, "5", next.Qty.String())
}

func TestApplyScanNeverTargetsManualLines(t *testing.T) {
	manual := &domain.ShipmentLine{
		LineNum: 1,
		PartNum: "P-100",
		LotNum:  "LOT-7",
		Qty:     decimal.RequireFromString("4"),
		Source:  domain.SourceManual,
	}

	lines, owner, created := applyScan([]*domain.ShipmentLine{manual}, nil, scanEvent("P-100", "LOT-7", "1"))

	assert.True(t, created)
	require.Len(t, lines, 2)
	assert.NotSame(t, manual, owner)
	assert.Equal(t, "4", manual.Qty.String())
}

func TestNextLineNumSkipsRemoved(t *testing.T) {
	lines := []*domain.ShipmentLine{qrLine(1, "P-1", "L-1", "1")}
	removed := []*domain.ShipmentLine{qrLine(3, "P-3", "L-3", "1")}

	// Removed line numbers stay burned.
	assert.Equal(t, 4, nextLineNum(lines, removed))
	assert.Equal(t, 1, nextLineNum(nil, nil))
}

func TestLineQtyEqualsEventSum(t *testing.T) {
	var lines []*domain.ShipmentLine
	var events []*domain.ScanEvent

	for _, qty := range []string{"2", "3.25", "0.75"} {
		ev := scanEvent("P-100", "LOT-7", qty)
		ev.GUID = "g-" + qty
		lines, _, _ = applyScan(lines, nil, ev)
		events = append(events, ev)
	}

	require.Len(t, lines, 1)
	line := lines[0]
	assert.True(t, line.Qty.Equal(line.SumEvents(events)),
		"line qty %s must equal sum of its events %s", line.Qty, line.SumEvents(events))
	assert.Equal(t, "6", line.Qty.String())
}

func TestNewManualLineStartsAtZero(t *testing.T) {
	lines := []*domain.ShipmentLine{qrLine(1, "P-1", "L-1", "1")}

	l := newManualLine(lines, nil, "P-200", "Bracket", "PCS")
	assert.Equal(t, 2, l.LineNum)
	assert.Equal(t, domain.SourceManual, l.Source)
	assert.True(t, l.Qty.IsZero())
	assert.Equal(t, "PCS", l.UOM)
}
