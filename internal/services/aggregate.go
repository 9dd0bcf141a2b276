package services

import (
	"github.com/shopspring/decimal"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

// matchLine finds the QR line a scan folds into: same part, lot and
// destination. A scan carries no destination, so it only folds into a
// line whose destination is still unassigned; lines already routed to a
// warehouse or bin form their own aggregation buckets. Manual lines are
// never scan targets.
func matchLine(lines []*domain.ShipmentLine, ev *domain.ScanEvent) *domain.ShipmentLine {
	for _, l := range lines {
		if l.Source == domain.SourceQR && l.PartNum == ev.PartNum && l.LotNum == ev.LotNum &&
			l.WhTo == "" && l.BinTo == "" {
			return l
		}
	}
	return nil
}

// nextLineNum returns the smallest line number above every line in use.
// Line numbers are stable once assigned, so gaps from removed lines are
// never reused.
func nextLineNum(lines []*domain.ShipmentLine, removed []*domain.ShipmentLine) int {
	max := 0
	for _, l := range lines {
		if l.LineNum > max {
			max = l.LineNum
		}
	}
	for _, l := range removed {
		if l.LineNum > max {
			max = l.LineNum
		}
	}
	return max + 1
}

// applyScan folds an accepted scan into the line set: a matching QR line
// gains the scan's quantity, otherwise a new QR line is seeded from it.
// Returns the updated line set, the owning line, and whether it was
// created.
func applyScan(lines []*domain.ShipmentLine, removed []*domain.ShipmentLine, ev *domain.ScanEvent) ([]*domain.ShipmentLine, *domain.ShipmentLine, bool) {
	if l := matchLine(lines, ev); l != nil {
		l.Qty = l.Qty.Add(ev.Qty)
		ev.LineNum = l.LineNum
		return lines, l, false
	}

	l := &domain.ShipmentLine{
		LineNum:  nextLineNum(lines, removed),
		PartNum:  ev.PartNum,
		PartDesc: ev.PartDesc,
		LotNum:   ev.LotNum,
		Qty:      ev.Qty,
		Source:   domain.SourceQR,
	}
	ev.LineNum = l.LineNum
	return append(lines, l), l, true
}

// newManualLine seeds an empty line to be filled by hand, bypassing scan
// ingestion entirely.
func newManualLine(lines []*domain.ShipmentLine, removed []*domain.ShipmentLine, partNum, partDesc, uom string) *domain.ShipmentLine {
	return &domain.ShipmentLine{
		LineNum:  nextLineNum(lines, removed),
		PartNum:  partNum,
		PartDesc: partDesc,
		UOM:      uom,
		Qty:      decimal.Zero,
		Source:   domain.SourceManual,
	}
}
