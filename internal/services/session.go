package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/platform/obs"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/records"
)

// Per-line option sets resolved so far. Bins follows the destination
// warehouse; OriginBins follows the origin lot for manual lines.
type LineOptions struct {
	Warehouses []domain.LookupOption
	Lots       []domain.LookupOption
	Bins       []domain.LookupOption
	OriginBins []domain.LookupOption
}

// EditSession owns the in-memory working set (header, lines, events) of
// one shipment together with its last-fetched snapshot. It is the only
// writer of that state; callers serialize through its mutex.
type EditSession struct {
	mu      sync.Mutex
	gw      ports.Gateway
	lookups *Lookups

	header  *domain.ShipmentHeader
	lines   []*domain.ShipmentLine
	events  []*domain.ScanEvent
	removed []*domain.ShipmentLine
	snap    *Snapshot
	options map[int]*LineOptions

	// posting suppresses re-entrant ship/return transitions.
	posting bool
}

func NewEditSession(gw ports.Gateway, lookups *Lookups) *EditSession {
	return &EditSession{
		gw:      gw,
		lookups: lookups,
		options: map[int]*LineOptions{},
	}
}

// Create allocates a pack number for seed and starts a session over the
// freshly created header.
func (s *EditSession) Create(ctx context.Context, period time.Time, seed *domain.ShipmentHeader) (*domain.ShipmentHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alloc := &Allocator{Gateway: s.gw}
	h, err := alloc.Allocate(ctx, period, seed)
	if err != nil {
		return nil, err
	}

	s.header = h
	s.lines = nil
	s.events = nil
	s.removed = nil
	s.options = map[int]*LineOptions{}
	s.snap = &Snapshot{Header: copyHeader(h)}
	return h, nil
}

// Load fetches the authoritative header, lines and events for packNum
// and resets the session onto them.
func (s *EditSession) Load(ctx context.Context, packNum string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refetch(ctx, packNum)
}

// refetch discards unsaved local state and rebuilds working set and
// snapshot from the backend. Callers hold the mutex.
func (s *EditSession) refetch(ctx context.Context, packNum string) error {
	rows, err := s.gw.Lookup(ctx, records.HeaderTable, map[string]string{"Key1": packNum})
	if err != nil {
		return fmt.Errorf("load shipment %s: fetch header: %w", packNum, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("load shipment %s: not found", packNum)
	}

	header, err := records.HeaderFromRow(rows[0])
	if err != nil {
		return fmt.Errorf("load shipment %s: %w", packNum, err)
	}

	children, err := s.gw.Lookup(ctx, records.ChildTable, map[string]string{"Key1": packNum})
	if err != nil {
		return fmt.Errorf("load shipment %s: fetch children: %w", packNum, err)
	}

	var (
		lines  []*domain.ShipmentLine
		events []*domain.ScanEvent
	)
	for _, row := range children {
		switch {
		case records.IsLineRow(row.Fields):
			l, err := records.LineFromRow(row)
			if err != nil {
				return fmt.Errorf("load shipment %s: %w", packNum, err)
			}
			lines = append(lines, l)
		case records.IsScanRow(row.Fields):
			ev, err := records.EventFromRow(row)
			if err != nil {
				return fmt.Errorf("load shipment %s: %w", packNum, err)
			}
			events = append(events, ev)
		}
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNum < lines[j].LineNum })
	sort.Slice(events, func(i, j int) bool {
		if events[i].LineNum != events[j].LineNum {
			return events[i].LineNum < events[j].LineNum
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	s.header = header
	s.lines = lines
	s.events = events
	s.removed = nil
	s.options = map[int]*LineOptions{}
	s.snap = &Snapshot{
		Header: copyHeader(header),
		Lines:  copyLines(lines),
		Events: copyEvents(events),
	}
	return nil
}

// Refetch re-synchronizes from the backend, discarding unsaved edits.
func (s *EditSession) Refetch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.header == nil {
		return fmt.Errorf("refetch: no shipment loaded")
	}
	return s.refetch(ctx, s.header.PackNum)
}

// Header returns a copy of the working header. All accessors copy under
// the mutex so concurrent requests never read fields another request is
// mutating.
func (s *EditSession) Header() *domain.ShipmentHeader {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.header == nil {
		return nil
	}
	return copyHeader(s.header)
}

func (s *EditSession) Lines() []*domain.ShipmentLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *EditSession) Events() []*domain.ScanEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyEvents(s.events)
}

// Options returns the option sets resolved so far for a line.
func (s *EditSession) Options(lineNum int) *LineOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := *s.ensureOptions(lineNum)
	return &o
}

func (s *EditSession) ensureOptions(lineNum int) *LineOptions {
	o, ok := s.options[lineNum]
	if !ok {
		o = &LineOptions{}
		s.options[lineNum] = o
	}
	return o
}

// Once received, further line edits are locked session-side.
func (s *EditSession) editLocked() error {
	if s.header == nil {
		return fmt.Errorf("no shipment loaded")
	}
	if s.header.IsReceived {
		return &domain.ValidationError{Field: "status", Reason: "shipment is received; line edits are locked"}
	}
	return nil
}

// IngestScan parses a raw payload, rejects guids already present in the
// working set, and folds the event into the line aggregate.
func (s *EditSession) IngestScan(ctx context.Context, raw string, now time.Time) (*domain.ScanEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editLocked(); err != nil {
		return nil, err
	}

	ev, err := ParseScanPayload(raw, now)
	if err != nil {
		return nil, err
	}

	for _, existing := range s.events {
		if existing.GUID == ev.GUID {
			return nil, &domain.ConflictError{
				Kind:    domain.ConflictDuplicateGUID,
				Key:     ev.GUID,
				Message: "unit already scanned on this shipment",
			}
		}
	}

	var created bool
	s.lines, _, created = applyScan(s.lines, s.removed, ev)
	s.events = append(s.events, ev)

	log.Printf("op=ingest pack=%s line=%d guid=%s created=%t", s.header.PackNum, ev.LineNum, ev.GUID, created)
	return ev, nil
}

// AddManualLine seeds an empty hand-entered line and prefetches its
// warehouse and lot options.
func (s *EditSession) AddManualLine(ctx context.Context, partNum, partDesc, uom string) (*domain.ShipmentLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editLocked(); err != nil {
		return nil, err
	}
	if partNum == "" {
		return nil, &domain.ValidationError{Field: "partNum", Reason: "part number is required"}
	}

	l := newManualLine(s.lines, s.removed, partNum, partDesc, uom)
	s.lines = append(s.lines, l)

	o := s.ensureOptions(l.LineNum)
	o.Warehouses = s.lookups.WarehouseOptions(ctx, partNum)
	o.Lots = s.lookups.LotOptions(ctx, partNum, "")
	return l, nil
}

// RemoveLine drops a line and all its events from the working set.
// Lines the backend knows are queued for deletion (with their stored
// events) on the next save; unsaved events are discarded outright.
func (s *EditSession) RemoveLine(lineNum int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editLocked(); err != nil {
		return err
	}

	idx := -1
	for i, l := range s.lines {
		if l.LineNum == lineNum {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &domain.ValidationError{Field: "lineNum", Reason: fmt.Sprintf("line %d not found", lineNum)}
	}

	l := s.lines[idx]
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	if !l.IsNew() {
		s.removed = append(s.removed, l)
	}

	// All of the line's events leave the working set: unsaved ones are
	// discarded outright, persisted ones are deleted at save time via
	// the snapshot.
	kept := s.events[:0]
	for _, ev := range s.events {
		if ev.LineNum == lineNum {
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept
	delete(s.options, lineNum)
	return nil
}

func (s *EditSession) findLine(lineNum int) (*domain.ShipmentLine, error) {
	for _, l := range s.lines {
		if l.LineNum == lineNum {
			return l, nil
		}
	}
	return nil, &domain.ValidationError{Field: "lineNum", Reason: fmt.Sprintf("line %d not found", lineNum)}
}

// SetLineWarehouse selects the destination warehouse. The previously
// selected bin and its option list are cleared first (a bin is only ever
// valid for the warehouse that produced it); a single fresh candidate is
// auto-selected.
func (s *EditSession) SetLineWarehouse(ctx context.Context, lineNum int, warehouse string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editLocked(); err != nil {
		return err
	}
	l, err := s.findLine(lineNum)
	if err != nil {
		return err
	}

	l.WhTo = warehouse
	l.BinTo = ""
	o := s.ensureOptions(lineNum)
	o.Bins = nil

	bins := s.lookups.BinOptions(ctx, l.PartNum, warehouse, l.LotNum, "")
	if len(bins) == 1 && !bins[0].Current {
		l.BinTo = bins[0].Code
	}
	o.Bins = bins
	return nil
}

// SetLineLot selects the origin lot, refreshing origin bin options the
// same way a warehouse change refreshes destination bins.
func (s *EditSession) SetLineLot(ctx context.Context, lineNum int, lot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editLocked(); err != nil {
		return err
	}
	l, err := s.findLine(lineNum)
	if err != nil {
		return err
	}

	l.LotNum = lot
	l.BinNum = ""
	o := s.ensureOptions(lineNum)
	o.OriginBins = nil

	bins := s.lookups.BinOptions(ctx, l.PartNum, l.WarehouseCode, lot, "")
	if len(bins) == 1 && !bins[0].Current {
		l.BinNum = bins[0].Code
	}
	o.OriginBins = bins
	return nil
}

// BinOptionsForLine resolves destination bin options for display,
// synthesizing the line's persisted bin back in when the fresh
// candidates miss it.
func (s *EditSession) BinOptionsForLine(ctx context.Context, lineNum int, warehouse string) ([]domain.LookupOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.findLine(lineNum)
	if err != nil {
		return nil, err
	}
	if warehouse == "" {
		warehouse = l.WhTo
	}

	bins := s.lookups.BinOptions(ctx, l.PartNum, warehouse, l.LotNum, l.BinTo)
	s.ensureOptions(lineNum).Bins = bins
	return bins, nil
}

// Editable header fields. Shipped/received flags are deliberately
// absent: those move only through RequestShip, RequestReturn and
// Receive.
type HeaderEdit struct {
	ShipFrom   *string
	ShipTo     *string
	Comment    *string
	RcvComment *string
	IsTgp      *bool
	ShipDate   *time.Time
}

func (s *EditSession) EditHeader(e HeaderEdit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.header == nil {
		return fmt.Errorf("no shipment loaded")
	}
	if e.ShipFrom != nil {
		s.header.ShipFrom = *e.ShipFrom
	}
	if e.ShipTo != nil {
		s.header.ShipTo = *e.ShipTo
	}
	if e.Comment != nil {
		s.header.Comment = *e.Comment
	}
	if e.RcvComment != nil {
		s.header.RcvComment = *e.RcvComment
	}
	if e.IsTgp != nil {
		s.header.IsTgp = *e.IsTgp
	}
	if e.ShipDate != nil {
		d := *e.ShipDate
		s.header.ShipDate = &d
	}
	return nil
}

// Editable line fields. Qty applies to manual lines only; QR line
// quantities are owned by their scan events.
type LineEdit struct {
	LineNum      int
	Qty          *decimal.Decimal
	QtyPack      *decimal.Decimal
	QtyHitungPcs *decimal.Decimal
	Comment      *string
	RcvComment   *string
	BinTo        *string
	BinNum       *string
}

func (s *EditSession) EditLine(e LineEdit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editLocked(); err != nil {
		return err
	}
	l, err := s.findLine(e.LineNum)
	if err != nil {
		return err
	}

	if e.Qty != nil {
		if l.Source == domain.SourceQR {
			return &domain.ValidationError{Field: "qty", Reason: "quantity of a scanned line is derived from its scans"}
		}
		if e.Qty.IsNegative() {
			return &domain.ValidationError{Field: "qty", Reason: "quantity must not be negative"}
		}
		l.Qty = *e.Qty
	}
	if e.QtyPack != nil {
		l.QtyPack = *e.QtyPack
	}
	if e.QtyHitungPcs != nil {
		l.QtyHitungPcs = *e.QtyHitungPcs
	}
	if e.Comment != nil {
		l.Comment = *e.Comment
	}
	if e.RcvComment != nil {
		l.RcvComment = *e.RcvComment
	}
	if e.BinTo != nil {
		l.BinTo = *e.BinTo
	}
	if e.BinNum != nil {
		l.BinNum = *e.BinNum
	}
	return nil
}

// Save reconciles the working set against the last snapshot and
// persists it.
//
// Every event captured this session is first checked for a guid
// collision against the backend, sequentially and before any write:
// once a create succeeds it cannot be cheaply undone. Any hit aborts
// the whole save, discards unsaved local state and re-fetches the
// authoritative record.
func (s *EditSession) Save(ctx context.Context) (err error) {
	defer obs.Time(ctx, "save")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.header == nil {
		return fmt.Errorf("save: no shipment loaded")
	}
	pack := s.header.PackNum

	for _, ev := range s.events {
		if !ev.IsNew {
			continue
		}
		exists, err := s.gw.GUIDExists(ctx, ev.GUID)
		if err != nil {
			return fmt.Errorf("save %s: check guid %s: %w", pack, ev.GUID, err)
		}
		if exists {
			conflict := &domain.ConflictError{
				Kind:    domain.ConflictDuplicateGUID,
				Key:     ev.GUID,
				Message: "unit was already recorded on another shipment",
			}
			log.Printf("op=save pack=%s guid conflict, resyncing: %v", pack, conflict)
			if err := s.refetch(ctx, pack); err != nil {
				return fmt.Errorf("save %s: resync after guid conflict: %w", pack, err)
			}
			return conflict
		}
	}

	plan := BuildPlan(s.header, s.lines, s.events, s.removed, s.snap)
	err = ExecutePlan(ctx, s.gw, plan)

	var partial *domain.PartialBatchError
	switch {
	case err == nil:
		log.Printf("op=save pack=%s lines=%d events=%d", pack, len(s.lines), len(s.events))
	case errors.As(err, &partial):
		// Header portion is committed; refetch shows which lines made it.
		log.Printf("op=save pack=%s partial failure: %v", pack, err)
	default:
		return err
	}

	if ferr := s.refetch(ctx, pack); ferr != nil {
		return fmt.Errorf("save %s: refetch after save: %w", pack, ferr)
	}
	return err
}

func copyHeader(h *domain.ShipmentHeader) *domain.ShipmentHeader {
	c := *h
	c.ActualShipDate = copyTime(h.ActualShipDate)
	c.ShipDate = copyTime(h.ShipDate)
	c.ReceiptDate = copyTime(h.ReceiptDate)
	return &c
}

func copyLines(lines []*domain.ShipmentLine) []*domain.ShipmentLine {
	out := make([]*domain.ShipmentLine, len(lines))
	for i, l := range lines {
		c := *l
		out[i] = &c
	}
	return out
}

func copyEvents(events []*domain.ScanEvent) []*domain.ScanEvent {
	out := make([]*domain.ScanEvent, len(events))
	for i, ev := range events {
		c := *ev
		out[i] = &c
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
