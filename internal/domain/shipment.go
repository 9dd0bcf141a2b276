package domain

import (
	"strings"
	"time"
)

// Display status derived from the shipped/received flags.
type ShipmentStatus string

const (
	StatusOpen     ShipmentStatus = "OPEN"
	StatusShipped  ShipmentStatus = "SHIPPED"
	StatusReceived ShipmentStatus = "RECEIVED"
)

// Opaque backend row identity plus its optimistic-concurrency revision.
// A zero Identity marks a row the backend has never seen.
type RecordID struct {
	Identity string
	Revision int64
}

func (r RecordID) IsZero() bool { return r.Identity == "" }

// Five-part business key relating a header to its child record sets.
// For shipment headers only Key1 (the pack number) is populated; the
// remaining parts stay empty but travel with every child row.
type CompositeKey struct {
	Key1 string
	Key2 string
	Key3 string
	Key4 string
	Key5 string
}

// Shipment header aggregate. PackNum is immutable once allocated.
type ShipmentHeader struct {
	PackNum        string
	ShipFrom       string
	ShipTo         string
	ActualShipDate *time.Time
	ShipDate       *time.Time
	Comment        string
	IsTgp          bool
	IsShipped      bool
	IsReceived     bool
	ReceiptDate    *time.Time
	RcvComment     string

	Record RecordID
}

// Key returns the composite key all child rows of this header share.
func (h *ShipmentHeader) Key() CompositeKey {
	return CompositeKey{Key1: h.PackNum}
}

// Status is always recomputed from the flags, never stored.
func (h *ShipmentHeader) Status() ShipmentStatus {
	switch {
	case h.IsReceived:
		return StatusReceived
	case h.IsShipped:
		return StatusShipped
	default:
		return StatusOpen
	}
}

// CanShip reports whether the header satisfies the ship/return
// preconditions: an allocated key and both plant codes present.
func (h *ShipmentHeader) CanShip() error {
	if strings.TrimSpace(h.PackNum) == "" {
		return &ValidationError{Field: "packNum", Reason: "shipment has no allocated pack number"}
	}
	if strings.TrimSpace(h.ShipFrom) == "" {
		return &ValidationError{Field: "shipFrom", Reason: "ship-from plant is required"}
	}
	if strings.TrimSpace(h.ShipTo) == "" {
		return &ValidationError{Field: "shipTo", Reason: "ship-to plant is required"}
	}
	return nil
}
