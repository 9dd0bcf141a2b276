package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

// Scanned payloads carry exactly five delimited fields:
// part;description;lot;qty;uid.
const (
	scanDelimiter  = ";"
	scanFieldCount = 5
)

// ParseScanPayload turns a raw scanned payload into a ScanEvent.
// Malformed payloads (wrong field count, non-numeric or non-positive
// quantity) are rejected and never reach aggregation. A payload with an
// empty uid field (hand-keyed entry) gets a generated guid.
func ParseScanPayload(raw string, now time.Time) (*domain.ScanEvent, error) {
	parts := strings.Split(raw, scanDelimiter)
	if len(parts) != scanFieldCount {
		return nil, &domain.ValidationError{
			Field:  "scan",
			Reason: "payload must have 5 fields (part;desc;lot;qty;uid)",
		}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if parts[0] == "" {
		return nil, &domain.ValidationError{Field: "scan", Reason: "part number is empty"}
	}

	q, err := decimal.NewFromString(parts[3])
	if err != nil {
		return nil, &domain.ValidationError{Field: "scan", Reason: "quantity is not numeric"}
	}
	if !q.IsPositive() {
		return nil, &domain.ValidationError{Field: "scan", Reason: "quantity must be positive"}
	}

	guid := parts[4]
	if guid == "" {
		guid = uuid.NewString()
	}

	return &domain.ScanEvent{
		GUID:      guid,
		Raw:       raw,
		PartNum:   parts[0],
		PartDesc:  parts[1],
		LotNum:    parts[2],
		Qty:       q,
		Timestamp: now,
		IsNew:     true,
	}, nil
}
