package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// One ingested scan of a physical unit. GUID is globally unique across
// the backend store, not just this shipment.
type ScanEvent struct {
	GUID      string
	Raw       string
	PartNum   string
	PartDesc  string
	LotNum    string
	Qty       decimal.Decimal
	Timestamp time.Time
	LineNum   int

	// IsNew marks events captured in this session and not yet
	// persisted; only these are checked against the backend for guid
	// collisions at save time.
	IsNew bool

	Record RecordID
}
