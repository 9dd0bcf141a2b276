package domain

import "github.com/shopspring/decimal"

// How a line came into existence.
type LineSource string

const (
	SourceQR     LineSource = "QR"
	SourceManual LineSource = "MANUAL"
)

// One aggregated shipment row for a part. A line owns zero or more
// ScanEvents; for QR lines Qty must equal the sum of the owned events'
// quantities.
type ShipmentLine struct {
	LineNum  int
	PartNum  string
	PartDesc string
	UOM      string

	// Origin side.
	WarehouseCode string
	BinNum        string
	LotNum        string

	// Destination side.
	WhTo  string
	BinTo string

	Qty decimal.Decimal

	// Independently entered at receipt time for physical-count
	// reconciliation; never derived from Qty.
	QtyPack      decimal.Decimal
	QtyHitungPcs decimal.Decimal

	Comment    string
	RcvComment string
	Status     string
	Source     LineSource

	Record RecordID
}

// IsNew reports whether the backend has never stored this line.
func (l *ShipmentLine) IsNew() bool { return l.Record.IsZero() }

// SumEvents returns the total quantity of the given events that belong
// to this line.
func (l *ShipmentLine) SumEvents(events []*ScanEvent) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range events {
		if ev.LineNum == l.LineNum {
			total = total.Add(ev.Qty)
		}
	}
	return total
}
