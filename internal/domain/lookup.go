package domain

import "github.com/shopspring/decimal"

// Kind of lookup option set fetched from the backend.
type LookupKind string

const (
	LookupWarehouse LookupKind = "warehouse"
	LookupBin       LookupKind = "bin"
	LookupLot       LookupKind = "lot"
)

// One selectable warehouse/bin/lot candidate. Options are ephemeral:
// fetched per (part, context) pair and cached for the editing session.
type LookupOption struct {
	Code      string
	Desc      string
	QtyOnHand decimal.Decimal

	// Current marks a value synthesized back into the list because the
	// line's persisted selection was absent from the fresh candidates.
	Current bool
}

// ContainsOption reports whether code is present in opts.
func ContainsOption(opts []LookupOption, code string) bool {
	for _, o := range opts {
		if o.Code == code {
			return true
		}
	}
	return false
}
