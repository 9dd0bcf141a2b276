// Package records maps the strongly-typed shipment entities onto the
// backend's loosely-typed UD rows. All composite-key, child-key and
// field-name plumbing is confined here; services and adapters deal in
// domain types and generic rows respectively.
package records

import (
	"fmt"
	"strconv"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

const (
	// Backend record sets. Headers live in the parent UD table; lines
	// and scan logs share the child table, discriminated by ChildKey1.
	HeaderTable = "UD100"
	ChildTable  = "UD100A"

	rowTypeLine = "L"
	rowTypeScan = "S"
)

// FormatLineNum renders a line number the way the backend keys child
// rows (zero-padded, so lexical order matches numeric order).
func FormatLineNum(n int) string {
	return fmt.Sprintf("%05d", n)
}

// ParseLineNum is the inverse of FormatLineNum.
func ParseLineNum(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse line num %q: %w", s, err)
	}
	return n, nil
}

func baseKeyFields(key domain.CompositeKey) map[string]any {
	return map[string]any{
		"Key1": key.Key1,
		"Key2": key.Key2,
		"Key3": key.Key3,
		"Key4": key.Key4,
		"Key5": key.Key5,
	}
}

// IsLineRow reports whether a child-table row holds a shipment line.
func IsLineRow(fields map[string]any) bool {
	return str(fields["ChildKey1"]) == rowTypeLine
}

// IsScanRow reports whether a child-table row holds a scan log.
func IsScanRow(fields map[string]any) bool {
	return str(fields["ChildKey1"]) == rowTypeScan
}
