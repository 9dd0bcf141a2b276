package records

import (
	"fmt"
	"time"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
)

// EventFields flattens a scan event into a child-table row sharing the
// parent line's composite key. The guid doubles as the per-log child key,
// which is what makes guid uniqueness a key constraint on the backend.
func EventFields(key domain.CompositeKey, ev *domain.ScanEvent) map[string]any {
	fields := baseKeyFields(key)
	fields["ChildKey1"] = rowTypeScan
	fields["ChildKey2"] = FormatLineNum(ev.LineNum)
	fields["ChildKey3"] = ev.GUID
	fields["Character01"] = ev.Raw
	fields["Character02"] = ev.PartNum
	fields["Character03"] = ev.PartDesc
	fields["Character04"] = ev.LotNum
	fields["Character05"] = ev.Timestamp.Format(time.RFC3339)
	fields["Number01"] = ev.Qty.String()
	return fields
}

// EventFromRow rebuilds a scan event from a child-table row. Events read
// back from the backend are never IsNew.
func EventFromRow(row ports.Row) (*domain.ScanEvent, error) {
	if !IsScanRow(row.Fields) {
		return nil, fmt.Errorf("row %q is not a scan row", row.ID.Identity)
	}

	num, err := ParseLineNum(str(row.Fields["ChildKey2"]))
	if err != nil {
		return nil, fmt.Errorf("scan row %q: %w", row.ID.Identity, err)
	}

	q, err := qty(row.Fields["Number01"])
	if err != nil {
		return nil, fmt.Errorf("scan row %q: %w", row.ID.Identity, err)
	}

	ev := &domain.ScanEvent{
		GUID:     str(row.Fields["ChildKey3"]),
		Raw:      str(row.Fields["Character01"]),
		PartNum:  str(row.Fields["Character02"]),
		PartDesc: str(row.Fields["Character03"]),
		LotNum:   str(row.Fields["Character04"]),
		Qty:      q,
		LineNum:  num,
		IsNew:    false,
		Record:   row.ID,
	}
	if t := date(row.Fields["Character05"]); t != nil {
		ev.Timestamp = *t
	}
	return ev, nil
}
