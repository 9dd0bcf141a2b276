package records

import (
	"fmt"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
)

// LineFields flattens a line into a child-table row under the header's
// composite key.
func LineFields(key domain.CompositeKey, l *domain.ShipmentLine) map[string]any {
	fields := baseKeyFields(key)
	fields["ChildKey1"] = rowTypeLine
	fields["ChildKey2"] = FormatLineNum(l.LineNum)
	fields["ChildKey3"] = ""
	fields["Character01"] = l.PartNum
	fields["Character02"] = l.PartDesc
	fields["Character03"] = l.UOM
	fields["Character04"] = l.WarehouseCode
	fields["Character05"] = l.BinNum
	fields["Character06"] = l.LotNum
	fields["Character07"] = l.WhTo
	fields["Character08"] = l.BinTo
	fields["Character09"] = l.Comment
	fields["Character10"] = l.RcvComment
	fields["Number01"] = l.Qty.String()
	fields["Number02"] = l.QtyPack.String()
	fields["Number03"] = l.QtyHitungPcs.String()
	fields["ShortChar01"] = l.Status
	fields["ShortChar02"] = string(l.Source)
	return fields
}

// LineFromRow rebuilds a line from a child-table row.
func LineFromRow(row ports.Row) (*domain.ShipmentLine, error) {
	if !IsLineRow(row.Fields) {
		return nil, fmt.Errorf("row %q is not a line row", row.ID.Identity)
	}

	num, err := ParseLineNum(str(row.Fields["ChildKey2"]))
	if err != nil {
		return nil, fmt.Errorf("line row %q: %w", row.ID.Identity, err)
	}

	q, err := qty(row.Fields["Number01"])
	if err != nil {
		return nil, fmt.Errorf("line row %q: %w", row.ID.Identity, err)
	}
	qp, err := qty(row.Fields["Number02"])
	if err != nil {
		return nil, fmt.Errorf("line row %q: %w", row.ID.Identity, err)
	}
	qh, err := qty(row.Fields["Number03"])
	if err != nil {
		return nil, fmt.Errorf("line row %q: %w", row.ID.Identity, err)
	}

	return &domain.ShipmentLine{
		LineNum:       num,
		PartNum:       str(row.Fields["Character01"]),
		PartDesc:      str(row.Fields["Character02"]),
		UOM:           str(row.Fields["Character03"]),
		WarehouseCode: str(row.Fields["Character04"]),
		BinNum:        str(row.Fields["Character05"]),
		LotNum:        str(row.Fields["Character06"]),
		WhTo:          str(row.Fields["Character07"]),
		BinTo:         str(row.Fields["Character08"]),
		Comment:       str(row.Fields["Character09"]),
		RcvComment:    str(row.Fields["Character10"]),
		Qty:           q,
		QtyPack:       qp,
		QtyHitungPcs:  qh,
		Status:        str(row.Fields["ShortChar01"]),
		Source:        domain.LineSource(str(row.Fields["ShortChar02"])),
		Record:        row.ID,
	}, nil
}
