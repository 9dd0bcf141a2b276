package records

import (
	"fmt"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
)

// HeaderFields flattens a header into the backend's named-field shape.
func HeaderFields(h *domain.ShipmentHeader) map[string]any {
	fields := baseKeyFields(h.Key())
	fields["Character01"] = h.ShipFrom
	fields["Character02"] = h.ShipTo
	fields["Character03"] = h.Comment
	fields["Character04"] = h.RcvComment
	fields["Date01"] = dateField(h.ShipDate)
	fields["Date02"] = dateField(h.ActualShipDate)
	fields["Date03"] = dateField(h.ReceiptDate)
	fields["CheckBox01"] = h.IsTgp
	fields["CheckBox02"] = h.IsShipped
	fields["CheckBox03"] = h.IsReceived
	return fields
}

// HeaderFromRow rebuilds a header from a backend row.
func HeaderFromRow(row ports.Row) (*domain.ShipmentHeader, error) {
	pack := str(row.Fields["Key1"])
	if pack == "" {
		return nil, fmt.Errorf("header row %q has empty Key1", row.ID.Identity)
	}

	return &domain.ShipmentHeader{
		PackNum:        pack,
		ShipFrom:       str(row.Fields["Character01"]),
		ShipTo:         str(row.Fields["Character02"]),
		Comment:        str(row.Fields["Character03"]),
		RcvComment:     str(row.Fields["Character04"]),
		ShipDate:       date(row.Fields["Date01"]),
		ActualShipDate: date(row.Fields["Date02"]),
		ReceiptDate:    date(row.Fields["Date03"]),
		IsTgp:          boolean(row.Fields["CheckBox01"]),
		IsShipped:      boolean(row.Fields["CheckBox02"]),
		IsReceived:     boolean(row.Fields["CheckBox03"]),
		Record:         row.ID,
	}, nil
}
