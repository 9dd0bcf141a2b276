package records

import (
	"fmt"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
)

// Lookup record sets and their code fields, per backend table.
const (
	WarehouseTable = "PlantWhse"
	BinTable       = "WhseBin"
	LotTable       = "PartLot"
)

// OptionFromRow maps one lookup row into a selectable option.
func OptionFromRow(kind domain.LookupKind, row ports.Row) (domain.LookupOption, error) {
	switch kind {
	case domain.LookupWarehouse:
		return domain.LookupOption{
			Code: str(row.Fields["WarehouseCode"]),
			Desc: str(row.Fields["Description"]),
		}, nil
	case domain.LookupBin:
		q, err := qty(row.Fields["QtyOnHand"])
		if err != nil {
			return domain.LookupOption{}, fmt.Errorf("bin option row %q: %w", row.ID.Identity, err)
		}
		return domain.LookupOption{Code: str(row.Fields["BinNum"]), QtyOnHand: q}, nil
	case domain.LookupLot:
		q, err := qty(row.Fields["QtyOnHand"])
		if err != nil {
			return domain.LookupOption{}, fmt.Errorf("lot option row %q: %w", row.ID.Identity, err)
		}
		return domain.LookupOption{Code: str(row.Fields["LotNum"]), QtyOnHand: q}, nil
	default:
		return domain.LookupOption{}, fmt.Errorf("unknown lookup kind %q", kind)
	}
}

// OptionsFromRows maps a fetched row set, skipping rows with empty codes.
func OptionsFromRows(kind domain.LookupKind, rows []ports.Row) ([]domain.LookupOption, error) {
	opts := make([]domain.LookupOption, 0, len(rows))
	for _, row := range rows {
		o, err := OptionFromRow(kind, row)
		if err != nil {
			return nil, err
		}
		if o.Code == "" {
			continue
		}
		opts = append(opts, o)
	}
	return opts, nil
}
