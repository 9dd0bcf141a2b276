package services

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/records"
)

// Lookups resolves warehouse/bin/lot option sets, consulting the option
// cache before the backend. A fetch failure degrades to an empty option
// list; it never blocks the rest of the form.
type Lookups struct {
	Gateway ports.Gateway
	Cache   ports.OptionCache
}

func optionKey(parts ...string) string {
	return strings.Join(parts, "|")
}

// WarehouseOptions lists destination warehouses stocking a part.
func (lk *Lookups) WarehouseOptions(ctx context.Context, partNum string) []domain.LookupOption {
	return lk.fetch(ctx, domain.LookupWarehouse, records.WarehouseTable,
		optionKey(partNum),
		map[string]string{"PartNum": partNum})
}

// LotOptions lists lots on hand for a part. current, when non-empty and
// absent from the fresh candidates, is synthesized back in so editing
// never silently discards a previously saved value.
func (lk *Lookups) LotOptions(ctx context.Context, partNum, current string) []domain.LookupOption {
	opts := lk.fetch(ctx, domain.LookupLot, records.LotTable,
		optionKey(partNum),
		map[string]string{"PartNum": partNum})
	return withCurrent(opts, current)
}

// BinOptions lists bins filtered by part, warehouse and lot. The current
// selection is synthesized back in when missing, same as LotOptions.
func (lk *Lookups) BinOptions(ctx context.Context, partNum, warehouse, lot, current string) []domain.LookupOption {
	if warehouse == "" {
		return withCurrent(nil, current)
	}
	opts := lk.fetch(ctx, domain.LookupBin, records.BinTable,
		optionKey(partNum, warehouse, lot),
		map[string]string{"PartNum": partNum, "WarehouseCode": warehouse, "LotNum": lot})
	return withCurrent(opts, current)
}

func (lk *Lookups) fetch(ctx context.Context, kind domain.LookupKind, table, key string, filter map[string]string) []domain.LookupOption {
	if lk.Cache != nil {
		if opts, ok, err := lk.Cache.Get(kind, key); err == nil && ok {
			return opts
		}
	}

	rows, err := lk.Gateway.Lookup(ctx, table, filter)
	if err != nil {
		log.Printf("op=lookup kind=%s key=%s degraded to empty: %v", kind, key, err)
		return []domain.LookupOption{}
	}

	opts, err := records.OptionsFromRows(kind, rows)
	if err != nil {
		log.Printf("op=lookup kind=%s key=%s bad rows, degraded to empty: %v", kind, key, err)
		return []domain.LookupOption{}
	}

	// An empty candidate set is never cached: stock appearing later in
	// the session must become visible on the next fetch.
	if lk.Cache != nil && len(opts) > 0 {
		if err := lk.Cache.Put(kind, key, opts); err != nil {
			log.Printf("op=lookup kind=%s key=%s cache put failed: %v", kind, key, err)
		}
	}
	return opts
}

// withCurrent injects the currently assigned value as a selectable
// "(Current)" entry with zero quantity-on-hand when the fresh candidate
// set does not contain it.
func withCurrent(opts []domain.LookupOption, current string) []domain.LookupOption {
	if opts == nil {
		opts = []domain.LookupOption{}
	}
	if current == "" || domain.ContainsOption(opts, current) {
		return opts
	}
	return append(opts, domain.LookupOption{Code: current, Desc: "(Current)", Current: true})
}
