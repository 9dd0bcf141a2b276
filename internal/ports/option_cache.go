package ports

import "github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"

// Port: cache for warehouse/bin/lot option sets, keyed by lookup kind
// and a caller-built context key (part, warehouse, lot joined). Cache
// keys are expected to be consistent (e.g., normalized) by the caller.
type OptionCache interface {
	// Get returns the cached options and whether the key was present.
	Get(kind domain.LookupKind, key string) ([]domain.LookupOption, bool, error)
	Put(kind domain.LookupKind, key string, opts []domain.LookupOption) error
}
