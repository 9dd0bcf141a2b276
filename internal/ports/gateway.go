package ports

import (
	"context"
	"time"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

// One loosely-typed backend row: opaque identity/revision plus the named
// fields the backend stores for it.
type Row struct {
	ID     domain.RecordID
	Fields map[string]any
}

// Tag for one operation inside a batch.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// One tagged row in a BatchApply call. The backend applies batch rows in
// the order given; deletes that free a composite key must precede any
// create that reuses it.
type RecordOp struct {
	Kind   OpKind
	ID     domain.RecordID
	Fields map[string]any
}

// Per-operation outcome of a BatchApply call.
type OpResult struct {
	ID  domain.RecordID
	Err error
}

// Parameters of a transfer or reverse-transfer posting.
type TransferRequest struct {
	PackNum string
	From    string
	To      string
	Date    time.Time
}

// Port: the external system of record. Implementations classify their
// wire-level failures into the domain error taxonomy; callers never see
// protocol detail.
type Gateway interface {
	// Best-effort read of the highest used key sequence for a YYMM
	// period. Not a reservation; concurrent allocators may race.
	AllocateLastSequence(ctx context.Context, period string) (int, error)

	CreateRecord(ctx context.Context, table string, fields map[string]any) (Row, error)
	UpdateRecord(ctx context.Context, table string, id domain.RecordID, fields map[string]any) (domain.RecordID, error)
	DeleteRecord(ctx context.Context, table string, id domain.RecordID) error

	// BatchApply honors the submitted row order.
	BatchApply(ctx context.Context, table string, ops []RecordOp) ([]OpResult, error)

	// Lookup returns rows matching an exact-field filter.
	Lookup(ctx context.Context, table string, filter map[string]string) ([]Row, error)

	// GUIDExists reports whether a scan-event guid is already stored
	// anywhere in the backend.
	GUIDExists(ctx context.Context, guid string) (bool, error)

	PostTransfer(ctx context.Context, req TransferRequest) (string, error)
	PostReverseTransfer(ctx context.Context, req TransferRequest) (string, error)
}
