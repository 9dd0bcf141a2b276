package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
)

// In-memory Gateway used by tests and local runs. It enforces the same
// contracts the real backend does: composite-key uniqueness on create,
// revision matching on update/delete, guid uniqueness for scan rows, and
// batch rows applied strictly in submitted order.
//
// Failures can be scripted per composite key or per posting, and every
// call is appended to Calls so tests can assert calls that must NOT
// happen.
type MockGateway struct {
	mu     sync.Mutex
	tables map[string]map[string]*mockRow
	nextID int

	// LastSeq seeds AllocateLastSequence per period.
	LastSeq map[string]int

	// KnownGUIDs marks guids stored outside any row in this mock, as if
	// another shipment elsewhere had recorded them.
	KnownGUIDs map[string]bool

	// Scripted failures.
	FailCreate   map[string]error // composite row key -> error
	FailUpdate   map[string]error // row identity -> error
	FailTransfer error
	FailReverse  error
	FailLookup   map[string]error // table -> error

	Calls []string
}

type mockRow struct {
	id     domain.RecordID
	fields map[string]any
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		tables:     map[string]map[string]*mockRow{},
		LastSeq:    map[string]int{},
		KnownGUIDs: map[string]bool{},
		FailCreate: map[string]error{},
		FailUpdate: map[string]error{},
		FailLookup: map[string]error{},
	}
}

// RowKey builds the composite key string the mock stores rows under.
func RowKey(fields map[string]any) string {
	parts := make([]string, 0, 8)
	for _, k := range []string{"Key1", "Key2", "Key3", "Key4", "Key5", "ChildKey1", "ChildKey2", "ChildKey3"} {
		s, _ := fields[k].(string)
		parts = append(parts, s)
	}
	return strings.Join(parts, "|")
}

func (g *MockGateway) record(call string) {
	g.Calls = append(g.Calls, call)
}

// CallsMatching counts recorded calls containing substr.
func (g *MockGateway) CallsMatching(substr string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.Calls {
		if strings.Contains(c, substr) {
			n++
		}
	}
	return n
}

// find locates a row by its opaque identity. Assumes the mutex is held.
func (g *MockGateway) find(table, identity string) (string, *mockRow, error) {
	for key, row := range g.table(table) {
		if row.id.Identity == identity {
			return key, row, nil
		}
	}
	return "", nil, &domain.TransportError{
		Status:  404,
		Message: fmt.Sprintf("row %q not found in %s", identity, table),
	}
}

func (g *MockGateway) table(name string) map[string]*mockRow {
	t, ok := g.tables[name]
	if !ok {
		t = map[string]*mockRow{}
		g.tables[name] = t
	}
	return t
}

func (g *MockGateway) AllocateLastSequence(ctx context.Context, period string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("alloc " + period)
	return g.LastSeq[period], nil
}

func (g *MockGateway) CreateRecord(ctx context.Context, table string, fields map[string]any) (ports.Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	row, err := g.create(table, fields)
	if err != nil {
		return ports.Row{}, err
	}
	return ports.Row{ID: row.id, Fields: cloneFields(row.fields)}, nil
}

// create assumes the mutex is held.
func (g *MockGateway) create(table string, fields map[string]any) (*mockRow, error) {
	key := RowKey(fields)
	g.record(fmt.Sprintf("create %s %s", table, key))

	if err := g.FailCreate[key]; err != nil {
		return nil, err
	}

	t := g.table(table)
	if _, exists := t[key]; exists {
		return nil, &domain.ConflictError{
			Kind:    domain.ConflictDuplicateKey,
			Key:     key,
			Message: fmt.Sprintf("record %q already exists", key),
		}
	}

	if guid, ok := fields["ChildKey3"].(string); ok && guid != "" {
		if g.guidExists(guid) {
			return nil, &domain.ConflictError{
				Kind:    domain.ConflictDuplicateGUID,
				Key:     guid,
				Message: "duplicate scan guid",
			}
		}
	}

	g.nextID++
	row := &mockRow{
		id:     domain.RecordID{Identity: fmt.Sprintf("ROW-%06d", g.nextID), Revision: 1},
		fields: cloneFields(fields),
	}
	t[key] = row
	return row, nil
}

func (g *MockGateway) UpdateRecord(ctx context.Context, table string, id domain.RecordID, fields map[string]any) (domain.RecordID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.update(table, id, fields)
}

// update assumes the mutex is held.
func (g *MockGateway) update(table string, id domain.RecordID, fields map[string]any) (domain.RecordID, error) {
	g.record(fmt.Sprintf("update %s %s", table, id.Identity))

	if err := g.FailUpdate[id.Identity]; err != nil {
		return domain.RecordID{}, err
	}

	key, row, err := g.find(table, id.Identity)
	if err != nil {
		return domain.RecordID{}, err
	}
	if row.id.Revision != id.Revision {
		return domain.RecordID{}, &domain.ConflictError{
			Kind:    domain.ConflictStaleRevision,
			Key:     key,
			Message: fmt.Sprintf("revision %d does not match stored %d", id.Revision, row.id.Revision),
		}
	}

	row.fields = cloneFields(fields)
	row.id.Revision++

	// A field update may move the row to a different composite key.
	newKey := RowKey(row.fields)
	if newKey != key {
		t := g.table(table)
		delete(t, key)
		t[newKey] = row
	}
	return row.id, nil
}

func (g *MockGateway) DeleteRecord(ctx context.Context, table string, id domain.RecordID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delete(table, id)
}

// delete assumes the mutex is held.
func (g *MockGateway) delete(table string, id domain.RecordID) error {
	g.record(fmt.Sprintf("delete %s %s", table, id.Identity))

	key, row, err := g.find(table, id.Identity)
	if err != nil {
		return err
	}
	if row.id.Revision != id.Revision {
		return &domain.ConflictError{
			Kind:    domain.ConflictStaleRevision,
			Key:     key,
			Message: fmt.Sprintf("revision %d does not match stored %d", id.Revision, row.id.Revision),
		}
	}
	delete(g.table(table), key)
	return nil
}

func (g *MockGateway) BatchApply(ctx context.Context, table string, ops []ports.RecordOp) ([]ports.OpResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(fmt.Sprintf("batch %s n=%d", table, len(ops)))

	results := make([]ports.OpResult, 0, len(ops))
	for _, op := range ops {
		var res ports.OpResult
		switch op.Kind {
		case ports.OpCreate:
			row, err := g.create(table, op.Fields)
			if err != nil {
				res.Err = err
			} else {
				res.ID = row.id
			}
		case ports.OpUpdate:
			id, err := g.update(table, op.ID, op.Fields)
			if err != nil {
				res.Err = err
			} else {
				res.ID = id
			}
		case ports.OpDelete:
			res.ID = op.ID
			res.Err = g.delete(table, op.ID)
		default:
			res.Err = fmt.Errorf("unknown op kind %q", op.Kind)
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *MockGateway) Lookup(ctx context.Context, table string, filter map[string]string) ([]ports.Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(fmt.Sprintf("lookup %s %v", table, filter))

	if err := g.FailLookup[table]; err != nil {
		return nil, err
	}

	var out []ports.Row
	for _, row := range g.table(table) {
		match := true
		for k, want := range filter {
			got, _ := row.fields[k].(string)
			if got != want {
				match = false
				break
			}
		}
		if match {
			out = append(out, ports.Row{ID: row.id, Fields: cloneFields(row.fields)})
		}
	}
	return out, nil
}

func (g *MockGateway) GUIDExists(ctx context.Context, guid string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("guid " + guid)
	return g.guidExists(guid), nil
}

// guidExists assumes the mutex is held.
func (g *MockGateway) guidExists(guid string) bool {
	if g.KnownGUIDs[guid] {
		return true
	}
	for _, t := range g.tables {
		for _, row := range t {
			if s, _ := row.fields["ChildKey3"].(string); s == guid {
				return true
			}
		}
	}
	return false
}

func (g *MockGateway) PostTransfer(ctx context.Context, req ports.TransferRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("post transfer " + req.PackNum)
	if g.FailTransfer != nil {
		return "", g.FailTransfer
	}
	return fmt.Sprintf("transfer %s posted %s -> %s", req.PackNum, req.From, req.To), nil
}

func (g *MockGateway) PostReverseTransfer(ctx context.Context, req ports.TransferRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("post reverse " + req.PackNum)
	if g.FailReverse != nil {
		return "", g.FailReverse
	}
	return fmt.Sprintf("reverse transfer %s posted %s -> %s", req.PackNum, req.To, req.From), nil
}

// SeedLookupRow inserts a lookup row directly, bypassing key checks.
func (g *MockGateway) SeedLookupRow(table string, fields map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	t := g.table(table)
	t[fmt.Sprintf("seed-%06d", g.nextID)] = &mockRow{
		id:     domain.RecordID{Identity: fmt.Sprintf("ROW-%06d", g.nextID), Revision: 1},
		fields: cloneFields(fields),
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
