package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/records"
)

// Snapshot is the last-fetched authoritative state of one shipment.
// It is owned by the editing session and never mutated by edits.
type Snapshot struct {
	Header *domain.ShipmentHeader
	Lines  []*domain.ShipmentLine
	Events []*domain.ScanEvent
}

// LineWrite is the ordered op batch persisting one existing line: its
// update row followed by create rows for its newly captured events.
type LineWrite struct {
	LineNum int
	Ops     []ports.RecordOp
}

// Plan is the minimal create/update/delete batch reconciling the working
// set against the last snapshot.
type Plan struct {
	HeaderCreate bool
	HeaderID     domain.RecordID
	HeaderFields map[string]any

	// NewBatch persists removed lines (delete rows first, events before
	// their line) and new lines with their seed events (create rows),
	// in one ordered call. NewBatchLineNums maps op index -> owning line
	// for failure reporting.
	NewBatch         []ports.RecordOp
	NewBatchLineNums []int

	// Updates are issued concurrently, one call per existing line.
	Updates []LineWrite
}

// BuildPlan diffs the working set against the last snapshot.
//
// The header always round-trips the snapshot's identity/revision merged
// with the current editable fields. Lines partition into new (no
// captured identity) and existing; only events flagged new are ever
// resubmitted. Delete rows precede create rows because the backend
// applies batch rows in order and a freed composite key may be reused.
func BuildPlan(header *domain.ShipmentHeader, lines []*domain.ShipmentLine, events []*domain.ScanEvent, removed []*domain.ShipmentLine, snap *Snapshot) *Plan {
	plan := &Plan{
		HeaderFields: records.HeaderFields(header),
		HeaderID:     header.Record,
	}
	if snap != nil && snap.Header != nil {
		plan.HeaderID = snap.Header.Record
	}
	plan.HeaderCreate = plan.HeaderID.IsZero()

	key := header.Key()

	// Removing a line removes its events too, and the backend enforces
	// referential cleanup by the caller: event deletes go first.
	for _, l := range removed {
		if l.IsNew() {
			continue
		}
		if snap != nil {
			for _, ev := range snap.Events {
				if ev.LineNum == l.LineNum && !ev.Record.IsZero() {
					plan.NewBatch = append(plan.NewBatch, ports.RecordOp{Kind: ports.OpDelete, ID: ev.Record})
					plan.NewBatchLineNums = append(plan.NewBatchLineNums, l.LineNum)
				}
			}
		}
		plan.NewBatch = append(plan.NewBatch, ports.RecordOp{Kind: ports.OpDelete, ID: l.Record})
		plan.NewBatchLineNums = append(plan.NewBatchLineNums, l.LineNum)
	}

	for _, l := range lines {
		if l.IsNew() {
			plan.NewBatch = append(plan.NewBatch, ports.RecordOp{Kind: ports.OpCreate, Fields: records.LineFields(key, l)})
			plan.NewBatchLineNums = append(plan.NewBatchLineNums, l.LineNum)
			for _, ev := range events {
				if ev.IsNew && ev.LineNum == l.LineNum {
					plan.NewBatch = append(plan.NewBatch, ports.RecordOp{Kind: ports.OpCreate, Fields: records.EventFields(key, ev)})
					plan.NewBatchLineNums = append(plan.NewBatchLineNums, l.LineNum)
				}
			}
			continue
		}

		write := LineWrite{
			LineNum: l.LineNum,
			Ops: []ports.RecordOp{
				{Kind: ports.OpUpdate, ID: l.Record, Fields: records.LineFields(key, l)},
			},
		}
		for _, ev := range events {
			if ev.IsNew && ev.LineNum == l.LineNum {
				write.Ops = append(write.Ops, ports.RecordOp{Kind: ports.OpCreate, Fields: records.EventFields(key, ev)})
			}
		}
		plan.Updates = append(plan.Updates, write)
	}

	return plan
}

// ExecutePlan persists a plan. Header failure is fatal and aborts the
// save. Line failures (the new-line batch or any of the concurrent
// existing-line updates) are collected into a PartialBatchError: the
// header stays committed and the caller refetches for ground truth.
func ExecutePlan(ctx context.Context, gw ports.Gateway, plan *Plan) error {
	if plan.HeaderCreate {
		if _, err := gw.CreateRecord(ctx, records.HeaderTable, plan.HeaderFields); err != nil {
			return fmt.Errorf("reconcile: create header: %w", err)
		}
	} else {
		if _, err := gw.UpdateRecord(ctx, records.HeaderTable, plan.HeaderID, plan.HeaderFields); err != nil {
			return fmt.Errorf("reconcile: update header: %w", err)
		}
	}

	var failures []domain.LineFailure

	if len(plan.NewBatch) > 0 {
		results, err := gw.BatchApply(ctx, records.ChildTable, plan.NewBatch)
		if err != nil {
			for _, num := range uniqueLineNums(plan.NewBatchLineNums) {
				failures = append(failures, domain.LineFailure{LineNum: num, Err: err})
			}
		} else {
			seen := map[int]bool{}
			for i, res := range results {
				if res.Err == nil || i >= len(plan.NewBatchLineNums) {
					continue
				}
				num := plan.NewBatchLineNums[i]
				if !seen[num] {
					seen[num] = true
					failures = append(failures, domain.LineFailure{LineNum: num, Err: res.Err})
				}
			}
		}
	}

	// Existing-line updates fan out as independent calls joined before
	// reporting; a failing subset never cancels the others.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, u := range plan.Updates {
		wg.Add(1)
		go func(u LineWrite) {
			defer wg.Done()

			results, err := gw.BatchApply(ctx, records.ChildTable, u.Ops)
			if err == nil {
				for _, res := range results {
					if res.Err != nil {
						err = res.Err
						break
					}
				}
			}
			if err != nil {
				mu.Lock()
				failures = append(failures, domain.LineFailure{LineNum: u.LineNum, Err: fmt.Errorf("update line %d: %w", u.LineNum, err)})
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].LineNum < failures[j].LineNum })
		return &domain.PartialBatchError{Failures: failures}
	}
	return nil
}

func uniqueLineNums(nums []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}
