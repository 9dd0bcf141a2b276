package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/records"
)

const maxAllocAttempts = 5

// Allocator produces new pack numbers without a central counter.
//
// The backend offers no atomic sequence, so this is an optimistic,
// self-healing generator: read the highest used sequence best-effort,
// then let the backend's duplicate-key rejection resolve races at
// create time. Concurrent allocators may collide; only the rejection,
// never a pre-check, decides the winner.
type Allocator struct {
	Gateway ports.Gateway
}

// Allocate assigns a key of the form YYMM + 4-digit sequence to seed and
// creates its header row. On success seed carries the allocated key and
// the stored row's identity/revision.
func (a *Allocator) Allocate(ctx context.Context, period time.Time, seed *domain.ShipmentHeader) (*domain.ShipmentHeader, error) {
	p := period.Format("0601")

	last, err := a.Gateway.AllocateLastSequence(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("allocate: read last sequence for period %s: %w", p, err)
	}

	var lastConflict error
	for attempt := 1; attempt <= maxAllocAttempts; attempt++ {
		seq := last + attempt
		if seq > 9999 {
			return nil, &domain.AllocationError{
				Attempts: attempt,
				LastErr:  fmt.Errorf("sequence space for period %s exhausted at %d", p, seq),
			}
		}

		seed.PackNum = fmt.Sprintf("%s%04d", p, seq)

		row, err := a.Gateway.CreateRecord(ctx, records.HeaderTable, records.HeaderFields(seed))
		if err == nil {
			seed.Record = row.ID
			log.Printf("op=allocate pack=%s attempts=%d", seed.PackNum, attempt)
			return seed, nil
		}

		// Only a duplicate-key rejection means another allocator won the
		// race; everything else aborts immediately.
		if !domain.IsDuplicateKey(err) {
			seed.PackNum = ""
			return nil, fmt.Errorf("allocate: create header %s: %w", p, err)
		}

		lastConflict = err
		log.Printf("op=allocate pack=%s attempt=%d conflict, retrying", seed.PackNum, attempt)
	}

	seed.PackNum = ""
	return nil, &domain.AllocationError{Attempts: maxAllocAttempts, LastErr: lastConflict}
}
