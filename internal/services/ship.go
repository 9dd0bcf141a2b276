package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/platform/obs"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/records"
)

// Ship/return transitions are explicit commands, never inferred from
// flag diffs: re-fetching data flips isShipped without ever reaching
// this file, which is what keeps refetches from re-triggering postings.

// RequestShip drives OPEN -> SHIPPED: flips the flag, posts the
// transfer, persists the header and re-synchronizes. Any precondition
// or posting failure reverts the flag locally and leaves the backend
// untouched.
func (s *EditSession) RequestShip(ctx context.Context, now time.Time) (err error) {
	defer obs.Time(ctx, "ship")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.header == nil {
		return fmt.Errorf("request ship: no shipment loaded")
	}
	if s.posting {
		return &domain.ValidationError{Field: "status", Reason: "a transition is already in progress"}
	}
	if s.header.IsShipped {
		return &domain.ValidationError{Field: "isShipped", Reason: "shipment is already shipped"}
	}

	s.posting = true
	defer func() { s.posting = false }()

	s.header.IsShipped = true
	if err := s.header.CanShip(); err != nil {
		s.header.IsShipped = false
		return err
	}

	req := ports.TransferRequest{
		PackNum: s.header.PackNum,
		From:    s.header.ShipFrom,
		To:      s.header.ShipTo,
		Date:    now,
	}
	msg, err := s.gw.PostTransfer(ctx, req)
	if err != nil {
		s.header.IsShipped = false
		return fmt.Errorf("request ship %s: post transfer: %w", s.header.PackNum, err)
	}
	log.Printf("op=ship pack=%s posted: %s", s.header.PackNum, msg)

	s.header.ActualShipDate = &now
	return s.persistAndResync(ctx, "request ship")
}

// RequestReturn drives SHIPPED -> OPEN via the compensating
// reverse-transfer posting. On failure the flag reverts to shipped.
func (s *EditSession) RequestReturn(ctx context.Context, now time.Time) (err error) {
	defer obs.Time(ctx, "return")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.header == nil {
		return fmt.Errorf("request return: no shipment loaded")
	}
	if s.posting {
		return &domain.ValidationError{Field: "status", Reason: "a transition is already in progress"}
	}
	if !s.header.IsShipped {
		return &domain.ValidationError{Field: "isShipped", Reason: "shipment is not shipped"}
	}
	if s.header.IsReceived {
		return &domain.ValidationError{Field: "isReceived", Reason: "received shipments cannot be returned"}
	}

	s.posting = true
	defer func() { s.posting = false }()

	s.header.IsShipped = false
	if err := s.header.CanShip(); err != nil {
		s.header.IsShipped = true
		return err
	}

	req := ports.TransferRequest{
		PackNum: s.header.PackNum,
		From:    s.header.ShipFrom,
		To:      s.header.ShipTo,
		Date:    now,
	}
	msg, err := s.gw.PostReverseTransfer(ctx, req)
	if err != nil {
		s.header.IsShipped = true
		return fmt.Errorf("request return %s: post reverse transfer: %w", s.header.PackNum, err)
	}
	log.Printf("op=return pack=%s posted: %s", s.header.PackNum, msg)

	s.header.ActualShipDate = nil
	return s.persistAndResync(ctx, "request return")
}

// Receive marks the shipment received once physical counting is
// reconciled. This is a plain field update, not a posting; once set it
// locks further line edits session-side.
func (s *EditSession) Receive(ctx context.Context, receiptDate time.Time, rcvComment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.header == nil {
		return fmt.Errorf("receive: no shipment loaded")
	}
	if !s.header.IsShipped {
		return &domain.ValidationError{Field: "isShipped", Reason: "only shipped shipments can be received"}
	}
	if s.header.IsReceived {
		return &domain.ValidationError{Field: "isReceived", Reason: "shipment is already received"}
	}

	s.header.IsReceived = true
	s.header.ReceiptDate = &receiptDate
	s.header.RcvComment = rcvComment
	if err := s.persistAndResync(ctx, "receive"); err != nil {
		s.header.IsReceived = false
		s.header.ReceiptDate = nil
		return err
	}
	return nil
}

// persistAndResync writes the header with its last-known revision and
// ends with a full refetch so the session reflects the backend's
// authoritative post-transition state. Callers hold the mutex.
func (s *EditSession) persistAndResync(ctx context.Context, op string) error {
	id := s.header.Record
	if s.snap != nil && s.snap.Header != nil {
		id = s.snap.Header.Record
	}

	if _, err := s.gw.UpdateRecord(ctx, records.HeaderTable, id, records.HeaderFields(s.header)); err != nil {
		return fmt.Errorf("%s %s: persist header: %w", op, s.header.PackNum, err)
	}
	if err := s.refetch(ctx, s.header.PackNum); err != nil {
		return fmt.Errorf("%s: resync: %w", op, err)
	}
	return nil
}
