package handlers

import (
	"context"
	"sync"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/ports"
	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/services"
)

// SessionRegistry hands out one EditSession per shipment. Sessions are
// created on first touch and dropped once the shipment is received;
// the session's own mutex serializes concurrent requests for the same
// shipment.
type SessionRegistry struct {
	mu       sync.Mutex
	gw       ports.Gateway
	lookups  *services.Lookups
	sessions map[string]*services.EditSession
}

func NewSessionRegistry(gw ports.Gateway, lookups *services.Lookups) *SessionRegistry {
	return &SessionRegistry{
		gw:       gw,
		lookups:  lookups,
		sessions: map[string]*services.EditSession{},
	}
}

// New returns an unbound session for shipment creation.
func (r *SessionRegistry) New() *services.EditSession {
	return services.NewEditSession(r.gw, r.lookups)
}

// Adopt registers a session under its allocated pack number.
func (r *SessionRegistry) Adopt(packNum string, s *services.EditSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[packNum] = s
}

// Get returns the open session for packNum, loading one when absent.
func (r *SessionRegistry) Get(ctx context.Context, packNum string) (*services.EditSession, error) {
	r.mu.Lock()
	s, ok := r.sessions[packNum]
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	s = services.NewEditSession(r.gw, r.lookups)
	if err := s.Load(ctx, packNum); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[packNum]; ok {
		return existing, nil
	}
	r.sessions[packNum] = s
	return s, nil
}

// Drop discards the session for packNum, if any.
func (r *SessionRegistry) Drop(packNum string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, packNum)
}
