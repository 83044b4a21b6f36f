// Package session provides the register session: an explicit object
// owning one in-progress cart, passed by handle to each operation
// instead of living in ambient global state.
package session

import (
	"context"
	"sync"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/cart"
	"tillbook/pkg/logger"
)

// Session is one open register session.
type Session struct {
	ID          id.ID      `json:"id"`
	CashierID   id.ID      `json:"cashierId"`
	CashierName string     `json:"cashierName"`
	Cart        *cart.Cart `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastActive  time.Time  `json:"lastActive"`
}

// Manager owns the open sessions of one process. Sessions are in-memory
// only: an abandoned cart's stock reservation is the single piece of
// state they hold, and the sweeper returns it.
type Manager struct {
	mu       sync.Mutex
	sessions map[id.ID]*Session
	reserver cart.StockReserver
	idleTTL  time.Duration
}

// NewManager creates a session manager. Sessions idle longer than idleTTL
// are eligible for sweeping.
func NewManager(reserver cart.StockReserver, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions: make(map[id.ID]*Session),
		reserver: reserver,
		idleTTL:  idleTTL,
	}
}

// Open starts a new session with an empty cart.
func (m *Manager) Open(cashierID id.ID, cashierName string) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:          id.New(),
		CashierID:   cashierID,
		CashierName: cashierName,
		Cart:        cart.New(m.reserver),
		CreatedAt:   now,
		LastActive:  now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get returns a session and marks it active.
func (m *Manager) Get(sessionID id.ID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, apperror.NewNotFound("session", sessionID)
	}
	s.LastActive = time.Now().UTC()
	return s, nil
}

// List returns all open sessions.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Close ends a session. A non-empty cart is abandoned: its stock
// reservation is released before the session is dropped. After a
// checkout the cart is already cleared, so closing releases nothing.
func (m *Manager) Close(ctx context.Context, sessionID id.ID) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return apperror.NewNotFound("session", sessionID)
	}
	return s.Cart.Abandon(ctx)
}

// SweepIdle abandons sessions idle past the TTL, returning their reserved
// stock to the catalog. Eager cart reservation means an abandoned cart
// silently holds stock; the sweep puts a bound on that.
func (m *Manager) SweepIdle(ctx context.Context) int {
	cutoff := time.Now().UTC().Add(-m.idleTTL)

	m.mu.Lock()
	var stale []*Session
	for sid, s := range m.sessions {
		if s.LastActive.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, sid)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		if err := s.Cart.Abandon(ctx); err != nil {
			logger.Error(ctx, "stale session abandon failed",
				"session_id", s.ID,
				"error", err,
			)
		} else {
			logger.Info(ctx, "stale session swept",
				"session_id", s.ID,
				"cashier", s.CashierName,
			)
		}
	}
	return len(stale)
}

// SweepAll abandons every session regardless of age. Used on shutdown so
// no reservation outlives the process.
func (m *Manager) SweepAll(ctx context.Context) int {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for sid, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, sid)
	}
	m.mu.Unlock()

	for _, s := range all {
		if err := s.Cart.Abandon(ctx); err != nil {
			logger.Error(ctx, "session abandon failed",
				"session_id", s.ID,
				"error", err,
			)
		}
	}
	return len(all)
}
