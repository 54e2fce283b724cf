package terminal

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrSessionNotFound = errors.New("terminal session not found")
	ErrRateLimited     = errors.New("too many commands, slow down")
)

// ManagerConfig tunes session lifetime and command throttling.
type ManagerConfig struct {
	TTL       time.Duration
	RevealFor time.Duration
	Rate      rate.Limit
	Burst     int
	// MaxSessions bounds the live sessions; creating one more evicts the
	// longest idle.
	MaxSessions int
}

// DefaultSweepInterval is used by Run when given a non-positive interval.
const DefaultSweepInterval = time.Minute

type managedSession struct {
	session *Session
	limiter *rate.Limiter
}

// Manager keeps the web visitors' sessions, keyed by cookie id.
type Manager struct {
	mu       sync.RWMutex
	interp   *Interpreter
	cfg      ManagerConfig
	sessions map[string]*managedSession
	clock    func() time.Time
}

// NewManager creates a manager. Zero config fields fall back to 30 minute
// sessions, 5 commands per second with a burst of 10 and at most 10000
// sessions.
func NewManager(interp *Interpreter, cfg ManagerConfig) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.RevealFor <= 0 {
		cfg.RevealFor = DefaultRevealFor
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 10000
	}
	return &Manager{
		interp:   interp,
		cfg:      cfg,
		sessions: make(map[string]*managedSession),
		clock:    time.Now,
	}
}

// Create starts a new session.
func (m *Manager) Create(opts ...SessionOption) *Session {
	opts = append([]SessionOption{WithRevealFor(m.cfg.RevealFor), WithClock(m.clock)}, opts...)
	s := NewSession(m.interp, opts...)

	m.mu.Lock()
	var evicted *Session
	if len(m.sessions) >= m.cfg.MaxSessions {
		evicted = m.evictIdlest()
	}
	m.sessions[s.ID] = &managedSession{
		session: s,
		limiter: rate.NewLimiter(m.cfg.Rate, m.cfg.Burst),
	}
	m.mu.Unlock()

	if evicted != nil {
		evicted.Close()
	}
	return s
}

// evictIdlest removes the session seen longest ago. m.mu must be held.
func (m *Manager) evictIdlest() *Session {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, ms := range m.sessions {
		if seen := ms.session.LastSeen(); oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID == "" {
		return nil
	}
	s := m.sessions[oldestID].session
	delete(m.sessions, oldestID)
	return s
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	ms, found := m.sessions[id]
	m.mu.RUnlock()
	if !found {
		return nil, ErrSessionNotFound
	}
	return ms.session, nil
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// unknown or expired.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, err := m.Get(id); err == nil {
			return s, false
		}
	}
	return m.Create(), true
}

// Submit runs input in the session, subject to its rate limit.
func (m *Manager) Submit(id, input string) (Result, bool, error) {
	m.mu.RLock()
	ms, found := m.sessions[id]
	m.mu.RUnlock()
	if !found {
		return Result{}, false, ErrSessionNotFound
	}
	if !ms.limiter.AllowN(m.clock(), 1) {
		return Result{}, false, ErrRateLimited
	}
	res, dispatched := ms.session.Submit(input)
	return res, dispatched, nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (m *Manager) Sweep() int {
	cutoff := m.clock().Add(-m.cfg.TTL)

	m.mu.Lock()
	var expired []*Session
	for id, ms := range m.sessions {
		if ms.session.LastSeen().Before(cutoff) {
			expired = append(expired, ms.session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done, then closes
// every remaining session.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Printf("Expired %d idle terminal sessions", n)
			}
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ms := range m.sessions {
		ms.session.Close()
		delete(m.sessions, id)
	}
}
