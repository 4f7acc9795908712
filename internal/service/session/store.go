package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/burn-studio/backend/internal/model/workout"
)

var ErrSessionNotFound = errors.New("session not found")

// Option tunes a Store.
type Option func(*Store)

// WithIdleTTL expires sessions that have not been touched for ttl.
// Zero keeps sessions until restart.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Store) { s.idleTTL = ttl }
}

// WithMaxSessions caps the number of live sessions. When full, creating a
// session evicts the least recently used one. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Store) { s.maxSessions = n }
}

type entry struct {
	session   workout.Session
	result    workout.PredictionResult
	hasResult bool
	lastSeen  time.Time
}

// Store keeps anonymous form sessions and the last result of each in memory.
// Nothing survives a restart.
type Store struct {
	mu          sync.Mutex
	entries     map[string]*entry
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession provisions a new anonymous session.
func (s *Store) CreateSession(_ context.Context) (workout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	if s.maxSessions > 0 && len(s.entries) >= s.maxSessions {
		s.evictOldestLocked()
	}

	sess := workout.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	s.entries[sess.ID] = &entry{session: sess, lastSeen: now}
	return sess, nil
}

// GetSession retrieves a session by identifier.
func (s *Store) GetSession(_ context.Context, sessionID string) (workout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(sessionID)
	if err != nil {
		return workout.Session{}, err
	}
	return e.session, nil
}

// SaveResult replaces the held result of the session.
func (s *Store) SaveResult(_ context.Context, sessionID string, result workout.PredictionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(sessionID)
	if err != nil {
		return err
	}
	e.result = result
	e.hasResult = true
	return nil
}

// LastResult returns the held result. The boolean is false until the first
// successful submission of the session.
func (s *Store) LastResult(_ context.Context, sessionID string) (workout.PredictionResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touchLocked(sessionID)
	if err != nil {
		return workout.PredictionResult{}, false, err
	}
	return e.result, e.hasResult, nil
}

func (s *Store) touchLocked(sessionID string) (*entry, error) {
	e, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.entries, sessionID)
		return nil, ErrSessionNotFound
	}
	e.lastSeen = now
	return e, nil
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(e.lastSeen) > s.idleTTL
}

func (s *Store) pruneLocked(now time.Time) {
	if s.idleTTL <= 0 {
		return
	}
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
		}
	}
}

func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}
