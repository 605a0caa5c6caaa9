/*
sessions.go - Server-side composer sessions

PURPOSE:
  A composer is single-owner, synchronous state. Over HTTP each employee's
  composing tab gets a session: one Composer guarded by one mutex, kept in
  a size-bounded LRU with a sliding TTL. Sessions are never shared between
  employees and nothing in them is persisted until submission.

LIFECYCLE:
  POST /api/sessions            create (snapshot loaded from the store)
  POST /api/sessions/{id}/...   interaction events, serialized per session
  POST /api/sessions/{id}/submit persist the cart, then drop the session
  idle for sessions.ttl         evicted

SEE ALSO:
  - leave/composer.go: The state held per session
  - handlers.go: Session endpoints
*/
package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/warp/leave-composer/generic"
	"github.com/warp/leave-composer/leave"
	"go.uber.org/zap"
)

// Session is one employee's in-progress request.
type Session struct {
	ID         string
	EmployeeID string
	OrgID      string

	mu       sync.Mutex
	composer *leave.Composer
	version  int
}

// With runs fn with exclusive access to the session's composer.
func (s *Session) With(fn func(c *leave.Composer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.composer)
}

// Version counts cart changes; clients use it to detect stale views.
// Callers must hold the session via With.
func (s *Session) Version() int { return s.version }

// uuidSequence gives cart items globally unique ids.
type uuidSequence struct{}

func (uuidSequence) Next() string { return uuid.NewString() }

// SessionRegistry holds live sessions.
type SessionRegistry struct {
	cache  *expirable.LRU[string, *Session]
	clock  generic.Clock
	logger *zap.Logger
}

// NewSessionRegistry creates a registry holding at most max sessions, each
// evicted after ttl without access.
func NewSessionRegistry(max int, ttl time.Duration, clock generic.Clock, logger *zap.Logger) *SessionRegistry {
	if clock == nil {
		clock = generic.Today
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &SessionRegistry{clock: clock, logger: logger}
	r.cache = expirable.NewLRU[string, *Session](max, func(id string, s *Session) {
		r.logger.Debug("composer session evicted",
			zap.String("session_id", id),
			zap.String("employee_id", s.EmployeeID))
	}, ttl)
	return r
}

// Create opens a session on snap. A zero month starts on the current month.
func (r *SessionRegistry) Create(employeeID, orgID string, snap leave.Snapshot, month generic.TimePoint) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		OrgID:      orgID,
	}
	s.composer = leave.NewComposer(leave.Options{
		Snapshot: snap,
		Sequence: uuidSequence{},
		Clock:    r.clock,
		Month:    month,
		OnChange: func(items []leave.LeaveRequestItem) {
			s.version++
			r.logger.Debug("cart changed",
				zap.String("session_id", s.ID),
				zap.Int("items", len(items)))
		},
	})
	r.cache.Add(s.ID, s)
	return s
}

// Get returns a live session and refreshes its expiry.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	s, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", generic.ErrSessionNotFound, id)
	}
	r.cache.Add(id, s)
	return s, nil
}

// Delete drops a session.
func (r *SessionRegistry) Delete(id string) {
	r.cache.Remove(id)
}

// Len is the number of live sessions.
func (r *SessionRegistry) Len() int { return r.cache.Len() }
