package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/idgen"
)

// LoopResolver loads and saves loops for editor sessions. *LoopService
// satisfies it.
type LoopResolver interface {
	LoopSaver
	Resolve(ctx context.Context, id string, payload *domain.SharePayload) (domain.Loop, error)
}

// Snapshot is the state of an editor session after an operation.
type Snapshot struct {
	State domain.EditorState `json:"state"`
	Loop  domain.Loop        `json:"loop"`
}

// Session wraps one loop's WaypointEditor behind a mutex, so the editor sees
// one transition at a time and each transition's write finishes before the
// next begins.
type Session struct {
	mu     sync.Mutex
	editor *WaypointEditor
}

// Apply runs fn with exclusive access to the editor and returns the state
// that results. The snapshot is valid even when fn returns an error.
func (s *Session) Apply(fn func(e *WaypointEditor) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.editor)
	return Snapshot{State: s.editor.State(), Loop: s.editor.Loop()}, err
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot() Snapshot {
	snap, _ := s.Apply(func(*WaypointEditor) error { return nil })
	return snap
}

// SessionManager keeps one editor session per loop for the lifetime of the
// process. Every caller working on the same loop shares its session.
type SessionManager struct {
	loops LoopResolver
	seq   *idgen.Sequence

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager constructs a SessionManager. All sessions draw waypoint
// ids from seq.
func NewSessionManager(loops LoopResolver, seq *idgen.Sequence) *SessionManager {
	return &SessionManager{loops: loops, seq: seq, sessions: make(map[string]*Session)}
}

// Open returns the session for loopID, loading the loop from the store the
// first time. Returns domain.ErrLoopNotFound if the device has no record.
func (m *SessionManager) Open(ctx context.Context, loopID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[loopID]; ok {
		return s, nil
	}
	l, err := m.loops.Resolve(ctx, loopID, nil)
	if err != nil {
		return nil, fmt.Errorf("service.SessionManager.Open: %w", err)
	}
	s := &Session{editor: NewWaypointEditor(l, m.loops, m.seq)}
	m.sessions[loopID] = s
	return s, nil
}

// Forget drops the session for loopID, e.g. after the loop was discarded.
func (m *SessionManager) Forget(loopID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, loopID)
}
