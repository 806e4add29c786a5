package session

import (
	"sync"

	"itemforge/server/internal/host"
)

// Registry holds the active sessions keyed by user. Session state is mutated
// on the app loop only, but lookups arrive from transport goroutines, so the
// map itself is guarded.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create stores the session, displacing any prior session the user still
// held. The prior session's panel is dismissed through the scheduler and the
// displaced session is returned so the caller can log its teardown.
func (r *Registry) Create(sess *Session, sched host.Scheduler) (prior *Session) {
	r.mu.Lock()
	prior = r.sessions[sess.UserID]
	r.sessions[sess.UserID] = sess
	r.mu.Unlock()
	if prior != nil {
		dismiss(prior, sched)
	}
	return prior
}

// Get returns the user's active session.
func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[userID]
	return sess, ok
}

// IsActive reports whether the user holds a session.
func (r *Registry) IsActive(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[userID]
	return ok
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Remove detaches the session without touching its panel. Used when the host
// already closed the panel on its side.
func (r *Registry) Remove(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	return sess, ok
}

// Close detaches the session and dismisses its panel. The dismissal runs
// through the scheduler because closing a panel from inside the host's own
// event dispatch would re-enter it.
func (r *Registry) Close(userID string, sched host.Scheduler) (*Session, bool) {
	sess, ok := r.Remove(userID)
	if !ok {
		return nil, false
	}
	dismiss(sess, sched)
	return sess, true
}

// CloseAll force-dismisses every panel and clears the registry. Used during
// shutdown and reload, where deferred scheduling may never run again.
func (r *Registry) CloseAll() []*Session {
	r.mu.Lock()
	closed := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		closed = append(closed, sess)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, sess := range closed {
		forceDismiss(sess.Panel)
	}
	return closed
}

// forceDismiss swallows panics from the host's dismiss path so one broken
// panel cannot abort a shutdown sweep.
func forceDismiss(panel host.PanelHandle) {
	if panel == nil || !panel.Displayed() {
		return
	}
	defer func() { recover() }()
	panel.Dismiss()
}

func dismiss(sess *Session, sched host.Scheduler) {
	panel := sess.Panel
	if panel == nil {
		return
	}
	if sched == nil {
		if panel.Displayed() {
			panel.Dismiss()
		}
		return
	}
	sched.Defer(func() {
		if panel.Displayed() {
			panel.Dismiss()
		}
	})
}
