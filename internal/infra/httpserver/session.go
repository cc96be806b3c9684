package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/application"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/app"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/middleware"
)

const sessionCookie = "guardian_session"

type session struct {
	app      *app.App
	lastSeen time.Time
}

// SessionStore keeps one App per page load, keyed by a random id held in
// a cookie. Idle sessions are evicted after ttl.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	clock    application.Clock
}

func NewSessionStore(ttl time.Duration, clock application.Clock) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		clock:    clock,
	}
}

// Create registers a and returns its id.
func (s *SessionStore) Create(a *app.App) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{app: a, lastSeen: s.clock.Now()}
	n := len(s.sessions)
	s.mu.Unlock()
	middleware.SetActiveSessions(n)
	return id
}

// Get returns the App for id and marks it as used.
func (s *SessionStore) Get(id string) (*app.App, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.clock.Now().Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		middleware.SetActiveSessions(len(s.sessions))
		return nil, false
	}
	sess.lastSeen = s.clock.Now()
	return sess.app, true
}

// Delete drops a session, e.g. when the page is loaded again.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	middleware.SetActiveSessions(n)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	now := s.clock.Now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()
	middleware.SetActiveSessions(n)
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func sessionID(req *http.Request) string {
	c, err := req.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
