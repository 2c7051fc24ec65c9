package http

import (
	"sync"

	"github.com/google/uuid"

	"go-token-swap/session"
)

// registry tracks live sessions by handle. One widget mount maps to one
// session; deleting the handle closes the session.
type registry struct {
	lock     sync.RWMutex
	sessions map[string]*session.Session
}

func newRegistry() *registry {
	return &registry{
		sessions: map[string]*session.Session{},
	}
}

// add stores a session under a fresh handle.
func (r *registry) add(s *session.Session) string {
	id := uuid.NewString()
	r.lock.Lock()
	defer r.lock.Unlock()
	r.sessions[id] = s
	return id
}

// get looks up a live session.
func (r *registry) get(id string) (*session.Session, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// remove drops a session and closes it.
func (r *registry) remove(id string) bool {
	r.lock.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.lock.Unlock()

	if ok {
		s.Close()
	}
	return ok
}
