package game

import (
	"errors"
	"sync"
)

var (
	ErrNameTaken   = errors.New("a game with that name already exists")
	ErrNotFound    = errors.New("game not found")
	ErrBadPassword = errors.New("wrong password")
	ErrSessionFull = errors.New("game already has two players")
)

// Registry is the process-wide map from game name to live session. Sessions
// exist only here; once removed they are gone.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create reserves a name and seats the host. A finished session still hanging
// in the map does not block its name.
func (r *Registry) Create(name, password string, host Slot) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// the session's status is written under its own lock, so read it there too
	if existing, ok := r.sessions[name]; ok && existing.CurrentStatus() != StatusFinished {
		return nil, ErrNameTaken
	}

	s := NewSession(name, password, host)
	r.sessions[name] = s

	return s, nil
}

// Join seats the second player in a waiting session of that name.
func (r *Registry) Join(name, password string, joiner Slot) (*Session, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	if err := s.Join(password, joiner); err != nil {
		return nil, err
	}

	return s, nil
}

func (r *Registry) Get(name string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[name]
	if !ok {
		return nil, ErrNotFound
	}

	return s, nil
}

func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, name)
}

// Joinable reports whether a session with the given name exists and still has
// an open seat. Used by the lobby pre-flight endpoint.
func (r *Registry) Joinable(name string) (exists, joinable bool) {
	s, err := r.Get(name)
	if err != nil {
		return false, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return true, s.Status == StatusWaiting && s.Joiner == nil
}
