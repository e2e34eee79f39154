package game

import "sync"

// SessionStore is the in-memory mapping from session id to session.
// It exclusively owns all sessions; nothing else keeps references past
// the manager's lock.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// FindByPlayer resolves free-text replies that carry no session id.
// Linear scan; the store never holds more than a handful of rooms.
func (s *SessionStore) FindByPlayer(playerID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.State != Terminal && sess.Player(playerID) != nil {
			return sess
		}
	}
	return nil
}

// FindByChat returns the first non-terminal session of the given kind
// whose participants include the chat, preferring active ones.
func (s *SessionStore) FindByChat(kind Kind, chatID string, state State) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.Kind == kind && sess.State == state && sess.ChatID == chatID {
			return sess
		}
	}
	return nil
}

// FindWaiting returns a waiting session of the kind, optionally matching
// a room name.
func (s *SessionStore) FindWaiting(kind Kind, name string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.Kind != kind || sess.State != Waiting {
			continue
		}
		if name == "" || sess.Name == name {
			return sess
		}
	}
	return nil
}

func (s *SessionStore) All() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
