package interview

import "sync"

// SessionStore keeps the in-memory sessions keyed by patient identifier and
// serializes all access per patient. Different patients never contend on the
// same lock; the map-level mutex is held only long enough to find or create
// an entry.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session // nil when no session exists for the patient
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]*sessionEntry),
	}
}

func (s *SessionStore) entry(patientID string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[patientID]
	if !ok {
		e = &sessionEntry{}
		s.entries[patientID] = e
	}
	return e
}

// WithSession runs fn while holding the patient's entry lock. The session
// passed to fn is nil when the patient has no live session; fn's return value
// becomes the stored session (returning nil removes it). This is the single
// mutation path, so check-then-create on Start and turn appends on Answer
// cannot interleave for one patient.
func (s *SessionStore) WithSession(patientID string, fn func(*Session) (*Session, error)) error {
	e := s.entry(patientID)
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.session)
	if err != nil {
		return err
	}
	e.session = next
	return nil
}
