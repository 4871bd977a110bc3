// Package session holds the client-side credential record and its
// persistence strategies.
package session

import (
	"sync"
	"time"

	"github.com/attendly/attendly-cli/internal/errs"
	"github.com/attendly/attendly-cli/internal/model"
)

// Session is the credential record owned by the API client: token pair,
// access-token expiry and the cached identity snapshot.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         model.User
}

// Complete reports whether all required fields are present. A record failing
// this check must be discarded as a whole.
func (s *Session) Complete() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != "" && !s.ExpiresAt.IsZero()
}

// ExpiresWithin reports whether the access token expires within d from now.
func (s *Session) ExpiresWithin(d time.Duration) bool {
	return s != nil && !time.Now().Before(s.ExpiresAt.Add(-d))
}

// Store abstracts session persistence. Implementations must treat the four
// persisted fields as a unit: Save writes them together, Clear removes them
// together, and Load rejects partial records.
type Store interface {
	// Load returns the persisted session, errs.ErrNoSession when none is
	// stored, or errs.ErrCorruptSession for an incomplete/undecodable record.
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// MemStore is an in-memory Store for tests and ephemeral use.
type MemStore struct {
	mu   sync.Mutex
	sess *Session
}

func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, errs.ErrNoSession
	}
	cpy := *m.sess
	return &cpy, nil
}

func (m *MemStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cpy := *s
	m.sess = &cpy
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
