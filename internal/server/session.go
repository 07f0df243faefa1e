package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
)

// Session holds the per-user state: the loaded dataset and the last tabular
// result (for CSV download). A new upload replaces the dataset wholesale.
// The mutex serializes interactions within one session; a failed query must
// leave Dataset and LastTable untouched.
type Session struct {
	ID string

	mu        sync.Mutex
	dataset   *dataset.Dataset
	lastTable *dataset.Table
}

// Do runs fn while holding the session lock.
func (s *Session) Do(fn func(ds *dataset.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.dataset)
}

// SetDataset replaces the dataset and clears the previous result.
func (s *Session) SetDataset(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.lastTable = nil
}

// SetLastTable records the last tabular result.
func (s *Session) SetLastTable(t *dataset.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTable = t
}

// LastTable returns the last tabular result, or nil.
func (s *Session) LastTable() *dataset.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTable
}

// Store is the in-memory session registry. Sessions are never persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session with a fresh id.
func (st *Store) Create() *Session {
	s := &Session{ID: uuid.NewString()}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given id, or nil.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}
