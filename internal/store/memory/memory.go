// internal/store/memory/memory.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tamzrod/probe-harvester/internal/store"
)

// Store keeps everything in process memory. Used for dry runs and tests.
type Store struct {
	mu       sync.RWMutex
	readings []store.Reading
	statuses []store.ConnectionStatus

	// fail, when set, is returned by every insert.
	fail error
}

func New() *Store {
	return &Store{}
}

func (s *Store) InsertReading(_ context.Context, r store.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	s.readings = append(s.readings, r)
	return nil
}

func (s *Store) InsertConnectionStatus(_ context.Context, st store.ConnectionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	s.statuses = append(s.statuses, st)
	return nil
}

// SetFail makes every later insert return err; nil clears it.
func (s *Store) SetFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Readings returns a copy of every stored reading, oldest first.
func (s *Store) Readings() []store.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Reading, len(s.readings))
	copy(out, s.readings)
	return out
}

// Statuses returns a copy of every stored connection status, oldest first.
func (s *Store) Statuses() []store.ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.ConnectionStatus, len(s.statuses))
	copy(out, s.statuses)
	return out
}
