package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// seedKeys are the records NewFromFiles looks for as <key>.json.
var seedKeys = []string{"categories", "expenses"}

// Store is an in-process KV. Nothing survives a restart.
type Store struct {
	mu     sync.Mutex
	items  map[string][]byte
	closed bool
}

var errClosed = errors.New("memory store closed")

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewFromFiles preloads records from <base>/categories.json and
// <base>/expenses.json when present. Missing or unreadable files are ignored.
func NewFromFiles(base string) *Store {
	s := New()
	for _, key := range seedKeys {
		data, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil || len(data) == 0 {
			continue
		}
		s.items[key] = data
	}
	return s
}

// Get returns a copy of the stored value.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, errClosed
	}
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
