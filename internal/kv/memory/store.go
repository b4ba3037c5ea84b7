// Package memory is an in-process kv.Store. Updates are fully serialized.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/snapedit/backend/internal/kv"
)

var errClosed = errors.New("memory store: closed")

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// View runs fn with a read-only snapshot view.
func (s *Store) View(ctx context.Context, fn func(tx kv.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return fn(&tx{store: s, readOnly: true})
}

// Update runs fn under the write lock. Writes are buffered and applied only if fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(tx kv.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	t := &tx{store: s, writes: make(map[string][]byte)}
	if err := fn(t); err != nil {
		return err
	}
	for k, v := range t.writes {
		if v == nil {
			delete(s.data, k)
			continue
		}
		s.data[k] = v
	}
	return nil
}

// Close drops all data.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}

type tx struct {
	store    *Store
	readOnly bool
	// nil value marks a delete
	writes map[string][]byte
}

func (t *tx) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := t.writes[key]; ok {
		if v == nil {
			return nil, kv.ErrNotFound
		}
		return clone(v), nil
	}
	v, ok := t.store.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return clone(v), nil
}

func (t *tx) Put(_ context.Context, key string, value []byte) error {
	if t.readOnly {
		return errors.New("memory store: write in read-only transaction")
	}
	if value == nil {
		value = []byte{}
	}
	t.writes[key] = clone(value)
	return nil
}

func (t *tx) Delete(_ context.Context, key string) error {
	if t.readOnly {
		return errors.New("memory store: write in read-only transaction")
	}
	t.writes[key] = nil
	return nil
}

func (t *tx) Scan(_ context.Context, prefix string) ([]kv.Entry, error) {
	merged := make(map[string][]byte)
	for k, v := range t.store.data {
		if strings.HasPrefix(k, prefix) {
			merged[k] = v
		}
	}
	for k, v := range t.writes {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	entries := make([]kv.Entry, 0, len(merged))
	for k, v := range merged {
		entries = append(entries, kv.Entry{Key: k, Value: clone(v)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
