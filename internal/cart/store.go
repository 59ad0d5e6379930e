package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Store when no cart is stored for an owner.
var ErrNotFound = errors.New("cart not found")

// Store persists carts by owner.
type Store interface {
	// Load returns the stored cart or ErrNotFound.
	Load(ctx context.Context, owner string) (*Cart, error)

	// Save overwrites the stored cart. origin identifies the writer so that
	// change notifications can skip their own writes.
	Save(ctx context.Context, owner, origin string, c *Cart) error
}

// Change is a notification that owner's cart was written by origin.
type Change struct {
	Owner  string `json:"owner"`
	Origin string `json:"origin"`
}

// Watcher delivers change notifications from other writers.
type Watcher interface {
	// Watch calls fn for every change until ctx is done.
	Watch(ctx context.Context, fn func(Change)) error
}

// memoryStore keeps carts in process memory.
type memoryStore struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

// NewMemoryStore creates a Store backed by a map.
func NewMemoryStore() Store {
	return &memoryStore{carts: make(map[string]*Cart)}
}

func (s *memoryStore) Load(_ context.Context, owner string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *memoryStore) Save(_ context.Context, owner, _ string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[owner] = c.Clone()
	return nil
}
