package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// View is what callers see after an operation.
type View struct {
	Items []Item `json:"items"`
	Totals
	// Open asks the client to open the cart view.
	Open bool `json:"open"`
}

// Manager reads and writes carts through the Store, which is authoritative.
// Store failures are logged and never returned: a cart that could not be
// saved is kept in memory until a later save succeeds or another writer
// replaces it.
type Manager struct {
	mu      sync.Mutex
	pending map[string]*Cart
	store   Store
	origin  string
	logger  zerolog.Logger
}

// NewManager creates a cart manager writing through store.
func NewManager(store Store, logger zerolog.Logger) *Manager {
	return &Manager{
		pending: make(map[string]*Cart),
		store:   store,
		origin:  uuid.NewString(),
		logger:  logger.With().Str("component", "cart-manager").Logger(),
	}
}

// Get returns the owner's cart.
func (m *Manager) Get(ctx context.Context, owner string) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	return view(m.load(ctx, owner), false)
}

// Add increments or inserts item and asks the client to open the cart view.
func (m *Manager) Add(ctx context.Context, owner string, item Item) View {
	return m.mutate(ctx, owner, true, func(c *Cart) { c.Add(item) })
}

// Remove deletes a line.
func (m *Manager) Remove(ctx context.Context, owner, id string) View {
	return m.mutate(ctx, owner, false, func(c *Cart) { c.Remove(id) })
}

// Increment adds one to a line.
func (m *Manager) Increment(ctx context.Context, owner, id string) View {
	return m.mutate(ctx, owner, false, func(c *Cart) { c.Increment(id) })
}

// Decrement subtracts one from a line, removing it at zero.
func (m *Manager) Decrement(ctx context.Context, owner, id string) View {
	return m.mutate(ctx, owner, false, func(c *Cart) { c.Decrement(id) })
}

// Clear empties the owner's cart.
func (m *Manager) Clear(ctx context.Context, owner string) {
	m.mutate(ctx, owner, false, func(c *Cart) { c.Clear() })
}

// Snapshot returns deep copies of the owner's lines as currently stored.
func (m *Manager) Snapshot(ctx context.Context, owner string) []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(ctx, owner).Items()
}

// Watch applies change notifications from other writers until ctx is done.
func (m *Manager) Watch(ctx context.Context, watcher Watcher) error {
	return watcher.Watch(ctx, func(change Change) {
		if change.Origin == m.origin {
			return
		}
		m.Refresh(change.Owner)
	})
}

// Refresh drops the unsaved local copy of the owner's cart, if any. The
// other writer's stored cart wins (last writer wins).
func (m *Manager) Refresh(owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pending[owner]; !ok {
		return
	}
	delete(m.pending, owner)

	m.logger.Debug().Str("owner", owner).Msg("unsaved cart replaced by external change")
}

// Pending returns the number of carts held in memory because the store
// rejected their last save.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Manager) mutate(ctx context.Context, owner string, open bool, fn func(*Cart)) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.load(ctx, owner)
	fn(c)

	if err := m.store.Save(ctx, owner, m.origin, c); err != nil {
		m.logger.Warn().Err(err).Str("owner", owner).Msg("failed to persist cart, continuing in memory")
		m.pending[owner] = c
	} else {
		delete(m.pending, owner)
	}

	return view(c, open)
}

// load must be called with mu held. An unsaved local copy is newer than the
// stored one and is used until it is saved.
func (m *Manager) load(ctx context.Context, owner string) *Cart {
	if c, ok := m.pending[owner]; ok {
		return c
	}

	c, err := m.store.Load(ctx, owner)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn().Err(err).Str("owner", owner).Msg("failed to load cart, starting empty in memory")
		}
		return New()
	}
	return c
}

func view(c *Cart, open bool) View {
	return View{
		Items:  c.Items(),
		Totals: c.Totals(),
		Open:   open,
	}
}
