package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a user's lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates state access per user.
// Lock entries are reference counted and removed once unused.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given state store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu and call release(userID) after unlocking.
func (m *Manager) acquire(userID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		entry = &lockEntry{}
		m.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, userID)
	}
}

// Load retrieves a user's state. It returns domain.ErrStateNotFound when none is stored.
func (m *Manager) Load(ctx context.Context, userID string) (*domain.ConversationState, error) {
	var state *domain.ConversationState
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, userID)
		return err
	})
	return state, err
}

// LoadOrCreate returns the stored state or a new idle one, persisted immediately.
func (m *Manager) LoadOrCreate(ctx context.Context, userID string) (*domain.ConversationState, error) {
	var state *domain.ConversationState
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		state, err = m.loadOrNew(ctx, userID)
		if err != nil || !state.UpdatedAt.IsZero() {
			return err
		}
		state.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(ctx, userID, state); err != nil {
			return fmt.Errorf("failed to initialize state: %w", err)
		}
		return nil
	})
	return state, err
}

// Update applies fn to the user's state and saves the result, all under the user's lock.
// A missing state starts idle. The state is not saved when fn returns an error.
func (m *Manager) Update(ctx context.Context, userID string, fn func(*domain.ConversationState) error) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		state, err := m.loadOrNew(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}
		state.UpdatedAt = time.Now().UTC()
		return m.store.Save(ctx, userID, state)
	})
}

// Save persists the state.
func (m *Manager) Save(ctx context.Context, userID string, state *domain.ConversationState) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		return m.store.Save(ctx, userID, state)
	})
}

// Delete removes the user's state, returning them to idle.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		return m.store.Delete(ctx, userID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock runs fn while holding the user's lock.
// Calls on the same goroutine must not nest.
func (m *Manager) WithLock(ctx context.Context, userID string, fn func(context.Context) error) error {
	entry := m.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(userID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, userID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"user_id", userID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) loadOrNew(ctx context.Context, userID string) (*domain.ConversationState, error) {
	state, err := m.store.Load(ctx, userID)
	if errors.Is(err, domain.ErrStateNotFound) {
		return domain.NewConversationState(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return state, nil
}
