package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager is the checkpointer: it serializes access to each checkpoint key,
// enforces the append-only log and delegates persistence to a store.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.CheckpointStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker       ports.DistributedLocker // Optional distributed locker
	lockTTL      time.Duration
	saveAttempts int
	retryDelay   time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithSaveAttempts retries failed saves up to n attempts in total.
func WithSaveAttempts(n int, delay time.Duration) Option {
	return func(m *Manager) {
		if n > 0 {
			m.saveAttempts = n
		}
		m.retryDelay = delay
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the clock used to stamp checkpoints.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new checkpointer over the given store.
func NewManager(store ports.CheckpointStore, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		locks:        make(map[string]*lockEntry),
		lockTTL:      30 * time.Second,
		saveAttempts: 1,
		now:          time.Now,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load returns the stored checkpoint for key, or an empty one if none exists.
func (m *Manager) Load(ctx context.Context, key domain.CheckpointKey) (*domain.Checkpoint, error) {
	var cp *domain.Checkpoint
	err := m.withLock(ctx, key, func(ctx context.Context) error {
		var err error
		cp, err = m.load(ctx, key)
		return err
	})
	return cp, err
}

// Save commits cp outside of a turn. The append-only rule still applies.
func (m *Manager) Save(ctx context.Context, cp *domain.Checkpoint) error {
	return m.withLock(ctx, cp.Key, func(ctx context.Context) error {
		prev, err := m.load(ctx, cp.Key)
		if err != nil {
			return err
		}
		_, err = m.commit(ctx, prev, cp)
		return err
	})
}

// Delete removes the checkpoint from the store.
func (m *Manager) Delete(ctx context.Context, key domain.CheckpointKey) error {
	return m.withLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]domain.CheckpointKey, error) {
	return m.store.List(ctx)
}

// Store returns the underlying checkpoint store.
func (m *Manager) Store() ports.CheckpointStore {
	return m.store
}

// WithThread runs fn while holding the lock for key. The Thread handed to fn
// carries the checkpoint loaded at lock time and commits further checkpoints.
func (m *Manager) WithThread(ctx context.Context, key domain.CheckpointKey, fn func(context.Context, *Thread) error) error {
	return m.withLock(ctx, key, func(ctx context.Context) error {
		cp, err := m.load(ctx, key)
		if err != nil {
			return err
		}
		return fn(ctx, &Thread{m: m, current: cp})
	})
}

func (m *Manager) load(ctx context.Context, key domain.CheckpointKey) (*domain.Checkpoint, error) {
	cp, err := m.store.Load(ctx, key)
	if errors.Is(err, domain.ErrCheckpointNotFound) {
		return domain.NewCheckpoint(key), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint %s: %w", key, err)
	}
	return cp, nil
}

func (m *Manager) commit(ctx context.Context, prev, next *domain.Checkpoint) (*domain.Checkpoint, error) {
	if next.Key != prev.Key {
		return nil, fmt.Errorf("%w: key changed from %s to %s", domain.ErrInvalidSession, prev.Key, next.Key)
	}
	if !next.Messages.HasPrefix(prev.Messages) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLogRewritten, next.Key)
	}

	cp := next.Clone()
	cp.UpdatedAt = m.now().UTC()

	var err error
	for attempt := 1; attempt <= m.saveAttempts; attempt++ {
		if err = m.store.Save(ctx, cp); err == nil {
			return cp, nil
		}
		if attempt == m.saveAttempts || ctx.Err() != nil {
			break
		}
		m.logger.Warn("Checkpoint save failed, retrying",
			"key", cp.Key.String(),
			"attempt", attempt,
			"err", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to save checkpoint %s: %w", cp.Key, err)
}

func (m *Manager) withLock(ctx context.Context, key domain.CheckpointKey, fn func(context.Context) error) error {
	id := key.String()
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Thread is a locked view of one checkpoint key, valid only inside WithThread.
type Thread struct {
	m       *Manager
	current *domain.Checkpoint
}

// Checkpoint returns a copy of the last committed checkpoint.
func (t *Thread) Checkpoint() *domain.Checkpoint {
	return t.current.Clone()
}

// Commit persists cp. The log must extend the last committed log.
func (t *Thread) Commit(ctx context.Context, cp *domain.Checkpoint) (*domain.Checkpoint, error) {
	saved, err := t.m.commit(ctx, t.current, cp)
	if err != nil {
		return nil, err
	}
	t.current = saved
	return saved.Clone(), nil
}
