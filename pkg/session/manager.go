package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active locks

	hub *hub

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	engineOpts []turtle.Option
	now        func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager and the engines it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithEngineOptions sets the options used for every engine (canvas of new
// sessions, hooks, metrics).
func WithEngineOptions(opts ...turtle.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		hub:     newHub(),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Do runs fn against the engine of the session, creating the session when it
// does not exist yet. The record is saved even when fn fails: commands
// appended before the failure are part of the log.
//
// It returns the saved record, the commands appended by this call (for a new
// session this includes the initial reset) and the error of fn.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(*turtle.Engine) error) (*domain.Record, []domain.Command, error) {
	if sessionID == "" {
		return nil, nil, fmt.Errorf("session id cannot be empty")
	}

	var (
		rec      *domain.Record
		appended []domain.Command
		fnErr    error
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, from, err := m.open(ctx, sessionID)
		if err != nil {
			return err
		}

		if fn != nil {
			fnErr = fn(eng)
		}

		rec = eng.Snapshot()
		rec.UpdatedAt = m.now().UTC()
		if err := m.store.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		appended = eng.Log().Since(from)
		// Subscribers see commands in log order only if publishing happens
		// under the session lock.
		if len(appended) > 0 {
			m.hub.publish(sessionID, appended)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if fnErr != nil {
		m.logger.Debug("session call failed", "session", sessionID, "err", fnErr)
	}
	return rec, appended, fnErr
}

// open restores the engine of a session, or starts a new one. from is the
// last command ID already persisted.
func (m *Manager) open(ctx context.Context, sessionID string) (*turtle.Engine, uint64, error) {
	opts := append([]turtle.Option{turtle.WithLogger(m.logger)}, m.engineOpts...)
	opts = append(opts, turtle.WithName(sessionID))

	rec, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		m.logger.Info("session created", "session", sessionID)
		return turtle.New(opts...), 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load session: %w", err)
	}

	eng, err := turtle.Restore(rec, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to restore session: %w", err)
	}
	var from uint64
	if last, ok := eng.Log().Last(); ok {
		from = last.ID
	}
	return eng, from, nil
}

// Load retrieves an existing session record from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Record, error) {
	var rec *domain.Record
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		rec, err = m.store.Load(ctx, sessionID)
		return err
	})
	return rec, err
}

// Delete removes the session from the store and closes its subscriptions.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
	if err == nil {
		m.hub.closeSession(sessionID)
	}
	return err
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Subscribe streams the commands appended to a session through this manager.
// Slow subscribers lose commands rather than slowing down callers; they can
// resync with the record. The returned function unsubscribes.
func (m *Manager) Subscribe(sessionID string, buffer int) (<-chan domain.Command, func()) {
	return m.hub.subscribe(sessionID, buffer)
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
