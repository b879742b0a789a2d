package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/pkg/adapters/memory"
	"github.com/aretw0/turtle/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	ttl      time.Duration
	fail     error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.mu.Lock()
	f.locked = append(f.locked, key)
	f.ttl = ttl
	f.mu.Unlock()
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocked = append(f.unlocked, key)
		return nil
	}, nil
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _, _ = mgr.Do(ctx, sid, nil)
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
	if subs := len(mgr.hub.subs); subs != 0 {
		t.Errorf("Expected no subscriber sets, got %d", subs)
	}
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &fakeLocker{}
	mgr := NewManager(memory.NewStore(), WithLocker(locker), WithLockTTL(5*time.Second))

	_, _, err := mgr.Do(context.Background(), "s", func(e *turtle.Engine) error {
		return e.Forward(1)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"s"}, locker.locked)
	assert.Equal(t, []string{"s"}, locker.unlocked)
	assert.Equal(t, 5*time.Second, locker.ttl)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	lockErr := errors.New("redis down")
	mgr := NewManager(memory.NewStore(), WithLocker(&fakeLocker{fail: lockErr}))

	called := false
	_, _, err := mgr.Do(context.Background(), "s", func(*turtle.Engine) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, lockErr)
	assert.False(t, called)
}

func TestHub_UnsubscribeCleansUp(t *testing.T) {
	h := newHub()
	_, cancel1 := h.subscribe("s", 1)
	_, cancel2 := h.subscribe("s", 1)

	cancel1()
	cancel1()
	assert.Len(t, h.subs["s"], 1)
	cancel2()
	assert.NotContains(t, h.subs, "s")
}
