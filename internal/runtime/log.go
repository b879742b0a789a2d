package runtime

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/aretw0/turtle/pkg/domain"
)

// CommandLog is the append-only history of an engine.
//
// The log slot holds an immutable slice. Appending builds a new slice and
// swaps it in, so a reader holding an earlier result of Commands keeps a
// stable view. Appends come from a single writer (the engine); any number of
// goroutines may read or subscribe.
type CommandLog struct {
	entries atomic.Pointer[[]domain.Command]

	mu          sync.RWMutex
	subscribers map[chan domain.Command]struct{}
}

// NewCommandLog creates a log seeded with existing commands (e.g. a restored
// session). The seed is copied.
func NewCommandLog(seed ...domain.Command) *CommandLog {
	l := &CommandLog{subscribers: make(map[chan domain.Command]struct{})}
	initial := append([]domain.Command(nil), seed...)
	l.entries.Store(&initial)
	return l
}

// Commands returns the current sequence. The slice is shared and must be
// treated as read-only.
func (l *CommandLog) Commands() []domain.Command {
	entries := *l.entries.Load()
	return entries[:len(entries):len(entries)]
}

// Len returns the number of commands appended so far.
func (l *CommandLog) Len() int {
	return len(*l.entries.Load())
}

// Last returns the most recent command.
func (l *CommandLog) Last() (domain.Command, bool) {
	entries := *l.entries.Load()
	if len(entries) == 0 {
		return domain.Command{}, false
	}
	return entries[len(entries)-1], true
}

// Since returns the commands whose ID is greater than id, in log order.
// A renderer that remembers the last ID it drew can catch up with it.
func (l *CommandLog) Since(id uint64) []domain.Command {
	entries := *l.entries.Load()
	i := sort.Search(len(entries), func(i int) bool { return entries[i].ID > id })
	return entries[i:len(entries):len(entries)]
}

// Subscribe registers for a notification per appended command. Delivery never
// blocks the engine: when the buffer is full the command is dropped and the
// subscriber is expected to resync through Since. The returned function
// unsubscribes and closes the channel.
func (l *CommandLog) Subscribe(buffer int) (<-chan domain.Command, func()) {
	ch := make(chan domain.Command, buffer)

	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subscribers, ch)
			close(ch)
		})
	}
}

func (l *CommandLog) append(cmd domain.Command) {
	old := *l.entries.Load()
	next := make([]domain.Command, len(old)+1)
	copy(next, old)
	next[len(old)] = cmd
	l.entries.Store(&next)

	l.mu.RLock()
	defer l.mu.RUnlock()
	for ch := range l.subscribers {
		select {
		case ch <- cmd:
		default:
		}
	}
}
