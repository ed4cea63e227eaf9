package chat

import "sync"

// conversationLocks serializes mutating transcript operations per
// conversation id. A global lock would stall unrelated conversations, so
// each id gets its own mutex; entries are reference counted and dropped
// once the last holder releases.
type conversationLocks struct {
	mu   sync.Mutex
	held map[uint]*convLock
}

type convLock struct {
	mu   sync.Mutex
	refs int
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{held: make(map[uint]*convLock)}
}

// Lock acquires the mutex for the given conversation and returns the
// release function.
func (l *conversationLocks) Lock(conversationID uint) func() {
	l.mu.Lock()
	entry := l.held[conversationID]
	if entry == nil {
		entry = &convLock{}
		l.held[conversationID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.held, conversationID)
		}
		l.mu.Unlock()
	}
}
