package chat

import (
	"sync"
	"testing"
)

func TestConversationLocks_SerializesSameConversation(t *testing.T) {
	locks := newConversationLocks()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(7)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestConversationLocks_DistinctConversationsDoNotBlock(t *testing.T) {
	locks := newConversationLocks()

	unlockA := locks.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(2)
		unlockB()
		close(done)
	}()

	<-done
}

func TestConversationLocks_DropsEntryAfterLastRelease(t *testing.T) {
	locks := newConversationLocks()

	unlock := locks.Lock(3)
	unlock()

	locks.mu.Lock()
	held := len(locks.held)
	locks.mu.Unlock()
	if held != 0 {
		t.Errorf("held entries = %d, want 0", held)
	}
}
