package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLock_FreesUnusedKeys(t *testing.T) {
	k := newKeyedLock()

	unlock := k.Lock("a")
	runlock := k.RLock("b")
	assert.Equal(t, 2, k.size())

	unlock()
	runlock()
	assert.Zero(t, k.size())
}

func TestKeyedLock_ExcludesSameKeyOnly(t *testing.T) {
	k := newKeyedLock()
	unlockA := k.Lock("a")

	// A different key is not blocked.
	done := make(chan struct{})
	go func() {
		k.Lock("b")()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}

	acquired := make(chan struct{})
	go func() {
		k.RLock("a")()
		close(acquired)
	}()
	select {
	case <-acquired:
		t.Fatal("reader acquired a while writer held it")
	case <-time.After(50 * time.Millisecond):
	}

	unlockA()
	<-acquired
}

func TestKeyedLock_Counter(t *testing.T) {
	k := newKeyedLock()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("n")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, k.size())
}
