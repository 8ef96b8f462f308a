package streak

import (
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// KeyedMutex hands out one mutex per key. Entries are never evicted, which is
// fine at one small mutex per (user, task) pair.
type KeyedMutex struct {
	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: xsync.NewMapOf[string, *sync.Mutex]()}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	mu, _ := k.locks.LoadOrCompute(key, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()
	return mu.Unlock
}

func streakKey(userID string, taskID uint) string {
	return fmt.Sprintf("%s/%d", userID, taskID)
}
