package bridge

import (
	"errors"
	"sync"
)

var (
	mu     sync.RWMutex
	global NativePlatform
)

// Register is called once from native (Swift/Kotlin) before Start().
func Register(n NativePlatform) {
	mu.Lock()
	global = n
	mu.Unlock()
}

// Safe returns the registered platform, adapted, or an error if
// Register was never called.
func Safe() (Platform, error) {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return nil, errors.New("bridge: no NativePlatform registered")
	}
	return Adapt(global), nil
}
