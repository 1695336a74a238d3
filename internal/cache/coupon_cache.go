package cache

import (
	"context"
	"sync"
)

// MemorySlot is a process-local key-value slot. It is the default backing
// for the coupon store and what tests run against.
type MemorySlot struct {
	mu    sync.RWMutex
	store map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{
		store: make(map[string][]byte),
	}
}

// Load returns nil, nil for a key that was never saved.
func (c *MemorySlot) Load(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.store[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), val...), nil
}

func (c *MemorySlot) Save(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = append([]byte(nil), value...)
	return nil
}
