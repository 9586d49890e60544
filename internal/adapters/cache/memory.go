package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry struct {
	key     string
	value   []byte
	expires time.Time
}

// Memory is a bounded in-process cache with TTL expiry and LRU eviction.
type Memory struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // front is most recently used
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-memory cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        DefaultTTL,
		maxEntries: 10_000,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a live entry. Expired entries are dropped on access.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*entry)
	if !m.now().Before(e.expires) {
		m.removeElement(el)
		return nil, false, nil
	}
	m.order.MoveToFront(el)
	return e.value, true, nil
}

// Set stores a copy of value.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := append([]byte(nil), value...)
	expires := m.now().Add(m.ttl)

	if el, ok := m.items[key]; ok {
		e := el.Value.(*entry)
		e.value, e.expires = v, expires
		m.order.MoveToFront(el)
		return nil
	}

	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.evict()
	}
	m.items[key] = m.order.PushFront(&entry{key: key, value: v, expires: expires})
	return nil
}

// Delete removes keys.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		if el, ok := m.items[k]; ok {
			m.removeElement(el)
		}
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// accessed.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// evict drops the least recently used entry. Must be called with m.mu held.
func (m *Memory) evict() {
	if el := m.order.Back(); el != nil {
		m.removeElement(el)
	}
}

func (m *Memory) removeElement(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*entry).key)
}
