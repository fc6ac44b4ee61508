package search

import (
	"container/list"
	"sync"
)

// lru is a bounded least-recently-used map. Insertion order doubles as
// recency order: Get moves the entry to the most-recently-used position, and
// inserting beyond capacity evicts from the least-recently-used end.
// Safe for concurrent use; palette fetches run on their own goroutines.
type lru[K comparable, V any] struct {
	items    map[K]*list.Element
	order    *list.List
	capacity int
	mu       sync.Mutex
}

type lruEntry[K comparable, V any] struct {
	key K
	val V
}

func newLRU[K comparable, V any](capacity int) *lru[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &lru[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// get retrieves a value and marks it recently used.
func (l *lru[K, V]) get(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.order.MoveToFront(elem)
		return elem.Value.(*lruEntry[K, V]).val, true
	}
	var zero V
	return zero, false
}

// put adds or overwrites a value, evicting the least-recently-used entry
// first when a new key would exceed capacity.
func (l *lru[K, V]) put(key K, val V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		elem.Value.(*lruEntry[K, V]).val = val
		l.order.MoveToFront(elem)
		return
	}

	for l.order.Len() >= l.capacity {
		back := l.order.Back()
		if back == nil {
			break
		}
		l.order.Remove(back)
		delete(l.items, back.Value.(*lruEntry[K, V]).key)
	}

	l.items[key] = l.order.PushFront(&lruEntry[K, V]{key: key, val: val})
}

func (l *lru[K, V]) delete(key K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.order.Remove(elem)
		delete(l.items, key)
		return true
	}
	return false
}

func (l *lru[K, V]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}
