package ringbuffer

import "sync"

// RingBuffer is a fixed-capacity ordered buffer. When full, pushing a
// new entry evicts the oldest one. Entries are addressable by a key so
// callers can look up and remove individual entries without scanning.
type RingBuffer[K comparable, V any] struct {
	mu sync.RWMutex

	entries []entry[K, V]
	index   map[K]int

	head int
	size int
}

type entry[K comparable, V any] struct {
	key   K
	value V
	live  bool
}

// New creates a RingBuffer holding at most capacity entries. A capacity
// of zero or less panics.
func New[K comparable, V any](capacity int) *RingBuffer[K, V] {
	if capacity <= 0 {
		panic("ringbuffer: capacity must be positive")
	}

	return &RingBuffer[K, V]{
		entries: make([]entry[K, V], capacity),
		index:   make(map[K]int, capacity),
	}
}

// Push appends a value, evicting the oldest entry when the buffer is
// full. Pushing an existing key overwrites the value in place without
// changing its position.
func (rb *RingBuffer[K, V]) Push(key K, value V) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if pos, ok := rb.index[key]; ok {
		rb.entries[pos].value = value

		return
	}

	pos := (rb.head + rb.size) % len(rb.entries)

	if rb.size == len(rb.entries) {
		// Full: the slot at head holds the oldest entry.
		old := rb.entries[rb.head]
		if old.live {
			delete(rb.index, old.key)
		}

		pos = rb.head
		rb.head = (rb.head + 1) % len(rb.entries)
	} else {
		rb.size++
	}

	rb.entries[pos] = entry[K, V]{key: key, value: value, live: true}
	rb.index[key] = pos
}

// Get returns the value for the key.
func (rb *RingBuffer[K, V]) Get(key K) (V, bool) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	pos, ok := rb.index[key]
	if !ok {
		var zero V

		return zero, false
	}

	return rb.entries[pos].value, true
}

// Remove deletes the entry for the key. Its slot stays occupied until it
// rotates out, preserving eviction order for the remaining entries.
func (rb *RingBuffer[K, V]) Remove(key K) (V, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	pos, ok := rb.index[key]
	if !ok {
		var zero V

		return zero, false
	}

	value := rb.entries[pos].value
	rb.entries[pos].live = false

	var zeroEntry entry[K, V]
	rb.entries[pos].key = zeroEntry.key
	rb.entries[pos].value = zeroEntry.value

	delete(rb.index, key)

	return value, true
}

// Len returns the number of live entries.
func (rb *RingBuffer[K, V]) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	return len(rb.index)
}

// Range calls f for each live entry from oldest to newest, stopping when
// f returns false.
func (rb *RingBuffer[K, V]) Range(f func(key K, value V) bool) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	for i := 0; i < rb.size; i++ {
		e := rb.entries[(rb.head+i)%len(rb.entries)]
		if !e.live {
			continue
		}

		if !f(e.key, e.value) {
			return
		}
	}
}
