package memory

import "sync"

// collection is an append-only arena of records of one entity type. The
// dense slice keeps insertion order; the index maps identifiers to slots.
// Each collection owns its identifier sequence and its lock, so assigning an
// identifier and storing the record happen in one critical section.
type collection[T any] struct {
	mu     sync.RWMutex
	nextID int64
	items  []T
	index  map[int64]int
	clone  func(T) T
}

func newCollection[T any](clone func(T) T) *collection[T] {
	return &collection[T]{
		nextID: 1,
		index:  make(map[int64]int),
		clone:  clone,
	}
}

// insert reserves the next identifier, lets build stamp it on the record and
// stores the result. The returned value is a copy.
func (c *collection[T]) insert(build func(id int64) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++

	rec := c.clone(build(id))
	c.index[id] = len(c.items)
	c.items = append(c.items, rec)
	return c.clone(rec)
}

func (c *collection[T]) get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slot, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.clone(c.items[slot]), true
}

// filter returns copies of the records matching keep, in insertion order.
// A nil keep selects everything. The result is never nil.
func (c *collection[T]) filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))
	for _, rec := range c.items {
		if keep == nil || keep(rec) {
			out = append(out, c.clone(rec))
		}
	}
	return out
}

// find returns the first record, in insertion order, matching match.
func (c *collection[T]) find(match func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, rec := range c.items {
		if match(rec) {
			return c.clone(rec), true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
