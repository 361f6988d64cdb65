// Package observable holds a single value and pushes its latest state to
// subscribers. A subscriber receives the current value on subscription and
// afterwards the newest value after every change. Pending values that a slow
// subscriber has not read yet are replaced, never queued.
package observable

import "sync"

type Value[T any] struct {
	mu   sync.RWMutex
	cur  T
	subs map[int]chan T
	next int
}

func New[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[int]chan T),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Set replaces the value and notifies subscribers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = val
	v.broadcast()
}

// Update applies fn to the current value under the write lock and returns the
// stored result.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = fn(v.cur)
	v.broadcast()
	return v.cur
}

// Subscribe registers a listener. The returned cancel func unregisters it and
// closes the channel; it is safe to call more than once.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = ch
	ch <- v.cur
	v.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if _, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Subscribers returns the number of active listeners.
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

// broadcast must be called with the write lock held. Each channel has a
// buffer of one: a stale unread value is drained before the new one is sent.
func (v *Value[T]) broadcast() {
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v.cur
	}
}
