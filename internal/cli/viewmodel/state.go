// Package viewmodel holds the observable state of the product list and of
// the sign-in flow, and folds repository results into it.
package viewmodel

import "sync"

// observable fans a value out to subscribers. Each subscriber channel holds
// only the latest value it has not read yet.
type observable[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan T
}

func (o *observable[T]) subscribe(current T) (<-chan T, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.subs == nil {
		o.subs = map[int]chan T{}
	}
	id := o.nextID
	o.nextID++
	ch := make(chan T, 1)
	ch <- current
	o.subs[id] = ch

	return ch, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if _, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(ch)
		}
	}
}

func (o *observable[T]) publish(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ch := range o.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

func (o *observable[T]) closeAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, ch := range o.subs {
		delete(o.subs, id)
		close(ch)
	}
}

// errorText returns err's message, or fallback when it has none.
func errorText(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
