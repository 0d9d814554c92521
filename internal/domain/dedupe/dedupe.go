// Package dedupe tracks mutation event ids so replays are applied once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// defaultMaxSize bounds the remembered ids when no option is given.
const defaultMaxSize = 50000

// Deduper records seen event ids to ensure at-most-once application.
type Deduper interface {
	// SeenAndRecord reports whether id was seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a rejected event can be resubmitted.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// Window remembers the most recent ids. When full, the oldest id is evicted.
// A non-positive size keeps every id.
type Window struct {
	mu      sync.Mutex
	order   *list.List
	index   map[string]*list.Element
	maxSize int
}

// New creates a window deduper.
func New(opts ...Option) *Window {
	w := &Window{
		maxSize: defaultMaxSize,
		order:   list.New(),
		index:   make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SeenAndRecord implements Deduper.
func (w *Window) SeenAndRecord(_ context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index[id]; ok {
		return true
	}
	if w.maxSize > 0 && w.order.Len() >= w.maxSize {
		oldest := w.order.Front()
		delete(w.index, oldest.Value.(string))
		w.order.Remove(oldest)
	}
	w.index[id] = w.order.PushBack(id)
	return false
}

// Unrecord implements Deduper.
func (w *Window) Unrecord(_ context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if el, ok := w.index[id]; ok {
		w.order.Remove(el)
		delete(w.index, id)
	}
}

// Size returns the number of remembered ids.
func (w *Window) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(w.order.Len())
}
