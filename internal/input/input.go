// Package input routes key events to handlers registered by whoever currently
// owns the keyboard. Registration is explicit and returns the function that
// undoes it.
package input

import (
	"sync"

	"golang.org/x/mobile/event/key"
)

// Handler reacts to a key event. Returning true stops propagation to older
// handlers.
type Handler func(e key.Event) bool

// Bus is an ordered registry of key handlers. The newest handler sees events
// first. The zero value is ready to use.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []entry
}

type entry struct {
	id uint64
	fn Handler
}

// Register adds fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus) Register(fn Handler) (unregister func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, entry{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.handlers {
		if e.id == id {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}

// Len reports the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// Dispatch delivers e to the registered handlers and reports whether one of
// them consumed it. Handlers may register or unregister during dispatch.
func (b *Bus) Dispatch(e key.Event) bool {
	b.mu.Lock()
	hs := make([]entry, len(b.handlers))
	copy(hs, b.handlers)
	b.mu.Unlock()
	for i := len(hs) - 1; i >= 0; i-- {
		if hs[i].fn(e) {
			return true
		}
	}
	return false
}

// IsDelete reports whether e is a press of the forward Delete key. Backspace
// is not treated as delete so it stays available for text editing.
func IsDelete(e key.Event) bool {
	return e.Code == key.CodeDeleteForward && e.Direction != key.DirRelease
}
