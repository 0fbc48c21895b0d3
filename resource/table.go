package resource

import (
	"sync"
)

// Table wraps a LocalBackend with observer notifications and Dropper support.
type Table struct {
	backend   *LocalBackend
	observers map[uint64]Observer
	nextObs   uint64
	obsMu     sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend:   NewLocalBackend(),
		observers: make(map[uint64]Observer),
	}
}

// Insert adds a value and returns its handle, or 0 once the table is closed.
func (t *Table) Insert(value any) Handle {
	handle, err := t.backend.Create(value)
	if err != nil {
		return 0
	}

	t.notify(Event{Type: EventCreated, Handle: handle, Value: value})
	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// Remove drops an entry and returns (value, true) if it was removed.
// Entries with outstanding borrows are not removed.
func (t *Table) Remove(handle Handle) (any, bool) {
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDropped, Handle: handle, Value: value})
	return value, true
}

// Borrow marks an entry as in use.
func (t *Table) Borrow(handle Handle) bool {
	if !t.backend.Borrow(handle) {
		return false
	}
	value, _ := t.backend.Get(handle)
	t.notify(Event{Type: EventBorrowed, Handle: handle, Value: value})
	return true
}

// ReturnBorrow ends a borrow started by Borrow.
func (t *Table) ReturnBorrow(handle Handle) bool {
	if !t.backend.ReturnBorrow(handle) {
		return false
	}
	value, _ := t.backend.Get(handle)
	t.notify(Event{Type: EventBorrowReturned, Handle: handle, Value: value})
	return true
}

// Subscribe adds an observer and returns a function that removes it.
func (t *Table) Subscribe(o Observer) (cancel func()) {
	t.obsMu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = o
	t.obsMu.Unlock()

	return func() {
		t.obsMu.Lock()
		delete(t.observers, id)
		t.obsMu.Unlock()
	}
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Each iterates over all live entries.
func (t *Table) Each(fn func(Handle, any) bool) {
	t.backend.Each(fn)
}

// Close drops all entries and stops accepting inserts.
func (t *Table) Close() error {
	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	observers := make([]Observer, 0, len(t.observers))
	for _, o := range t.observers {
		observers = append(observers, o)
	}
	t.obsMu.RUnlock()

	for _, o := range observers {
		o.OnResourceEvent(e)
	}
}
