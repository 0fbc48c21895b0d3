// Package resource provides the handle table backing live module handles.
//
// Each loaded module handle owns one entry. The table holds the handle's
// state, never the handle itself, so an entry does not keep a handle
// reachable: the loader removes the entry when the handle is released or
// reclaimed by the garbage collector.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	h := table.Insert(state)
//
//	// Retrieve value by handle
//	value, ok := table.Get(h)
//
//	// Remove; values implementing Dropper are dropped
//	value, ok := table.Remove(h)
//
// # Borrows
//
// An entry is borrowed while its module body is being evaluated. Remove
// refuses entries with outstanding borrows; the caller retries after the
// last ReturnBorrow.
//
// # Observers
//
//	cancel := table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventCreated:
//	        log.Printf("entry %d created", e.Handle)
//	    case resource.EventDropped:
//	        log.Printf("entry %d dropped", e.Handle)
//	    }
//	}))
//	defer cancel()
package resource
