package loader

import (
	"github.com/google/uuid"

	"github.com/wippyai/modload/resource"
)

// EventType identifies a handle lifecycle event.
type EventType uint8

const (
	EventLoaded EventType = iota
	EventEvaluating
	EventSettled
	EventReleased
	EventReclaimed
)

func (t EventType) String() string {
	switch t {
	case EventLoaded:
		return "loaded"
	case EventEvaluating:
		return "evaluating"
	case EventSettled:
		return "settled"
	case EventReleased:
		return "released"
	case EventReclaimed:
		return "reclaimed"
	default:
		return "unknown"
	}
}

// Event describes a change in a handle's lifecycle. It never carries the
// handle itself, so observers cannot keep an unreachable handle alive.
type Event struct {
	// Err is the stored failure of a settled evaluation.
	Err    error
	Module string
	Handle uuid.UUID
	Type   EventType
	State  SlotState
}

// Observer receives handle lifecycle events. Events are delivered
// synchronously; reclaim events arrive on the runtime's cleanup goroutine.
type Observer interface {
	OnModuleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnModuleEvent(e Event) {
	f(e)
}

// translate maps a live table event onto a handle lifecycle event.
func translate(e resource.Event) (Event, bool) {
	st, ok := e.Value.(*handleState)
	if !ok {
		return Event{}, false
	}

	state, err := st.slot.snapshot()
	ev := Event{
		Module: st.module,
		Handle: st.id,
		State:  state,
	}

	switch e.Type {
	case resource.EventCreated:
		ev.Type = EventLoaded
	case resource.EventBorrowed:
		ev.Type = EventEvaluating
	case resource.EventBorrowReturned:
		ev.Type = EventSettled
		ev.Err = err
	case resource.EventDropped:
		ev.Type = EventReleased
		if st.reclaimed.Load() {
			ev.Type = EventReclaimed
		}
	default:
		return Event{}, false
	}
	return ev, true
}
