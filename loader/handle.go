package loader

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/wippyai/modload"
	"github.com/wippyai/modload/env"
	"github.com/wippyai/modload/resource"
)

// Handle is an opaque reference to a loaded module. Every Load returns a new
// handle; handles compare equal only to themselves. A handle owns its source,
// its frozen environment spec and its cache slot.
type Handle struct {
	st       *handleState
	registry *Registry
	cleanup  runtime.Cleanup
	refs     atomic.Int32
}

// handleState is everything a handle owns. The live table and the cleanup
// hold the state, never the *Handle, so the handle stays collectable.
type handleState struct {
	source    *modload.Source
	spec      *env.Spec
	module    string
	slot      slot
	srcMu     sync.Mutex
	id        uuid.UUID
	seq       resource.Handle
	reclaimed atomic.Bool
	dropped   atomic.Bool
}

// Drop implements resource.Dropper.
func (st *handleState) Drop() {
	st.slot.release()
	st.srcMu.Lock()
	st.source = nil
	st.srcMu.Unlock()
}

func (st *handleState) loadSource() *modload.Source {
	st.srcMu.Lock()
	defer st.srcMu.Unlock()
	return st.source
}

// ID returns the handle's process-unique label.
func (h *Handle) ID() uuid.UUID {
	return h.st.id
}

// Module returns the display name of the loaded module.
func (h *Handle) Module() string {
	return h.st.module
}

// Spec returns the environment spec frozen at load.
func (h *Handle) Spec() *env.Spec {
	return h.st.spec
}

// State returns the current state of the handle's cache slot.
func (h *Handle) State() SlotState {
	state, _ := h.st.slot.snapshot()
	return state
}

// Type returns the introspection type name of a handle.
func (h *Handle) Type() string {
	return TypeModule
}

// ByReference implements env.Referencer: handles placed in overrides keep
// their identity.
func (h *Handle) ByReference() {}

func (h *Handle) String() string {
	return "module<" + h.st.module + " " + h.st.id.String() + ">"
}
