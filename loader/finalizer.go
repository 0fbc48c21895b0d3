package loader

import "go.uber.org/zap"

// reclaim runs on the runtime's cleanup goroutine once a handle is
// unreachable.
func (r *Registry) reclaim(st *handleState) {
	st.reclaimed.Store(true)
	r.releaseState(st)
}

// releaseState frees st now, or after the running evaluation settles.
func (r *Registry) releaseState(st *handleState) {
	if !st.slot.requestRelease() {
		r.logger.Debug("release deferred until evaluation settles",
			zap.String("module", st.module),
			zap.Stringer("handle", st.id))
		return
	}
	r.drop(st)
}

// drop removes st from the live table, which clears its slot and source.
func (r *Registry) drop(st *handleState) {
	if !st.dropped.CompareAndSwap(false, true) {
		return
	}

	// Table slots are reused; only remove the entry if it is still ours.
	if v, ok := r.table.Get(st.seq); !ok || v != any(st) {
		st.Drop()
		return
	}
	if _, ok := r.table.Remove(st.seq); !ok {
		st.Drop()
	}

	msg := "module released"
	if st.reclaimed.Load() {
		msg = "module reclaimed"
	}
	r.logger.Debug(msg,
		zap.String("module", st.module),
		zap.Stringer("handle", st.id))
}
