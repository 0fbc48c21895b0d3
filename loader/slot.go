package loader

import "sync"

// SlotState is the evaluation state of a handle's cache slot.
type SlotState uint8

const (
	StateUnset SlotState = iota
	StateEvaluating
	StateReady
	StateFailed
	StateReleased
)

func (s SlotState) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateEvaluating:
		return "evaluating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// slot memoizes one evaluation. mu is held for transitions only, never
// while the body runs.
type slot struct {
	value any
	err   error
	mu    sync.Mutex
	state SlotState
	// release was requested while evaluating
	pendingRelease bool
}

// begin claims the slot for evaluation. It returns the state observed before
// the call; only StateUnset means the caller now owns an Evaluating slot.
func (s *slot) begin() (SlotState, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	switch prev {
	case StateUnset:
		s.state = StateEvaluating
		return prev, nil, nil
	case StateReady:
		return prev, s.value, nil
	case StateFailed:
		return prev, nil, s.err
	default:
		return prev, nil, nil
	}
}

// settle records the outcome of an evaluation started by begin. It reports
// the resulting state and whether a deferred release must run now.
func (s *slot) settle(value any, err error, policy FailurePolicy) (SlotState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEvaluating {
		// released underneath the evaluation, outcome is discarded
		return s.state, false
	}

	if err != nil {
		s.state = policy.failedState()
		if s.state == StateFailed {
			s.err = err
		}
	} else {
		s.state = StateReady
		s.value = value
	}

	pending := s.pendingRelease
	s.pendingRelease = false
	return s.state, pending
}

// requestRelease reports whether the slot can be released right away.
// While evaluating, the release is recorded and handed back by settle.
func (s *slot) requestRelease() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEvaluating {
		s.pendingRelease = true
		return false
	}
	return true
}

// release drops the cached value or error.
func (s *slot) release() {
	s.mu.Lock()
	s.state = StateReleased
	s.value = nil
	s.err = nil
	s.pendingRelease = false
	s.mu.Unlock()
}

func (s *slot) snapshot() (SlotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.err
}
