package loader

// FailurePolicy decides what a failed evaluation leaves in the cache slot.
type FailurePolicy uint8

const (
	// CacheFailures stores the error; every later Require returns the same
	// error value without re-running the body.
	CacheFailures FailurePolicy = iota
	// RetryFailures returns the slot to Unset so the next Require
	// evaluates again.
	RetryFailures
)

func (p FailurePolicy) String() string {
	switch p {
	case CacheFailures:
		return "cache"
	case RetryFailures:
		return "retry"
	default:
		return "unknown"
	}
}

// failedState is the slot state a failure settles into.
func (p FailurePolicy) failedState() SlotState {
	if p == RetryFailures {
		return StateUnset
	}
	return StateFailed
}
