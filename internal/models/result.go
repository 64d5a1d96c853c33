package models

// ResultState distinguishes a computed value from a genuinely missing input
// and from an input that broke an invariant.
type ResultState int

const (
	StateOk ResultState = iota
	StateUnavailable
	StateFailed
)

func (s ResultState) String() string {
	switch s {
	case StateOk:
		return "ok"
	case StateUnavailable:
		return "unavailable"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Result carries a computed value or the reason it could not be computed.
type Result[T any] struct {
	State  ResultState
	Value  T
	Reason string
}

// Ok wraps a computed value.
func Ok[T any](v T) Result[T] {
	return Result[T]{State: StateOk, Value: v}
}

// Unavailable marks a result whose input is missing.
func Unavailable[T any](reason string) Result[T] {
	return Result[T]{State: StateUnavailable, Reason: reason}
}

// Failed marks a result whose input is present but unusable.
func Failed[T any](reason string) Result[T] {
	return Result[T]{State: StateFailed, Reason: reason}
}

// IsOk reports whether a value was computed.
func (r Result[T]) IsOk() bool { return r.State == StateOk }

// Get returns the value and whether it is usable.
func (r Result[T]) Get() (T, bool) { return r.Value, r.State == StateOk }

// Or returns the value, or fallback when not Ok.
func (r Result[T]) Or(fallback T) T {
	if r.State == StateOk {
		return r.Value
	}
	return fallback
}

// Ptr returns a pointer to the value, or nil when not Ok.
func (r Result[T]) Ptr() *T {
	if r.State != StateOk {
		return nil
	}
	v := r.Value
	return &v
}
