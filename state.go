package flowmix

// A State carries the last value produced by an iteration, for combinators
// that need to thread one step's outcome into the next: Sequence's
// last-resolved data, Page's previous-page batch outcome.
//
// Unlike the teacher's reactive State, this one is not watchable — Page and
// Sequence pull it synchronously between iterations, they never wait on it.
type State[T any] struct {
	value T
	set   bool
}

// Get retrieves the current value of s and reports whether Set has ever been
// called.
func (s *State[T]) Get() (T, bool) {
	return s.value, s.set
}

// Set updates the value held by s.
func (s *State[T]) Set(v T) {
	s.value = v
	s.set = true
}
