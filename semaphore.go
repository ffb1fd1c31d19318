package flowmix

// A Semaphore bounds how many producer/sink/receiver calls Sequence, Page
// and StreamRead allow in flight at once. The drivers in this package only
// ever construct one with weight 1 — "at most one call outstanding" — but
// the weighted form is kept because it is what the teacher's own semaphore
// generalizes to, and a host embedding flowmix may want a wider gate of its
// own.
//
// A Semaphore must not be shared across more than one [Library].
type Semaphore struct {
	size int64
	cur  int64
	q    []waiter
}

type waiter struct {
	n  int64
	fn func()
}

// NewSemaphore creates a semaphore with the given maximum combined weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// Acquire calls fn once a weight of n has been acquired, synchronously if it
// is immediately available, or later, when enough weight has been released.
func (s *Semaphore) Acquire(n int64, fn func()) {
	if n < 0 {
		panic("flowmix(Semaphore): negative weight")
	}
	if s.size-s.cur >= n && len(s.q) == 0 {
		s.cur += n
		fn()
		return
	}
	s.q = append(s.q, waiter{n, fn})
}

// Release releases a weight of n, running as many queued waiters as now fit.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("flowmix(Semaphore): negative weight")
	}
	s.cur -= n
	if s.cur < 0 {
		panic("flowmix(Semaphore): released more than held")
	}

	for len(s.q) > 0 {
		w := s.q[0]
		if s.size-s.cur < w.n {
			break
		}
		s.cur += w.n
		s.q = s.q[1:]
		w.fn()
	}
}

// TryAcquire attempts to acquire a weight of n without queuing. It succeeds
// only if the semaphore is idle (no queued waiters) and enough weight is
// available.
func (s *Semaphore) TryAcquire(n int64) bool {
	if n < 0 {
		panic("flowmix(Semaphore): negative weight")
	}
	if len(s.q) != 0 || s.size-s.cur < n {
		return false
	}
	s.cur += n
	return true
}
