package flowmix

import (
	"sync"

	"github.com/gammazero/deque"
)

// An Executor is a single-threaded microtask queue. Every continuation
// flowmix schedules — a settled callback, the next tick of a sequence —
// runs through one. A released [Semaphore] waiter is called directly by
// Release, on whatever stack Release was called from.
//
// Go queues a function with Go. If the Executor isn't already draining its
// queue, the call to Go drains it inline, in FIFO order, until empty. If it
// is already draining (Go was called from within a function the Executor is
// currently running), the function is simply appended and picked up by the
// in-progress drain. This is what gives Sequence's stack guard its O(1)
// stack growth on an all-synchronous source: posting the next iteration
// through the Executor never recurses, it just extends the current drain.
//
// Go guards the queue with a mutex, so it may be called from more than one
// goroutine; the tasks still execute one at a time, on whichever goroutine
// is draining the queue.
type Executor struct {
	mu      sync.Mutex
	q       deque.Deque[func()]
	running bool
	panics  panicstack
}

// Go schedules fn to run on the Executor. fn may itself call Go; the
// resulting task is appended to the same queue rather than run recursively.
func (e *Executor) Go(fn func()) {
	e.mu.Lock()
	e.q.PushBack(fn)
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.drain()
}

func (e *Executor) drain() {
	for {
		e.mu.Lock()
		if e.q.Len() == 0 {
			e.running = false
			ps := e.panics
			e.panics = nil
			e.mu.Unlock()
			ps.Repanic()
			return
		}
		fn := e.q.PopFront()
		e.mu.Unlock()

		e.panics.Try(fn)
	}
}
