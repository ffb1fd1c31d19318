package flowmix

import "github.com/webriots/coro"

// CoroutineFunc is the body of a [Coroutine]. It receives an await function:
// calling await(mixed) suspends the coroutine until mixed has been resolved
// by the owning [Library], and returns the resolved value, or a [Thrown]
// sentinel if mixed rejected. The body's return value becomes the
// coroutine's own settlement value once it returns.
type CoroutineFunc func(await func(mixed any) any) any

// A Coroutine is a lazy, two-way generator: a mixed-value kind that can pull
// on other mixed values one at a time, exactly like the "callable functions
// that resolve to a value" kind, except it can await more than one mixed
// value across its lifetime. It is built on [github.com/webriots/coro],
// which implements a true two-way coroutine rather than the one-directional
// iterators the standard library's range-over-func supports.
type Coroutine struct {
	resume func(any) (any, bool)
}

// NewCoroutine creates a [Coroutine] from fn. The coroutine does not start
// running until it is first driven, by passing it through a [Library]'s
// resolver.
func NewCoroutine(fn CoroutineFunc) *Coroutine {
	// A Thrown panic is caught inside the body and raised again on the
	// resuming side, so drainCoroutine sees the raw Thrown value however the
	// coroutine library reports a panicking body.
	var thrown *Thrown
	resume, _ := coro.New(func(yield func(any) any, _ func() any) (z any) {
		defer func() {
			if r := recover(); r != nil {
				t, ok := r.(Thrown)
				if !ok {
					panic(r)
				}
				thrown = &t
			}
		}()
		await := func(mixed any) any {
			v := yield(mixed)
			return v
		}
		return fn(await)
	})
	return &Coroutine{resume: func(input any) (any, bool) {
		v, running := resume(input)
		if thrown != nil {
			panic(*thrown)
		}
		return v, running
	}}
}

// Thrown wraps a rejection reason delivered into an awaiting [Coroutine].
// A coroutine body typically checks for it after calling await, or uses
// [Await] to have it turned into a panic instead.
type Thrown struct {
	Reason any
}

// Await calls await(mixed) and panics with a [Thrown] if it rejected,
// otherwise it returns the resolved value. drainCoroutine recovers a
// [Thrown] panic and treats it as the coroutine's own rejection.
func Await(await func(mixed any) any, mixed any) any {
	v := await(mixed)
	if t, ok := v.(Thrown); ok {
		panic(t)
	}
	return v
}

// drainCoroutine runs co to completion, feeding every value it awaits
// through lib's resolver, and reports the coroutine's own settlement to
// onSettle exactly once.
func drainCoroutine(lib *Library, co *Coroutine, onSettle func(value any, reason any, rejected bool)) {
	var step func(input any)

	step = func(input any) {
		var yielded any
		var running bool
		var caught any
		var hasCaught bool

		func() {
			defer func() {
				if r := recover(); r != nil {
					if t, ok := r.(Thrown); ok {
						caught, hasCaught = t.Reason, true
						return
					}
					panic(r)
				}
			}()
			yielded, running = co.resume(input)
		}()

		if hasCaught {
			onSettle(nil, caught, true)
			return
		}

		if !running {
			onSettle(yielded, nil, false)
			return
		}

		lib.resolve(yielded, func(v any, _ bool) {
			step(v)
		}, func(reason any, _ bool) {
			step(Thrown{Reason: reason})
		})
	}

	step(nil)
}
