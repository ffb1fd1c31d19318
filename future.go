package flowmix

// Future is the Deferred implementation flowmix ships by default. Its
// Then callbacks are always delivered through an [Executor]. Because
// [Executor.Go] drains its queue inline when it is not already draining, a
// callback registered on an already-settled Future from outside a drain
// runs before Then returns; from inside a drain it runs after the current
// task.
type Future struct {
	exec *Executor

	settled  bool
	rejected bool
	value    any

	onFulfilled []func(v any)
	onRejected  []func(v any)
}

// NewFuture creates an unsettled [Future] whose callbacks are delivered
// through exec.
func NewFuture(exec *Executor) *Future {
	return &Future{exec: exec}
}

// Then registers onFulfilled or onRejected to run, through f's Executor,
// once f settles. If f has already settled, the applicable callback is
// scheduled immediately.
func (f *Future) Then(onFulfilled, onRejected func(v any)) {
	if f.settled {
		f.deliver(onFulfilled, onRejected)
		return
	}
	if onFulfilled != nil {
		f.onFulfilled = append(f.onFulfilled, onFulfilled)
	}
	if onRejected != nil {
		f.onRejected = append(f.onRejected, onRejected)
	}
}

func (f *Future) deliver(onFulfilled, onRejected func(v any)) {
	value := f.value
	if f.rejected {
		if onRejected != nil {
			f.exec.Go(func() { onRejected(value) })
		}
		return
	}
	if onFulfilled != nil {
		f.exec.Go(func() { onFulfilled(value) })
	}
}

func (f *Future) resolve(v any) {
	if f.settled {
		return
	}
	f.settled = true
	f.value = v

	fulfilled := f.onFulfilled
	f.onFulfilled, f.onRejected = nil, nil
	for _, fn := range fulfilled {
		fn := fn
		f.exec.Go(func() { fn(v) })
	}
}

func (f *Future) reject(reason any) {
	if f.settled {
		return
	}
	f.settled = true
	f.rejected = true
	f.value = reason

	rejected := f.onRejected
	f.onFulfilled, f.onRejected = nil, nil
	for _, fn := range rejected {
		fn := fn
		f.exec.Go(func() { fn(reason) })
	}
}

// NewResolvedFuture creates a [Future], already fulfilled with value, driven
// by exec.
func NewResolvedFuture(exec *Executor, value any) *Future {
	f := NewFuture(exec)
	f.resolve(value)
	return f
}

// NewRejectedFuture creates a [Future], already rejected with reason,
// driven by exec.
func NewRejectedFuture(exec *Executor, reason any) *Future {
	f := NewFuture(exec)
	f.reject(reason)
	return f
}

// DefaultAdapter returns the [Adapter] flowmix uses when no other Deferred
// library is plugged in. Every [Future] it creates is driven by whichever
// [Library]'s [Executor] is passed to Create/Resolve/Reject, so two
// Libraries built from the same DefaultAdapter value never share
// scheduling state.
func DefaultAdapter() *Adapter {
	a, err := NewAdapter(
		func(exec *Executor) (Deferred, func(any), func(any)) {
			f := NewFuture(exec)
			return f, f.resolve, f.reject
		},
		func(exec *Executor, value any) Deferred { return NewResolvedFuture(exec, value) },
		func(exec *Executor, reason any) Deferred { return NewRejectedFuture(exec, reason) },
	)
	if err != nil {
		panic(err) // the three functions above are never nil.
	}
	return a
}
