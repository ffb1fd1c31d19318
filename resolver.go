package flowmix

// resolve normalizes value — which may be a plain value, a callable
// producer, a [*Coroutine], or a [Deferred] — into exactly one call to
// onSuccess or onFailure.
//
// onSuccess's delayed argument reports whether settlement crossed at least
// one asynchronous boundary (a Deferred's Then, or a coroutine suspension)
// on its way here. Sequence's stack guard relies on this: an
// all-synchronous chain of producers keeps delayed false and must be
// rescheduled through the Executor before recursing again.
//
// onFailure's second argument reports whether the failure came from a
// rejected Deferred (true) as opposed to a recovered panic (false); Batch
// uses it to set BatchRow.Origin, and Page and Sequence to pick between
// their "threw" and "rejected" reason codes.
func (lib *Library) resolve(value any, onSuccess func(v any, delayed bool), onFailure func(reason any, fromDeferred bool)) {
	lib.resolveStep(value, false, onSuccess, onFailure)
}

func (lib *Library) resolveStep(value any, delayed bool, onSuccess func(v any, delayed bool), onFailure func(reason any, fromDeferred bool)) {
	if co, ok := isCoroutine(value); ok {
		drainCoroutine(lib, co, func(v, reason any, rejected bool) {
			if rejected {
				onFailure(reason, false)
				return
			}
			lib.resolveStep(v, true, onSuccess, onFailure)
		})
		return
	}

	if fn, ok := isProducer(value); ok {
		result, panicked, hasPanic := callProducer(fn)
		if hasPanic {
			onFailure(panicked, false)
			return
		}
		lib.resolveStep(result, delayed, onSuccess, onFailure)
		return
	}

	if d, ok := value.(Deferred); ok {
		d.Then(
			func(v any) { lib.resolveStep(v, true, onSuccess, onFailure) },
			func(reason any) { onFailure(reason, true) },
		)
		return
	}

	onSuccess(value, delayed)
}

func callProducer(fn func() any) (result any, panicked any, hasPanic bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked, hasPanic = r, true
		}
	}()
	result = fn()
	return result, nil, false
}
