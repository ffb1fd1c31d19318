package flowmix

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Done is the sentinel a [SourceFunc] or [SinkFunc] resolves to in order to
// end a [Library.Sequence] or [Library.Page] iteration cleanly. Being a
// distinguished value rather than a boolean return keeps a producer's
// "stop" signal itself subject to the same mixed-value resolution as
// everything else — a producer can return a [Deferred] or [*Coroutine] that
// eventually resolves to Done.
var Done = struct{ done bool }{true}

// SourceFunc pulls the mixed value for iteration index, given the last
// successfully resolved value (nil, false on the first call) and delayMs,
// the wall-clock milliseconds since the previous call to source started
// (0 at index 0).
type SourceFunc func(index int, last any, ok bool, delayMs int64) any

// SinkFunc receives the resolved value for iteration index and delayMs,
// the wall-clock milliseconds since the previous call to sink started (0
// on its first call). Its own return value is itself a mixed value,
// resolved before the sequence advances; resolving to [Done] stops
// iteration early.
type SinkFunc func(index int, value any, delayMs int64) any

// SequenceOutcome is what [Library.Sequence] fulfills with when it was not
// asked to track every value: Total is the number of elements consumed.
type SequenceOutcome struct {
	Total    int
	Duration time.Duration
}

// SequenceValues is what [Library.Sequence] fulfills with when
// [WithSequenceTrack] is set: Values holds every element resolved, in
// order. Duration is unexported and reachable only through the Duration
// method, the closest Go analogue of a value carrying a property that
// doesn't show up when the value is iterated or printed as data.
type SequenceValues struct {
	Values   []any
	duration time.Duration
}

// Duration reports how long the tracked sequence took to run.
func (v SequenceValues) Duration() time.Duration { return v.duration }

// SequenceOption configures a [Library.Sequence] call.
type SequenceOption func(*sequenceOptions)

type sequenceOptions struct {
	sink  SinkFunc
	limit int
	track bool
}

// WithSequenceSink registers a sink to run after each element resolves.
func WithSequenceSink(fn SinkFunc) SequenceOption {
	return func(o *sequenceOptions) { o.sink = fn }
}

// WithSequenceLimit bounds the number of elements Sequence pulls, as a
// safety net independent of the source ever resolving to [Done]. n <= 0
// means unlimited, matching the zero value of a Sequence call with no
// limit configured at all.
func WithSequenceLimit(n int) SequenceOption {
	return func(o *sequenceOptions) { o.limit = n }
}

// WithSequenceTrack makes Sequence accumulate every resolved element and
// fulfill with a [SequenceValues] instead of a [SequenceOutcome].
func WithSequenceTrack() SequenceOption {
	return func(o *sequenceOptions) { o.track = true }
}

// Sequence repeatedly pulls from source, one element at a time, until
// source resolves to [Done], an optional sink stops it early the same way,
// or an error occurs. The returned [Deferred] fulfills with a
// [SequenceOutcome], or a [SequenceValues] if [WithSequenceTrack] was
// given, and rejects with a [*SequenceError] on failure.
//
// At most one source or sink call is ever in flight, enforced by an
// internal weight-1 [Semaphore]; Sequence never pulls ahead of what has
// been resolved and, if a sink is given, sunk.
func (lib *Library) Sequence(source SourceFunc, opts ...SequenceOption) Deferred {
	var o sequenceOptions
	for _, opt := range opts {
		opt(&o)
	}

	d, resolveRaw, rejectRaw := lib.newDeferred()

	runID := uuid.NewString()
	endSpan := lib.tracer.start("flowmix.sequence")
	started := time.Now()

	resolve := func(count int, values []any) {
		duration := time.Since(started)
		endSpan(attribute.String("flowmix.run_id", runID), attribute.Int("flowmix.count", count))
		lib.meter.record("sequence", duration, int64(count), 0)
		lib.logger.info("sequence", map[string]any{"run_id": runID, "count": count})

		if o.track {
			resolveRaw(SequenceValues{Values: values, duration: duration})
			return
		}
		resolveRaw(SequenceOutcome{Total: count, Duration: duration})
	}
	reject := func(err *SequenceError) {
		err.Duration = time.Since(started)
		endSpan(attribute.String("flowmix.run_id", runID), attribute.Int("flowmix.index", err.Index))
		lib.meter.record("sequence", err.Duration, 0, 1)
		lib.logger.info("sequence", map[string]any{"run_id": runID, "index": err.Index, "reason": err.Reason.String()})
		rejectRaw(err)
	}

	sema := NewSemaphore(1)
	var last State[any]
	var values []any
	var sourceCalls, sinkCalls callRecord

	// advance schedules the next iteration: inline if the settlement that
	// just happened already crossed an asynchronous boundary (delayed), or
	// through the Executor otherwise, so an all-synchronous source cannot
	// grow the call stack with every element consumed.
	advance := func(step func(index int), index int, delayed bool) {
		if delayed {
			step(index)
			return
		}
		lib.exec.Go(func() { step(index) })
	}

	var step func(index int)
	step = func(index int) {
		sema.Acquire(1, func() {
			if o.limit > 0 && index >= o.limit {
				sema.Release(1)
				resolve(index, values)
				return
			}

			lastVal, ok := last.Get()
			sourceDelay := sourceCalls.delay(time.Now())
			mixed := source(index, lastVal, ok, sourceDelay)

			lib.resolve(mixed,
				func(v any, delayed bool) {
					if v == Done {
						sema.Release(1)
						resolve(index, values)
						return
					}
					last.Set(v)
					if o.track {
						values = append(values, v)
					}

					if o.sink == nil {
						sema.Release(1)
						advance(step, index+1, delayed)
						return
					}

					sinkDelay := sinkCalls.delay(time.Now())
					lib.resolve(o.sink(index, v, sinkDelay),
						func(sv any, _ bool) {
							sema.Release(1)
							if sv == Done {
								resolve(index+1, values)
								return
							}
							advance(step, index+1, delayed)
						},
						func(reason any, fromDeferred bool) {
							sema.Release(1)
							reason2 := SequenceReasonSinkThrew
							if fromDeferred {
								reason2 = SequenceReasonSinkRejected
							}
							dest := any(v)
							reject(&SequenceError{Err: reason, Index: index, Reason: reason2, Dest: &dest})
						},
					)
				},
				func(reason any, fromDeferred bool) {
					sema.Release(1)
					reason2 := SequenceReasonSourceThrew
					if fromDeferred {
						reason2 = SequenceReasonSourceRejected
					}
					src := lastVal
					reject(&SequenceError{Err: reason, Index: index, Reason: reason2, Source: &src})
				},
			)
		})
	}

	step(0)

	return d
}
