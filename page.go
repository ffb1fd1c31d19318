package flowmix

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// PageOutcome is what a completed page's [Batch] produced, threaded into
// the next call to a [PageSourceFunc] so pagination can key off, say, the
// last row's cursor.
type PageOutcome struct {
	Rows []BatchRow
	Stat BatchStat
}

// PageResult is what [Library.Page] fulfills with: Pages is the number of
// pages processed, Total is the sum of every page's length.
type PageResult struct {
	Pages    int
	Total    int
	Duration time.Duration
}

// PageSourceFunc pulls the mixed values for page number index (0-based),
// given the previous page's outcome (nil, false on the first call) and
// delayMs, the wall-clock milliseconds since the previous call to source
// started (0 at index 0). It resolves to [Done] to stop pagination, or to
// a []any of mixed values to batch together as one page.
type PageSourceFunc func(index int, previous *PageOutcome, ok bool, delayMs int64) any

// PageOption configures a [Library.Page] call.
type PageOption func(*pageOptions)

type pageOptions struct {
	sink  func(index int, outcome PageOutcome, delayMs int64) any
	limit int
}

// WithPageSink registers a sink to run once per page, after that page's
// batch settles.
func WithPageSink(fn func(index int, outcome PageOutcome, delayMs int64) any) PageOption {
	return func(o *pageOptions) { o.sink = fn }
}

// WithPageLimit bounds the number of pages Page pulls. n <= 0 means
// unlimited, matching the zero value of a Page call with no limit
// configured at all.
func WithPageLimit(n int) PageOption {
	return func(o *pageOptions) { o.limit = n }
}

// Page repeatedly pulls a page of mixed values from source, batches each
// page with [Library.Batch], and optionally hands the batch outcome to a
// sink, until source resolves to [Done] or a page's batch fails. The
// returned [Deferred] fulfills with a [PageResult], or rejects with a
// [*PageError].
func (lib *Library) Page(source PageSourceFunc, opts ...PageOption) Deferred {
	var o pageOptions
	for _, opt := range opts {
		opt(&o)
	}

	d, resolveRaw, rejectRaw := lib.newDeferred()

	runID := uuid.NewString()
	endSpan := lib.tracer.start("flowmix.page")
	started := time.Now()
	total := 0

	resolve := func(count int) {
		duration := time.Since(started)
		endSpan(attribute.String("flowmix.run_id", runID), attribute.Int("flowmix.pages", count), attribute.Int("flowmix.total", total))
		lib.meter.record("page", duration, int64(count), 0)
		lib.logger.info("page", map[string]any{"run_id": runID, "pages": count, "total": total})
		resolveRaw(PageResult{Pages: count, Total: total, Duration: duration})
	}
	reject := func(err *PageError) {
		err.Duration = time.Since(started)
		endSpan(attribute.String("flowmix.run_id", runID), attribute.Int("flowmix.index", err.Index))
		lib.meter.record("page", err.Duration, 0, 1)
		lib.logger.info("page", map[string]any{"run_id": runID, "index": err.Index, "reason": err.Reason.String()})
		rejectRaw(err)
	}

	sema := NewSemaphore(1)
	var previous State[PageOutcome]
	var sourceCalls, sinkCalls callRecord

	var step func(index int)
	step = func(index int) {
		sema.Acquire(1, func() {
			if o.limit > 0 && index >= o.limit {
				sema.Release(1)
				resolve(index)
				return
			}

			prevVal, ok := previous.Get()
			var prevPtr *PageOutcome
			if ok {
				prevPtr = &prevVal
			}

			sourceDelay := sourceCalls.delay(time.Now())
			mixed := source(index, prevPtr, ok, sourceDelay)

			lib.resolve(mixed,
				func(v any, delayed bool) {
					if v == Done {
						sema.Release(1)
						resolve(index)
						return
					}

					values, isSlice := v.([]any)
					if !isSlice {
						sema.Release(1)
						reject(&PageError{
							Err:    &ContractError{Field: "PageSourceFunc result", Reason: "must resolve to []any or Done"},
							Index:  index,
							Reason: PageReasonSourceInvalid,
							Source: previousOutcomeSource(prevPtr),
						})
						return
					}
					total += len(values)

					batchDeferred := lib.Batch(values)
					batchDeferred.Then(
						func(rows any) {
							outcome := PageOutcome{Rows: rows.([]BatchRow), Stat: statOf(rows.([]BatchRow))}
							previous.Set(outcome)
							sinkDelay := sinkCalls.delay(time.Now())
							lib.afterPageSink(&o, index, outcome, sinkDelay, delayed, sema, step, resolve, func(reason any, fromDeferred bool) {
								reason2 := PageReasonSinkThrew
								if fromDeferred {
									reason2 = PageReasonSinkRejected
								}
								dest := any(outcome)
								reject(&PageError{Err: reason, Index: index, Reason: reason2, Dest: &dest})
							})
						},
						func(reason any) {
							sema.Release(1)
							reject(&PageError{Err: reason, Index: index, Reason: PageReasonBatch})
						},
					)
				},
				func(reason any, fromDeferred bool) {
					sema.Release(1)
					reason2 := PageReasonSourceThrew
					if fromDeferred {
						reason2 = PageReasonSourceRejected
					}
					reject(&PageError{Err: reason, Index: index, Reason: reason2, Source: previousOutcomeSource(prevPtr)})
				},
			)
		})
	}

	step(0)

	return d
}

// previousOutcomeSource reports prev as a PageError.Source, or nil when
// there was no previous page yet — the first call to a PageSourceFunc has
// nothing to echo back.
func previousOutcomeSource(prev *PageOutcome) *any {
	if prev == nil {
		return nil
	}
	src := any(*prev)
	return &src
}

func statOf(rows []BatchRow) BatchStat {
	stat := BatchStat{Total: len(rows)}
	for _, r := range rows {
		if r.Success {
			stat.Succeeded++
		} else {
			stat.Failed++
		}
	}
	return stat
}

func (lib *Library) afterPageSink(
	o *pageOptions, index int, outcome PageOutcome, sinkDelay int64, delayed bool,
	sema *Semaphore, step func(index int), resolve func(int), onSinkErr func(reason any, fromDeferred bool),
) {
	advance := func() {
		if delayed {
			step(index + 1)
			return
		}
		lib.exec.Go(func() { step(index + 1) })
	}

	if o.sink == nil {
		sema.Release(1)
		advance()
		return
	}

	lib.resolve(o.sink(index, outcome, sinkDelay),
		func(sv any, _ bool) {
			sema.Release(1)
			if sv == Done {
				resolve(index + 1)
				return
			}
			advance()
		},
		func(reason any, fromDeferred bool) {
			sema.Release(1)
			onSinkErr(reason, fromDeferred)
		},
	)
}
