package flowmix

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// BatchOption configures a [Library.Batch] call.
type BatchOption func(*batchOptions)

type batchOptions struct {
	onSettle func(index int, row BatchRow, delayMs int64) any
}

// WithBatchSettle registers fn to be called once per element, as soon as
// that element settles, in addition to the aggregate outcome Batch's
// returned [Deferred] eventually delivers. delayMs is the wall-clock
// milliseconds since the previous element to settle called fn (0 for the
// first). fn's return value is itself a mixed value: if it resolves to a
// rejection, that rejection replaces the element's recorded row, though it
// never aborts the batch itself.
func WithBatchSettle(fn func(index int, row BatchRow, delayMs int64) any) BatchOption {
	return func(o *batchOptions) { o.onSettle = fn }
}

// Batch resolves every element of values independently and reports one
// all-settled outcome: the returned [Deferred] fulfills with the full
// slice of [BatchRow] when every element succeeded, and rejects with a
// [*BatchError] as soon as every element has settled if at least one
// failed. Order of values is preserved in the result regardless of which
// element settles first.
func (lib *Library) Batch(values []any, opts ...BatchOption) Deferred {
	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}

	d, resolve, reject := lib.newDeferred()

	runID := uuid.NewString()
	endSpan := lib.tracer.start("flowmix.batch")
	started := time.Now()

	rows := make([]BatchRow, len(values))

	if len(values) == 0 {
		endSpan()
		resolve(rows)
		return d
	}

	var wg WaitGroup
	wg.Add(len(values))

	var settleCalls callRecord
	failed := 0

	settle := func(i int, row BatchRow) {
		rows[i] = row
		if !row.Success {
			failed++
		}
		lib.logger.debug("batch", map[string]any{"index": i, "success": row.Success})

		if o.onSettle == nil {
			wg.Done()
			return
		}

		delayMs := settleCalls.delay(time.Now())
		lib.resolve(o.onSettle(i, row, delayMs),
			func(any, bool) { wg.Done() },
			func(reason any, _ bool) {
				if rows[i].Success {
					failed++
				}
				rows[i] = BatchRow{Success: false, Reason: reason}
				wg.Done()
			},
		)
	}

	for i, v := range values {
		i, v := i, v
		lib.resolve(v,
			func(result any, _ bool) {
				settle(i, BatchRow{Success: true, Result: result})
			},
			func(reason any, fromDeferred bool) {
				row := BatchRow{Success: false, Reason: reason}
				if fromDeferred {
					row.Origin = &BatchRow{Success: false, Result: reason}
				}
				settle(i, row)
			},
		)
	}

	wg.Await(func() {
		stat := BatchStat{Total: len(rows), Succeeded: len(rows) - failed, Failed: failed, Duration: time.Since(started)}

		endSpan(
			attribute.String("flowmix.run_id", runID),
			attribute.Int("flowmix.total", stat.Total),
			attribute.Int("flowmix.failed", stat.Failed),
		)
		lib.meter.record("batch", stat.Duration, int64(stat.Succeeded), int64(stat.Failed))
		lib.logger.info("batch", map[string]any{"run_id": runID, "total": stat.Total, "succeeded": stat.Succeeded, "failed": stat.Failed})

		if failed == 0 {
			resolve(rows)
			return
		}
		be := &BatchError{
			Data: rows,
			Stat: stat,
		}
		for i := range rows {
			if !rows[i].Success {
				be.First = &rows[i]
				break
			}
		}
		reject(be)
	})

	return d
}
