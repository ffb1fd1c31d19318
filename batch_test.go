package flowmix_test

import (
	"errors"
	"testing"

	"github.com/hoverlane/flowmix"
)

func TestBatchAllSucceed(t *testing.T) {
	lib := flowmix.NewDefault()

	values := []any{1, 2, 3}

	var rows []flowmix.BatchRow
	var rejected any

	lib.Batch(values).Then(
		func(v any) { rows = v.([]flowmix.BatchRow) },
		func(reason any) { rejected = reason },
	)

	if rejected != nil {
		t.Fatalf("unexpected rejection: %v", rejected)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, want := range []int{1, 2, 3} {
		if !rows[i].Success || rows[i].Result != want {
			t.Errorf("row %d = %+v, want success=%v", i, rows[i], want)
		}
	}
}

func TestBatchPreservesOrderAcrossAsyncElements(t *testing.T) {
	lib := flowmix.NewDefault()

	// The middle element settles through a Deferred; Batch must still
	// report rows in input order.
	d, resolve, _ := lib.Adapter().Create(lib.Executor())

	values := []any{1, d, 3}

	var rows []flowmix.BatchRow
	var settled bool
	lib.Batch(values).Then(
		func(v any) { rows = v.([]flowmix.BatchRow); settled = true },
		func(reason any) { t.Fatalf("unexpected rejection: %v", reason) },
	)

	if settled {
		t.Fatal("batch settled before the deferred element resolved")
	}

	resolve(2)

	if !settled {
		t.Fatal("batch never settled after the deferred element resolved")
	}
	for i, want := range []int{1, 2, 3} {
		if !rows[i].Success || rows[i].Result != want {
			t.Errorf("row %d = %+v, want %v", i, rows[i], want)
		}
	}
}

func TestBatchReportsAllFailures(t *testing.T) {
	lib := flowmix.NewDefault()

	boom := errors.New("boom")
	values := []any{1, func() any { panic(boom) }, 3}

	var batchErr *flowmix.BatchError
	lib.Batch(values).Then(
		func(v any) { t.Fatalf("unexpected fulfillment: %v", v) },
		func(reason any) { batchErr = reason.(*flowmix.BatchError) },
	)

	if batchErr == nil {
		t.Fatal("expected a *BatchError")
	}
	if batchErr.Stat.Succeeded != 2 || batchErr.Stat.Failed != 1 {
		t.Fatalf("got stat %+v, want 2 succeeded, 1 failed", batchErr.Stat)
	}
	if batchErr.Stat.Duration < 0 {
		t.Fatalf("Stat.Duration = %v, want non-negative", batchErr.Stat.Duration)
	}
	if batchErr.First == nil || batchErr.First.Reason != boom {
		t.Fatalf("First = %+v, want reason %v", batchErr.First, boom)
	}
	if batchErr.First.Origin != nil {
		t.Fatalf("First.Origin = %+v, want nil for a thrown failure", batchErr.First.Origin)
	}
}

func TestBatchRejectedDeferredSetsOrigin(t *testing.T) {
	lib := flowmix.NewDefault()

	d, _, reject := lib.Adapter().Create(lib.Executor())

	var batchErr *flowmix.BatchError
	lib.Batch([]any{1, d, func() any { return 3 }, func() any { return 4 }}).Then(
		func(v any) { t.Fatalf("unexpected fulfillment: %v", v) },
		func(reason any) { batchErr = reason.(*flowmix.BatchError) },
	)

	reject("bad")

	if batchErr == nil {
		t.Fatal("expected a *BatchError")
	}
	row := batchErr.Data[1]
	if row.Success || row.Reason != "bad" {
		t.Fatalf("Data[1] = %+v, want success=false reason=bad", row)
	}
	if row.Origin == nil || row.Origin.Success || row.Origin.Result != "bad" {
		t.Fatalf("Data[1].Origin = %+v, want {success:false result:bad}", row.Origin)
	}
	if batchErr.GetErrors()[0] != "bad" {
		t.Fatalf("GetErrors() = %v, want [bad]", batchErr.GetErrors())
	}
}

func TestBatchEmpty(t *testing.T) {
	lib := flowmix.NewDefault()

	var rows []flowmix.BatchRow
	lib.Batch(nil).Then(
		func(v any) { rows = v.([]flowmix.BatchRow) },
		func(reason any) { t.Fatalf("unexpected rejection: %v", reason) },
	)

	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
}

func TestBatchSettleHookFiresPerElement(t *testing.T) {
	lib := flowmix.NewDefault()

	var seen []int
	var delays []int64
	lib.Batch([]any{10, 20, 30}, flowmix.WithBatchSettle(func(index int, row flowmix.BatchRow, delayMs int64) any {
		seen = append(seen, index)
		delays = append(delays, delayMs)
		return nil
	}))

	if len(seen) != 3 {
		t.Fatalf("got %d settle callbacks, want 3", len(seen))
	}
	for _, ms := range delays {
		if ms < 0 {
			t.Fatalf("got negative delayMs in %v", delays)
		}
	}
}

func TestBatchSettleHookRejectionOverridesRow(t *testing.T) {
	lib := flowmix.NewDefault()

	boom := errors.New("settle broke")
	var batchErr *flowmix.BatchError
	lib.Batch([]any{10}, flowmix.WithBatchSettle(func(index int, row flowmix.BatchRow, delayMs int64) any {
		return func() any { panic(boom) }
	})).Then(
		func(v any) { t.Fatalf("unexpected fulfillment: %v", v) },
		func(reason any) { batchErr = reason.(*flowmix.BatchError) },
	)

	if batchErr == nil {
		t.Fatal("expected a *BatchError once the settle hook turned the row into a failure")
	}
	row := batchErr.Data[0]
	if row.Success || row.Reason != boom {
		t.Fatalf("Data[0] = %+v, want a failed row with reason %v", row, boom)
	}
}
