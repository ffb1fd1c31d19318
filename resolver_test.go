package flowmix

import "testing"

func TestResolvePlainValue(t *testing.T) {
	lib := NewDefault()

	var gotValue any
	var gotDelayed bool
	lib.resolve(42,
		func(v any, delayed bool) { gotValue, gotDelayed = v, delayed },
		func(reason any, _ bool) { t.Fatalf("unexpected failure: %v", reason) },
	)

	if gotValue != 42 || gotDelayed {
		t.Fatalf("got (%v, %v), want (42, false)", gotValue, gotDelayed)
	}
}

func TestResolveProducerChain(t *testing.T) {
	lib := NewDefault()

	producer := func() any {
		return func() any { return "nested" }
	}

	var gotValue any
	lib.resolve(producer,
		func(v any, _ bool) { gotValue = v },
		func(reason any, _ bool) { t.Fatalf("unexpected failure: %v", reason) },
	)

	if gotValue != "nested" {
		t.Fatalf("got %v, want nested", gotValue)
	}
}

func TestResolveProducerPanicBecomesFailure(t *testing.T) {
	lib := NewDefault()

	producer := func() any { panic("kaboom") }

	var gotReason any
	var gotFromDeferred bool
	lib.resolve(producer,
		func(v any, _ bool) { t.Fatalf("unexpected success: %v", v) },
		func(reason any, fromDeferred bool) { gotReason, gotFromDeferred = reason, fromDeferred },
	)

	if gotReason != "kaboom" || gotFromDeferred {
		t.Fatalf("got (%v, %v), want (kaboom, false)", gotReason, gotFromDeferred)
	}
}

func TestResolveDeferredMarksDelayed(t *testing.T) {
	lib := NewDefault()

	d, resolve, _ := lib.newDeferred()

	var gotValue any
	var gotDelayed bool
	lib.resolve(d,
		func(v any, delayed bool) { gotValue, gotDelayed = v, delayed },
		func(reason any, _ bool) { t.Fatalf("unexpected failure: %v", reason) },
	)

	resolve("async result")

	if gotValue != "async result" || !gotDelayed {
		t.Fatalf("got (%v, %v), want (async result, true)", gotValue, gotDelayed)
	}
}

func TestResolveDeferredRejection(t *testing.T) {
	lib := NewDefault()

	d, _, reject := lib.newDeferred()

	var gotReason any
	var gotFromDeferred bool
	lib.resolve(d,
		func(v any, _ bool) { t.Fatalf("unexpected success: %v", v) },
		func(reason any, fromDeferred bool) { gotReason, gotFromDeferred = reason, fromDeferred },
	)

	reject("nope")

	if gotReason != "nope" || !gotFromDeferred {
		t.Fatalf("got (%v, %v), want (nope, true)", gotReason, gotFromDeferred)
	}
}

func TestResolveCoroutine(t *testing.T) {
	lib := NewDefault()

	co := NewCoroutine(func(await func(any) any) any {
		a := await(1)
		b := await(2)
		return a.(int) + b.(int)
	})

	var gotValue any
	lib.resolve(co,
		func(v any, _ bool) { gotValue = v },
		func(reason any, _ bool) { t.Fatalf("unexpected failure: %v", reason) },
	)

	if gotValue != 3 {
		t.Fatalf("got %v, want 3", gotValue)
	}
}

func TestResolveCoroutineAwaitFailurePropagates(t *testing.T) {
	lib := NewDefault()

	d, _, reject := lib.newDeferred()

	co := NewCoroutine(func(await func(any) any) any {
		v := Await(await, d)
		return v
	})

	var gotReason any
	lib.resolve(co,
		func(v any, _ bool) { t.Fatalf("unexpected success: %v", v) },
		func(reason any, _ bool) { gotReason = reason },
	)

	reject("stream broke")

	if gotReason != "stream broke" {
		t.Fatalf("got %v, want stream broke", gotReason)
	}
}
