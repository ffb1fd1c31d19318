package flowmix_test

import (
	"testing"

	"github.com/hoverlane/flowmix"
)

func TestSemaphore(t *testing.T) {
	t.Run("release wakes a single queued waiter", func(t *testing.T) {
		sema := flowmix.NewSemaphore(1)

		var acquired int
		sema.Acquire(1, func() { acquired++ })
		sema.Acquire(1, func() { acquired++ }) // queued, size is 1

		if acquired != 1 {
			t.Fatalf("expected exactly one immediate acquire, got %d", acquired)
		}

		if sema.TryAcquire(1) {
			t.Fatal("TryAcquire should not succeed while a waiter is queued")
		}

		sema.Release(1)

		if acquired != 2 {
			t.Fatalf("expected the queued waiter to run after Release, got %d", acquired)
		}

		sema.Release(1) // the woken waiter hands its weight back

		if !sema.TryAcquire(1) {
			t.Fatal("TryAcquire should succeed once the queue drains and weight is released")
		}
	})

	t.Run("larger weight waits for enough combined release", func(t *testing.T) {
		sema := flowmix.NewSemaphore(10)

		var acquired []int64
		sema.Acquire(1, func() { acquired = append(acquired, 1) })
		sema.Acquire(10, func() { acquired = append(acquired, 10) })

		if len(acquired) != 1 {
			t.Fatalf("expected only the first acquire to succeed immediately, got %v", acquired)
		}

		if sema.TryAcquire(1) {
			t.Fatal("TryAcquire should not succeed while a waiter is queued")
		}

		sema.Release(1)

		if len(acquired) != 2 {
			t.Fatalf("expected the second waiter to run once enough weight was released, got %v", acquired)
		}
	})
}
