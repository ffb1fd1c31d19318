// Package flowmix provides asynchronous control-flow combinators — Batch,
// Page, Sequence and StreamRead — over a single, pluggable notion of
// deferred computation.
//
// # Mixed Values
//
// Every combinator accepts "mixed values": a plain value, a [Deferred], a
// zero-argument producer func, or a [Coroutine]. All four are normalized by
// the same resolver (Library.resolve and resolveStep in resolver.go) before
// a combinator ever looks at the result, so callers never have to
// type-switch on what they were handed back.
//
// # Pluggable Deferred Computation
//
// flowmix does not hardcode a promise/future implementation. A [Library] is
// built from an [Adapter] — three functions for creating, resolving and
// rejecting a [Deferred] — so a host application can plug in its own future
// type, or use the one flowmix ships, [Future], via [NewDefault].
//
// # Single-Threaded Scheduling
//
// Every continuation a [Library] schedules — a settled callback, the next
// step of a Sequence — runs through that Library's [Executor], one at a
// time, in the order it was scheduled. A released [Semaphore] waiter is
// called directly by Release rather than queued on the Executor. No
// combinator spawns a goroutine of its own; the only goroutine flowmix
// starts anywhere is the background reader loop inside NewReaderStream,
// which exists purely to adapt a blocking io.Reader into the non-blocking
// [ReadableStream] shape StreamRead expects.
//
// # Batch, Page, Sequence, StreamRead
//
// Batch resolves a fixed slice of mixed values together and reports an
// all-settled outcome, similar in spirit to Promise.allSettled. Sequence
// repeatedly pulls from a source until it is told to stop. Page layers a
// Batch on top of each pull of a Sequence-like source, useful for paginated
// APIs. StreamRead drains a [ReadableStream] chunk by chunk with
// backpressure, handing each chunk to a receiver.
package flowmix
