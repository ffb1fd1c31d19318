package flowmix

import (
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ReadableStream is the minimal shape [Library.ReadStream] drives: a
// [Signal] that fires whenever a new chunk might be available, and a
// blocking read that either returns a chunk, io.EOF once exhausted, or any
// other error.
type ReadableStream interface {
	Ready() *Signal
	ReadChunk() (chunk any, err error)
}

// chunkDrainer is an optional [ReadableStream] capability: a non-blocking
// variant of ReadChunk that reports ok=false instead of blocking when
// nothing is buffered yet. ReadStream uses it, when implemented, to drain
// everything already available before handing receiver its next chunk
// array, so one receiver call can see more than one chunk; streams that
// don't implement it get exactly one chunk per receiver call.
type chunkDrainer interface {
	TryReadChunk() (chunk any, ok bool)
}

// ReceiverFunc handles one drained batch of chunks read from a
// [ReadableStream]. delayMs is the wall-clock milliseconds since the
// previous call to receiver started (0 on its first call). Its return
// value is a mixed value; ReadStream waits for it to resolve before
// requesting the next batch, giving the receiver backpressure over the
// stream.
type ReceiverFunc func(index int, chunks []any, delayMs int64) any

// StreamResult is what [Library.ReadStream] fulfills with: Calls counts
// receiver invocations, Reads counts underlying ReadChunk/TryReadChunk
// calls that produced a chunk, and Length counts the chunks observed
// across every call.
type StreamResult struct {
	Calls    int
	Reads    int
	Length   int
	Duration time.Duration
}

// StreamOption configures a [Library.ReadStream] call.
type StreamOption func(*streamOptions)

type streamOptions struct {
	closable bool
}

// WithStreamClosable makes any read error, not just io.EOF, end ReadStream
// successfully — for a stream whose owner can close it out from under a
// reader as a deliberate, non-error stop.
func WithStreamClosable() StreamOption {
	return func(o *streamOptions) { o.closable = true }
}

// ReadStream drains rs, gathering every chunk already available into one
// array per receiver call, and waits for the receiver's result to resolve
// before requesting the next array. The returned [Deferred] fulfills with
// a [StreamResult] once rs is exhausted, or rejects with whatever
// ReadChunk or the receiver produced.
//
// At most one read/receiver round-trip is ever in flight, enforced by an
// internal weight-1 [Semaphore], giving StreamRead's backpressure the same
// shape as [Library.Sequence]'s.
func (lib *Library) ReadStream(rs ReadableStream, receiver ReceiverFunc, opts ...StreamOption) Deferred {
	var o streamOptions
	for _, opt := range opts {
		opt(&o)
	}

	d, resolveRaw, rejectRaw := lib.newDeferred()

	runID := uuid.NewString()
	endSpan := lib.tracer.start("flowmix.stream_read")
	started := time.Now()

	calls, reads, length := 0, 0, 0

	resolve := func() {
		duration := time.Since(started)
		endSpan(attribute.String("flowmix.run_id", runID), attribute.Int("flowmix.chunks", length))
		lib.meter.record("stream_read", duration, int64(length), 0)
		lib.logger.info("stream_read", map[string]any{"run_id": runID, "calls": calls, "reads": reads, "length": length})
		resolveRaw(StreamResult{Calls: calls, Reads: reads, Length: length, Duration: duration})
	}
	reject := func(reason any) {
		endSpan(attribute.String("flowmix.run_id", runID))
		lib.meter.record("stream_read", time.Since(started), 0, 1)
		lib.logger.info("stream_read", map[string]any{"run_id": runID})
		rejectRaw(reason)
	}

	sema := NewSemaphore(1)
	var receiverCalls callRecord
	drainer, canDrain := rs.(chunkDrainer)

	// ReadChunk is the source of truth for backpressure: implementations
	// (readerStream included) block inside it until a chunk or the
	// terminal error is available, so pull can simply chain into itself
	// once the receiver settles rather than re-arming a Ready watch. The
	// weight-1 semaphore still keeps exactly one round trip in flight.
	var pull func()
	pull = func() {
		sema.Acquire(1, func() {
			chunk, err := rs.ReadChunk()
			if err != nil {
				sema.Release(1)
				if err == io.EOF || o.closable {
					resolve()
					return
				}
				reject(err)
				return
			}
			reads++

			chunks := []any{chunk}
			if canDrain {
				for {
					c, ok := drainer.TryReadChunk()
					if !ok {
						break
					}
					chunks = append(chunks, c)
					reads++
				}
			}
			length += len(chunks)

			idx := calls
			calls++
			delayMs := receiverCalls.delay(time.Now())

			lib.resolve(receiver(idx, chunks, delayMs),
				func(_ any, _ bool) {
					sema.Release(1)
					pull()
				},
				func(reason any, _ bool) {
					sema.Release(1)
					reject(reason)
				},
			)
		})
	}

	pull()

	return d
}

// readerStream adapts an io.Reader into a [ReadableStream]. Reading from an
// io.Reader blocks, so readerStream runs a single background goroutine that
// does the blocking read and hands each chunk across a channel, notifying
// [Signal] once a chunk (or the terminal error) is buffered. This is the
// only goroutine flowmix ever starts on its own.
type readerStream struct {
	ready   Signal
	chunks  chan []byte
	errc    chan error
	done    error
	hasDone bool
}

// NewReaderStream adapts r into a [ReadableStream] that reads up to
// readSize bytes per chunk.
func NewReaderStream(r io.Reader, readSize int) ReadableStream {
	if readSize <= 0 {
		readSize = 32 * 1024
	}

	rs := &readerStream{
		chunks: make(chan []byte, 1),
		errc:   make(chan error, 1),
	}

	go func() {
		buf := make([]byte, readSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				rs.chunks <- chunk
				rs.ready.Notify()
			}
			if err != nil {
				rs.errc <- err
				rs.ready.Notify()
				return
			}
		}
	}()

	return rs
}

func (rs *readerStream) Ready() *Signal { return &rs.ready }

func (rs *readerStream) ReadChunk() (chunk any, err error) {
	// A chunk buffered ahead of a terminal error always wins: the reader
	// goroutine pushes both for a final short read, and losing the last
	// chunk to a racing io.EOF would be wrong.
	select {
	case b := <-rs.chunks:
		return b, nil
	default:
	}

	if rs.hasDone {
		return nil, rs.done
	}

	select {
	case b := <-rs.chunks:
		return b, nil
	case err := <-rs.errc:
		rs.hasDone, rs.done = true, err
		return nil, err
	}
}

// TryReadChunk is readerStream's non-blocking [chunkDrainer] hook: it
// returns a buffered chunk if one is already waiting, without ever
// blocking on the background goroutine or surfacing the terminal error —
// that stays ReadChunk's job on the next round.
func (rs *readerStream) TryReadChunk() (chunk any, ok bool) {
	select {
	case b := <-rs.chunks:
		return b, true
	default:
		return nil, false
	}
}
