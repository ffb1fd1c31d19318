package flowmix

import "errors"

// A Deferred is any pluggable future/promise type. Then registers exactly
// one pair of callbacks; a well-behaved implementation calls at most one of
// them, exactly once.
type Deferred interface {
	Then(onFulfilled, onRejected func(v any))
}

// An Adapter tells a [Library] how to construct, resolve and reject a
// [Deferred]: the three operations the underlying deferred-computation
// library must provide.
//
// Create must return a fresh, unsettled Deferred plus the resolve and
// reject functions that settle it; both must be safe to call at most once,
// and safe to call from the [Executor]'s own goroutine. Resolve and Reject
// each return an already-settled Deferred, for a caller that already has
// the value or reason in hand and has no need for the create-then-settle
// two-step.
type Adapter struct {
	Create  func(exec *Executor) (d Deferred, resolve func(v any), reject func(reason any))
	Resolve func(exec *Executor, value any) Deferred
	Reject  func(exec *Executor, reason any) Deferred
}

// NewAdapter validates create, resolve and reject and returns an [Adapter]
// wrapping them, or a [*ConfigError] naming the first nil field —
// construction fails synchronously, with a fixed message per missing
// piece, rather than deferring the failure to first use.
func NewAdapter(
	create func(exec *Executor) (d Deferred, resolve func(v any), reject func(reason any)),
	resolve func(exec *Executor, value any) Deferred,
	reject func(exec *Executor, reason any) Deferred,
) (*Adapter, error) {
	if create == nil {
		return nil, &ConfigError{Field: "Adapter.Create", Reason: "must not be nil"}
	}
	if resolve == nil {
		return nil, &ConfigError{Field: "Adapter.Resolve", Reason: "must not be nil"}
	}
	if reject == nil {
		return nil, &ConfigError{Field: "Adapter.Reject", Reason: "must not be nil"}
	}
	return &Adapter{Create: create, Resolve: resolve, Reject: reject}, nil
}

// AdapterProvider is implemented by a third-party future library's
// integration shim, letting it hand flowmix an [Adapter] without flowmix
// importing it directly.
type AdapterProvider interface {
	Adapter() *Adapter
}

// ErrInvalidLibrary is returned by New when its argument is neither an
// *Adapter nor an [AdapterProvider].
var ErrInvalidLibrary = errors.New("flowmix: argument is not an *Adapter or an AdapterProvider")

// A Library binds a [Deferred] implementation, via its [Adapter], to a
// single [Executor]. Every combinator flowmix exposes — Batch, Page,
// Sequence, ReadStream — is a method on *Library.
//
// No process-wide state exists outside of a Library value: two Library
// instances never observe each other's Executor, Signal or Semaphore state.
type Library struct {
	adapter *Adapter
	exec    Executor
	logger  Logger
	tracer  Tracer
	meter   Meter
}

// New builds a [Library] from lib, which must be either an *[Adapter] or
// something implementing [AdapterProvider].
func New(lib any) (*Library, error) {
	switch v := lib.(type) {
	case *Adapter:
		if v == nil {
			return nil, &ConfigError{Field: "Adapter", Reason: "must not be nil"}
		}
		if _, err := NewAdapter(v.Create, v.Resolve, v.Reject); err != nil {
			return nil, err
		}
		return &Library{adapter: v}, nil
	case AdapterProvider:
		return New(v.Adapter())
	default:
		return nil, ErrInvalidLibrary
	}
}

// NewDefault builds a [Library] backed by the shipped [Future] type.
func NewDefault() *Library {
	lib, err := New(DefaultAdapter())
	if err != nil {
		panic(err) // DefaultAdapter is always well-formed.
	}
	return lib
}

// Adapter returns the [Adapter] backing lib.
func (lib *Library) Adapter() *Adapter {
	return lib.adapter
}

// Executor returns the [Executor] driving every continuation lib schedules.
func (lib *Library) Executor() *Executor {
	return &lib.exec
}

func (lib *Library) newDeferred() (d Deferred, resolve func(v any), reject func(reason any)) {
	return lib.adapter.Create(&lib.exec)
}

// Resolve returns an already-fulfilled [Deferred] carrying value, built
// through lib's [Adapter]. It's the Go analogue of a host promise
// library's static resolve: a way to hand a plain value to code that
// expects a Deferred, without going through Create's two-step.
func (lib *Library) Resolve(value any) Deferred {
	return lib.adapter.Resolve(&lib.exec, value)
}

// Reject returns an already-rejected [Deferred] carrying reason, built
// through lib's [Adapter].
func (lib *Library) Reject(reason any) Deferred {
	return lib.adapter.Reject(&lib.exec, reason)
}
