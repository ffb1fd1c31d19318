package flowmix

// IsDeferred reports whether v satisfies [Deferred].
func IsDeferred(v any) bool {
	_, ok := v.(Deferred)
	return ok
}

// IsReadableStream reports whether v satisfies [ReadableStream].
func IsReadableStream(v any) bool {
	_, ok := v.(ReadableStream)
	return ok
}

// isProducer reports whether v is a zero-argument callable mixed value.
func isProducer(v any) (func() any, bool) {
	fn, ok := v.(func() any)
	return fn, ok
}

// isCoroutine reports whether v is a [*Coroutine] mixed value.
func isCoroutine(v any) (*Coroutine, bool) {
	co, ok := v.(*Coroutine)
	return co, ok
}
