package flowmix

// A Signal is a one-shot-per-notification broadcast point. Anything wanting
// to know when something happened — a page's producer settling, a stream's
// next chunk arriving — registers a plain callback with Watch instead of
// polling.
//
// A Signal must not be shared across more than one [Library].
type Signal struct {
	listeners map[int]func()
	nextID    int
}

// Watch registers fn to be called every time s is notified, until the
// returned cancel func is called. Watch does not fire fn immediately.
func (s *Signal) Watch(fn func()) (cancel func()) {
	if s.listeners == nil {
		s.listeners = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// Notify calls every callback currently registered with s, in an unspecified
// order. Callbacks registered by another callback during Notify are not
// invoked until the next Notify.
func (s *Signal) Notify() {
	if len(s.listeners) == 0 {
		return
	}
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn()
	}
}
