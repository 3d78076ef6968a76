package events

// Sink receives every event the controller emits, synchronously and in order.
type Sink func(Event)

// Wrap returns a sink that calls orig and then extra. Either may be nil.
// The original sink sees exactly the events it would have seen unwrapped.
func Wrap(orig, extra Sink) Sink {
	switch {
	case orig == nil && extra == nil:
		return func(Event) {}
	case orig == nil:
		return extra
	case extra == nil:
		return orig
	}
	return func(e Event) {
		orig(e)
		extra(e)
	}
}

// Chain composes sinks left to right.
func Chain(sinks ...Sink) Sink {
	var out Sink
	for _, s := range sinks {
		out = Wrap(out, s)
	}
	return Wrap(out, nil)
}
