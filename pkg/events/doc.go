// Package events provides the observable channel between the submission
// controller and any number of mutually unaware observers.
//
// The abstractions are:
//   - Event: a closed set of variants, one per lifecycle stage
//   - Sink: the callback the controller emits through, invoked synchronously
//     and in emission order
//   - Wrap and Chain: decorators that let a second system observe an
//     already-constructed emitter without touching it
//   - Subscriber and Hub: registration-ordered fan-out to widgets
//
// Example usage:
//
//	hub := events.NewHub(logger)
//	hub.Subscribe(quiz)
//	hub.Subscribe(registry)
//
//	// Attach the hub behind whatever sink the controller already has.
//	ctrl.SetSink(events.Wrap(ctrl.Sink(), hub.Dispatch))
//
// Subscribers handle events with a type switch:
//
//	switch e := ev.(type) {
//	case events.PlanSucceeded:
//		cache(e.Plan)
//	case events.BundlesFailed:
//		show(e.Err)
//	}
//
// There is no queuing or replay: an observer attached late sees only the
// events emitted after it was attached.
package events
