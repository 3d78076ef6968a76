package events

import "github.com/rmacdonaldsmith/planflow-go/pkg/plan"

// Stage is the literal stage name carried by every event.
type Stage string

const (
	StageStateChange      Stage = "state_change"
	StageValidationFailed Stage = "validation_failed"
	StageSubmit           Stage = "submit"
	StagePlanSuccess      Stage = "plan_success"
	StageBundlesSuccess   Stage = "bundles_success"
	StageBundlesError     Stage = "bundles_error"
	StageSuccess          Stage = "success"
	StageError            Stage = "error"
)

// Event is one lifecycle notification. The set of implementations is closed;
// switch on the concrete type to read the detail.
type Event interface {
	Stage() Stage
	isEvent()
}

// StateChanged is emitted on every controller state transition.
type StateChanged struct {
	From plan.State
	To   plan.State
}

// ValidationFailed carries the field errors of a rejected input.
type ValidationFailed struct {
	Result plan.ValidationResult
}

// Submitted carries the payload about to be sent to the plan endpoint.
type Submitted struct {
	Payload plan.Payload
}

// PlanSucceeded carries a copy of the decoded plan. Plan is nil when the
// endpoint answered with an empty body.
type PlanSucceeded struct {
	Plan *plan.Plan
}

// BundlesSucceeded carries a copy of the decoded offers.
type BundlesSucceeded struct {
	Bundles []plan.Bundle
}

// BundlesFailed reports a failed secondary call. The plan is unaffected.
type BundlesFailed struct {
	Err plan.ResolvedError
}

// Succeeded is emitted once both calls completed.
type Succeeded struct {
	Plan    *plan.Plan
	Bundles []plan.Bundle
}

// Failed reports a failed primary call.
type Failed struct {
	Err plan.ResolvedError
}

func (StateChanged) Stage() Stage     { return StageStateChange }
func (ValidationFailed) Stage() Stage { return StageValidationFailed }
func (Submitted) Stage() Stage        { return StageSubmit }
func (PlanSucceeded) Stage() Stage    { return StagePlanSuccess }
func (BundlesSucceeded) Stage() Stage { return StageBundlesSuccess }
func (BundlesFailed) Stage() Stage    { return StageBundlesError }
func (Succeeded) Stage() Stage        { return StageSuccess }
func (Failed) Stage() Stage           { return StageError }

func (StateChanged) isEvent()     {}
func (ValidationFailed) isEvent() {}
func (Submitted) isEvent()        {}
func (PlanSucceeded) isEvent()    {}
func (BundlesSucceeded) isEvent() {}
func (BundlesFailed) isEvent()    {}
func (Succeeded) isEvent()        {}
func (Failed) isEvent()           {}

// Stages returns the stage names of evs in order.
func Stages(evs []Event) []Stage {
	out := make([]Stage, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Stage())
	}
	return out
}

// WithoutStateChanges filters StateChanged events out of evs.
func WithoutStateChanges(evs []Event) []Event {
	out := make([]Event, 0, len(evs))
	for _, e := range evs {
		if _, ok := e.(StateChanged); ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
