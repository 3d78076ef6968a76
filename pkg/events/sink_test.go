package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

func sampleEvents() []Event {
	return []Event{
		StateChanged{From: plan.Idle, To: plan.Validating},
		Submitted{Payload: plan.Payload{AgeMonths: 12, Concern: "teething pain"}},
		StateChanged{From: plan.Validating, To: plan.Submitting},
		PlanSucceeded{Plan: &plan.Plan{Steps: []string{"Step 1"}}},
		BundlesFailed{Err: plan.ResolvedError{Kind: plan.KindServer, Status: 500, Message: "boom"}},
		StateChanged{From: plan.Submitting, To: plan.Error},
	}
}

func TestWrap(t *testing.T) {
	t.Run("preserves_original_sequence", func(t *testing.T) {
		unwrapped := NewRecorder("unwrapped")
		for _, e := range sampleEvents() {
			unwrapped.Handle(e)
		}

		original := NewRecorder("original")
		extra := NewRecorder("extra")
		sink := Wrap(original.Sink(), extra.Sink())
		for _, e := range sampleEvents() {
			sink(e)
		}

		if diff := cmp.Diff(unwrapped.Events(), original.Events()); diff != "" {
			t.Errorf("original sink saw a different sequence (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(original.Events(), extra.Events()); diff != "" {
			t.Errorf("extra sink saw a different sequence (-want +got):\n%s", diff)
		}
	})

	t.Run("original_called_first", func(t *testing.T) {
		var order []string
		sink := Wrap(
			func(Event) { order = append(order, "orig") },
			func(Event) { order = append(order, "extra") },
		)
		sink(Submitted{})
		sink(Failed{})
		assert.Equal(t, []string{"orig", "extra", "orig", "extra"}, order)
	})

	t.Run("nil_sinks", func(t *testing.T) {
		rec := NewRecorder("rec")
		Wrap(nil, rec.Sink())(Submitted{})
		Wrap(rec.Sink(), nil)(Failed{})
		Wrap(nil, nil)(Submitted{})
		assert.Equal(t, []Stage{StageSubmit, StageError}, rec.Stages())
	})

	t.Run("nested_wraps_do_not_duplicate", func(t *testing.T) {
		a, b, c := NewRecorder("a"), NewRecorder("b"), NewRecorder("c")
		sink := Wrap(Wrap(a.Sink(), b.Sink()), c.Sink())
		for _, e := range sampleEvents() {
			sink(e)
		}
		assert.Len(t, a.Events(), len(sampleEvents()))
		assert.Len(t, b.Events(), len(sampleEvents()))
		assert.Len(t, c.Events(), len(sampleEvents()))
	})
}

func TestChain(t *testing.T) {
	var order []int
	sink := Chain(
		func(Event) { order = append(order, 1) },
		nil,
		func(Event) { order = append(order, 2) },
		func(Event) { order = append(order, 3) },
	)
	sink(Succeeded{})
	assert.Equal(t, []int{1, 2, 3}, order)

	assert.NotPanics(t, func() { Chain()(Succeeded{}) })
}

func TestStages(t *testing.T) {
	got := Stages(WithoutStateChanges(sampleEvents()))
	assert.Equal(t, []Stage{StageSubmit, StagePlanSuccess, StageBundlesError}, got)
}
