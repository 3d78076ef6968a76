// Package controller runs one questionnaire submission at a time: validate,
// request a plan, then fetch related bundles on a best-effort basis, emitting
// a lifecycle event at every step.
package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/rmacdonaldsmith/planflow-go/internal/metrics"
	"github.com/rmacdonaldsmith/planflow-go/internal/platform/logging"
	"github.com/rmacdonaldsmith/planflow-go/internal/validate"
	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/httpclient"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

// Snapshot is a read-only copy of the controller's state.
type Snapshot struct {
	State   plan.State
	Plan    *plan.Plan
	Bundles []plan.Bundle
	// Err is the resolved error of the last failed call, if any.
	Err *plan.ResolvedError
	// Validation is the result of the last validation run.
	Validation plan.ValidationResult
	// Attempt identifies the most recent attempt that passed the guard.
	Attempt string
	Busy    bool
	// BundlesFailed is set when the most recent attempt got a plan but its
	// bundles call failed. It is cleared when the next attempt starts.
	BundlesFailed bool
}

// Partial reports that the most recent attempt produced a plan but failed to
// fetch bundles. The plan is still usable even though State is Error.
func (s Snapshot) Partial() bool {
	return s.State == plan.Error && s.BundlesFailed && s.Plan != nil
}

// Controller is the submission state machine.
type Controller struct {
	mu     sync.Mutex
	config Config

	validator *validate.Validator
	client    *httpclient.Client
	logger    logr.Logger

	state      plan.State
	busy       bool
	plan       *plan.Plan
	bundles    []plan.Bundle
	lastErr    *plan.ResolvedError
	validation plan.ValidationResult
	attempt    string
	sink       events.Sink

	// bundlesFailed belongs to the current attempt only.
	bundlesFailed bool
}

// New creates a controller in the Idle state with a no-op sink.
func New(config Config, validator *validate.Validator, client *httpclient.Client, logger logr.Logger) (*Controller, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if validator == nil {
		return nil, ErrNilValidator
	}
	if client == nil {
		return nil, ErrNilClient
	}

	return &Controller{
		config:    config,
		validator: validator,
		client:    client,
		logger:    logger.WithName("controller"),
		state:     plan.Idle,
		sink:      func(events.Event) {},
	}, nil
}

// State returns the current state.
func (c *Controller) State() plan.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns copies of the controller's observable fields.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:      c.state,
		Plan:       c.plan.Clone(),
		Bundles:    plan.CloneBundles(c.bundles),
		Validation: c.validation.Clone(),
		Attempt:    c.attempt,
		Busy:       c.busy,

		BundlesFailed: c.bundlesFailed,
	}
	if c.lastErr != nil {
		errCopy := *c.lastErr
		snap.Err = &errCopy
	}
	return snap
}

// Sink returns the current event sink.
func (c *Controller) Sink() events.Sink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink
}

// SetSink replaces the event sink. A nil sink discards events.
func (c *Controller) SetSink(sink events.Sink) {
	if sink == nil {
		sink = func(events.Event) {}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// Observe attaches extra after the current sink. The existing sink keeps
// receiving exactly what it received before.
func (c *Controller) Observe(extra events.Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = events.Wrap(c.sink, extra)
}

// Reset returns a finished controller to Idle and clears its results.
// It does nothing while an attempt is running or when already Idle.
func (c *Controller) Reset() bool {
	c.mu.Lock()
	if c.busy || !c.state.Terminal() {
		c.mu.Unlock()
		return false
	}
	from := c.state
	c.state = plan.Idle
	c.plan = nil
	c.bundles = nil
	c.lastErr = nil
	c.validation = plan.ValidationResult{}
	c.bundlesFailed = false
	sink := c.sink
	c.mu.Unlock()

	sink(events.StateChanged{From: from, To: plan.Idle})
	return true
}

// Submit runs one attempt to completion. It returns false without any side
// effect when another attempt is still running.
func (c *Controller) Submit(ctx context.Context, in plan.Input) bool {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		c.logger.V(logging.VERBOSE).Info("Submit ignored, attempt in flight")
		return false
	}
	c.busy = true
	c.bundlesFailed = false
	c.attempt = uuid.NewString()
	attempt := c.attempt
	c.mu.Unlock()

	log := c.logger.WithValues("attempt", attempt)
	defer c.finish(log)

	c.transition(plan.Validating)
	payload, result := c.validator.Payload(in)
	if !result.OK {
		c.mu.Lock()
		c.validation = result.Clone()
		c.mu.Unlock()
		c.transition(plan.Error)
		c.emit(events.ValidationFailed{Result: result.Clone()})
		log.V(logging.DEBUG).Info("Validation failed", "fields", len(result.FieldErrors))
		return true
	}

	c.mu.Lock()
	c.validation = result.Clone()
	c.plan = nil
	c.bundles = nil
	c.lastErr = nil
	c.mu.Unlock()

	c.emit(events.Submitted{Payload: payload})
	c.transition(plan.Submitting)

	p, err := c.requestPlan(ctx, payload)
	if err != nil {
		resolved := c.fail(err)
		c.transition(plan.Error)
		c.emit(events.Failed{Err: resolved})
		log.Info("Plan request failed", "kind", resolved.Kind, "status", resolved.Status)
		return true
	}
	c.mu.Lock()
	c.plan = p.Clone()
	c.mu.Unlock()
	c.emit(events.PlanSucceeded{Plan: p.Clone()})

	bundles, err := c.requestBundles(ctx, payload.Concern)
	if err != nil {
		// The plan stays in place; only the offers are missing.
		resolved := c.fail(err)
		c.mu.Lock()
		c.bundlesFailed = true
		c.mu.Unlock()
		c.emit(events.BundlesFailed{Err: resolved})
		c.transition(plan.Error)
		log.Info("Bundles request failed, keeping plan", "kind", resolved.Kind, "status", resolved.Status)
		return true
	}
	c.mu.Lock()
	c.bundles = plan.CloneBundles(bundles)
	c.mu.Unlock()
	c.emit(events.BundlesSucceeded{Bundles: plan.CloneBundles(bundles)})
	c.emit(events.Succeeded{Plan: p.Clone(), Bundles: plan.CloneBundles(bundles)})
	c.transition(plan.Success)
	log.V(logging.VERBOSE).Info("Submission complete", "steps", stepCount(p), "bundles", len(bundles))
	return true
}

func (c *Controller) requestPlan(ctx context.Context, payload plan.Payload) (*plan.Plan, error) {
	start := time.Now()
	p, err := httpclient.Call[plan.Plan](ctx, c.client, httpclient.Request{
		Method: http.MethodPost,
		URL:    c.config.PlanURL,
		Body:   payload,
	})
	metrics.RecordCall(metrics.EndpointPlan, callKind(err), time.Since(start))
	return p, err
}

func (c *Controller) requestBundles(ctx context.Context, concern string) ([]plan.Bundle, error) {
	start := time.Now()
	res, err := httpclient.Call[[]plan.Bundle](ctx, c.client, httpclient.Request{
		Method: http.MethodGet,
		URL:    c.config.BundlesURL,
		Query:  url.Values{c.config.BundlesQueryParam: {concern}},
	})
	metrics.RecordCall(metrics.EndpointBundles, callKind(err), time.Since(start))
	if err != nil || res == nil {
		return nil, err
	}
	return *res, nil
}

// fail stores and returns the resolved form of err.
func (c *Controller) fail(err error) plan.ResolvedError {
	resolved := resolveError(err)
	c.mu.Lock()
	stored := resolved
	c.lastErr = &stored
	c.mu.Unlock()
	return resolved
}

// finish is the per-attempt safety net. An attempt never leaves the
// controller in Submitting.
func (c *Controller) finish(log logr.Logger) {
	c.mu.Lock()
	stuck := c.state == plan.Submitting
	if stuck {
		c.state = plan.Idle
	}
	c.busy = false
	sink := c.sink
	c.mu.Unlock()

	if stuck {
		log.Info("Attempt ended while submitting, forcing idle")
		sink(events.StateChanged{From: plan.Submitting, To: plan.Idle})
	}
}

// transition moves to next and emits state_change outside the lock.
func (c *Controller) transition(next plan.State) {
	c.mu.Lock()
	from := c.state
	c.state = next
	sink := c.sink
	c.mu.Unlock()

	c.logger.V(logging.TRACE).Info("State change", "from", from, "to", next)
	sink(events.StateChanged{From: from, To: next})
}

func (c *Controller) emit(e events.Event) {
	c.Sink()(e)
}

func callKind(err error) string {
	if err == nil {
		return "ok"
	}
	return string(resolveError(err).Kind)
}

func stepCount(p *plan.Plan) int {
	if p == nil {
		return 0
	}
	return len(p.Steps)
}
