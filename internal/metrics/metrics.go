// Package metrics exposes Prometheus instruments for submission attempts and
// the network calls they make.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

const namespace = "planflow"

// Endpoint labels.
const (
	EndpointPlan    = "plan"
	EndpointBundles = "bundles"
)

// Attempt outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
)

var (
	attemptsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Count of submission attempts by outcome.",
		},
		[]string{"outcome"},
	)
	callsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Count of plan and bundles calls by endpoint and result kind.",
		},
		[]string{"endpoint", "kind"},
	)
	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Latency of plan and bundles calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)
	siteRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "site",
			Name:      "requests_total",
			Help:      "Count of static site requests by status code.",
		},
		[]string{"code"},
	)
)

var registerMetrics sync.Once

// Register all metrics with reg. Only the first call has any effect.
func Register(reg prometheus.Registerer) {
	registerMetrics.Do(func() {
		reg.MustRegister(attemptsCounter)
		reg.MustRegister(callsCounter)
		reg.MustRegister(callDuration)
		reg.MustRegister(siteRequestsCounter)
	})
}

// RecordCall records one call to endpoint. kind is "ok" for a success or
// the resolved error kind otherwise.
func RecordCall(endpoint, kind string, d time.Duration) {
	callsCounter.WithLabelValues(endpoint, kind).Inc()
	callDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordAttempt records the outcome of one submission attempt.
func RecordAttempt(outcome string) {
	attemptsCounter.WithLabelValues(outcome).Inc()
}

// RecordSiteRequest records one static site response.
func RecordSiteRequest(code int) {
	siteRequestsCounter.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Subscriber turns terminal events into attempt outcomes.
type Subscriber struct {
	planSeen bool
}

// NewSubscriber creates a metrics subscriber.
func NewSubscriber() *Subscriber {
	return &Subscriber{}
}

// ID returns the subscriber identifier.
func (s *Subscriber) ID() string { return "metrics" }

// Handle records one outcome per attempt.
func (s *Subscriber) Handle(e events.Event) {
	switch ev := e.(type) {
	case events.StateChanged:
		if ev.To == plan.Validating {
			s.planSeen = false
		}
	case events.ValidationFailed:
		RecordAttempt(OutcomeInvalid)
	case events.PlanSucceeded:
		s.planSeen = true
	case events.Succeeded:
		RecordAttempt(OutcomeSuccess)
	case events.BundlesFailed:
		if s.planSeen {
			RecordAttempt(OutcomePartial)
		}
	case events.Failed:
		RecordAttempt(OutcomeError)
	}
}
