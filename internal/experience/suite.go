// Package experience holds the widgets that react to submission events:
// quiz, registry, milestones, price alerts, reviews, chat and the daily
// toggle. None of them is called by the controller; they only see events
// delivered through an events.Hub.
package experience

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"

	"github.com/rmacdonaldsmith/planflow-go/internal/eventlog"
	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/kvstore"
)

// SuiteConfig configures NewSuite.
type SuiteConfig struct {
	// Store persists registry, milestones and toggle state. Required.
	Store kvstore.Store
	// Logger defaults to logr.Discard().
	Logger logr.Logger
	// WatchTTL defaults to DefaultWatchTTL.
	WatchTTL time.Duration
	// Clock drives the daily toggle. Defaults to time.Now.
	Clock func() time.Time
}

// Suite is every widget plus the event journal, registered on one Hub.
type Suite struct {
	Hub         *events.Hub
	Journal     *eventlog.Journal
	Quiz        *Quiz
	Registry    *Registry
	Milestones  *Milestones
	PriceAlerts *PriceAlerts
	Reviews     *Reviews
	Chat        *Chat
	DailyToggle *DailyToggle
}

// NewSuite builds and subscribes all widgets.
func NewSuite(config SuiteConfig) (*Suite, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	logger := config.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	logger = logger.WithName("experience")

	s := &Suite{
		Hub:         events.NewHub(logger),
		Journal:     eventlog.NewJournal(),
		Quiz:        NewQuiz(),
		Registry:    NewRegistry(config.Store, logger),
		Milestones:  NewMilestones(config.Store, logger),
		PriceAlerts: NewPriceAlerts(config.WatchTTL),
		Reviews:     NewReviews(),
		Chat:        NewChat(),
		DailyToggle: NewDailyToggle(config.Store, logger, config.Clock),
	}

	for _, sub := range []events.Subscriber{
		s.Journal, s.Quiz, s.Registry, s.Milestones, s.PriceAlerts, s.Reviews, s.Chat, s.DailyToggle,
	} {
		if err := s.Hub.Subscribe(sub); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", sub.ID(), err)
		}
	}
	return s, nil
}

// Sink returns the hub's dispatch function for use with Controller.Observe.
func (s *Suite) Sink() events.Sink {
	return s.Hub.Dispatch
}

// Close releases the journal and price watches. The store is owned by the
// caller and stays open.
func (s *Suite) Close() error {
	return multierr.Combine(
		s.Journal.Close(),
		s.PriceAlerts.Close(),
	)
}
