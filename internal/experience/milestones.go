package experience

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/kvstore"
)

// MilestonesKey is the store key holding the milestone list.
const MilestonesKey = "milestones"

// Milestone is a plan step the visitor can tick off.
type Milestone struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Milestones tracks progress through plan steps. Like the registry, it only
// seeds when nothing is stored yet.
type Milestones struct {
	mu     sync.Mutex
	store  kvstore.Store
	logger logr.Logger
}

// NewMilestones creates a milestone tracker backed by store.
func NewMilestones(store kvstore.Store, logger logr.Logger) *Milestones {
	return &Milestones{store: store, logger: logger.WithName("milestones")}
}

func (m *Milestones) ID() string { return "milestones" }

// Handle seeds milestones from plan steps when the stored list is empty.
func (m *Milestones) Handle(e events.Event) {
	ev, ok := e.(events.PlanSucceeded)
	if !ok || ev.Plan == nil || len(ev.Plan.Steps) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := context.Background()
	list, err := m.load(ctx)
	if err != nil {
		m.logger.Error(err, "Failed to load milestones")
		return
	}
	if len(list) > 0 {
		return
	}

	for _, step := range ev.Plan.Steps {
		list = append(list, Milestone{Title: step})
	}
	if err := kvstore.SaveJSON(ctx, m.store, MilestonesKey, list); err != nil {
		m.logger.Error(err, "Failed to seed milestones")
	}
}

// List returns the stored milestones.
func (m *Milestones) List(ctx context.Context) ([]Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Complete marks milestone i as done.
func (m *Milestones) Complete(ctx context.Context, i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.load(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return ErrNoPlan
	}
	if i < 0 || i >= len(list) {
		return fmt.Errorf("milestone %d: %w", i, ErrOutOfRange)
	}
	list[i].Done = true
	return kvstore.SaveJSON(ctx, m.store, MilestonesKey, list)
}

func (m *Milestones) load(ctx context.Context) ([]Milestone, error) {
	var list []Milestone
	if _, err := kvstore.LoadJSON(ctx, m.store, MilestonesKey, &list); err != nil {
		return nil, fmt.Errorf("load milestones: %w", err)
	}
	return list, nil
}
