package experience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/kvstore"
)

const toggleKeyPrefix = "toggle:"

// DailyToggle shows one plan step as the tip of the day and keeps a per-day
// "done today" flag.
type DailyToggle struct {
	mu     sync.Mutex
	steps  []string
	store  kvstore.Store
	logger logr.Logger
	now    func() time.Time
}

// NewDailyToggle creates a daily toggle. A nil clock uses time.Now.
func NewDailyToggle(store kvstore.Store, logger logr.Logger, clock func() time.Time) *DailyToggle {
	if clock == nil {
		clock = time.Now
	}
	return &DailyToggle{store: store, logger: logger.WithName("daily-toggle"), now: clock}
}

func (d *DailyToggle) ID() string { return "daily-toggle" }

// Handle replaces the tip pool on every plan.
func (d *DailyToggle) Handle(e events.Event) {
	ev, ok := e.(events.PlanSucceeded)
	if !ok {
		return
	}
	var steps []string
	if ev.Plan != nil {
		steps = append(steps, ev.Plan.Steps...)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.steps = steps
}

// Tip returns today's step. The same step is returned all day.
func (d *DailyToggle) Tip() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.steps) == 0 {
		return "", ErrNoPlan
	}
	n := int64(len(d.steps))
	day := d.now().UTC().Unix() / 86400
	// Clocks before 1970 give a negative day.
	return d.steps[((day%n)+n)%n], nil
}

// Toggle flips today's flag and returns the new value.
func (d *DailyToggle) Toggle(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := d.key()
	var on bool
	if _, err := kvstore.LoadJSON(ctx, d.store, key, &on); err != nil {
		return false, fmt.Errorf("load toggle: %w", err)
	}
	on = !on
	if err := kvstore.SaveJSON(ctx, d.store, key, on); err != nil {
		return false, fmt.Errorf("save toggle: %w", err)
	}
	d.logger.V(1).Info("Toggled", "key", key, "on", on)
	return on, nil
}

// Enabled reports today's flag.
func (d *DailyToggle) Enabled(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var on bool
	if _, err := kvstore.LoadJSON(ctx, d.store, d.key(), &on); err != nil {
		return false, fmt.Errorf("load toggle: %w", err)
	}
	return on, nil
}

func (d *DailyToggle) key() string {
	return toggleKeyPrefix + d.now().UTC().Format(time.DateOnly)
}
