package experience

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/kvstore"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

// RegistryKey is the store key holding the registry list.
const RegistryKey = "registry"

// Item is one registry entry.
type Item struct {
	ID    plan.BundleID `json:"id"`
	Name  string        `json:"name"`
	Price string        `json:"price,omitempty"`
}

// Registry is a persisted wish list. It seeds itself from the first offers
// it sees and never overwrites a non-empty list.
type Registry struct {
	mu     sync.Mutex
	store  kvstore.Store
	logger logr.Logger
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store kvstore.Store, logger logr.Logger) *Registry {
	return &Registry{store: store, logger: logger.WithName("registry")}
}

func (r *Registry) ID() string { return "registry" }

// Handle seeds the registry from bundles when it is empty.
func (r *Registry) Handle(e events.Event) {
	ev, ok := e.(events.BundlesSucceeded)
	if !ok || len(ev.Bundles) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()
	items, err := r.load(ctx)
	if err != nil {
		r.logger.Error(err, "Failed to load registry")
		return
	}
	if len(items) > 0 {
		return
	}

	for _, b := range ev.Bundles {
		items = append(items, Item{ID: b.ID, Name: b.Name, Price: b.Price})
	}
	if err := kvstore.SaveJSON(ctx, r.store, RegistryKey, items); err != nil {
		r.logger.Error(err, "Failed to seed registry")
		return
	}
	r.logger.V(1).Info("Seeded registry", "items", len(items))
}

// Items returns the stored list.
func (r *Registry) Items(ctx context.Context) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Add appends item. IDs are unique.
func (r *Registry) Add(ctx context.Context, item Item) error {
	item.ID = plan.BundleID(strings.TrimSpace(string(item.ID)))
	if item.ID == "" {
		return ErrIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range items {
		if existing.ID == item.ID {
			return fmt.Errorf("%s: %w", item.ID, ErrItemExists)
		}
	}
	return kvstore.SaveJSON(ctx, r.store, RegistryKey, append(items, item))
}

// Remove deletes the item with the given ID. It reports whether one was removed.
func (r *Registry) Remove(ctx context.Context, id plan.BundleID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for i, existing := range items {
		if existing.ID == id {
			items = append(items[:i], items[i+1:]...)
			return true, kvstore.SaveJSON(ctx, r.store, RegistryKey, items)
		}
	}
	return false, nil
}

func (r *Registry) load(ctx context.Context) ([]Item, error) {
	var items []Item
	if _, err := kvstore.LoadJSON(ctx, r.store, RegistryKey, &items); err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return items, nil
}
