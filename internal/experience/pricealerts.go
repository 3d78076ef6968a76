package experience

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

// DefaultWatchTTL is how long a price watch stays active.
const DefaultWatchTTL = 24 * time.Hour

// PricedBundle is a bundle with its price parsed for comparison.
type PricedBundle struct {
	Bundle plan.Bundle
	// Amount is the numeric price, or -1 when the price could not be parsed.
	Amount float64
}

// Watch is an active price alert.
type Watch struct {
	BundleID plan.BundleID
	Email    string
	Amount   float64
	Created  time.Time
}

// PriceAlerts lets a visitor watch the latest offers for price changes.
// Repeat watches for the same bundle and address within the TTL are
// collapsed into one.
type PriceAlerts struct {
	mu      sync.Mutex
	bundles map[plan.BundleID]PricedBundle
	watches *ttlcache.Cache[string, Watch]
}

// NewPriceAlerts creates a price-alert widget whose watches expire after ttl.
func NewPriceAlerts(ttl time.Duration) *PriceAlerts {
	if ttl <= 0 {
		ttl = DefaultWatchTTL
	}
	return &PriceAlerts{
		bundles: make(map[plan.BundleID]PricedBundle),
		watches: ttlcache.New(
			ttlcache.WithTTL[string, Watch](ttl),
			ttlcache.WithDisableTouchOnHit[string, Watch](),
		),
	}
}

func (p *PriceAlerts) ID() string { return "price-alerts" }

// Handle replaces the cached offers on every bundles_success.
func (p *PriceAlerts) Handle(e events.Event) {
	ev, ok := e.(events.BundlesSucceeded)
	if !ok {
		return
	}

	bundles := make(map[plan.BundleID]PricedBundle, len(ev.Bundles))
	for _, b := range ev.Bundles {
		bundles[b.ID] = PricedBundle{Bundle: b, Amount: ParsePrice(b.Price)}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.bundles = bundles
}

// Bundles returns the cached offers ordered by ID.
func (p *PriceAlerts) Bundles() []PricedBundle {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]PricedBundle, 0, len(p.bundles))
	for _, b := range p.bundles {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bundle.ID < out[j].Bundle.ID })
	return out
}

// Watch starts a price watch. It reports false when an identical watch is
// already active.
func (p *PriceAlerts) Watch(id plan.BundleID, email string) (Watch, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Watch{}, false, ErrEmailRequired
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.bundles[id]
	if !ok {
		return Watch{}, false, ErrUnknownBundle
	}

	key := string(id) + "|" + email
	if item := p.watches.Get(key); item != nil {
		return item.Value(), false, nil
	}

	w := Watch{BundleID: id, Email: email, Amount: b.Amount, Created: time.Now()}
	p.watches.Set(key, w, ttlcache.DefaultTTL)
	return w, true, nil
}

// Watches returns the active watches, oldest first.
func (p *PriceAlerts) Watches() []Watch {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.watches.DeleteExpired()
	out := make([]Watch, 0, p.watches.Len())
	for _, key := range p.watches.Keys() {
		if item := p.watches.Get(key); item != nil {
			out = append(out, item.Value())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Close drops every watch.
func (p *PriceAlerts) Close() error {
	p.watches.DeleteAll()
	return nil
}

// ParsePrice extracts a number from a display price such as "$1,299.00".
// It returns -1 when no number can be read.
func ParsePrice(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return -1
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return -1
	}
	return f
}
