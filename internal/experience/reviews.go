package experience

import (
	"strings"
	"sync"
	"time"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

// Review is one visitor rating.
type Review struct {
	BundleID plan.BundleID
	Stars    int
	Text     string
	At       time.Time
}

// Reviews collects star ratings for the offers currently shown.
type Reviews struct {
	mu      sync.Mutex
	known   map[plan.BundleID]bool
	reviews map[plan.BundleID][]Review
}

// NewReviews creates an empty review board.
func NewReviews() *Reviews {
	return &Reviews{
		known:   make(map[plan.BundleID]bool),
		reviews: make(map[plan.BundleID][]Review),
	}
}

func (r *Reviews) ID() string { return "reviews" }

// Handle replaces the set of rateable bundles. Past reviews are kept.
func (r *Reviews) Handle(e events.Event) {
	ev, ok := e.(events.BundlesSucceeded)
	if !ok {
		return
	}
	known := make(map[plan.BundleID]bool, len(ev.Bundles))
	for _, b := range ev.Bundles {
		known[b.ID] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.known = known
}

// Rate records a 1..5 star review for a currently shown bundle.
func (r *Reviews) Rate(id plan.BundleID, stars int, text string) (Review, error) {
	if stars < 1 || stars > 5 {
		return Review{}, ErrInvalidRating
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.known[id] {
		return Review{}, ErrUnknownBundle
	}
	rev := Review{BundleID: id, Stars: stars, Text: strings.TrimSpace(text), At: time.Now()}
	r.reviews[id] = append(r.reviews[id], rev)
	return rev, nil
}

// Average returns the mean star rating and review count for a bundle.
func (r *Reviews) Average(id plan.BundleID) (float64, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.reviews[id]
	if len(list) == 0 {
		return 0, 0
	}
	total := 0
	for _, rev := range list {
		total += rev.Stars
	}
	return float64(total) / float64(len(list)), len(list)
}

// List returns the reviews for a bundle in submission order.
func (r *Reviews) List(id plan.BundleID) []Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Review(nil), r.reviews[id]...)
}
