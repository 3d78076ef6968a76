// Package eventlog keeps an append-only, per-stage journal of every event a
// controller emits. Each stage is a topic with its own offset sequence
// starting from 0; a global sequence preserves emission order across topics.
package eventlog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
)

var (
	// ErrNegativeOffset is returned when a negative offset is provided
	ErrNegativeOffset = errors.New("offset cannot be negative")
	// ErrNegativeMaxCount is returned when a negative max count is provided
	ErrNegativeMaxCount = errors.New("max count cannot be negative")
	// ErrNilEvent is returned when a nil event is provided
	ErrNilEvent = errors.New("event cannot be nil")
	// ErrClosed is returned when the journal has been closed
	ErrClosed = errors.New("journal is closed")
)

// SubscriberID is the journal's Hub identifier.
const SubscriberID = "journal"

// Entry is one journaled event.
type Entry struct {
	// Offset is the position within the entry's topic.
	Offset int64
	// Sequence is the position across all topics.
	Sequence  int64
	Topic     events.Stage
	Event     events.Event
	Timestamp time.Time
}

// Statistics provides aggregate counts about the journal
type Statistics struct {
	TotalEvents int64                  // Total number of events across all topics
	TopicCounts map[events.Stage]int64 // Number of events per topic
	TopicCount  int                    // Number of distinct topics
}

// Journal is an in-memory, topic-partitioned event log. It is safe for
// concurrent use and implements events.Subscriber.
type Journal struct {
	mu                sync.RWMutex
	entriesByTopic    map[events.Stage][]Entry
	nextOffsetByTopic map[events.Stage]int64
	all               []Entry
	closed            bool
	now               func() time.Time
}

// Verify that Journal implements events.Subscriber at compile time
var _ events.Subscriber = (*Journal)(nil)

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{
		entriesByTopic:    make(map[events.Stage][]Entry),
		nextOffsetByTopic: make(map[events.Stage]int64),
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// ID returns the subscriber identifier.
func (j *Journal) ID() string { return SubscriberID }

// Handle appends e. Events arriving after Close are dropped.
func (j *Journal) Handle(e events.Event) {
	_, _ = j.Append(context.Background(), e)
}

// Append stores e under its stage topic and returns the stored entry.
func (j *Journal) Append(ctx context.Context, e events.Event) (Entry, error) {
	if e == nil {
		return Entry{}, ErrNilEvent
	}

	select {
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	default:
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return Entry{}, ErrClosed
	}

	topic := e.Stage()
	entry := Entry{
		Offset:    j.nextOffsetByTopic[topic],
		Sequence:  int64(len(j.all)),
		Topic:     topic,
		Event:     e,
		Timestamp: j.now(),
	}
	j.entriesByTopic[topic] = append(j.entriesByTopic[topic], entry)
	j.nextOffsetByTopic[topic]++
	j.all = append(j.all, entry)

	return entry, nil
}

// ReadFromTopic reads entries from a topic starting at a given offset, up to a max count.
func (j *Journal) ReadFromTopic(ctx context.Context, topic events.Stage, startOffset int64, maxCount int) ([]Entry, error) {
	if startOffset < 0 {
		return nil, ErrNegativeOffset
	}
	if maxCount < 0 {
		return nil, ErrNegativeMaxCount
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	results := make([]Entry, 0, maxCount)
	for _, entry := range j.entriesByTopic[topic] {
		if len(results) >= maxCount {
			break
		}
		if entry.Offset >= startOffset {
			results = append(results, entry)
		}
	}
	return results, nil
}

// Entries returns every entry in emission order.
func (j *Journal) Entries() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]Entry{}, j.all...)
}

// TopicEndOffset returns the next append position for a topic.
func (j *Journal) TopicEndOffset(ctx context.Context, topic events.Stage) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.nextOffsetByTopic[topic], nil
}

// ReplayTopic streams a topic's entries from startOffset. Both channels are
// closed when all entries are sent or ctx is cancelled.
func (j *Journal) ReplayTopic(ctx context.Context, topic events.Stage, startOffset int64) (<-chan Entry, <-chan error) {
	entryChan := make(chan Entry)
	errChan := make(chan error, 1)

	go func() {
		defer close(entryChan)
		defer close(errChan)

		if startOffset < 0 {
			errChan <- ErrNegativeOffset
			return
		}

		j.mu.RLock()
		var toReplay []Entry
		for _, entry := range j.entriesByTopic[topic] {
			if entry.Offset >= startOffset {
				toReplay = append(toReplay, entry)
			}
		}
		j.mu.RUnlock()

		for _, entry := range toReplay {
			select {
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			case entryChan <- entry:
			}
		}
	}()

	return entryChan, errChan
}

// Statistics returns aggregate counts.
func (j *Journal) Statistics(ctx context.Context) (Statistics, error) {
	select {
	case <-ctx.Done():
		return Statistics{}, ctx.Err()
	default:
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return Statistics{}, ErrClosed
	}

	stats := Statistics{
		TotalEvents: int64(len(j.all)),
		TopicCounts: make(map[events.Stage]int64, len(j.entriesByTopic)),
		TopicCount:  len(j.entriesByTopic),
	}
	for topic, entries := range j.entriesByTopic {
		stats.TopicCounts[topic] = int64(len(entries))
	}
	return stats, nil
}

// Close clears the journal. It is idempotent.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.entriesByTopic = make(map[events.Stage][]Entry)
	j.nextOffsetByTopic = make(map[events.Stage]int64)
	j.all = nil
	j.closed = true
	return nil
}
