package events

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Subscribe(t *testing.T) {
	hub := NewHub(logr.Discard())

	require.NoError(t, hub.Subscribe(NewRecorder("a")))
	require.NoError(t, hub.Subscribe(NewRecorder("b")))
	assert.Equal(t, 2, hub.SubscriberCount())

	t.Run("duplicate_id", func(t *testing.T) {
		err := hub.Subscribe(NewRecorder("a"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("nil_subscriber", func(t *testing.T) {
		assert.Error(t, hub.Subscribe(nil))
	})

	t.Run("empty_id", func(t *testing.T) {
		assert.Error(t, hub.Subscribe(NewRecorder("")))
	})

	t.Run("unsubscribe", func(t *testing.T) {
		require.NoError(t, hub.Unsubscribe("a"))
		assert.Equal(t, 1, hub.SubscriberCount())
		assert.Error(t, hub.Unsubscribe("a"))
	})
}

func TestHub_Dispatch(t *testing.T) {
	t.Run("registration_order", func(t *testing.T) {
		hub := NewHub(logr.Discard())
		var order []string
		for _, id := range []string{"quiz", "registry", "chat"} {
			id := id
			require.NoError(t, hub.Subscribe(NewSubscriberFunc(id, func(Event) {
				order = append(order, id)
			})))
		}

		hub.Dispatch(Submitted{})
		assert.Equal(t, []string{"quiz", "registry", "chat"}, order)
	})

	t.Run("panicking_subscriber_is_isolated", func(t *testing.T) {
		hub := NewHub(logr.Discard())
		before := NewRecorder("before")
		after := NewRecorder("after")
		require.NoError(t, hub.Subscribe(before))
		require.NoError(t, hub.Subscribe(NewSubscriberFunc("bad", func(Event) { panic("boom") })))
		require.NoError(t, hub.Subscribe(after))

		assert.NotPanics(t, func() { hub.Dispatch(Submitted{}) })
		assert.Equal(t, []Stage{StageSubmit}, before.Stages())
		assert.Equal(t, []Stage{StageSubmit}, after.Stages())
	})

	t.Run("late_subscriber_misses_past_events", func(t *testing.T) {
		hub := NewHub(logr.Discard())
		early := NewRecorder("early")
		require.NoError(t, hub.Subscribe(early))
		hub.Dispatch(Submitted{})

		late := NewRecorder("late")
		require.NoError(t, hub.Subscribe(late))
		hub.Dispatch(Failed{})

		assert.Equal(t, []Stage{StageSubmit, StageError}, early.Stages())
		assert.Equal(t, []Stage{StageError}, late.Stages())
	})
}

func TestRecorder_Reset(t *testing.T) {
	rec := NewRecorder("rec")
	rec.Handle(Submitted{})
	rec.Reset()
	assert.Empty(t, rec.Events())
}
