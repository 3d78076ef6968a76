package experience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/planflow-go/internal/controller"
	"github.com/rmacdonaldsmith/planflow-go/internal/kvstore"
	"github.com/rmacdonaldsmith/planflow-go/internal/validate"
	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/httpclient"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

func TestNewSuite(t *testing.T) {
	_, err := NewSuite(SuiteConfig{})
	assert.Error(t, err)

	suite, err := NewSuite(SuiteConfig{Store: kvstore.NewInMemoryStore()})
	require.NoError(t, err)
	assert.Equal(t, 8, suite.Hub.SubscriberCount())
	assert.NoError(t, suite.Close())
}

func TestSuite_ObservesController(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/plan", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"steps":["Step 1","Step 2"]}`))
	})
	mux.HandleFunc("/api/bundles", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Kit A","price":"$10"}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	validator, err := validate.New(validate.DefaultConfig())
	require.NoError(t, err)
	client, err := httpclient.NewClient(httpclient.Config{BaseURL: server.URL, Timeout: time.Second})
	require.NoError(t, err)
	ctrl, err := controller.New(*controller.NewConfig("/api/plan", "/api/bundles"), validator, client, logr.Discard())
	require.NoError(t, err)

	primary := events.NewRecorder("primary")
	ctrl.SetSink(primary.Sink())

	suite, err := NewSuite(SuiteConfig{Store: kvstore.NewInMemoryStore()})
	require.NoError(t, err)
	defer suite.Close()
	ctrl.Observe(suite.Sink())

	require.True(t, ctrl.Submit(context.Background(), plan.Input{Age: "12", Concern: "teething pain"}))

	ctx := context.Background()
	assert.Len(t, suite.Quiz.Questions(), 2)

	items, err := suite.Registry.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Item{{ID: "1", Name: "Kit A", Price: "$10"}}, items)

	milestones, err := suite.Milestones.List(ctx)
	require.NoError(t, err)
	assert.Len(t, milestones, 2)

	_, created, err := suite.PriceAlerts.Watch("1", "a@b.co")
	require.NoError(t, err)
	assert.True(t, created)

	_, err = suite.Reviews.Rate("1", 4, "")
	require.NoError(t, err)

	tip, err := suite.DailyToggle.Tip()
	require.NoError(t, err)
	assert.Contains(t, []string{"Step 1", "Step 2"}, tip)

	assert.Len(t, suite.Chat.Transcript(), 2)

	journaled := make([]events.Event, 0)
	for _, entry := range suite.Journal.Entries() {
		journaled = append(journaled, entry.Event)
	}
	assert.Equal(t, events.Stages(primary.Events()), events.Stages(journaled))
}

func TestSuite_PanickingSubscriberIsolated(t *testing.T) {
	suite, err := NewSuite(SuiteConfig{Store: kvstore.NewInMemoryStore()})
	require.NoError(t, err)
	defer suite.Close()

	require.NoError(t, suite.Hub.Unsubscribe("quiz"))
	require.NoError(t, suite.Hub.Subscribe(events.NewSubscriberFunc("boom", func(events.Event) {
		panic("boom")
	})))
	require.NoError(t, suite.Hub.Subscribe(suite.Quiz))

	suite.Sink()(events.PlanSucceeded{Plan: &plan.Plan{Steps: []string{"A"}}})
	assert.Len(t, suite.Quiz.Questions(), 1)
	assert.Len(t, suite.Journal.Entries(), 1)
}
