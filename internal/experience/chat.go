package experience

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

// Chat roles.
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message is one chat line.
type Message struct {
	ID   string
	Role string
	Text string
	At   time.Time
}

// Chat keeps a transcript that narrates the submission and answers
// questions about the current plan.
type Chat struct {
	mu         sync.Mutex
	transcript []Message
	steps      []string
	bundles    []plan.Bundle
	now        func() time.Time
}

// NewChat creates an empty transcript.
func NewChat() *Chat {
	return &Chat{now: time.Now}
}

func (c *Chat) ID() string { return "chat" }

// Handle adds an assistant message for each outcome worth narrating.
func (c *Chat) Handle(e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := e.(type) {
	case events.ValidationFailed:
		c.say("Please check the highlighted fields and try again.")
	case events.PlanSucceeded:
		c.steps = nil
		if ev.Plan != nil {
			c.steps = append([]string(nil), ev.Plan.Steps...)
		}
		if len(c.steps) == 0 {
			c.say("I couldn't put together steps for that yet.")
			return
		}
		c.say(fmt.Sprintf("Your plan is ready with %d steps. First up: %s", len(c.steps), c.steps[0]))
	case events.BundlesSucceeded:
		c.bundles = plan.CloneBundles(ev.Bundles)
		if len(c.bundles) == 0 {
			c.say("I didn't find any bundles for this one.")
			return
		}
		c.say(fmt.Sprintf("I found %d bundles that might help.", len(c.bundles)))
	case events.BundlesFailed:
		c.say("Your plan is ready, but I couldn't load related bundles right now.")
	case events.Failed:
		c.say("Sorry, that didn't work. " + ev.Err.Message)
	}
}

// Ask appends a user message and the assistant's reply.
func (c *Chat) Ask(text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.add(RoleUser, text)
	return c.say(c.reply(text)), nil
}

// Transcript returns every message in order.
func (c *Chat) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.transcript...)
}

func (c *Chat) reply(question string) string {
	if len(c.steps) == 0 {
		return "Submit the questionnaire first and I'll answer with your plan in mind."
	}
	q := strings.ToLower(question)
	for _, b := range c.bundles {
		if b.Name != "" && strings.Contains(q, strings.ToLower(b.Name)) {
			if b.Price != "" {
				return fmt.Sprintf("%s is %s.", b.Name, b.Price)
			}
			return fmt.Sprintf("%s is one of your suggested bundles.", b.Name)
		}
	}
	for i, step := range c.steps {
		if strings.Contains(q, fmt.Sprintf("step %d", i+1)) {
			return fmt.Sprintf("Step %d: %s", i+1, step)
		}
	}
	return fmt.Sprintf("Start with: %s", c.steps[0])
}

func (c *Chat) say(text string) Message {
	return c.add(RoleAssistant, text)
}

func (c *Chat) add(role, text string) Message {
	msg := Message{ID: uuid.NewString(), Role: role, Text: text, At: c.now()}
	c.transcript = append(c.transcript, msg)
	return msg
}
