package experience

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
)

// Question asks which step comes at a given position in the plan.
type Question struct {
	Prompt  string
	Options []string
	answer  string
}

// Quiz builds one question per plan step and scores answers.
type Quiz struct {
	mu        sync.Mutex
	questions []Question
	answered  map[int]bool
	correct   int
}

// NewQuiz creates an empty quiz.
func NewQuiz() *Quiz {
	return &Quiz{answered: make(map[int]bool)}
}

func (q *Quiz) ID() string { return "quiz" }

// Handle rebuilds the quiz on every plan.
func (q *Quiz) Handle(e events.Event) {
	ev, ok := e.(events.PlanSucceeded)
	if !ok {
		return
	}

	var steps []string
	if ev.Plan != nil {
		steps = ev.Plan.Steps
	}

	questions := make([]Question, 0, len(steps))
	for i, step := range steps {
		questions = append(questions, Question{
			Prompt:  fmt.Sprintf("What is step %d of your plan?", i+1),
			Options: append([]string(nil), steps...),
			answer:  step,
		})
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.questions = questions
	q.answered = make(map[int]bool)
	q.correct = 0
}

// Questions returns the current questions.
func (q *Quiz) Questions() []Question {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Question, len(q.questions))
	for i, qu := range q.questions {
		out[i] = Question{Prompt: qu.Prompt, Options: append([]string(nil), qu.Options...), answer: qu.answer}
	}
	return out
}

// Answer checks choice against question i. Only the first answer to a
// question counts towards the score.
func (q *Quiz) Answer(i int, choice string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.questions) == 0 {
		return false, ErrNoPlan
	}
	if i < 0 || i >= len(q.questions) {
		return false, fmt.Errorf("question %d: %w", i, ErrOutOfRange)
	}

	right := strings.EqualFold(strings.TrimSpace(choice), q.questions[i].answer)
	if !q.answered[i] {
		q.answered[i] = true
		if right {
			q.correct++
		}
	}
	return right, nil
}

// Score returns correct and total answered questions.
func (q *Quiz) Score() (correct, answered int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.correct, len(q.answered)
}
