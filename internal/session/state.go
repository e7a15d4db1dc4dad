package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizflow/internal/flow"
	"github.com/abhisek/quizflow/internal/quiz"
)

var (
	// ErrCompleted is returned when an answer is submitted to a finished session.
	ErrCompleted = errors.New("session already completed")

	// ErrNoHistory is returned by GoBack at the first question.
	ErrNoHistory = errors.New("no previous question")
)

// State is the lifecycle state of a session.
type State int

const (
	StateInProgress State = iota // a question is being shown
	StateCompleted               // the flow reached its end
	StateHalted                  // the resolver reported an invariant violation
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// frame is one entry of the back-navigation stack: the question that was
// answered and what was stored for it before that answer.
type frame struct {
	questionID string
	prev       quiz.Answer
	hadPrev    bool
}

// Session tracks one respondent's walk through a quiz. It is not safe for
// concurrent use.
type Session struct {
	id       string
	quiz     quiz.Quiz
	resolver flow.Resolver
	now      func() time.Time

	state   State
	current string
	answers map[string]quiz.Answer
	history []frame
	err     error

	startedAt   time.Time
	completedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithResolver sets the resolver used to pick the next question.
func WithResolver(r flow.Resolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithID sets the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New starts a session at the first question of q. A quiz without questions
// yields a session that is already completed.
func New(q quiz.Quiz, opts ...Option) *Session {
	s := &Session{
		quiz:    q.Clone(),
		now:     time.Now,
		answers: make(map[string]quiz.Answer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}

	s.startedAt = s.now()
	if len(s.quiz.Questions) == 0 {
		s.state = StateCompleted
		s.completedAt = s.startedAt
	} else {
		s.state = StateInProgress
		s.current = s.quiz.Questions[0].ID
	}
	return s
}
