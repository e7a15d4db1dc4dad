package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/quizflow/internal/quiz"
)

// ErrQuizNotFound is returned when no quiz has the requested ID.
var ErrQuizNotFound = errors.New("quiz not found")

// QueryOpts configures response queries with filtering and pagination.
type QueryOpts struct {
	Limit  int   // max results (0 = unlimited)
	After  int64 // sequence > After
	Before int64 // sequence < Before (0 = no bound)
}

// QuizRepo persists quiz documents. The core engine never calls it; the
// editor, HTTP API and CLI load a quiz, hand it to the engine by value and
// save the edited copy back.
type QuizRepo interface {
	// Create stores draft under a fresh ID and returns the stored quiz.
	Create(ctx context.Context, draft quiz.Quiz) (quiz.Quiz, error)

	// Load returns the quiz with the given ID, or ErrQuizNotFound.
	Load(ctx context.Context, id string) (quiz.Quiz, error)

	// Save validates q and replaces the stored quiz with it. Nothing is
	// written when validation fails.
	Save(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error)

	// Delete removes the quiz and its responses, or returns ErrQuizNotFound.
	Delete(ctx context.Context, id string) error

	// List returns every quiz, most recently created first.
	List(ctx context.Context) ([]quiz.Quiz, error)
}

// Response is the stored record of one completed session.
type Response struct {
	ID          string         `json:"id"`
	Sequence    int64          `json:"sequence"`
	QuizID      string         `json:"quizId"`
	SessionID   string         `json:"sessionId"`
	Answers     map[string]any `json:"answers"`
	Path        []string       `json:"path"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt time.Time      `json:"completedAt"`
}

// ResponseRepo provides append and query access to completed sessions.
type ResponseRepo interface {
	// Append records r, assigning its ID and sequence number.
	Append(ctx context.Context, r *Response) error

	// ListByQuiz returns a quiz's responses in sequence order.
	ListByQuiz(ctx context.Context, quizID string, opts QueryOpts) ([]Response, error)

	// Count returns how many responses a quiz has.
	Count(ctx context.Context, quizID string) (int, error)
}
