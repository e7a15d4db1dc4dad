// Package session runs a respondent through a quiz one answer at a time,
// keeping the recorded answers and the path taken so it can step back.
package session

import (
	"fmt"
	"maps"
	"time"

	"github.com/abhisek/quizflow/internal/flow"
	"github.com/abhisek/quizflow/internal/quiz"
)

// SubmitAnswer records a for the current question and advances to the next
// step. The answer replaces any earlier answer to the same question.
//
// The next step is resolved before anything is recorded, so a rejected
// answer leaves the session untouched. A resolver failure halts the session.
func (s *Session) SubmitAnswer(a quiz.Answer) error {
	switch s.state {
	case StateCompleted:
		return ErrCompleted
	case StateHalted:
		return s.err
	}

	q, ok := s.quiz.Question(s.current)
	if !ok {
		return s.halt(fmt.Errorf("current question %q: %w", s.current, quiz.ErrQuestionNotFound))
	}
	if err := quiz.CheckAnswer(q, a); err != nil {
		return err
	}

	step, err := s.resolver.Next(s.quiz, s.current, a)
	if err != nil {
		return s.halt(err)
	}

	prev, hadPrev := s.answers[q.ID]
	s.history = append(s.history, frame{questionID: q.ID, prev: prev, hadPrev: hadPrev})
	s.answers[q.ID] = a.Clone()

	if step.Completed {
		s.state = StateCompleted
		s.current = ""
		s.completedAt = s.now()
		return nil
	}
	s.current = step.QuestionID
	return nil
}

// GoBack returns to the previously answered question and undoes the answer
// recorded there, restoring whatever was stored before it. The undone answer
// is returned so a form can be pre-filled with it.
//
// From a completed session GoBack returns to the last question answered. At
// the first question it returns ErrNoHistory.
func (s *Session) GoBack() (quiz.Answer, bool, error) {
	if s.state == StateHalted {
		return quiz.Answer{}, false, s.err
	}
	if len(s.history) == 0 {
		return quiz.Answer{}, false, ErrNoHistory
	}

	f := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	undone, had := s.answers[f.questionID]
	if f.hadPrev {
		s.answers[f.questionID] = f.prev
	} else {
		delete(s.answers, f.questionID)
	}

	s.state = StateInProgress
	s.current = f.questionID
	s.completedAt = time.Time{}
	return undone, had, nil
}

func (s *Session) halt(err error) error {
	s.state = StateHalted
	s.err = err
	return err
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// QuizID returns the ID of the quiz being taken.
func (s *Session) QuizID() string { return s.quiz.ID }

// Quiz returns the quiz snapshot the session runs against.
func (s *Session) Quiz() quiz.Quiz { return s.quiz }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Completed reports whether the flow has ended.
func (s *Session) Completed() bool { return s.state == StateCompleted }

// Err returns the error that halted the session, if any.
func (s *Session) Err() error { return s.err }

// CurrentQuestionID returns the ID of the question being shown, or "" when
// the session is completed.
func (s *Session) CurrentQuestionID() string { return s.current }

// CurrentQuestion returns the question being shown.
func (s *Session) CurrentQuestion() (quiz.Question, bool) {
	if s.state != StateInProgress {
		return quiz.Question{}, false
	}
	return s.quiz.Question(s.current)
}

// Answer returns the answer recorded for a question.
func (s *Session) Answer(questionID string) (quiz.Answer, bool) {
	a, ok := s.answers[questionID]
	return a.Clone(), ok
}

// Answers returns a copy of the recorded answers keyed by question ID.
func (s *Session) Answers() map[string]quiz.Answer {
	out := make(map[string]quiz.Answer, len(s.answers))
	for id, a := range s.answers {
		out[id] = a.Clone()
	}
	return out
}

// Responses returns the answers flattened into a single map, with contact
// fields expanded into "<id>_name", "<id>_email" and "<id>_phone".
func (s *Session) Responses() map[string]any {
	out := make(map[string]any, len(s.answers))
	for id, a := range s.answers {
		maps.Copy(out, a.Flatten(id))
	}
	return out
}

// History returns the IDs of the answered questions, oldest first.
func (s *Session) History() []string {
	ids := make([]string, len(s.history))
	for i, f := range s.history {
		ids[i] = f.questionID
	}
	return ids
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// CompletedAt returns when the session completed, or the zero time.
func (s *Session) CompletedAt() time.Time { return s.completedAt }

// Resolver returns the resolver the session advances with.
func (s *Session) Resolver() flow.Resolver { return s.resolver }
