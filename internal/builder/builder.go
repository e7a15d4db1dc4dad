// Package builder implements the quiz editor's mutations. Every mutation
// loads the stored quiz, edits a copy and saves it back through the
// repository, which validates branching before anything is written.
package builder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/store"
)

// DefaultQuestionTitle is the title given to newly added questions.
const DefaultQuestionTitle = "New Question"

var (
	// ErrUnknownOption is returned when a branching rule names an option the
	// question does not have.
	ErrUnknownOption = errors.New("unknown option")

	// ErrNotBranchable is returned when branching is set on a question type
	// without options.
	ErrNotBranchable = errors.New("question type does not support branching")
)

// Service applies editor mutations to stored quizzes.
type Service struct {
	repo store.QuizRepo
}

// NewService creates a builder Service on repo.
func NewService(repo store.QuizRepo) *Service {
	return &Service{repo: repo}
}

// QuestionPatch holds the fields to change on a question. Nil fields are
// left untouched.
type QuestionPatch struct {
	Title    *string
	Type     *quiz.QuestionType
	Required *bool
	Options  *[]quiz.Option
}

// NewQuiz creates and stores an empty quiz with default settings.
func (s *Service) NewQuiz(ctx context.Context) (quiz.Quiz, error) {
	return s.repo.Create(ctx, quiz.NewQuiz())
}

// Rename sets the quiz title and description.
func (s *Service) Rename(ctx context.Context, quizID, title, description string) (quiz.Quiz, error) {
	return s.edit(ctx, quizID, func(q *quiz.Quiz) error {
		title = strings.TrimSpace(title)
		if title == "" {
			title = quiz.DefaultTitle
		}
		q.Title = title
		q.Description = description
		return nil
	})
}

// UpdateSettings replaces the quiz's display settings.
func (s *Service) UpdateSettings(ctx context.Context, quizID string, settings quiz.Settings) (quiz.Quiz, error) {
	return s.edit(ctx, quizID, func(q *quiz.Quiz) error {
		switch settings.ProgressType {
		case quiz.ProgressBar, quiz.ProgressSteps, quiz.ProgressPercentage:
		case "":
			settings.ProgressType = quiz.ProgressBar
		default:
			return fmt.Errorf("unknown progress type %q", settings.ProgressType)
		}
		q.Settings = settings
		return nil
	})
}

// AddQuestion appends a question of type t. Choice types are seeded with
// two placeholder options. The new question is returned alongside the quiz.
func (s *Service) AddQuestion(ctx context.Context, quizID string, t quiz.QuestionType, title string) (quiz.Quiz, quiz.Question, error) {
	if !t.Valid() {
		return quiz.Quiz{}, quiz.Question{}, fmt.Errorf("%w: %q", quiz.ErrUnknownQuestionType, t)
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultQuestionTitle
	}
	added := quiz.Question{
		ID:      quiz.NewQuestionID(),
		Type:    t,
		Title:   title,
		Options: quiz.DefaultOptions(t),
	}
	if added.Options == nil {
		added.Options = []quiz.Option{}
	}

	saved, err := s.edit(ctx, quizID, func(q *quiz.Quiz) error {
		q.Questions = append(q.Questions, added)
		return nil
	})
	if err != nil {
		return quiz.Quiz{}, quiz.Question{}, err
	}
	return saved, added, nil
}

// UpdateQuestion applies patch to a question. Rules keyed by options that
// no longer exist are dropped, and switching to a type without options
// clears both options and branching.
func (s *Service) UpdateQuestion(ctx context.Context, quizID, questionID string, patch QuestionPatch) (quiz.Quiz, error) {
	return s.edit(ctx, quizID, func(q *quiz.Quiz) error {
		question, err := questionRef(q, questionID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			question.Title = *patch.Title
		}
		if patch.Required != nil {
			question.Required = *patch.Required
		}
		if patch.Type != nil {
			if !patch.Type.Valid() {
				return fmt.Errorf("%w: %q", quiz.ErrUnknownQuestionType, *patch.Type)
			}
			question.Type = *patch.Type
		}
		if patch.Options != nil {
			opts := slices.Clone(*patch.Options)
			for i := range opts {
				if opts[i].ID == "" {
					opts[i].ID = quiz.NewOptionID()
				}
			}
			question.Options = opts
		}

		switch {
		case !question.Type.HasOptions():
			question.Options = []quiz.Option{}
			question.Branching = nil
		case len(question.Options) == 0:
			question.Options = quiz.DefaultOptions(question.Type)
		}
		question.Branching = pruneBranching(question.Branching, question.Options)
		return nil
	})
}

// DeleteQuestion removes a question. Rules elsewhere that targeted it are
// reset to the default order so the quiz stays valid.
func (s *Service) DeleteQuestion(ctx context.Context, quizID, questionID string) (quiz.Quiz, error) {
	return s.edit(ctx, quizID, func(q *quiz.Quiz) error {
		idx := q.IndexOf(questionID)
		if idx < 0 {
			return fmt.Errorf("delete question %q: %w", questionID, quiz.ErrQuestionNotFound)
		}
		q.Questions = slices.Delete(q.Questions, idx, idx+1)

		for i := range q.Questions {
			b := q.Questions[i].Branching
			for optionID, target := range b {
				if id, ok := target.QuestionID(); ok && id == questionID {
					b[optionID] = quiz.NextDefault()
				}
			}
			q.Questions[i].Branching = b.Compact()
		}
		return nil
	})
}

// MoveQuestion moves a question to index, clamped to the quiz bounds.
// Moving changes the default order only; branching rules are untouched.
func (s *Service) MoveQuestion(ctx context.Context, quizID, questionID string, index int) (quiz.Quiz, error) {
	return s.edit(ctx, quizID, func(q *quiz.Quiz) error {
		from := q.IndexOf(questionID)
		if from < 0 {
			return fmt.Errorf("move question %q: %w", questionID, quiz.ErrQuestionNotFound)
		}
		index = max(0, min(index, len(q.Questions)-1))
		moved := q.Questions[from]
		q.Questions = slices.Delete(q.Questions, from, from+1)
		q.Questions = slices.Insert(q.Questions, index, moved)
		return nil
	})
}

// SetBranching replaces a question's rules. Default entries are dropped,
// so an all-default map clears branching.
func (s *Service) SetBranching(ctx context.Context, quizID, questionID string, b quiz.Branching) (quiz.Quiz, error) {
	return s.edit(ctx, quizID, func(q *quiz.Quiz) error {
		question, err := questionRef(q, questionID)
		if err != nil {
			return err
		}
		b = b.Compact()
		if len(b) > 0 && !question.Type.Branchable() {
			return fmt.Errorf("question %q (%s): %w", questionID, question.Type, ErrNotBranchable)
		}
		for optionID := range b {
			if _, ok := question.Option(optionID); !ok {
				return fmt.Errorf("question %q: %w %q", questionID, ErrUnknownOption, optionID)
			}
		}
		question.Branching = b
		return nil
	})
}

// SetBranch sets the rule for one option.
func (s *Service) SetBranch(ctx context.Context, quizID, questionID, optionID string, target quiz.BranchTarget) (quiz.Quiz, error) {
	return s.edit(ctx, quizID, func(q *quiz.Quiz) error {
		question, err := questionRef(q, questionID)
		if err != nil {
			return err
		}
		if !question.Type.Branchable() {
			return fmt.Errorf("question %q (%s): %w", questionID, question.Type, ErrNotBranchable)
		}
		if _, ok := question.Option(optionID); !ok {
			return fmt.Errorf("question %q: %w %q", questionID, ErrUnknownOption, optionID)
		}
		b := question.Branching.Clone()
		if b == nil {
			b = quiz.Branching{}
		}
		b[optionID] = target
		question.Branching = b.Compact()
		return nil
	})
}

// edit loads a quiz, applies fn to a copy and saves the result.
func (s *Service) edit(ctx context.Context, quizID string, fn func(*quiz.Quiz) error) (quiz.Quiz, error) {
	stored, err := s.repo.Load(ctx, quizID)
	if err != nil {
		return quiz.Quiz{}, err
	}
	q := stored.Clone()
	if err := fn(&q); err != nil {
		return quiz.Quiz{}, err
	}
	return s.repo.Save(ctx, q)
}

func questionRef(q *quiz.Quiz, id string) (*quiz.Question, error) {
	idx := q.IndexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("question %q: %w", id, quiz.ErrQuestionNotFound)
	}
	return &q.Questions[idx], nil
}

// pruneBranching drops rules for options that are not in options, and
// default rules.
func pruneBranching(b quiz.Branching, options []quiz.Option) quiz.Branching {
	if len(b) == 0 {
		return nil
	}
	out := quiz.Branching{}
	for optionID, target := range b {
		if slices.ContainsFunc(options, func(o quiz.Option) bool { return o.ID == optionID }) {
			out[optionID] = target
		}
	}
	return out.Compact()
}
