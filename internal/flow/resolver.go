// Package flow decides which question a respondent sees next.
//
// The resolver is a pure function of a quiz, the current question and the
// answer just given. Branching rules on the selected option win; otherwise
// the quiz falls through to the next question in array order, and
// completes after the last one.
package flow

import (
	"fmt"

	"github.com/abhisek/quizflow/internal/quiz"
)

// MultiSelectPolicy decides how branching applies to multi-select answers,
// whose rules are keyed by single option IDs.
type MultiSelectPolicy int

const (
	// BranchOnSingleSelection evaluates branching only when exactly one
	// option is selected; any other selection falls through.
	BranchOnSingleSelection MultiSelectPolicy = iota
	// BranchOnFirstMatch takes the first selected option, in the question's
	// option order, that has a non-default rule.
	BranchOnFirstMatch
)

// ParseMultiSelectPolicy converts "single" or "first-match" into a policy.
func ParseMultiSelectPolicy(s string) (MultiSelectPolicy, error) {
	switch s {
	case "", "single":
		return BranchOnSingleSelection, nil
	case "first-match":
		return BranchOnFirstMatch, nil
	default:
		return BranchOnSingleSelection, fmt.Errorf("unknown multi-select policy %q (want single or first-match)", s)
	}
}

func (p MultiSelectPolicy) String() string {
	if p == BranchOnFirstMatch {
		return "first-match"
	}
	return "single"
}

// Step is the outcome of resolving one answer: either the next question or
// completion of the quiz.
type Step struct {
	QuestionID string
	Completed  bool
}

// Done is the step that ends the quiz.
var Done = Step{Completed: true}

// To returns the step that moves to the given question.
func To(questionID string) Step { return Step{QuestionID: questionID} }

func (s Step) String() string {
	if s.Completed {
		return "completed"
	}
	return s.QuestionID
}

// Resolver computes next steps. The zero value uses BranchOnSingleSelection.
type Resolver struct {
	MultiSelect MultiSelectPolicy
}

// Next resolves with the default Resolver.
func Next(q quiz.Quiz, currentID string, a quiz.Answer) (Step, error) {
	return Resolver{}.Next(q, currentID, a)
}

// Next returns the step that follows answering currentID with a.
//
// It returns quiz.ErrQuestionNotFound when currentID is not in the quiz,
// which means the caller is out of sync with the quiz. On a quiz that passed
// quiz.Validate it never returns any other error. Multi-question cycles are
// not detected here.
func (r Resolver) Next(q quiz.Quiz, currentID string, a quiz.Answer) (Step, error) {
	idx := q.IndexOf(currentID)
	if idx < 0 {
		return Step{}, fmt.Errorf("resolve next step from %q: %w", currentID, quiz.ErrQuestionNotFound)
	}
	current := q.Questions[idx]

	if optionID, ok := r.selectedOption(current, a); ok {
		target := current.Branching.Target(optionID)
		switch target.Kind() {
		case quiz.BranchComplete:
			return Done, nil
		case quiz.BranchQuestion:
			targetID, _ := target.QuestionID()
			if q.IndexOf(targetID) < 0 {
				return Step{}, &quiz.InvalidBranchTargetError{
					QuestionID: current.ID,
					OptionID:   optionID,
					TargetID:   targetID,
					Reason:     quiz.ReasonNotFound,
				}
			}
			return To(targetID), nil
		}
	}

	return defaultNext(q, idx), nil
}

// DefaultNext returns the step following currentID in array order, ignoring
// branching.
func DefaultNext(q quiz.Quiz, currentID string) (Step, error) {
	idx := q.IndexOf(currentID)
	if idx < 0 {
		return Step{}, fmt.Errorf("resolve default step from %q: %w", currentID, quiz.ErrQuestionNotFound)
	}
	return defaultNext(q, idx), nil
}

func defaultNext(q quiz.Quiz, idx int) Step {
	if idx+1 >= len(q.Questions) {
		return Done
	}
	return To(q.Questions[idx+1].ID)
}

// selectedOption returns the option whose branching rule applies to a, if
// any. Free-text and contact questions never branch.
func (r Resolver) selectedOption(q quiz.Question, a quiz.Answer) (string, bool) {
	if !q.Type.Branchable() || len(q.Branching) == 0 {
		return "", false
	}

	if !q.Type.MultiSelect() {
		if a.Kind != quiz.AnswerSingle || a.Option == "" {
			return "", false
		}
		return a.Option, true
	}

	selected := a.Selected()
	switch r.MultiSelect {
	case BranchOnFirstMatch:
		chosen := make(map[string]bool, len(selected))
		for _, id := range selected {
			chosen[id] = true
		}
		for _, o := range q.Options {
			if chosen[o.ID] && !q.Branching.Target(o.ID).IsDefault() {
				return o.ID, true
			}
		}
		return "", false
	default:
		if len(selected) != 1 {
			return "", false
		}
		return selected[0], true
	}
}
