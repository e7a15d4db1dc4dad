package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuestionNotFound indicates a question ID that is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrAnswerMismatch indicates an answer whose shape does not fit its question.
	ErrAnswerMismatch = errors.New("answer does not match question")

	// ErrDuplicateQuestionID indicates two questions sharing one ID.
	ErrDuplicateQuestionID = errors.New("duplicate question ID")

	// ErrDuplicateOptionID indicates two options of one question sharing an ID.
	ErrDuplicateOptionID = errors.New("duplicate option ID")

	// ErrReservedQuestionID indicates a question ID spelled like a branch
	// keyword, which a stored branching rule could not tell apart.
	ErrReservedQuestionID = errors.New("question ID is a reserved branch keyword")

	// ErrUnknownQuestionType indicates a question type outside the supported set.
	ErrUnknownQuestionType = errors.New("unknown question type")
)

// InvalidBranchTargetError reports a branching rule that points nowhere
// valid: a question missing from the quiz, or the question itself.
type InvalidBranchTargetError struct {
	QuestionID string
	OptionID   string
	TargetID   string
	Reason     string
}

func (e *InvalidBranchTargetError) Error() string {
	return fmt.Sprintf("invalid branching target: question %q option %q -> %q (%s)",
		e.QuestionID, e.OptionID, e.TargetID, e.Reason)
}

// Branch target rejection reasons.
const (
	ReasonNotFound = "not found"
	ReasonSelfLoop = "self-loop"
)

// CycleError reports questions that can route back to themselves through
// branching. Only returned when cycles are rejected.
type CycleError struct {
	QuestionIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("branching cycle detected involving questions: %s", strings.Join(e.QuestionIDs, ", "))
}

// ValidationError collects every problem found in a question set.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "quiz validation failed:\n  " + strings.Join(msgs, "\n  ")
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}
