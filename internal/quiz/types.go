package quiz

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionType identifies how a question is rendered and answered.
type QuestionType string

const (
	TypeImageMatrix   QuestionType = "image-matrix"   // multi-select visual grid
	TypeImageList     QuestionType = "image-list"     // single-select visual list
	TypeTextList      QuestionType = "text-list"      // single-select text list
	TypeTextField     QuestionType = "text-field"     // free text
	TypeContactFields QuestionType = "contact-fields" // name, email, phone
)

// AllQuestionTypes returns every supported question type in display order.
func AllQuestionTypes() []QuestionType {
	return []QuestionType{
		TypeImageMatrix,
		TypeImageList,
		TypeTextList,
		TypeTextField,
		TypeContactFields,
	}
}

// ParseQuestionType converts s into a QuestionType, rejecting unknown values.
func ParseQuestionType(s string) (QuestionType, error) {
	for _, t := range AllQuestionTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	_, err := ParseQuestionType(string(t))
	return err == nil
}

// HasOptions reports whether questions of this type carry selectable options.
func (t QuestionType) HasOptions() bool {
	switch t {
	case TypeImageMatrix, TypeImageList, TypeTextList:
		return true
	default:
		return false
	}
}

// MultiSelect reports whether more than one option can be selected.
func (t QuestionType) MultiSelect() bool {
	return t == TypeImageMatrix
}

// Branchable reports whether branching rules can apply to this type.
func (t QuestionType) Branchable() bool {
	return t.HasOptions()
}

// DisplayName returns a human-readable name for a question type.
func (t QuestionType) DisplayName() string {
	switch t {
	case TypeImageMatrix:
		return "Image Matrix"
	case TypeImageList:
		return "Image List"
	case TypeTextList:
		return "Text List"
	case TypeTextField:
		return "Text Field"
	case TypeContactFields:
		return "Contact Fields"
	default:
		return string(t)
	}
}

// Option is a selectable choice belonging to a question.
type Option struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Question is a single prompt with a type, options, and optional branching rules.
type Question struct {
	ID    string       `json:"id"`
	Type  QuestionType `json:"type"`
	Title string       `json:"title"`

	// Required is advisory to the rendering layer; the flow engine ignores it.
	Required bool `json:"required"`

	Options   []Option  `json:"options"`
	Branching Branching `json:"branching,omitempty"`
}

// Option returns the option with the given ID.
func (q Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]Option(nil), q.Options...)
	}
	out.Branching = q.Branching.Clone()
	return out
}

// Settings holds display configuration. The flow engine never reads it.
type Settings struct {
	ProgressType   string `json:"progressType"`
	ProgressColor  string `json:"progressColor"`
	MobileOnly     bool   `json:"mobileOnly"`
	CookieTracking bool   `json:"cookieTracking"`
}

// Progress indicator styles.
const (
	ProgressBar        = "bar"
	ProgressSteps      = "steps"
	ProgressPercentage = "percentage"
)

// DefaultSettings returns the settings a freshly created quiz starts with.
func DefaultSettings() Settings {
	return Settings{
		ProgressType:   ProgressBar,
		ProgressColor:  "primary",
		MobileOnly:     true,
		CookieTracking: true,
	}
}

// DefaultTitle is the title given to quizzes created by the "new quiz" action.
const DefaultTitle = "Untitled Quiz"

// Quiz is an ordered collection of questions plus presentation settings.
// The order of Questions is the default traversal order.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	Settings    Settings   `json:"settings"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
	UpdatedAt   time.Time  `json:"updatedAt,omitzero"`
}

// NewQuiz returns an empty draft as created by the "new quiz" action.
// The ID is left empty; the store assigns it on creation.
func NewQuiz() Quiz {
	return Quiz{
		Title:     DefaultTitle,
		Questions: []Question{},
		Settings:  DefaultSettings(),
	}
}

// IndexOf returns the position of the question with the given ID, or -1.
func (q Quiz) IndexOf(id string) int {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// Question returns the question with the given ID.
func (q Quiz) Question(id string) (Question, bool) {
	i := q.IndexOf(id)
	if i < 0 {
		return Question{}, false
	}
	return q.Questions[i], true
}

// Clone returns a deep copy of the quiz so callers can edit it freely.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i := range q.Questions {
		out.Questions[i] = q.Questions[i].Clone()
	}
	return out
}

// NewQuizID returns a fresh opaque quiz identifier.
func NewQuizID() string {
	return uuid.NewString()
}

// NewQuestionID returns a fresh question identifier. IDs are random, so a
// deleted question's ID is never handed out again.
func NewQuestionID() string {
	return "q_" + uuid.NewString()
}

// NewOptionID returns a fresh option identifier.
func NewOptionID() string {
	return "opt_" + uuid.NewString()
}

// DefaultOptions returns the placeholder options a new choice question is
// seeded with. Types without options get nil.
func DefaultOptions(t QuestionType) []Option {
	if !t.HasOptions() {
		return nil
	}
	return []Option{
		{ID: NewOptionID(), Text: "Option 1", Value: "option1"},
		{ID: NewOptionID(), Text: "Option 2", Value: "option2"},
	}
}
