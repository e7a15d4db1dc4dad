package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// AnswerKind discriminates the shapes a respondent's answer can take.
type AnswerKind int

const (
	AnswerNone    AnswerKind = iota
	AnswerSingle             // one option ID (image-list, text-list)
	AnswerMulti              // a set of option IDs (image-matrix)
	AnswerText               // free text (text-field)
	AnswerContact            // name/email/phone (contact-fields)
)

func (k AnswerKind) String() string {
	switch k {
	case AnswerSingle:
		return "single"
	case AnswerMulti:
		return "multi"
	case AnswerText:
		return "text"
	case AnswerContact:
		return "contact"
	default:
		return "none"
	}
}

// ContactFields is the structured record captured by contact-fields questions.
type ContactFields struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Answer is a respondent's answer to one question.
type Answer struct {
	Kind    AnswerKind
	Option  string
	Options []string
	Text    string
	Contact ContactFields
}

// SingleChoice returns an answer selecting one option.
func SingleChoice(optionID string) Answer {
	return Answer{Kind: AnswerSingle, Option: optionID}
}

// MultiChoice returns an answer selecting a set of options. Duplicates are
// dropped; selection order is kept.
func MultiChoice(optionIDs ...string) Answer {
	ids := make([]string, 0, len(optionIDs))
	for _, id := range optionIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return Answer{Kind: AnswerMulti, Options: ids}
}

// Text returns a free-text answer.
func Text(s string) Answer {
	return Answer{Kind: AnswerText, Text: s}
}

// Contact returns a contact-fields answer.
func Contact(f ContactFields) Answer {
	return Answer{Kind: AnswerContact, Contact: f}
}

// KindFor returns the answer kind a question type expects.
func KindFor(t QuestionType) AnswerKind {
	switch t {
	case TypeImageList, TypeTextList:
		return AnswerSingle
	case TypeImageMatrix:
		return AnswerMulti
	case TypeTextField:
		return AnswerText
	case TypeContactFields:
		return AnswerContact
	default:
		return AnswerNone
	}
}

// Selected returns the option IDs the answer selects, in selection order.
func (a Answer) Selected() []string {
	switch a.Kind {
	case AnswerSingle:
		if a.Option == "" {
			return nil
		}
		return []string{a.Option}
	case AnswerMulti:
		return slices.Clone(a.Options)
	default:
		return nil
	}
}

// Clone returns a deep copy of the answer.
func (a Answer) Clone() Answer {
	out := a
	out.Options = slices.Clone(a.Options)
	return out
}

// Equal reports whether two answers are identical.
func (a Answer) Equal(b Answer) bool {
	return a.Kind == b.Kind &&
		a.Option == b.Option &&
		slices.Equal(a.Options, b.Options) &&
		a.Text == b.Text &&
		a.Contact == b.Contact
}

// Flatten returns the answer in the flat response shape keyed by question
// ID. Contact answers expand into "<qid>_name", "<qid>_email", "<qid>_phone".
func (a Answer) Flatten(questionID string) map[string]any {
	switch a.Kind {
	case AnswerSingle:
		return map[string]any{questionID: a.Option}
	case AnswerMulti:
		return map[string]any{questionID: slices.Clone(a.Options)}
	case AnswerText:
		return map[string]any{questionID: a.Text}
	case AnswerContact:
		return map[string]any{
			questionID + "_name":  a.Contact.Name,
			questionID + "_email": a.Contact.Email,
			questionID + "_phone": a.Contact.Phone,
		}
	default:
		return map[string]any{}
	}
}

// MarshalJSON encodes the answer in its wire form: a string for single
// choice and text, an array for multi choice, an object for contact fields.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerSingle:
		return json.Marshal(a.Option)
	case AnswerMulti:
		if a.Options == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Options)
	case AnswerText:
		return json.Marshal(a.Text)
	case AnswerContact:
		return json.Marshal(a.Contact)
	default:
		return []byte("null"), nil
	}
}

// ParseAnswer decodes the wire form of an answer to q. The question type
// decides how the JSON value is read, since a single option ID and a free
// text answer are both strings.
func ParseAnswer(q Question, raw json.RawMessage) (Answer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Answer{}, fmt.Errorf("%w: empty answer for question %q", ErrAnswerMismatch, q.ID)
	}
	switch KindFor(q.Type) {
	case AnswerSingle:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Answer{}, fmt.Errorf("%w: question %q expects an option ID", ErrAnswerMismatch, q.ID)
		}
		return SingleChoice(s), nil
	case AnswerMulti:
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return Answer{}, fmt.Errorf("%w: question %q expects a list of option IDs", ErrAnswerMismatch, q.ID)
		}
		return MultiChoice(ids...), nil
	case AnswerText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Answer{}, fmt.Errorf("%w: question %q expects text", ErrAnswerMismatch, q.ID)
		}
		return Text(s), nil
	case AnswerContact:
		var f ContactFields
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return Answer{}, fmt.Errorf("%w: question %q expects name, email and phone", ErrAnswerMismatch, q.ID)
		}
		return Contact(f), nil
	default:
		return Answer{}, fmt.Errorf("%w: question %q has unknown type %q", ErrAnswerMismatch, q.ID, q.Type)
	}
}

// CheckAnswer verifies that a fits q: the kind must match the question type
// and every selected option must belong to the question.
func CheckAnswer(q Question, a Answer) error {
	want := KindFor(q.Type)
	if a.Kind != want {
		return fmt.Errorf("%w: question %q (%s) expects a %s answer, got %s",
			ErrAnswerMismatch, q.ID, q.Type, want, a.Kind)
	}
	for _, id := range a.Selected() {
		if _, ok := q.Option(id); !ok {
			return fmt.Errorf("%w: question %q has no option %q", ErrAnswerMismatch, q.ID, id)
		}
	}
	if a.Kind == AnswerSingle && a.Option == "" {
		return fmt.Errorf("%w: question %q needs a selected option", ErrAnswerMismatch, q.ID)
	}
	return nil
}
