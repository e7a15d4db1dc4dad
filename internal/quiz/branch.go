package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// CompleteSentinel is the wire value of a branch target that ends the quiz.
const CompleteSentinel = "complete"

// NextKeyword is the textual form of the default fall-through target.
const NextKeyword = "next"

// IsReservedID reports whether id is one of the branch keywords and so
// cannot name a question.
func IsReservedID(id string) bool {
	return id == CompleteSentinel || id == NextKeyword
}

// BranchKind discriminates the variants of BranchTarget.
type BranchKind int

const (
	BranchNextDefault BranchKind = iota // fall through to the next question in order
	BranchComplete                      // end the quiz immediately
	BranchQuestion                      // jump to a specific question
)

func (k BranchKind) String() string {
	switch k {
	case BranchNextDefault:
		return "next"
	case BranchComplete:
		return "complete"
	case BranchQuestion:
		return "question"
	default:
		return fmt.Sprintf("BranchKind(%d)", int(k))
	}
}

// BranchTarget says where a respondent goes after selecting an option.
// The zero value is NextDefault.
type BranchTarget struct {
	kind       BranchKind
	questionID string
}

// NextDefault returns the target that falls through to the default order.
func NextDefault() BranchTarget { return BranchTarget{} }

// Complete returns the target that ends the quiz.
func Complete() BranchTarget { return BranchTarget{kind: BranchComplete} }

// GoTo returns a target that jumps to the question with the given ID.
// An empty ID yields NextDefault.
func GoTo(questionID string) BranchTarget {
	if questionID == "" {
		return NextDefault()
	}
	return BranchTarget{kind: BranchQuestion, questionID: questionID}
}

// ParseBranchTarget converts the textual form used by the CLI and the wire
// format: "" or "next" is NextDefault, "complete" is Complete, anything else
// is a question ID.
func ParseBranchTarget(s string) BranchTarget {
	switch s {
	case "", NextKeyword:
		return NextDefault()
	case CompleteSentinel:
		return Complete()
	default:
		return GoTo(s)
	}
}

// Kind returns the variant of the target.
func (t BranchTarget) Kind() BranchKind { return t.kind }

// IsDefault reports whether the target falls through to the default order.
func (t BranchTarget) IsDefault() bool { return t.kind == BranchNextDefault }

// IsComplete reports whether the target ends the quiz.
func (t BranchTarget) IsComplete() bool { return t.kind == BranchComplete }

// QuestionID returns the target question ID when the target is a jump.
func (t BranchTarget) QuestionID() (string, bool) {
	if t.kind != BranchQuestion {
		return "", false
	}
	return t.questionID, true
}

func (t BranchTarget) String() string {
	switch t.kind {
	case BranchComplete:
		return CompleteSentinel
	case BranchQuestion:
		return t.questionID
	default:
		return "next"
	}
}

// MarshalJSON encodes NextDefault as null, Complete as "complete" and a jump
// as the target question ID.
func (t BranchTarget) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case BranchComplete:
		return json.Marshal(CompleteSentinel)
	case BranchQuestion:
		return json.Marshal(t.questionID)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a string, or a number. Numeric IDs are kept as
// their decimal string form so that lookups stay string based.
func (t *BranchTarget) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = NextDefault()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("branch target: %w", err)
		}
		if s == "" {
			*t = NextDefault()
			return nil
		}
		if s == CompleteSentinel {
			*t = Complete()
			return nil
		}
		*t = GoTo(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("branch target must be null, a string or a number: %s", data)
	}
	*t = GoTo(n.String())
	return nil
}

// Branching maps an option ID to the target taken when that option is selected.
// A missing key behaves like NextDefault.
type Branching map[string]BranchTarget

// Target returns the rule for an option, NextDefault when none is set.
func (b Branching) Target(optionID string) BranchTarget {
	return b[optionID]
}

// Clone returns a copy of the map.
func (b Branching) Clone() Branching {
	if b == nil {
		return nil
	}
	return maps.Clone(b)
}

// Compact returns a copy without NextDefault entries, which carry no
// information. Returns nil when nothing remains.
func (b Branching) Compact() Branching {
	var out Branching
	for k, v := range b {
		if v.IsDefault() {
			continue
		}
		if out == nil {
			out = make(Branching)
		}
		out[k] = v
	}
	return out
}

// OptionIDs returns the keys ordered by the question's option order first,
// then any remaining keys sorted, so iteration is deterministic.
func (b Branching) OptionIDs(options []Option) []string {
	ids := make([]string, 0, len(b))
	seen := make(map[string]bool, len(b))
	for _, o := range options {
		if _, ok := b[o.ID]; ok && !seen[o.ID] {
			ids = append(ids, o.ID)
			seen[o.ID] = true
		}
	}
	rest := make([]string, 0)
	for k := range b {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(ids, rest...)
}
