package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchTargetUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind BranchKind
		wantID   string
	}{
		{"null", `null`, BranchNextDefault, ""},
		{"empty string", `""`, BranchNextDefault, ""},
		{"complete", `"complete"`, BranchComplete, ""},
		{"question id", `"q_3"`, BranchQuestion, "q_3"},
		{"numeric id", `3`, BranchQuestion, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bt BranchTarget
			require.NoError(t, json.Unmarshal([]byte(tt.input), &bt))
			assert.Equal(t, tt.wantKind, bt.Kind())
			id, _ := bt.QuestionID()
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestBranchTargetUnmarshalRejectsObjects(t *testing.T) {
	var bt BranchTarget
	assert.Error(t, json.Unmarshal([]byte(`{"id":"q1"}`), &bt))
}

func TestBranchingDecodesMixedValues(t *testing.T) {
	var b Branching
	require.NoError(t, json.Unmarshal([]byte(`{"a":"q3","b":null,"c":"complete"}`), &b))

	assert.Equal(t, GoTo("q3"), b.Target("a"))
	assert.True(t, b.Target("b").IsDefault())
	assert.True(t, b.Target("c").IsComplete())
	assert.True(t, b.Target("zzz").IsDefault(), "missing key falls through")
}

func TestBranchingMarshal(t *testing.T) {
	b := Branching{"a": GoTo("q3"), "c": Complete(), "d": NextDefault()}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"q3","c":"complete","d":null}`, string(data))
}

func TestBranchingCompact(t *testing.T) {
	b := Branching{"a": GoTo("q3"), "b": NextDefault()}
	assert.Equal(t, Branching{"a": GoTo("q3")}, b.Compact())
	assert.Nil(t, Branching{"b": NextDefault()}.Compact())
}

func TestBranchingOptionIDsOrder(t *testing.T) {
	options := []Option{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	b := Branching{"z": Complete(), "x": GoTo("q2"), "orphan-b": Complete(), "orphan-a": Complete()}
	assert.Equal(t, []string{"x", "z", "orphan-a", "orphan-b"}, b.OptionIDs(options))
}

func TestParseBranchTarget(t *testing.T) {
	assert.True(t, ParseBranchTarget("").IsDefault())
	assert.True(t, ParseBranchTarget("next").IsDefault())
	assert.True(t, ParseBranchTarget("complete").IsComplete())
	id, ok := ParseBranchTarget("q_7").QuestionID()
	assert.True(t, ok)
	assert.Equal(t, "q_7", id)
}

func TestQuestionJSONRoundTripKeepsBranching(t *testing.T) {
	in := `{"id":"q1","type":"text-list","title":"Pick","required":true,
		"options":[{"id":"a","text":"A"},{"id":"b","text":"B"}],
		"branching":{"a":"q3","b":null}}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(in), &q))
	assert.Equal(t, TypeTextList, q.Type)
	assert.Equal(t, GoTo("q3"), q.Branching.Target("a"))
	assert.True(t, q.Branching.Target("b").IsDefault())
}

func TestNewQuizDefaults(t *testing.T) {
	q := NewQuiz()
	assert.Equal(t, DefaultTitle, q.Title)
	assert.Empty(t, q.Questions)
	assert.Equal(t, ProgressBar, q.Settings.ProgressType)
	assert.True(t, q.Settings.MobileOnly)
	assert.Empty(t, q.ID, "ID is assigned by the store")
}

func TestNewQuestionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewQuestionID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestDefaultOptions(t *testing.T) {
	assert.Len(t, DefaultOptions(TypeTextList), 2)
	assert.Nil(t, DefaultOptions(TypeTextField))
	assert.Nil(t, DefaultOptions(TypeContactFields))
}

func TestQuizCloneIsDeep(t *testing.T) {
	orig := Quiz{Questions: linearQuestions(2)}
	orig.Questions[0].Branching = Branching{"a": GoTo("q2")}

	c := orig.Clone()
	c.Questions[0].Branching["a"] = Complete()
	c.Questions[0].Options[0].Text = "changed"

	assert.Equal(t, GoTo("q2"), orig.Questions[0].Branching["a"])
	assert.Equal(t, "A", orig.Questions[0].Options[0].Text)
}
