package quiz

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	choice := Question{ID: "q1", Type: TypeTextList, Options: []Option{{ID: "a"}}}
	matrix := Question{ID: "q2", Type: TypeImageMatrix, Options: []Option{{ID: "a"}, {ID: "b"}}}
	field := Question{ID: "q3", Type: TypeTextField}
	contact := Question{ID: "q4", Type: TypeContactFields}

	tests := []struct {
		name    string
		q       Question
		raw     string
		want    Answer
		wantErr bool
	}{
		{"single choice", choice, `"a"`, SingleChoice("a"), false},
		{"single choice wrong shape", choice, `["a"]`, Answer{}, true},
		{"multi choice", matrix, `["b","a","b"]`, MultiChoice("b", "a"), false},
		{"multi choice wrong shape", matrix, `"a"`, Answer{}, true},
		{"text", field, `"hello"`, Text("hello"), false},
		{"contact", contact, `{"name":"Ada","email":"ada@example.com","phone":"1"}`,
			Contact(ContactFields{Name: "Ada", Email: "ada@example.com", Phone: "1"}), false},
		{"contact unknown field", contact, `{"fax":"1"}`, Answer{}, true},
		{"null", field, `null`, Answer{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnswer(tt.q, json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrAnswerMismatch))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %+v, want %+v", got, tt.want)
		})
	}
}

func TestCheckAnswer(t *testing.T) {
	q := Question{ID: "q1", Type: TypeImageList, Options: []Option{{ID: "a"}, {ID: "b"}}}

	assert.NoError(t, CheckAnswer(q, SingleChoice("a")))
	assert.ErrorIs(t, CheckAnswer(q, SingleChoice("zzz")), ErrAnswerMismatch)
	assert.ErrorIs(t, CheckAnswer(q, SingleChoice("")), ErrAnswerMismatch)
	assert.ErrorIs(t, CheckAnswer(q, Text("a")), ErrAnswerMismatch)
	assert.ErrorIs(t, CheckAnswer(q, MultiChoice("a")), ErrAnswerMismatch)

	m := Question{ID: "q2", Type: TypeImageMatrix, Options: []Option{{ID: "a"}, {ID: "b"}}}
	assert.NoError(t, CheckAnswer(m, MultiChoice()))
	assert.NoError(t, CheckAnswer(m, MultiChoice("a", "b")))
	assert.ErrorIs(t, CheckAnswer(m, MultiChoice("a", "c")), ErrAnswerMismatch)
}

func TestAnswerFlatten(t *testing.T) {
	assert.Equal(t, map[string]any{"q1": "a"}, SingleChoice("a").Flatten("q1"))
	assert.Equal(t, map[string]any{"q1": []string{"a", "b"}}, MultiChoice("a", "b").Flatten("q1"))
	assert.Equal(t, map[string]any{"q1": "hi"}, Text("hi").Flatten("q1"))
	assert.Equal(t, map[string]any{
		"q9_name":  "Ada",
		"q9_email": "ada@example.com",
		"q9_phone": "",
	}, Contact(ContactFields{Name: "Ada", Email: "ada@example.com"}).Flatten("q9"))
}

func TestAnswerMarshalJSON(t *testing.T) {
	tests := []struct {
		a    Answer
		want string
	}{
		{SingleChoice("a"), `"a"`},
		{MultiChoice(), `[]`},
		{MultiChoice("a", "b"), `["a","b"]`},
		{Text("free"), `"free"`},
		{Contact(ContactFields{Name: "N"}), `{"name":"N","email":"","phone":""}`},
		{Answer{}, `null`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.a)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))
	}
}

func TestAnswerSelectedIsACopy(t *testing.T) {
	a := MultiChoice("a", "b")
	sel := a.Selected()
	sel[0] = "z"
	assert.Equal(t, []string{"a", "b"}, a.Options)
}
