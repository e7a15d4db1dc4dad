package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/quizflow/internal/flow"
	"github.com/abhisek/quizflow/internal/quiz"
)

func choice(id string, options ...string) quiz.Question {
	q := quiz.Question{ID: id, Type: quiz.TypeTextList, Title: "Question " + id}
	for _, o := range options {
		q.Options = append(q.Options, quiz.Option{ID: o, Text: o})
	}
	return q
}

func branchingQuiz() quiz.Quiz {
	q1 := choice("Q1", "A", "B")
	q1.Branching = quiz.Branching{"A": quiz.GoTo("Q3"), "B": quiz.NextDefault()}
	return quiz.Quiz{
		ID:        "quiz-1",
		Questions: []quiz.Question{q1, choice("Q2", "A", "B"), choice("Q3", "A", "B")},
	}
}

func linearQuiz(n int) quiz.Quiz {
	q := quiz.Quiz{ID: "linear"}
	for i := range n {
		q.Questions = append(q.Questions, choice(fmt.Sprintf("q%d", i+1), "a", "b"))
	}
	return q
}

func TestNew_StartsAtFirstQuestion(t *testing.T) {
	s := New(branchingQuiz(), WithID("s-1"))

	if s.ID() != "s-1" {
		t.Errorf("ID = %q, want s-1", s.ID())
	}
	if s.State() != StateInProgress {
		t.Errorf("State = %v, want in_progress", s.State())
	}
	if s.CurrentQuestionID() != "Q1" {
		t.Errorf("CurrentQuestionID = %q, want Q1", s.CurrentQuestionID())
	}
	if len(s.Answers()) != 0 {
		t.Errorf("Answers = %v, want empty", s.Answers())
	}
}

func TestNew_GeneratesID(t *testing.T) {
	a, b := New(branchingQuiz()), New(branchingQuiz())
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("expected distinct generated IDs, got %q and %q", a.ID(), b.ID())
	}
}

func TestNew_EmptyQuizIsCompleted(t *testing.T) {
	s := New(quiz.Quiz{ID: "empty"})
	if !s.Completed() {
		t.Fatalf("State = %v, want completed", s.State())
	}
	if err := s.SubmitAnswer(quiz.Text("x")); !errors.Is(err, ErrCompleted) {
		t.Errorf("SubmitAnswer err = %v, want ErrCompleted", err)
	}
	if _, _, err := s.GoBack(); !errors.Is(err, ErrNoHistory) {
		t.Errorf("GoBack err = %v, want ErrNoHistory", err)
	}
}

func TestSubmitAnswer_BranchJumps(t *testing.T) {
	s := New(branchingQuiz())
	if err := s.SubmitAnswer(quiz.SingleChoice("A")); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if s.CurrentQuestionID() != "Q3" {
		t.Errorf("CurrentQuestionID = %q, want Q3", s.CurrentQuestionID())
	}
}

func TestSubmitAnswer_DefaultOrderThenComplete(t *testing.T) {
	s := New(branchingQuiz())
	for _, want := range []string{"Q2", "Q3", ""} {
		if err := s.SubmitAnswer(quiz.SingleChoice("B")); err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
		if s.CurrentQuestionID() != want {
			t.Errorf("CurrentQuestionID = %q, want %q", s.CurrentQuestionID(), want)
		}
	}
	if !s.Completed() {
		t.Errorf("State = %v, want completed", s.State())
	}
	if got := s.History(); len(got) != 3 {
		t.Errorf("History = %v, want 3 entries", got)
	}
}

func TestSubmitAnswer_CompleteSentinelEndsImmediately(t *testing.T) {
	q := branchingQuiz()
	q.Questions[0].Branching = quiz.Branching{"A": quiz.Complete()}
	s := New(q)

	if err := s.SubmitAnswer(quiz.SingleChoice("A")); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !s.Completed() {
		t.Fatalf("State = %v, want completed", s.State())
	}
	answers := s.Answers()
	if len(answers) != 1 || !answers["Q1"].Equal(quiz.SingleChoice("A")) {
		t.Errorf("Answers = %v, want {Q1: A}", answers)
	}
	if len(s.History()) != 1 {
		t.Errorf("History = %v, want only Q1", s.History())
	}
	if err := s.SubmitAnswer(quiz.SingleChoice("A")); !errors.Is(err, ErrCompleted) {
		t.Errorf("err = %v, want ErrCompleted", err)
	}
}

func TestSubmitAnswer_MismatchLeavesStateUnchanged(t *testing.T) {
	s := New(branchingQuiz())

	for _, a := range []quiz.Answer{quiz.Text("A"), quiz.SingleChoice("Z"), quiz.MultiChoice("A")} {
		err := s.SubmitAnswer(a)
		if !errors.Is(err, quiz.ErrAnswerMismatch) {
			t.Errorf("SubmitAnswer(%+v) err = %v, want ErrAnswerMismatch", a, err)
		}
	}
	if s.CurrentQuestionID() != "Q1" || len(s.Answers()) != 0 || len(s.History()) != 0 {
		t.Errorf("state changed after rejected answers: current=%q answers=%v", s.CurrentQuestionID(), s.Answers())
	}
	if s.State() != StateInProgress {
		t.Errorf("State = %v, want in_progress", s.State())
	}
}

func TestSubmitAnswer_ResolverFailureHalts(t *testing.T) {
	q := branchingQuiz()
	q.Questions[0].Branching = quiz.Branching{"A": quiz.GoTo("ghost")}
	s := New(q)

	err := s.SubmitAnswer(quiz.SingleChoice("A"))
	var bt *quiz.InvalidBranchTargetError
	if !errors.As(err, &bt) {
		t.Fatalf("err = %v, want InvalidBranchTargetError", err)
	}
	if s.State() != StateHalted {
		t.Errorf("State = %v, want halted", s.State())
	}
	if len(s.Answers()) != 0 {
		t.Errorf("answer recorded despite halt: %v", s.Answers())
	}
	if !errors.Is(s.SubmitAnswer(quiz.SingleChoice("B")), err) {
		t.Error("halted session should keep returning the halting error")
	}
	if _, _, backErr := s.GoBack(); backErr != err {
		t.Errorf("GoBack err = %v, want halting error", backErr)
	}
}

func TestSubmitAnswer_RevisitReplacesAnswer(t *testing.T) {
	q := linearQuiz(3)
	q.Questions[1].Branching = quiz.Branching{"b": quiz.GoTo("q1")}
	s := New(q)

	mustSubmit(t, s, quiz.SingleChoice("a")) // q1 -> q2
	mustSubmit(t, s, quiz.SingleChoice("b")) // q2 -> q1
	mustSubmit(t, s, quiz.SingleChoice("b")) // q1 -> q2

	if got, _ := s.Answer("q1"); !got.Equal(quiz.SingleChoice("b")) {
		t.Errorf("q1 answer = %+v, want b", got)
	}
	if len(s.Answers()) != 2 {
		t.Errorf("Answers = %v, want 2 entries", s.Answers())
	}

	// Undoing the revisit restores the first answer to q1.
	undone, ok, err := s.GoBack()
	if err != nil || !ok || !undone.Equal(quiz.SingleChoice("b")) {
		t.Fatalf("GoBack = %+v, %v, %v", undone, ok, err)
	}
	if got, _ := s.Answer("q1"); !got.Equal(quiz.SingleChoice("a")) {
		t.Errorf("q1 answer after GoBack = %+v, want a", got)
	}
}

func TestGoBack_AtStartHasNoHistory(t *testing.T) {
	s := New(branchingQuiz())
	if _, _, err := s.GoBack(); !errors.Is(err, ErrNoHistory) {
		t.Errorf("err = %v, want ErrNoHistory", err)
	}
}

func TestGoBack_FollowsPathTaken(t *testing.T) {
	s := New(branchingQuiz())
	mustSubmit(t, s, quiz.SingleChoice("A")) // Q1 -> Q3

	undone, ok, err := s.GoBack()
	if err != nil || !ok {
		t.Fatalf("GoBack: %v %v", ok, err)
	}
	if s.CurrentQuestionID() != "Q1" {
		t.Errorf("CurrentQuestionID = %q, want Q1 (not Q2)", s.CurrentQuestionID())
	}
	if !undone.Equal(quiz.SingleChoice("A")) {
		t.Errorf("undone = %+v, want A", undone)
	}
	if _, recorded := s.Answer("Q1"); recorded {
		t.Error("Q1 answer should be removed after GoBack")
	}
}

func TestGoBack_FromCompleted(t *testing.T) {
	s := New(branchingQuiz())
	mustSubmit(t, s, quiz.SingleChoice("A"))
	mustSubmit(t, s, quiz.SingleChoice("A"))
	if !s.Completed() {
		t.Fatalf("State = %v, want completed", s.State())
	}

	if _, _, err := s.GoBack(); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if s.State() != StateInProgress || s.CurrentQuestionID() != "Q3" {
		t.Errorf("after GoBack: state=%v current=%q, want in_progress at Q3", s.State(), s.CurrentQuestionID())
	}
	if !s.CompletedAt().IsZero() {
		t.Error("CompletedAt should be cleared")
	}
}

// TestHistoryLaw checks that n submits followed by n GoBack calls always
// return to the first question with no answers recorded.
func TestHistoryLaw(t *testing.T) {
	q := linearQuiz(5)
	q.Questions[1].Branching = quiz.Branching{"a": quiz.GoTo("q4"), "b": quiz.GoTo("q1")}
	q.Questions[3].Branching = quiz.Branching{"b": quiz.GoTo("q2")}

	sequences := [][]string{
		{"a"},
		{"a", "a", "a"},
		{"b", "b", "a", "b", "b", "a"},
		{"a", "b", "a", "a", "b", "a", "b"},
	}

	for _, seq := range sequences {
		t.Run(fmt.Sprint(seq), func(t *testing.T) {
			s := New(q)
			n := 0
			for _, opt := range seq {
				if s.Completed() {
					break
				}
				mustSubmit(t, s, quiz.SingleChoice(opt))
				n++
			}
			for range n {
				if _, _, err := s.GoBack(); err != nil {
					t.Fatalf("GoBack: %v", err)
				}
			}
			if s.CurrentQuestionID() != "q1" {
				t.Errorf("CurrentQuestionID = %q, want q1", s.CurrentQuestionID())
			}
			if len(s.Answers()) != 0 {
				t.Errorf("Answers = %v, want empty", s.Answers())
			}
			if _, _, err := s.GoBack(); !errors.Is(err, ErrNoHistory) {
				t.Errorf("extra GoBack err = %v, want ErrNoHistory", err)
			}
		})
	}
}

func TestMultiSelectPolicyFromResolver(t *testing.T) {
	m := quiz.Question{
		ID:        "m",
		Type:      quiz.TypeImageMatrix,
		Options:   []quiz.Option{{ID: "x"}, {ID: "y"}},
		Branching: quiz.Branching{"y": quiz.Complete()},
	}
	q := quiz.Quiz{Questions: []quiz.Question{m, choice("next", "a")}}

	single := New(q)
	mustSubmit(t, single, quiz.MultiChoice("x", "y"))
	if single.CurrentQuestionID() != "next" {
		t.Errorf("single-selection policy: current = %q, want next", single.CurrentQuestionID())
	}

	first := New(q, WithResolver(flow.Resolver{MultiSelect: flow.BranchOnFirstMatch}))
	mustSubmit(t, first, quiz.MultiChoice("x", "y"))
	if !first.Completed() {
		t.Errorf("first-match policy: state = %v, want completed", first.State())
	}
}

func TestResponses_FlattensContactFields(t *testing.T) {
	q := quiz.Quiz{Questions: []quiz.Question{
		{ID: "name", Type: quiz.TypeTextField},
		{ID: "who", Type: quiz.TypeContactFields},
	}}
	s := New(q)
	mustSubmit(t, s, quiz.Text("hello"))
	mustSubmit(t, s, quiz.Contact(quiz.ContactFields{Name: "Ada", Email: "a@b.c", Phone: "1"}))

	got := s.Responses()
	want := map[string]any{"name": "hello", "who_name": "Ada", "who_email": "a@b.c", "who_phone": "1"}
	if len(got) != len(want) {
		t.Fatalf("Responses = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Responses[%q] = %v, want %v", k, got[k], v)
		}
	}
}

func TestAnswersReturnsCopy(t *testing.T) {
	s := New(linearQuiz(2))
	mustSubmit(t, s, quiz.SingleChoice("a"))

	answers := s.Answers()
	delete(answers, "q1")
	if _, ok := s.Answer("q1"); !ok {
		t.Error("mutating Answers() result changed the session")
	}
}

func TestSessionUsesQuizSnapshot(t *testing.T) {
	q := linearQuiz(2)
	s := New(q)
	q.Questions[0].Branching = quiz.Branching{"a": quiz.Complete()}

	mustSubmit(t, s, quiz.SingleChoice("a"))
	if s.CurrentQuestionID() != "q2" {
		t.Errorf("CurrentQuestionID = %q, want q2 (edits after New must not leak in)", s.CurrentQuestionID())
	}
}

func TestSummary(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := start
	s := New(linearQuiz(2), WithID("s-9"), WithClock(func() time.Time { return clock }))

	mustSubmit(t, s, quiz.SingleChoice("a"))
	clock = start.Add(90 * time.Second)
	mustSubmit(t, s, quiz.SingleChoice("b"))

	sum := BuildSummary(s)
	if sum.SessionID != "s-9" || sum.QuizID != "linear" {
		t.Errorf("summary ids = %q/%q", sum.SessionID, sum.QuizID)
	}
	if sum.Duration() != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", sum.Duration())
	}
	if len(sum.Path) != 2 || sum.Path[0] != "q1" || sum.Path[1] != "q2" {
		t.Errorf("Path = %v, want [q1 q2]", sum.Path)
	}
	if sum.Responses["q2"] != "b" {
		t.Errorf("Responses = %v", sum.Responses)
	}
}

func mustSubmit(t *testing.T, s *Session, a quiz.Answer) {
	t.Helper()
	if err := s.SubmitAnswer(a); err != nil {
		t.Fatalf("SubmitAnswer(%+v) at %q: %v", a, s.CurrentQuestionID(), err)
	}
}
