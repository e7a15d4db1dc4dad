// Package question is the preview screen that walks a respondent through a
// quiz one question at a time.
package question

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/router"
	"github.com/abhisek/quizflow/internal/screen"
	"github.com/abhisek/quizflow/internal/screens/summary"
	"github.com/abhisek/quizflow/internal/session"
	"github.com/abhisek/quizflow/internal/store"
	"github.com/abhisek/quizflow/internal/ui/components"
	"github.com/abhisek/quizflow/internal/ui/layout"
	"github.com/abhisek/quizflow/internal/ui/theme"
)

const (
	matrixColumns = 3
	textLimit     = 500
)

// QuestionScreen shows the session's current question with the widget its
// type calls for.
type QuestionScreen struct {
	ctx       context.Context
	sess      *session.Session
	responses store.ResponseRepo

	current quiz.Question
	choices components.ChoiceList
	grid    components.MultiSelect
	text    components.TextInput
	contact components.ContactForm

	errMsg string // inline, cleared on the next key
	halted error
}

var _ screen.Screen = (*QuestionScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionScreen)(nil)
var _ screen.StatusProvider = (*QuestionScreen)(nil)

// New creates a QuestionScreen for s. Completed sessions are appended to
// responses; a nil repo runs the quiz without recording anything.
func New(ctx context.Context, s *session.Session, responses store.ResponseRepo) *QuestionScreen {
	qs := &QuestionScreen{ctx: ctx, sess: s, responses: responses}
	if a, ok := s.Answer(s.CurrentQuestionID()); ok {
		qs.load(a, true)
	} else {
		qs.load(quiz.Answer{}, false)
	}
	return qs
}

func (s *QuestionScreen) Init() tea.Cmd {
	return s.focus()
}

func (s *QuestionScreen) Title() string {
	return s.sess.Quiz().Title
}

func (s *QuestionScreen) Status() string {
	return components.ProgressText(s.sess.Quiz().Settings, s.sess.Progress())
}

// Current returns the question being shown.
func (s *QuestionScreen) Current() quiz.Question {
	return s.current
}

// Error returns the inline message shown under the question, if any.
func (s *QuestionScreen) Error() string {
	return s.errMsg
}

func (s *QuestionScreen) KeyHints() []layout.KeyHint {
	if s.halted != nil {
		return []layout.KeyHint{{Key: "any key", Description: "Quit"}}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Next"}}
	switch quiz.KindFor(s.current.Type) {
	case quiz.AnswerSingle:
		hints = append(hints, layout.KeyHint{Key: "↑↓", Description: "Choose"}, layout.KeyHint{Key: "←/b", Description: "Back"})
	case quiz.AnswerMulti:
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Toggle"}, layout.KeyHint{Key: "b", Description: "Back"})
	case quiz.AnswerContact:
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Next field"}, layout.KeyHint{Key: "Esc", Description: "Back"})
	default:
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return hints
}

func (s *QuestionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, s.forward(msg)
	}

	if s.halted != nil {
		return s, tea.Quit
	}
	s.errMsg = ""

	switch key := kmsg.String(); {
	case key == "enter":
		return s, s.submit()
	case key == "esc" && s.typing():
		return s, s.back()
	case (key == "left" || key == "b") && quiz.KindFor(s.current.Type) == quiz.AnswerSingle:
		return s, s.back()
	case key == "b" && quiz.KindFor(s.current.Type) == quiz.AnswerMulti:
		return s, s.back()
	}
	return s, s.forward(msg)
}

// typing reports whether the current question takes keyboard text, where
// letters and arrows belong to the input.
func (s *QuestionScreen) typing() bool {
	k := quiz.KindFor(s.current.Type)
	return k == quiz.AnswerText || k == quiz.AnswerContact
}

func (s *QuestionScreen) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch quiz.KindFor(s.current.Type) {
	case quiz.AnswerSingle:
		s.choices, cmd = s.choices.Update(msg)
	case quiz.AnswerMulti:
		s.grid, cmd = s.grid.Update(msg)
	case quiz.AnswerText:
		s.text, cmd = s.text.Update(msg)
	case quiz.AnswerContact:
		s.contact, cmd = s.contact.Update(msg)
	}
	return cmd
}

func (s *QuestionScreen) submit() tea.Cmd {
	a, problem := s.answer()
	if problem != "" {
		s.errMsg = problem
		return nil
	}

	if err := s.sess.SubmitAnswer(a); err != nil {
		if s.sess.State() == session.StateHalted {
			s.halted = err
			return nil
		}
		s.errMsg = err.Error()
		return nil
	}

	if s.sess.Completed() {
		return s.finish()
	}
	s.load(quiz.Answer{}, false)
	return s.focus()
}

func (s *QuestionScreen) back() tea.Cmd {
	undone, had, err := s.sess.GoBack()
	if err != nil {
		if errors.Is(err, session.ErrNoHistory) {
			s.errMsg = "This is the first question."
			return nil
		}
		s.halted = err
		return nil
	}
	s.load(undone, had)
	return s.focus()
}

// finish swaps in the summary screen, then records the response so the
// outcome reaches the summary.
func (s *QuestionScreen) finish() tea.Cmd {
	sum := summary.New(s.sess, func() screen.Screen {
		return New(s.ctx, s.sess, s.responses)
	})
	replace := func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
	return tea.Sequence(replace, s.record(sum.Summary()))
}

func (s *QuestionScreen) record(sum session.Summary) tea.Cmd {
	if s.responses == nil {
		return func() tea.Msg { return summary.RecordedMsg{} }
	}
	ctx, repo := s.ctx, s.responses
	return func() tea.Msg {
		resp := store.ResponseFromSummary(sum)
		if err := repo.Append(ctx, resp); err != nil {
			return summary.RecordedMsg{Err: err}
		}
		return summary.RecordedMsg{Sequence: resp.Sequence}
	}
}

// answer reads the widget into an Answer. A non-empty problem means the
// answer is missing and should not be submitted.
func (s *QuestionScreen) answer() (quiz.Answer, string) {
	q := s.current
	switch quiz.KindFor(q.Type) {
	case quiz.AnswerSingle:
		o, ok := s.choices.Selected()
		if !ok {
			return quiz.Answer{}, "This question has no options to choose from."
		}
		return quiz.SingleChoice(o.ID), ""
	case quiz.AnswerMulti:
		ids := s.grid.Checked()
		if q.Required && len(ids) == 0 {
			return quiz.Answer{}, "Pick at least one option."
		}
		return quiz.MultiChoice(ids...), ""
	case quiz.AnswerText:
		v := strings.TrimSpace(s.text.Value())
		if q.Required && v == "" {
			return quiz.Answer{}, "An answer is required."
		}
		return quiz.Text(v), ""
	case quiz.AnswerContact:
		if q.Required && s.contact.Empty() {
			return quiz.Answer{}, "Fill in at least one field."
		}
		return quiz.Contact(s.contact.Value()), ""
	}
	return quiz.Answer{}, "Unsupported question type."
}

// load rebuilds the widgets for the session's current question, pre-filled
// with prefill when has is set.
func (s *QuestionScreen) load(prefill quiz.Answer, has bool) {
	q, ok := s.sess.CurrentQuestion()
	if !ok {
		if err := s.sess.Err(); err != nil {
			s.halted = err
		}
		return
	}
	s.current = q

	switch quiz.KindFor(q.Type) {
	case quiz.AnswerSingle:
		s.choices = components.NewChoiceList(q.Options)
		if has {
			s.choices.Select(prefill.Option)
		}
	case quiz.AnswerMulti:
		s.grid = components.NewMultiSelect(q.Options, matrixColumns)
		if has {
			s.grid.SetChecked(prefill.Options)
		}
	case quiz.AnswerText:
		s.text = components.NewTextInput("", "Type your answer...", textLimit)
		if has {
			s.text.SetValue(prefill.Text)
		}
	case quiz.AnswerContact:
		s.contact = components.NewContactForm()
		if has {
			s.contact.SetValue(prefill.Contact)
		}
	}
}

func (s *QuestionScreen) focus() tea.Cmd {
	switch quiz.KindFor(s.current.Type) {
	case quiz.AnswerText:
		return s.text.Focus()
	case quiz.AnswerContact:
		return s.contact.Init()
	}
	return nil
}

func (s *QuestionScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if s.halted != nil {
		body := theme.Warning.Render("This quiz cannot continue") + "\n\n" +
			theme.Body.Width(cw).Render(s.halted.Error()) + "\n\n" +
			theme.Hint.Render("Fix the branching rules and preview again.")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, components.Card(body, cw))
	}

	q := s.current
	var b strings.Builder
	b.WriteString(components.Progress(s.sess.Quiz().Settings, s.sess.Progress(), cw))
	b.WriteString("\n\n")

	title := q.Title
	if title == "" {
		title = q.Type.DisplayName()
	}
	if q.Required {
		title += " *"
	}
	b.WriteString(theme.Title.Width(cw).Align(lipgloss.Left).Render(title))
	b.WriteString("\n\n")

	switch quiz.KindFor(q.Type) {
	case quiz.AnswerSingle:
		b.WriteString(s.choices.View())
	case quiz.AnswerMulti:
		b.WriteString(s.grid.View(cw))
	case quiz.AnswerText:
		b.WriteString(s.text.View())
	case quiz.AnswerContact:
		b.WriteString(s.contact.View())
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Warning.Render(s.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, components.Card(b.String(), cw))
}
