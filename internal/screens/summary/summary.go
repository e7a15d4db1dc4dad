package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/router"
	"github.com/abhisek/quizflow/internal/screen"
	"github.com/abhisek/quizflow/internal/session"
	"github.com/abhisek/quizflow/internal/ui/components"
	"github.com/abhisek/quizflow/internal/ui/layout"
	"github.com/abhisek/quizflow/internal/ui/theme"
)

// RecordedMsg reports the outcome of storing the completed session.
type RecordedMsg struct {
	Sequence int64
	Err      error
}

// SummaryScreen is the completion screen: the path taken and the answers
// given, plus whether the response was stored.
type SummaryScreen struct {
	sess     *session.Session
	summary  session.Summary
	backTo   func() screen.Screen
	recorded *RecordedMsg
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for a completed session. backTo builds the
// screen shown after stepping back into the session; nil disables going back.
func New(s *session.Session, backTo func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{sess: s, summary: session.BuildSummary(s), backTo: backTo}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return s.sess.Quiz().Title
}

func (s *SummaryScreen) Status() string {
	return "done"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Finish"}}
	if s.backTo != nil && len(s.summary.Path) > 0 {
		hints = append(hints, layout.KeyHint{Key: "←/b", Description: "Change last answer"})
	}
	return hints
}

// Summary returns the completed session's record.
func (s *SummaryScreen) Summary() session.Summary {
	return s.summary
}

// Recorded returns the storage outcome once it is known.
func (s *SummaryScreen) Recorded() (RecordedMsg, bool) {
	if s.recorded == nil {
		return RecordedMsg{}, false
	}
	return *s.recorded, true
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case RecordedMsg:
		s.recorded = &msg
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q":
			return s, tea.Quit
		case "left", "b":
			if s.backTo == nil || len(s.summary.Path) == 0 {
				return s, nil
			}
			if _, _, err := s.sess.GoBack(); err != nil {
				return s, nil
			}
			next := s.backTo()
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(theme.Title.Width(cw).Render("All done, thank you!"))
	b.WriteString("\n\n")

	mins := int(s.summary.Duration().Minutes())
	secs := int(s.summary.Duration().Seconds()) % 60
	b.WriteString(theme.Subtitle.Width(cw).Render(fmt.Sprintf(
		"Answered %d of %d questions in %d:%02d",
		len(s.summary.Path), len(s.sess.Quiz().Questions), mins, secs)))
	b.WriteString("\n\n")

	q := s.sess.Quiz()
	for i, id := range s.summary.Path {
		question, ok := q.Question(id)
		if !ok {
			continue
		}
		a, _ := s.sess.Answer(id)
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(
			fmt.Sprintf("%d. %s", i+1, question.Title)))
		b.WriteString("\n   ")
		b.WriteString(theme.Body.Render(FormatAnswer(question, a)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case s.recorded == nil:
		b.WriteString(theme.Hint.Render("Saving response..."))
	case s.recorded.Err != nil:
		b.WriteString(theme.Warning.Render("Response not saved: " + s.recorded.Err.Error()))
	case s.recorded.Sequence > 0:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render(
			fmt.Sprintf("Saved as response #%d", s.recorded.Sequence)))
	default:
		b.WriteString(theme.Hint.Render("Preview only, nothing saved"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, components.Card(b.String(), cw))
}

// FormatAnswer renders an answer for display, using option texts rather
// than IDs.
func FormatAnswer(q quiz.Question, a quiz.Answer) string {
	label := func(id string) string {
		if o, ok := q.Option(id); ok && o.Text != "" {
			return o.Text
		}
		return id
	}
	switch a.Kind {
	case quiz.AnswerSingle:
		return label(a.Option)
	case quiz.AnswerMulti:
		if len(a.Options) == 0 {
			return "(none)"
		}
		labels := make([]string, len(a.Options))
		for i, id := range a.Options {
			labels[i] = label(id)
		}
		return strings.Join(labels, ", ")
	case quiz.AnswerText:
		if a.Text == "" {
			return "(blank)"
		}
		return a.Text
	case quiz.AnswerContact:
		parts := []string{}
		for _, p := range []string{a.Contact.Name, a.Contact.Email, a.Contact.Phone} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			return "(blank)"
		}
		return strings.Join(parts, " · ")
	default:
		return "(no answer)"
	}
}
