package intro

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/router"
	"github.com/abhisek/quizflow/internal/screen"
	"github.com/abhisek/quizflow/internal/ui/components"
	"github.com/abhisek/quizflow/internal/ui/layout"
	"github.com/abhisek/quizflow/internal/ui/theme"
)

// IntroScreen introduces the quiz and waits for the respondent to start.
type IntroScreen struct {
	quiz         quiz.Quiz
	startFactory func() screen.Screen
	button       components.Button
	transitioned bool
}

var _ screen.Screen = (*IntroScreen)(nil)
var _ screen.KeyHintProvider = (*IntroScreen)(nil)

// New creates an IntroScreen that hands over to the screen produced by
// startFactory.
func New(q quiz.Quiz, startFactory func() screen.Screen) *IntroScreen {
	i := &IntroScreen{quiz: q, startFactory: startFactory}
	label := "Start"
	if len(q.Questions) == 0 {
		label = "Close"
	}
	i.button = components.NewButton(label, true, i.transition)
	return i
}

func (i *IntroScreen) Init() tea.Cmd {
	return nil
}

func (i *IntroScreen) Title() string {
	return i.quiz.Title
}

func (i *IntroScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: i.button.Label},
		{Key: "q", Description: "Quit"},
	}
}

func (i *IntroScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return i, nil
	}
	if kmsg.String() == "q" {
		return i, tea.Quit
	}
	var cmd tea.Cmd
	i.button, cmd = i.button.Update(msg)
	return i, cmd
}

func (i *IntroScreen) transition() tea.Cmd {
	if i.transitioned {
		return nil
	}
	if len(i.quiz.Questions) == 0 {
		return tea.Quit
	}
	i.transitioned = true
	next := i.startFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (i *IntroScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	title := i.quiz.Title
	if title == "" {
		title = quiz.DefaultTitle
	}
	sections = append(sections, theme.Title.Width(cw).Render(title))

	if i.quiz.Description != "" {
		sections = append(sections, "", theme.Subtitle.Width(cw).Render(i.quiz.Description))
	}

	sections = append(sections, "")
	switch n := len(i.quiz.Questions); n {
	case 0:
		sections = append(sections, theme.Warning.Render("This quiz has no questions yet."))
	case 1:
		sections = append(sections, theme.Hint.Render("1 question"))
	default:
		sections = append(sections, theme.Hint.Render(fmt.Sprintf("Up to %d questions", n)))
	}
	if i.quiz.Settings.MobileOnly {
		sections = append(sections, theme.Hint.Render("Published for mobile devices only"))
	}

	sections = append(sections, "", i.button.View())

	content := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
