// Package preview runs a quiz in the terminal the way a respondent would
// see it.
package preview

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizflow/internal/flow"
	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/router"
	"github.com/abhisek/quizflow/internal/screen"
	"github.com/abhisek/quizflow/internal/screens/intro"
	"github.com/abhisek/quizflow/internal/screens/question"
	"github.com/abhisek/quizflow/internal/session"
	"github.com/abhisek/quizflow/internal/store"
	"github.com/abhisek/quizflow/internal/ui/layout"
)

// Options configures a preview run.
type Options struct {
	// Responses receives the completed session. Nil runs a dry preview.
	Responses store.ResponseRepo
	Resolver  flow.Resolver
}

// Model is the root Bubble Tea model.
type Model struct {
	router  *router.Router
	session *session.Session
	width   int
	height  int
}

// NewModel builds the preview for q, starting on the intro screen.
func NewModel(ctx context.Context, q quiz.Quiz, opts Options) Model {
	s := session.New(q, session.WithResolver(opts.Resolver))
	start := intro.New(q, func() screen.Screen {
		return question.New(ctx, s, opts.Responses)
	})
	return Model{router: router.New(start), session: s}
}

// Session returns the session the preview drives.
func (m Model) Session() *session.Session {
	return m.session
}

// Active returns the screen being shown.
func (m Model) Active() screen.Screen {
	return m.router.Active()
}

func (m Model) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

func (m Model) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = append(hp.KeyHints(), hints...)
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the preview and blocks until the respondent quits or ctx is
// cancelled.
func Run(ctx context.Context, q quiz.Quiz, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, q, opts), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
