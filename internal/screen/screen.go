// Package screen defines what the preview's router can display.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizflow/internal/ui/layout"
)

// Screen is one page of the preview.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status, such as
// quiz progress, on the right of the header.
type StatusProvider interface {
	Status() string
}
