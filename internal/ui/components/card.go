package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizflow/internal/ui/theme"
)

// ContentWidth returns the inner width used for question cards so every
// screen lines up.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 72)
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}
