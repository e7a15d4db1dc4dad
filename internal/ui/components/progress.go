package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/session"
	"github.com/abhisek/quizflow/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	Color       color.Color
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
		Color:       theme.Secondary,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}
	barWidth := max(p.Width-lipgloss.Width(result)-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	fill := p.Color
	if fill == nil {
		fill = theme.Secondary
	}
	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}
	return result
}

// ProgressText is the short form of progress used in the header.
func ProgressText(settings quiz.Settings, p session.Progress) string {
	switch settings.ProgressType {
	case quiz.ProgressPercentage:
		return fmt.Sprintf("%d%%", p.Percent())
	default:
		return fmt.Sprintf("%d/%d", p.Position, p.Total)
	}
}

// Progress renders the indicator the quiz settings ask for: a bar, a step
// counter or a percentage.
func Progress(settings quiz.Settings, p session.Progress, width int) string {
	switch settings.ProgressType {
	case quiz.ProgressSteps:
		var dots []string
		for i := 1; i <= p.Total; i++ {
			switch {
			case i == p.Position:
				dots = append(dots, lipgloss.NewStyle().Foreground(theme.ProgressColor(settings.ProgressColor)).Render("●"))
			case i < p.Position:
				dots = append(dots, lipgloss.NewStyle().Foreground(theme.TextDim).Render("●"))
			default:
				dots = append(dots, lipgloss.NewStyle().Foreground(theme.Border).Render("○"))
			}
		}
		return fmt.Sprintf("Step %d of %d  %s", p.Position, p.Total, strings.Join(dots, " "))
	case quiz.ProgressPercentage:
		return lipgloss.NewStyle().Foreground(theme.ProgressColor(settings.ProgressColor)).Bold(true).
			Render(fmt.Sprintf("%d%% complete", p.Percent()))
	default:
		bar := NewProgressBar("", p.Fraction(), true, width)
		bar.Color = theme.ProgressColor(settings.ProgressColor)
		return bar.View()
	}
}
