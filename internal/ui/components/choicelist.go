package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/ui/theme"
)

// ChoiceList is a vertical single-select list of options.
type ChoiceList struct {
	Options []quiz.Option
	Cursor  int
}

// NewChoiceList creates a list with the cursor on the first option.
func NewChoiceList(options []quiz.Option) ChoiceList {
	return ChoiceList{Options: options}
}

// Update moves the cursor. Number keys jump straight to an option.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Cursor = i
			}
		}
	}
	return c, nil
}

// Selected returns the option under the cursor.
func (c ChoiceList) Selected() (quiz.Option, bool) {
	if c.Cursor < 0 || c.Cursor >= len(c.Options) {
		return quiz.Option{}, false
	}
	return c.Options[c.Cursor], true
}

// Select moves the cursor to the option with the given ID.
func (c *ChoiceList) Select(optionID string) {
	for i, o := range c.Options {
		if o.ID == optionID {
			c.Cursor = i
			return
		}
	}
}

// View renders the list.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, o := range c.Options {
		line := fmt.Sprintf("%d) %s", i+1, OptionLabel(o))
		if i == c.Cursor {
			b.WriteString(theme.Selected.Render("▸ " + line))
		} else {
			b.WriteString(theme.Unselected.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// OptionLabel is the text shown for an option: its text, falling back to
// the image URL and then the ID.
func OptionLabel(o quiz.Option) string {
	switch {
	case o.Text != "":
		return o.Text
	case o.ImageURL != "":
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("[image] " + o.ImageURL)
	default:
		return o.ID
	}
}
