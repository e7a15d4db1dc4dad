package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizflow/internal/quiz"
	"github.com/abhisek/quizflow/internal/ui/theme"
)

// MultiSelect is a grid of options where any number can be checked.
type MultiSelect struct {
	Options []quiz.Option
	Columns int
	Cursor  int
	checked map[string]bool
}

// NewMultiSelect creates a grid with the given number of columns.
func NewMultiSelect(options []quiz.Option, columns int) MultiSelect {
	return MultiSelect{
		Options: options,
		Columns: max(columns, 1),
		checked: make(map[string]bool),
	}
}

// Update moves the cursor around the grid; Space toggles the option under it.
func (m MultiSelect) Update(msg tea.Msg) (MultiSelect, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Options) == 0 {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if m.Cursor-m.Columns >= 0 {
			m.Cursor -= m.Columns
		}
	case "down", "j":
		if m.Cursor+m.Columns < len(m.Options) {
			m.Cursor += m.Columns
		}
	case "left", "h":
		if m.Cursor%m.Columns > 0 {
			m.Cursor--
		}
	case "right", "l":
		if m.Cursor%m.Columns < m.Columns-1 && m.Cursor+1 < len(m.Options) {
			m.Cursor++
		}
	case "space", " ":
		m.Toggle(m.Options[m.Cursor].ID)
	}
	return m, nil
}

// Toggle flips the checked state of an option.
func (m *MultiSelect) Toggle(optionID string) {
	if m.checked == nil {
		m.checked = make(map[string]bool)
	}
	m.checked[optionID] = !m.checked[optionID]
}

// SetChecked replaces the checked set.
func (m *MultiSelect) SetChecked(optionIDs []string) {
	m.checked = make(map[string]bool, len(optionIDs))
	for _, id := range optionIDs {
		m.checked[id] = true
	}
}

// Checked returns the checked option IDs in option order.
func (m MultiSelect) Checked() []string {
	var ids []string
	for _, o := range m.Options {
		if m.checked[o.ID] {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// View renders the grid.
func (m MultiSelect) View(width int) string {
	cellWidth := max(width/m.Columns-2, 12)
	var rows []string
	for start := 0; start < len(m.Options); start += m.Columns {
		var cells []string
		for i := start; i < min(start+m.Columns, len(m.Options)); i++ {
			cells = append(cells, m.cell(i, cellWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m MultiSelect) cell(i, width int) string {
	o := m.Options[i]
	box := "[ ]"
	if m.checked[o.ID] {
		box = theme.Checked.Render("[x]")
	}

	border := theme.Border
	if i == m.Cursor {
		border = theme.Primary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Padding(0, 1).
		Render(box + " " + OptionLabel(o))
}
