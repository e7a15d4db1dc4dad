package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizflow/internal/quiz"
)

// ContactForm collects name, email and phone. Tab and Shift+Tab move
// between fields.
type ContactForm struct {
	Fields [3]TextInput
	focus  int
}

// NewContactForm creates a form with the name field focused.
func NewContactForm() ContactForm {
	f := ContactForm{Fields: [3]TextInput{
		NewTextInput("Name", "Jane Doe", 120),
		NewTextInput("Email", "jane@example.com", 254),
		NewTextInput("Phone", "+1 555 0100", 32),
	}}
	f.Fields[0].Focus()
	return f
}

// Init returns the cursor blink command for the focused field.
func (f *ContactForm) Init() tea.Cmd {
	return f.Fields[f.focus].Focus()
}

// Focus returns the index of the focused field.
func (f ContactForm) Focus() int { return f.focus }

// Update cycles focus on Tab and forwards everything else to the focused
// field.
func (f ContactForm) Update(msg tea.Msg) (ContactForm, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return f, f.setFocus((f.focus + 1) % len(f.Fields))
		case "shift+tab", "up":
			return f, f.setFocus((f.focus + len(f.Fields) - 1) % len(f.Fields))
		}
	}
	var cmd tea.Cmd
	f.Fields[f.focus], cmd = f.Fields[f.focus].Update(msg)
	return f, cmd
}

func (f *ContactForm) setFocus(i int) tea.Cmd {
	f.Fields[f.focus].Blur()
	f.focus = i
	return f.Fields[i].Focus()
}

// Value returns the entered contact details, trimmed.
func (f ContactForm) Value() quiz.ContactFields {
	return quiz.ContactFields{
		Name:  strings.TrimSpace(f.Fields[0].Value()),
		Email: strings.TrimSpace(f.Fields[1].Value()),
		Phone: strings.TrimSpace(f.Fields[2].Value()),
	}
}

// SetValue fills the form.
func (f *ContactForm) SetValue(c quiz.ContactFields) {
	f.Fields[0].SetValue(c.Name)
	f.Fields[1].SetValue(c.Email)
	f.Fields[2].SetValue(c.Phone)
}

// Empty reports whether every field is blank.
func (f ContactForm) Empty() bool {
	return f.Value() == quiz.ContactFields{}
}

// View renders the fields one per line.
func (f ContactForm) View() string {
	lines := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		lines[i] = field.View()
	}
	return strings.Join(lines, "\n\n")
}
