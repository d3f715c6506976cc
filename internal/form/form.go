// Package form implements the contact form: three controlled text inputs
// (name, email, phone) that emit the current draft on submit.
package form

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contacts/internal/contact"
)

// SubmittedMsg carries the draft when the user submits a complete form.
type SubmittedMsg struct {
	Draft contact.Draft
}

// CancelledMsg signals the user abandoned the form.
type CancelledMsg struct{}

var (
	labelStyle    = lipgloss.NewStyle().Bold(true)
	requiredStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
)

// placeholders mirror the field labels.
var placeholders = [...]string{
	contact.FieldName:  "Name",
	contact.FieldEmail: "Email",
	contact.FieldPhone: "Phone",
}

// Model is the Bubble Tea model for the contact form. Each field owns its own
// input, so editing one field never touches another.
type Model struct {
	inputs  [len(contact.Fields)]textinput.Model
	focus   contact.Field
	missing []contact.Field
	keys    KeyMap
}

// New returns a form seeded from existing, or a blank draft when existing is
// nil. The name field has focus.
func New(existing *contact.Contact) Model {
	var seed contact.Draft
	if existing != nil {
		seed = existing.Draft()
	}

	m := Model{keys: DefaultKeyMap()}
	for _, f := range contact.Fields {
		in := textinput.New()
		in.Placeholder = placeholders[f]
		in.Prompt = "> "
		in.CharLimit = 256
		in.SetValue(seed.Value(f))
		m.inputs[f] = in
	}
	m.inputs[contact.FieldName].Focus()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Draft returns the current field values.
func (m Model) Draft() contact.Draft {
	return contact.Draft{
		Name:  m.inputs[contact.FieldName].Value(),
		Email: m.inputs[contact.FieldEmail].Value(),
		Phone: m.inputs[contact.FieldPhone].Value(),
	}
}

// Focused returns the field that currently receives keystrokes.
func (m Model) Focused() contact.Field {
	return m.focus
}

// Missing returns the required fields flagged by the last refused submit.
func (m Model) Missing() []contact.Field {
	return m.missing
}

// Keys returns the form's key bindings for a help bar.
func (m Model) Keys() KeyMap {
	return m.keys
}

// Update handles navigation, submit and cancel keys, and forwards every other
// message to the focused input only.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Cancel):
			return m, func() tea.Msg { return CancelledMsg{} }
		case key.Matches(msg, m.keys.Next):
			return m.setFocus((m.focus + 1) % contact.Field(len(m.inputs)))
		case key.Matches(msg, m.keys.Prev):
			return m.setFocus((m.focus + contact.Field(len(m.inputs)) - 1) % contact.Field(len(m.inputs)))
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if len(m.missing) > 0 {
		m.missing = m.Draft().Missing()
	}
	return m, cmd
}

// submit emits SubmittedMsg, or refuses and flags empty required fields.
func (m Model) submit() (Model, tea.Cmd) {
	d := m.Draft()
	m.missing = d.Missing()
	if len(m.missing) > 0 {
		return m.setFocus(m.missing[0])
	}
	return m, func() tea.Msg { return SubmittedMsg{Draft: d} }
}

func (m Model) setFocus(f contact.Field) (Model, tea.Cmd) {
	m.focus = f
	var cmd tea.Cmd
	for _, field := range contact.Fields {
		if field == f {
			cmd = m.inputs[field].Focus()
		} else {
			m.inputs[field].Blur()
		}
	}
	return m, cmd
}

// View renders the labelled inputs and any required-field errors.
func (m Model) View() string {
	var b strings.Builder
	for i, f := range contact.Fields {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := labelStyle.Render(placeholders[f])
		if f.Required() {
			label += " " + requiredStyle.Render("*")
		}
		b.WriteString(label)
		b.WriteByte('\n')
		b.WriteString(m.inputs[f].View())
	}
	for _, f := range m.missing {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s is required", f)))
	}
	return b.String()
}
