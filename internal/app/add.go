package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/form"
)

// addView renders a blank form and creates a contact on submit.
type addView struct {
	viewEnv
	form   form.Model
	saving bool
	err    error
}

func newAddView(env viewEnv) addView {
	return addView{viewEnv: env, form: form.New(nil)}
}

func (v addView) Init() tea.Cmd { return v.form.Init() }

func (v addView) Route() Route { return AddRoute() }

func (v addView) Help() help.KeyMap { return v.form.Keys() }

// Update processes messages for the add view.
func (v addView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case form.SubmittedMsg:
		if v.saving {
			return v, nil
		}
		v.saving = true
		v.err = nil
		return v, v.createContact(msg.Draft)

	case form.CancelledMsg:
		return v, navigate(ListRoute())

	case ContactCreatedMsg:
		v.saving = false
		if msg.Err != nil {
			v.log.Warn("creating contact failed", zap.Error(msg.Err))
			v.err = msg.Err
			return v, nil
		}
		v.log.Info("contact created", zap.String("id", msg.Contact.ID))
		return v, navigate(ListRoute())

	case tea.KeyMsg:
		if v.saving {
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)
	return v, cmd
}

// View renders the create form with its save state.
func (v addView) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleText.Render("Add contact"))
	b.WriteString("\n\n")
	b.WriteString(v.form.View())
	if v.saving {
		b.WriteString("\n\n" + mutedText.Render("Saving..."))
	}
	if v.err != nil {
		b.WriteString("\n\n" + errorText.Render(fmt.Sprintf("Error: %s", v.err)))
	}
	return clampWidth(b.String(), width)
}
