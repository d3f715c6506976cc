package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/form"
)

// editView fetches one contact, then renders the form pre-filled with it and
// replaces the contact on submit. A changed id means a new editView.
type editView struct {
	viewEnv
	id      string
	loading bool
	loadErr error
	loaded  bool
	form    form.Model
	saving  bool
	err     error
	spinner spinner.Model
	keys    pendingKeys
}

func newEditView(env viewEnv, id string) editView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return editView{
		viewEnv: env,
		id:      id,
		loading: true,
		spinner: s,
		keys:    PendingKeyMap(),
	}
}

// Init starts the spinner and the fetch-one request.
func (v editView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.getContact(v.id))
}

func (v editView) Route() Route { return EditRoute(v.id) }

func (v editView) Help() help.KeyMap {
	if v.loaded {
		return v.form.Keys()
	}
	return v.keys
}

// Update processes messages for the edit view.
func (v editView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case ContactLoadedMsg:
		if msg.ID != v.id {
			return v, nil
		}
		return v.applyContact(msg.Contact, msg.Err)

	case ContactUpdatedMsg:
		v.saving = false
		if msg.Err != nil {
			v.log.Warn("updating contact failed", zap.String("id", v.id), zap.Error(msg.Err))
			v.err = msg.Err
			return v, nil
		}
		v.log.Info("contact updated", zap.String("id", v.id))
		return v, navigate(ListRoute())

	case form.SubmittedMsg:
		if !v.loaded || v.saving {
			return v, nil
		}
		v.saving = true
		v.err = nil
		return v, v.updateContact(v.id, msg.Draft)

	case form.CancelledMsg:
		return v, navigate(ListRoute())

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if !v.loaded {
			return v.handlePendingKey(msg)
		}
		if v.saving {
			return v, nil
		}
	}

	if !v.loaded {
		return v, nil
	}
	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)
	return v, cmd
}

// applyContact seeds the form from the fetched contact, or records the
// failure so the view leaves the loading placeholder.
func (v editView) applyContact(c contact.Contact, err error) (view, tea.Cmd) {
	v.loading = false
	if err != nil {
		v.log.Warn("fetching contact failed", zap.String("id", v.id), zap.Error(err))
		v.loadErr = err
		return v, nil
	}
	v.loadErr = nil
	v.loaded = true
	v.form = form.New(&c)
	return v, v.form.Init()
}

// handlePendingKey handles keys while the contact is loading or failed to load.
func (v editView) handlePendingKey(msg tea.KeyMsg) (view, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, navigate(ListRoute())
	case key.Matches(msg, v.keys.Retry):
		if v.loading {
			return v, nil
		}
		v.loading = true
		v.loadErr = nil
		return v, tea.Batch(v.spinner.Tick, v.getContact(v.id))
	}
	return v, nil
}

// View renders the placeholder, the error state or the pre-filled form.
func (v editView) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleText.Render("Edit contact"))
	b.WriteString(" " + mutedText.Render(v.id))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		fmt.Fprintf(&b, "%s Loading...", v.spinner.View())
	case v.loadErr != nil:
		b.WriteString(errorText.Render(fmt.Sprintf("Error: %s", v.loadErr)))
		b.WriteString("\n\nPress r to retry or esc to go back")
	default:
		b.WriteString(v.form.View())
		if v.saving {
			b.WriteString("\n\n" + mutedText.Render("Saving..."))
		}
		if v.err != nil {
			b.WriteString("\n\n" + errorText.Render(fmt.Sprintf("Error: %s", v.err)))
		}
	}
	return clampWidth(b.String(), width)
}
