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
)

// listView shows every contact and deletes them in place. Its contacts
// slice is replaced only by a fetch result and shrunk only by a successful
// delete.
type listView struct {
	viewEnv
	contacts  []contact.Contact
	cursor    int
	loading   bool
	loadErr   error
	deleting  string // id of the in-flight delete, "" when idle
	actionErr error
	spinner   spinner.Model
	keys      listKeys
}

// newListView returns a listView in the loading state.
func newListView(env viewEnv) listView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return listView{
		viewEnv: env,
		loading: true,
		spinner: s,
		keys:    ListKeyMap(),
	}
}

// Init starts the spinner and the fetch-all request.
func (v listView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.listContacts())
}

func (v listView) Route() Route { return ListRoute() }

func (v listView) Help() help.KeyMap { return v.keys }

// Update processes messages for the list view.
func (v listView) Update(msg tea.Msg) (view, tea.Cmd) {
	switch msg := msg.(type) {
	case ContactsLoadedMsg:
		return v.applyList(msg.Contacts, msg.Err), nil

	case ContactDeletedMsg:
		return v.applyDelete(msg.ID, msg.Err), nil

	case spinner.TickMsg:
		if !v.busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if v.loading {
			return v, nil
		}
		return v.handleKey(msg)
	}

	return v, nil
}

func (v listView) busy() bool {
	return v.loading || v.deleting != ""
}

// applyList replaces the local list with a fetch result, or records the
// failure. The cursor resets to the top.
func (v listView) applyList(contacts []contact.Contact, err error) listView {
	v.loading = false
	if err != nil {
		v.log.Warn("listing contacts failed", zap.Error(err))
		v.loadErr = err
		v.contacts = nil
		return v
	}
	v.loadErr = nil
	v.contacts = append([]contact.Contact(nil), contacts...)
	v.cursor = 0
	return v
}

// applyDelete removes id from the local list after a successful delete.
// A failed delete leaves the list untouched and surfaces the error.
func (v listView) applyDelete(id string, err error) listView {
	if id == v.deleting {
		v.deleting = ""
	}
	if err != nil {
		v.log.Warn("deleting contact failed", zap.String("id", id), zap.Error(err))
		v.actionErr = fmt.Errorf("delete %s: %w", id, err)
		return v
	}
	v.actionErr = nil
	v.contacts = contact.Remove(v.contacts, id)
	if v.cursor >= len(v.contacts) {
		v.cursor = len(v.contacts) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	return v
}

func (v listView) handleKey(msg tea.KeyMsg) (view, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if len(v.contacts) > 0 {
			v.cursor--
			if v.cursor < 0 {
				v.cursor = len(v.contacts) - 1
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if len(v.contacts) > 0 {
			v.cursor++
			if v.cursor >= len(v.contacts) {
				v.cursor = 0
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Add):
		return v, navigate(AddRoute())

	case key.Matches(msg, v.keys.Edit):
		if id := v.SelectedID(); id != "" {
			return v, navigate(EditRoute(id))
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		id := v.SelectedID()
		if id == "" || v.deleting != "" {
			return v, nil
		}
		v.deleting = id
		v.actionErr = nil
		return v, tea.Batch(v.spinner.Tick, v.deleteContact(id))

	case key.Matches(msg, v.keys.Refresh):
		if v.deleting != "" {
			return v, nil
		}
		v.loading = true
		v.loadErr = nil
		v.actionErr = nil
		return v, tea.Batch(v.spinner.Tick, v.listContacts())
	}

	return v, nil
}

// SelectedID returns the contact ID at the cursor, or "" if the list is
// empty or still loading.
func (v listView) SelectedID() string {
	if len(v.contacts) == 0 || v.cursor < 0 || v.cursor >= len(v.contacts) {
		return ""
	}
	return v.contacts[v.cursor].ID
}

// View renders the list for the given dimensions.
func (v listView) View(width, height int) string {
	if v.loading {
		return fmt.Sprintf("%s Loading contacts...", v.spinner.View())
	}

	if v.loadErr != nil {
		return errorText.Render(fmt.Sprintf("Error: %s", v.loadErr)) + "\n\nPress r to retry"
	}

	var b strings.Builder
	if len(v.contacts) == 0 {
		b.WriteString(mutedText.Render("No contacts yet. Press a to add one."))
	}
	for i, c := range v.contacts {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := fmt.Sprintf("%s - %s - %s", c.Name, c.Email, c.Phone)
		if i == v.cursor {
			b.WriteString(CursorMarker + selectedRow.Render(line))
		} else {
			b.WriteString("  " + line)
		}
	}

	if v.deleting != "" {
		fmt.Fprintf(&b, "\n\n%s Deleting...", v.spinner.View())
	}
	if v.actionErr != nil {
		b.WriteString("\n\n" + errorText.Render(fmt.Sprintf("Error: %s", v.actionErr)))
	}
	return clampWidth(b.String(), width)
}
