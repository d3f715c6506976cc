package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/contact"
)

// viewEnv is what every view receives from the shell on entry. ctx is
// cancelled when the view is discarded; gen tags the view's request results.
type viewEnv struct {
	ctx context.Context
	svc ContactService
	gen int
	log *zap.Logger
}

// listContacts returns a tea.Cmd that fetches all contacts asynchronously
// and wraps the result in a ContactsLoadedMsg.
func (e viewEnv) listContacts() tea.Cmd {
	ctx, svc, gen := e.ctx, e.svc, e.gen
	return func() tea.Msg {
		contacts, err := svc.List(ctx)
		return ContactsLoadedMsg{Gen: gen, Contacts: contacts, Err: err}
	}
}

// getContact returns a tea.Cmd that fetches one contact.
func (e viewEnv) getContact(id string) tea.Cmd {
	ctx, svc, gen := e.ctx, e.svc, e.gen
	return func() tea.Msg {
		c, err := svc.Get(ctx, id)
		return ContactLoadedMsg{Gen: gen, ID: id, Contact: c, Err: err}
	}
}

// createContact returns a tea.Cmd that creates a contact from d.
func (e viewEnv) createContact(d contact.Draft) tea.Cmd {
	ctx, svc, gen := e.ctx, e.svc, e.gen
	return func() tea.Msg {
		c, err := svc.Create(ctx, d)
		return ContactCreatedMsg{Gen: gen, Contact: c, Err: err}
	}
}

// updateContact returns a tea.Cmd that replaces the fields of contact id.
func (e viewEnv) updateContact(id string, d contact.Draft) tea.Cmd {
	ctx, svc, gen := e.ctx, e.svc, e.gen
	return func() tea.Msg {
		c, err := svc.Update(ctx, id, d)
		return ContactUpdatedMsg{Gen: gen, Contact: c, Err: err}
	}
}

// deleteContact returns a tea.Cmd that deletes contact id.
func (e viewEnv) deleteContact(id string) tea.Cmd {
	ctx, svc, gen := e.ctx, e.svc, e.gen
	return func() tea.Msg {
		err := svc.Delete(ctx, id)
		return ContactDeletedMsg{Gen: gen, ID: id, Err: err}
	}
}

// navigate returns a tea.Cmd that asks the shell to switch to r.
func navigate(r Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r} }
}
