// Package app implements the contacts TUI: a navigation shell that owns the
// routes "/", "/add" and "/edit/:id", and the list, add and edit views it
// switches between. Views never change routes themselves; they emit
// NavigateMsg and the shell performs the transition.
package app

import (
	"context"

	"github.com/smileynet/contacts/internal/contact"
)

// --- Consumer-side interfaces ---

// ContactService is the backend as seen by the views.
type ContactService interface {
	List(ctx context.Context) ([]contact.Contact, error)
	Get(ctx context.Context, id string) (contact.Contact, error)
	Create(ctx context.Context, d contact.Draft) (contact.Contact, error)
	Update(ctx context.Context, id string, d contact.Draft) (contact.Contact, error)
	Delete(ctx context.Context, id string) error
}

// --- tea.Msg types ---

// NavigateMsg asks the shell to switch to Route. Views emit it instead of
// changing routes directly.
type NavigateMsg struct {
	Route Route
}

// generational is implemented by request results. Gen identifies the view
// instance that issued the request; the shell drops results whose view has
// been discarded.
type generational interface {
	generation() int
}

// ContactsLoadedMsg carries the result of a fetch-all request.
type ContactsLoadedMsg struct {
	Gen      int
	Contacts []contact.Contact
	Err      error
}

// ContactLoadedMsg carries the result of a fetch-one request.
type ContactLoadedMsg struct {
	Gen     int
	ID      string
	Contact contact.Contact
	Err     error
}

// ContactCreatedMsg carries the result of a create request.
type ContactCreatedMsg struct {
	Gen     int
	Contact contact.Contact
	Err     error
}

// ContactUpdatedMsg carries the result of an update request.
type ContactUpdatedMsg struct {
	Gen     int
	Contact contact.Contact
	Err     error
}

// ContactDeletedMsg carries the result of a delete request.
type ContactDeletedMsg struct {
	Gen int
	ID  string
	Err error
}

func (m ContactsLoadedMsg) generation() int { return m.Gen }
func (m ContactLoadedMsg) generation() int  { return m.Gen }
func (m ContactCreatedMsg) generation() int { return m.Gen }
func (m ContactUpdatedMsg) generation() int { return m.Gen }
func (m ContactDeletedMsg) generation() int { return m.Gen }

// Verify at compile time that result messages carry a generation.
var (
	_ generational = ContactsLoadedMsg{}
	_ generational = ContactLoadedMsg{}
	_ generational = ContactCreatedMsg{}
	_ generational = ContactUpdatedMsg{}
	_ generational = ContactDeletedMsg{}
)
