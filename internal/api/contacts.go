package api

import (
	"context"
	"net/url"

	"github.com/smileynet/contacts/internal/contact"
)

const contactsPath = "/contacts"

// Contacts implements the contacts REST contract on top of a Client.
type Contacts struct {
	client *Client
}

// NewContacts returns a Contacts service backed by c.
func NewContacts(c *Client) *Contacts {
	return &Contacts{client: c}
}

// List fetches every contact: GET /contacts.
func (s *Contacts) List(ctx context.Context) ([]contact.Contact, error) {
	var out []contact.Contact
	if err := s.client.Get(ctx, contactsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one contact: GET /contacts/:id.
func (s *Contacts) Get(ctx context.Context, id string) (contact.Contact, error) {
	p, err := contactPath(id)
	if err != nil {
		return contact.Contact{}, err
	}
	var out contact.Contact
	if err := s.client.Get(ctx, p, &out); err != nil {
		return contact.Contact{}, err
	}
	return out, nil
}

// Create adds a contact: POST /contacts. The server assigns the id. When the
// server answers without a body the draft is returned with an empty id.
func (s *Contacts) Create(ctx context.Context, d contact.Draft) (contact.Contact, error) {
	var out contact.Contact
	if err := s.client.Post(ctx, contactsPath, d, &out); err != nil {
		return contact.Contact{}, err
	}
	if out == (contact.Contact{}) {
		return d.WithID(""), nil
	}
	return out, nil
}

// Update replaces all fields of a contact: PUT /contacts/:id.
func (s *Contacts) Update(ctx context.Context, id string, d contact.Draft) (contact.Contact, error) {
	p, err := contactPath(id)
	if err != nil {
		return contact.Contact{}, err
	}
	var out contact.Contact
	if err := s.client.Put(ctx, p, d, &out); err != nil {
		return contact.Contact{}, err
	}
	if out == (contact.Contact{}) {
		return d.WithID(id), nil
	}
	if out.ID == "" {
		out.ID = id
	}
	return out, nil
}

// Delete removes a contact: DELETE /contacts/:id.
func (s *Contacts) Delete(ctx context.Context, id string) error {
	p, err := contactPath(id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, p)
}

// contactPath builds /contacts/:id, escaping id as a single path segment.
func contactPath(id string) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}
	return contactsPath + "/" + url.PathEscape(id), nil
}
