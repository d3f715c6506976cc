// Package backend is a development server for the contacts REST contract.
// It serves GET/POST /contacts and GET/PUT/DELETE /contacts/{id} over a
// pluggable Store so the client can run without an external service.
package backend

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/smileynet/contacts/internal/contact"
)

// ErrNotFound is returned by a Store when no contact has the requested id.
var ErrNotFound = errors.New("backend: contact not found")

// Store persists contacts. Implementations assign ids on Create and keep
// List in a stable order.
type Store interface {
	List(ctx context.Context) ([]contact.Contact, error)
	Get(ctx context.Context, id string) (contact.Contact, error)
	Create(ctx context.Context, d contact.Draft) (contact.Contact, error)
	Update(ctx context.Context, id string, d contact.Draft) (contact.Contact, error)
	Delete(ctx context.Context, id string) error
}

// IDFunc generates a new contact id.
type IDFunc func() string

// NewUUID is the default IDFunc.
func NewUUID() string {
	return uuid.NewString()
}
