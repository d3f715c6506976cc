package backend

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/smileynet/contacts/internal/contact"
)

// Persister saves the full contact list after every mutation.
type Persister interface {
	Save(contacts []contact.Contact) error
}

// MemoryStore is a Store held in process memory, ordered by insertion.
// With a Persister it writes every change through before applying it, so a
// failed save leaves the store unchanged. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	order     []string
	byID      map[string]contact.Contact
	newID     IDFunc
	persister Persister
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithIDFunc replaces the uuid generator, mainly for tests.
func WithIDFunc(fn IDFunc) MemoryOption {
	return func(s *MemoryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithContacts preloads contacts, keeping their ids and order. Later
// duplicates of an id are dropped.
func WithContacts(cs []contact.Contact) MemoryOption {
	return func(s *MemoryStore) {
		for _, c := range cs {
			if c.ID == "" || s.has(c.ID) {
				continue
			}
			s.byID[c.ID] = c
			s.order = append(s.order, c.ID)
		}
	}
}

// WithPersister writes every mutation through p.
func WithPersister(p Persister) MemoryOption {
	return func(s *MemoryStore) { s.persister = p }
}

// NewMemoryStore returns a MemoryStore, empty unless WithContacts is given.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		byID:  make(map[string]contact.Contact),
		newID: NewUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all contacts in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]contact.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

// Get returns the contact with id.
func (s *MemoryStore) Get(ctx context.Context, id string) (contact.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return contact.Contact{}, ErrNotFound
	}
	return c, nil
}

// Create stores d under a new id.
func (s *MemoryStore) Create(ctx context.Context, d contact.Draft) (contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	for s.has(id) {
		id = s.newID()
	}
	c := d.WithID(id)
	if err := s.persist(append(s.snapshot(), c)); err != nil {
		return contact.Contact{}, err
	}
	s.byID[id] = c
	s.order = append(s.order, id)
	return c, nil
}

// Update replaces every field of contact id with d.
func (s *MemoryStore) Update(ctx context.Context, id string, d contact.Draft) (contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has(id) {
		return contact.Contact{}, ErrNotFound
	}
	c := d.WithID(id)
	next := s.snapshot()
	for i := range next {
		if next[i].ID == id {
			next[i] = c
		}
	}
	if err := s.persist(next); err != nil {
		return contact.Contact{}, err
	}
	s.byID[id] = c
	return c, nil
}

// Delete removes contact id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has(id) {
		return ErrNotFound
	}
	if err := s.persist(contact.Remove(s.snapshot(), id)); err != nil {
		return err
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// snapshot returns the contacts in order. Callers hold mu.
func (s *MemoryStore) snapshot() []contact.Contact {
	out := make([]contact.Contact, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// persist saves next through the persister, if any. Callers hold mu.
func (s *MemoryStore) persist(next []contact.Contact) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(next); err != nil {
		return fmt.Errorf("backend: persisting contacts: %w", err)
	}
	return nil
}

// has reports whether id is stored. Callers hold mu.
func (s *MemoryStore) has(id string) bool {
	_, ok := s.byID[id]
	return ok
}
