package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/contact"
)

var errStubNotFound = errors.New("stub: not found")

// updateCall records one Update invocation.
type updateCall struct {
	ID    string
	Draft contact.Draft
}

// stubService implements ContactService over an in-memory slice and records
// every call. Safe for use from tea.Cmd goroutines.
type stubService struct {
	mu        sync.Mutex
	contacts  []contact.Contact
	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	listCalls int
	getIDs    []string
	created   []contact.Draft
	updated   []updateCall
	deleted   []string
	nextID    int
}

func (s *stubService) List(ctx context.Context) ([]contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]contact.Contact(nil), s.contacts...), nil
}

func (s *stubService) Get(ctx context.Context, id string) (contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getIDs = append(s.getIDs, id)
	if s.getErr != nil {
		return contact.Contact{}, s.getErr
	}
	for _, c := range s.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return contact.Contact{}, errStubNotFound
}

func (s *stubService) Create(ctx context.Context, d contact.Draft) (contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, d)
	if s.createErr != nil {
		return contact.Contact{}, s.createErr
	}
	s.nextID++
	c := d.WithID("new-" + string(rune('0'+s.nextID)))
	s.contacts = append(s.contacts, c)
	return c, nil
}

func (s *stubService) Update(ctx context.Context, id string, d contact.Draft) (contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, updateCall{ID: id, Draft: d})
	if s.updateErr != nil {
		return contact.Contact{}, s.updateErr
	}
	for i, c := range s.contacts {
		if c.ID == id {
			s.contacts[i] = d.WithID(id)
			return s.contacts[i], nil
		}
	}
	return contact.Contact{}, errStubNotFound
}

func (s *stubService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.contacts = contact.Remove(s.contacts, id)
	return nil
}

func (s *stubService) calls() (list int, gets, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, len(s.getIDs), len(s.deleted)
}

func sampleContacts() []contact.Contact {
	return []contact.Contact{
		{ID: "1", Name: "A", Email: "a@x.com", Phone: "1"},
		{ID: "2", Name: "B", Email: "b@x.com", Phone: "2"},
		{ID: "3", Name: "C", Email: "", Phone: "3"},
	}
}

// testEnv returns a viewEnv for gen 1 backed by svc.
func testEnv(svc ContactService) viewEnv {
	return viewEnv{ctx: context.Background(), svc: svc, gen: 1, log: zap.NewNop()}
}

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch executes a tea.Cmd, handling both single commands and batch
// commands. It returns all resulting messages. Spinner ticks are skipped
// to avoid infinite recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			if c != nil {
				result := c()
				if _, isTick := result.(spinner.TickMsg); !isTick {
					msgs = append(msgs, result)
				}
			}
		}
		return msgs
	}
	if _, isTick := msg.(spinner.TickMsg); isTick {
		return nil
	}
	return []tea.Msg{msg}
}

// findMsg returns the first message of type T in msgs.
func findMsg[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages: %#v", zero, len(msgs), msgs)
	return zero
}

// keyRune builds a KeyMsg for a single printable key.
func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}
