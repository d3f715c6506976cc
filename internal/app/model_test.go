package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/form"
)

// initModel runs the Init cmd of m and feeds its results back in.
func initModel(t *testing.T, m Model) Model {
	t.Helper()
	for _, msg := range execBatch(t, m.Init()) {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// follow executes cmd and applies a resulting NavigateMsg, returning the
// model and the entry command of the new view.
func follow(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	nav := findMsg[NavigateMsg](t, execBatch(t, cmd))
	next, entry := m.Update(nav)
	return next.(Model), entry
}

func TestModel_StartsOnList(t *testing.T) {
	m := NewModel(&stubService{contacts: sampleContacts()})
	if m.Route() != ListRoute() {
		t.Fatalf("Route() = %+v, want list", m.Route())
	}
	m = initModel(t, m)
	out := m.View()
	if !containsPlainText(out, "Contacts /") {
		t.Errorf("View() missing header:\n%s", out)
	}
	if !containsPlainText(out, "A - a@x.com - 1") {
		t.Errorf("View() missing rows:\n%s", out)
	}
}

func TestModel_WithRoute(t *testing.T) {
	svc := &stubService{contacts: sampleContacts()}
	m := initModel(t, NewModel(svc, WithRoute(EditRoute("3"))))

	if m.Route() != EditRoute("3") {
		t.Fatalf("Route() = %+v, want /edit/3", m.Route())
	}
	if _, gets, _ := svc.calls(); gets != 1 {
		t.Errorf("get calls = %d, want 1", gets)
	}
	if !containsPlainText(m.View(), "Contacts /edit/3") {
		t.Errorf("View() missing header:\n%s", m.View())
	}
}

func TestModel_NavigateSwitchesViewAndCancelsContext(t *testing.T) {
	// Given: a model on the list
	m := initModel(t, NewModel(&stubService{contacts: sampleContacts()}))
	listCtx := m.active.(listView).ctx
	gen := m.gen

	// When: the user presses a
	next, cmd := m.Update(keyRune('a'))
	m, entry := follow(t, next.(Model), cmd)

	// Then: the add view is active under a new generation
	if m.Route() != AddRoute() {
		t.Fatalf("Route() = %+v, want /add", m.Route())
	}
	if m.gen != gen+1 {
		t.Errorf("gen = %d, want %d", m.gen, gen+1)
	}
	if entry == nil {
		t.Error("expected entry command for the add view")
	}
	// And: the list's request context was cancelled
	if listCtx.Err() != context.Canceled {
		t.Errorf("list ctx err = %v, want context.Canceled", listCtx.Err())
	}
}

func TestModel_DropsResultsForDiscardedViews(t *testing.T) {
	// Given: a list view whose fetch is still in flight
	svc := &stubService{contacts: sampleContacts()}
	m := NewModel(svc)
	pending := findMsg[ContactsLoadedMsg](t, execBatch(t, m.Init()))

	// When: the user navigates away and back before it resolves
	next, _ := m.Update(NavigateMsg{Route: AddRoute()})
	next, _ = next.Update(NavigateMsg{Route: ListRoute()})
	m = next.(Model)
	next, _ = m.Update(pending)
	m = next.(Model)

	// Then: the stale result is ignored and the new view still loads
	if !m.active.(listView).loading {
		t.Error("stale result was applied to the new list view")
	}
}

func TestModel_EditFlowReturnsToRefreshedList(t *testing.T) {
	// Given: a loaded list
	svc := &stubService{contacts: sampleContacts()}
	m := initModel(t, NewModel(svc))

	// When: editing the first contact
	next, cmd := m.Update(keyRune('e'))
	m, entry := follow(t, next.(Model), cmd)
	if m.Route() != EditRoute("1") {
		t.Fatalf("Route() = %+v, want /edit/1", m.Route())
	}
	for _, msg := range execBatch(t, entry) {
		next, _ = m.Update(msg)
		m = next.(Model)
	}

	// And: saving an updated draft
	next, cmd = m.Update(form.SubmittedMsg{Draft: contact.Draft{Name: "Alice", Email: "a@x.com", Phone: "1"}})
	m = next.(Model)
	updated := findMsg[ContactUpdatedMsg](t, execBatch(t, cmd))
	next, cmd = m.Update(updated)
	m, entry = follow(t, next.(Model), cmd)

	// Then: the list is active again and refetches
	if m.Route() != ListRoute() {
		t.Fatalf("Route() = %+v, want list", m.Route())
	}
	for _, msg := range execBatch(t, entry) {
		next, _ = m.Update(msg)
		m = next.(Model)
	}
	if !containsPlainText(m.View(), "Alice - a@x.com - 1") {
		t.Errorf("View() missing updated row:\n%s", m.View())
	}
	if list, _, _ := svc.calls(); list != 2 {
		t.Errorf("list calls = %d, want 2", list)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []struct {
		name     string
		route    Route
		key      tea.KeyMsg
		wantQuit bool
	}{
		{"q on list", ListRoute(), keyRune('q'), true},
		{"ctrl+c on list", ListRoute(), tea.KeyMsg{Type: tea.KeyCtrlC}, true},
		{"q on add types into form", AddRoute(), keyRune('q'), false},
		{"ctrl+c on add", AddRoute(), tea.KeyMsg{Type: tea.KeyCtrlC}, true},
		{"ctrl+c on edit", EditRoute("1"), tea.KeyMsg{Type: tea.KeyCtrlC}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(&stubService{contacts: sampleContacts()}, WithRoute(tt.route))
			_, cmd := m.Update(tt.key)
			gotQuit := false
			if cmd != nil {
				_, gotQuit = cmd().(tea.QuitMsg)
			}
			if gotQuit != tt.wantQuit {
				t.Errorf("quit = %v, want %v", gotQuit, tt.wantQuit)
			}
		})
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := initModel(t, NewModel(&stubService{contacts: sampleContacts()}))
	if m.help.ShowAll {
		t.Fatal("help should start collapsed")
	}
	next, _ := m.Update(keyRune('?'))
	if !next.(Model).help.ShowAll {
		t.Error("? should expand help on the list")
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := NewModel(&stubService{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	if m.width != 100 || m.height != 30 {
		t.Errorf("size = %dx%d, want 100x30", m.width, m.height)
	}
	if got := m.bodyHeight(); got != 30-headerHeight-helpBarHeight {
		t.Errorf("bodyHeight() = %d", got)
	}
}

func TestModel_TeatestAddFlow(t *testing.T) {
	// Given: a running program on the list
	svc := &stubService{contacts: sampleContacts()}
	tm := teatest.NewTestModel(t, NewModel(svc), teatest.WithInitialTermSize(80, 24))
	waitFor(t, tm, "A - a@x.com - 1")

	// When: adding a contact through the form
	tm.Send(keyRune('a'))
	waitFor(t, tm, "Add contact")
	tm.Type("Zed")
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Type("555")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	// Then: the list comes back with the new contact
	waitFor(t, tm, "Zed -  - 555")
	tm.Send(keyRune('q'))
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if final.Route() != ListRoute() {
		t.Errorf("final route = %+v, want list", final.Route())
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.created) != 1 || svc.created[0] != (contact.Draft{Name: "Zed", Phone: "555"}) {
		t.Errorf("created = %+v", svc.created)
	}
}

func waitFor(t *testing.T, tm *teatest.TestModel, text string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains([]byte(stripANSI(string(b))), []byte(text))
	}, teatest.WithDuration(3*time.Second))
}
