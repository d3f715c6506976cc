package app

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// view is one route-bound screen. A view is built fresh on every entry and
// discarded on exit.
type view interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (view, tea.Cmd)
	View(width, height int) string
	Help() help.KeyMap
	Route() Route
}

// Verify at compile time that every screen implements view.
var (
	_ view = listView{}
	_ view = addView{}
	_ view = editView{}
)

// headerHeight is the number of lines used by the title and its spacer.
const headerHeight = 2

// helpBarHeight is the number of lines reserved for the help bar and its spacer.
const helpBarHeight = 2

// Model is the root Bubble Tea model. It owns the current route and is the
// only place route transitions happen.
type Model struct {
	svc    ContactService
	root   context.Context
	log    *zap.Logger
	active view
	cancel context.CancelFunc
	gen    int
	width  int
	height int
	help   help.Model
	start  Route
}

// Option configures a Model.
type Option func(*Model)

// WithRoute sets the route the Model starts on. The default is the list.
func WithRoute(r Route) Option {
	return func(m *Model) { m.start = r }
}

// WithLogger sets the logger passed to every view.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithContext sets the parent context of every view's request context.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.root = ctx
		}
	}
}

// NewModel creates a Model backed by svc, positioned on its start route.
func NewModel(svc ContactService, opts ...Option) Model {
	m := Model{
		svc:   svc,
		root:  context.Background(),
		log:   zap.NewNop(),
		help:  help.New(),
		start: ListRoute(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.enter(m.start)
	return m
}

// Route returns the current route.
func (m Model) Route() Route {
	return m.active.Route()
}

// Init returns the entry command of the start view.
func (m Model) Init() tea.Cmd {
	return m.active.Init()
}

// enter discards the active view, cancelling its context, and builds a
// fresh view for r.
func (m *Model) enter(r Route) {
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	ctx, cancel := context.WithCancel(m.root)
	m.cancel = cancel

	env := viewEnv{ctx: ctx, svc: m.svc, gen: m.gen, log: m.log.With(zap.String("route", r.Path()))}
	switch r.Page {
	case PageAdd:
		m.active = newAddView(env)
	case PageEdit:
		m.active = newEditView(env, r.ID)
	default:
		m.active = newListView(env)
	}
}

// Update handles global keys and navigation, drops results addressed to
// discarded views, and forwards everything else to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.quit()
		case "q":
			if m.Route().Page == PageList {
				return m.quit()
			}
		case "?":
			if m.Route().Page == PageList {
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			}
		}

	case NavigateMsg:
		from := m.Route()
		m.enter(msg.Route)
		m.log.Debug("navigate", zap.Stringer("from", from), zap.Stringer("to", msg.Route))
		return m, m.active.Init()
	}

	if g, ok := msg.(generational); ok && g.generation() != m.gen {
		m.log.Debug("dropping result for discarded view",
			zap.Int("gen", g.generation()),
			zap.Int("active_gen", m.gen))
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	m.active = next
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	return m, tea.Quit
}

// bodyHeight returns the usable height for the active view.
func (m Model) bodyHeight() int {
	h := m.height - headerHeight - helpBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the header, the active view and the help bar.
func (m Model) View() string {
	header := titleText.Render("Contacts") + " " + mutedText.Render(m.Route().Path())
	body := m.active.View(m.width, m.bodyHeight())
	helpView := m.help.View(m.active.Help())

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", helpView)
}
