package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/smileynet/contacts"
	"github.com/smileynet/contacts/internal/api"
	"github.com/smileynet/contacts/internal/app"
	"github.com/smileynet/contacts/internal/backend"
	"github.com/smileynet/contacts/internal/config"
	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/logging"
	"github.com/smileynet/contacts/internal/state"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for contacts.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	UI      UICmd            `cmd:"" default:"withargs" help:"Open the interactive contact manager (default)."`
	List    ListCmd          `cmd:"" help:"List all contacts."`
	Show    ShowCmd          `cmd:"" help:"Show one contact."`
	Add     AddCmd           `cmd:"" help:"Create a contact."`
	Edit    EditCmd          `cmd:"" help:"Replace every field of a contact."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact."`
	Serve   ServeCmd         `cmd:"" help:"Run the development backend."`
	Config  ConfigCmd        `cmd:"" help:"Print an annotated example config."`
}

// Globals are flags shared by every command. Set flags override config
// files and environment.
type Globals struct {
	ConfigFile string        `help:"Config file layered over the user and project files." name:"config" type:"path"`
	BaseURL    string        `help:"Backend base URL." name:"base-url"`
	Timeout    time.Duration `help:"Per-request timeout."`
	LogLevel   string        `help:"Log level (debug, info, warn, error)."`
	LogFile    string        `help:"Log file path."`
}

// contactService is the backend as seen by the non-interactive commands.
type contactService = app.ContactService

// loadConfig loads layered config from user and project paths, applies env
// overrides and then set flags.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/contacts/config.yaml"),
		".contacts.yaml",
		g.ConfigFile,
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	g.applyFlags(cfg)
	return cfg, nil
}

func (g *Globals) applyFlags(cfg *config.Config) {
	if g.BaseURL != "" {
		cfg.API.BaseURL = g.BaseURL
	}
	if g.Timeout != 0 {
		cfg.API.Timeout = g.Timeout
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}
}

// logger builds the process logger. fallbackFile is used when no log file is
// configured; "" means stderr.
func logger(cfg *config.Config, fallbackFile string) (*zap.Logger, error) {
	file := cfg.Log.File
	if file == "" {
		file = fallbackFile
	}
	return logging.New(cfg.Log.Level, file)
}

// service builds the HTTP-backed contact service.
func service(cfg *config.Config, log *zap.Logger) (*api.Contacts, error) {
	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log.Named("api")),
	)
	if err != nil {
		return nil, err
	}
	log.Debug("contacts backend", zap.String("base_url", client.BaseURL()))
	return api.NewContacts(client), nil
}

// setup loads and validates config and builds the logger and service for a
// non-interactive command.
func (g *Globals) setup(name string) (*api.Contacts, *zap.Logger, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	log, err := logger(cfg, "")
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	svc, err := service(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return svc, log, nil
}

// signalContext returns a context cancelled on interrupt or termination.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// --- ui ---

// UICmd opens the interactive TUI.
type UICmd struct {
	Route string `help:"Start route: /, /add or /edit/ID." default:"/"`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the TUI.
func (u *UICmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("ui: requires a terminal (TTY)")
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	// The TUI owns the terminal, so logs go to a file.
	log, err := logger(cfg, logging.DefaultUIFile())
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	defer func() { _ = log.Sync() }()

	svc, err := service(cfg, log)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	m := app.NewModel(svc,
		app.WithRoute(app.ParseRoute(u.Route)),
		app.WithLogger(log.Named("app")),
		app.WithContext(ctx),
	)
	log.Info("starting ui", zap.String("base_url", cfg.API.BaseURL), zap.String("route", u.Route))
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	return u.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (u *UICmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("ui: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// --- list / show / add / edit / delete ---

// ListCmd prints every contact.
type ListCmd struct{}

// Run executes the list command.
func (l *ListCmd) Run(g *Globals) error {
	svc, log, err := g.setup("list")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx, stop := signalContext()
	defer stop()
	return l.run(ctx, os.Stdout, svc)
}

func (l *ListCmd) run(ctx context.Context, w io.Writer, svc contactService) error {
	cs, err := svc.List(ctx)
	if err != nil {
		return requestFailed("list", err)
	}
	if len(cs) == 0 {
		_, _ = fmt.Fprintln(w, "No contacts.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
	for _, c := range cs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone)
	}
	return tw.Flush()
}

// ShowCmd prints one contact.
type ShowCmd struct {
	ID string `arg:"" help:"Contact ID."`
}

// Run executes the show command.
func (s *ShowCmd) Run(g *Globals) error {
	svc, log, err := g.setup("show")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx, stop := signalContext()
	defer stop()
	return s.run(ctx, os.Stdout, svc)
}

func (s *ShowCmd) run(ctx context.Context, w io.Writer, svc contactService) error {
	c, err := svc.Get(ctx, s.ID)
	if err != nil {
		return requestFailed("show", err)
	}
	printContact(w, c)
	return nil
}

// AddCmd creates a contact.
type AddCmd struct {
	Name  string `help:"Contact name." required:""`
	Email string `help:"Contact email."`
	Phone string `help:"Contact phone." required:""`
}

// Run executes the add command.
func (a *AddCmd) Run(g *Globals) error {
	svc, log, err := g.setup("add")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx, stop := signalContext()
	defer stop()
	return a.run(ctx, os.Stdout, svc)
}

func (a *AddCmd) run(ctx context.Context, w io.Writer, svc contactService) error {
	d := contact.Draft{Name: a.Name, Email: a.Email, Phone: a.Phone}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	c, err := svc.Create(ctx, d)
	if err != nil {
		return requestFailed("add", err)
	}
	printContact(w, c)
	return nil
}

// EditCmd replaces every field of a contact.
type EditCmd struct {
	ID    string `arg:"" help:"Contact ID."`
	Name  string `help:"Contact name." required:""`
	Email string `help:"Contact email. Omitting it clears the stored email."`
	Phone string `help:"Contact phone." required:""`
}

// Run executes the edit command.
func (e *EditCmd) Run(g *Globals) error {
	svc, log, err := g.setup("edit")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx, stop := signalContext()
	defer stop()
	return e.run(ctx, os.Stdout, svc)
}

func (e *EditCmd) run(ctx context.Context, w io.Writer, svc contactService) error {
	d := contact.Draft{Name: e.Name, Email: e.Email, Phone: e.Phone}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	c, err := svc.Update(ctx, e.ID, d)
	if err != nil {
		return requestFailed("edit", err)
	}
	printContact(w, c)
	return nil
}

// DeleteCmd deletes a contact.
type DeleteCmd struct {
	ID string `arg:"" help:"Contact ID."`
}

// Run executes the delete command.
func (d *DeleteCmd) Run(g *Globals) error {
	svc, log, err := g.setup("delete")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx, stop := signalContext()
	defer stop()
	return d.run(ctx, os.Stdout, svc)
}

func (d *DeleteCmd) run(ctx context.Context, w io.Writer, svc contactService) error {
	if err := svc.Delete(ctx, d.ID); err != nil {
		return requestFailed("delete", err)
	}
	_, _ = fmt.Fprintf(w, "Deleted %s\n", d.ID)
	return nil
}

func printContact(w io.Writer, c contact.Contact) {
	_, _ = fmt.Fprintf(w, "id:    %s\n", c.ID)
	_, _ = fmt.Fprintf(w, "name:  %s\n", c.Name)
	_, _ = fmt.Fprintf(w, "email: %s\n", c.Email)
	_, _ = fmt.Fprintf(w, "phone: %s\n", c.Phone)
}

// --- serve ---

// ServeCmd runs the development backend.
type ServeCmd struct {
	Addr   string `help:"Listen address."`
	Store  string `help:"Storage backend: memory, file or postgres."`
	DSN    string `help:"Postgres connection string." name:"dsn"`
	File   string `help:"Snapshot file for the file store." type:"path"`
	Table  string `help:"Postgres table name."`
	NoSeed bool   `help:"Do not load seed contacts into an empty store."`
}

// Run executes the serve command.
func (s *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	s.applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log, err := logger(cfg, "")
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signalContext()
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Server, log)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer closeStore()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return s.run(ctx, ln, store, cfg.Server.Seed, log)
}

func (s *ServeCmd) applyFlags(cfg *config.Config) {
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.Store != "" {
		cfg.Server.Store = s.Store
	}
	if s.DSN != "" {
		cfg.Server.DSN = s.DSN
	}
	if s.File != "" {
		cfg.Server.File = s.File
	}
	if s.Table != "" {
		cfg.Server.Table = s.Table
	}
	if s.NoSeed {
		cfg.Server.Seed = false
	}
}

// run seeds store if asked and serves until ctx is cancelled.
func (s *ServeCmd) run(ctx context.Context, ln net.Listener, store backend.Store, seed bool, log *zap.Logger) error {
	if seed {
		n, err := seedStore(ctx, store)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		if n > 0 {
			log.Info("seeded store", zap.Int("contacts", n))
		}
	}
	return backend.Serve(ctx, ln, backend.NewRouter(store, log.Named("http")), log)
}

// openStore builds the configured store and a func releasing it.
func openStore(ctx context.Context, cfg config.Server, log *zap.Logger) (backend.Store, func(), error) {
	switch cfg.Store {
	case "postgres":
		db, err := backend.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		store := backend.NewPostgresStore(db, backend.WithTable(cfg.Table))
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("using postgres store", zap.String("table", store.Table()))
		return store, func() { _ = db.Close() }, nil
	case "file":
		snapshots := state.NewFileStore(cfg.File)
		saved, found, err := snapshots.Load()
		if err != nil {
			return nil, nil, err
		}
		log.Info("using file store",
			zap.String("path", snapshots.Path()),
			zap.Bool("existing", found),
			zap.Int("contacts", len(saved)))
		store := backend.NewMemoryStore(
			backend.WithContacts(saved),
			backend.WithPersister(snapshots),
		)
		return store, func() {}, nil
	default:
		log.Info("using memory store")
		return backend.NewMemoryStore(), func() {}, nil
	}
}

// seedStore loads the seed contacts, preferring ./seed on disk over the
// embedded copy.
func seedStore(ctx context.Context, store backend.Store) (int, error) {
	f, err := contacts.OverlayFS("seed", contacts.Seed).Open(contacts.SeedContactsFile)
	if err != nil {
		return 0, fmt.Errorf("opening seed: %w", err)
	}
	defer f.Close()
	drafts, err := backend.ReadSeed(f)
	if err != nil {
		return 0, err
	}
	return backend.Seed(ctx, store, drafts)
}

// --- config ---

// ConfigCmd prints the embedded example config.
type ConfigCmd struct{}

// Run executes the config command.
func (c *ConfigCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *ConfigCmd) run(w io.Writer) error {
	data, err := fs.ReadFile(contacts.Seed, contacts.ExampleConfigFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// --- errors and exit codes ---

// requestError marks a failure talking to the backend.
type requestError struct {
	op  string
	err error
}

func (e *requestError) Error() string { return e.op + ": " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func requestFailed(op string, err error) error {
	return &requestError{op: op, err: err}
}

// Exit codes.
const (
	exitSuccess = 0
	exitRequest = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var re *requestError
	if errors.As(err, &re) {
		return exitRequest
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contacts"),
		kong.Description("Manage contacts over a REST backend."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
