package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/smileynet/contacts/internal/contact"
)

// DefaultTable is the table PostgresStore uses unless told otherwise.
const DefaultTable = "contacts"

// OpenPostgres opens and pings a PostgreSQL database.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("backend: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("backend: ping postgres: %w", err)
	}
	return db, nil
}

// PostgresStore is a Store backed by a PostgreSQL table. Rows are listed
// in creation order.
type PostgresStore struct {
	db    *sql.DB
	newID IDFunc
	table string
	q     queries
}

// Table returns the unquoted table name the store reads and writes.
func (s *PostgresStore) Table() string {
	return s.table
}

type queries struct {
	schema, list, get, insert, update, delete string
}

func buildQueries(table string) queries {
	t := pq.QuoteIdentifier(table)
	return queries{
		schema: `CREATE TABLE IF NOT EXISTS ` + t + ` (id TEXT PRIMARY KEY, name TEXT NOT NULL, email TEXT NOT NULL DEFAULT '', phone TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		list:   `SELECT id, name, email, phone FROM ` + t + ` ORDER BY created_at, id`,
		get:    `SELECT id, name, email, phone FROM ` + t + ` WHERE id = $1`,
		insert: `INSERT INTO ` + t + ` (id, name, email, phone) VALUES ($1, $2, $3, $4)`,
		update: `UPDATE ` + t + ` SET name = $2, email = $3, phone = $4 WHERE id = $1`,
		delete: `DELETE FROM ` + t + ` WHERE id = $1`,
	}
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithTable sets the table name. It is quoted as an identifier.
func WithTable(name string) PostgresOption {
	return func(s *PostgresStore) {
		if name != "" {
			s.table = name
			s.q = buildQueries(name)
		}
	}
}

// WithPostgresIDFunc replaces the uuid generator.
func WithPostgresIDFunc(fn IDFunc) PostgresOption {
	return func(s *PostgresStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewPostgresStore returns a store over db. Call EnsureSchema before use on
// a fresh database.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, newID: NewUUID, table: DefaultTable, q: buildQueries(DefaultTable)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the contacts table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.q.schema); err != nil {
		return fmt.Errorf("backend: create schema: %w", err)
	}
	return nil
}

// List returns every contact in creation order.
func (s *PostgresStore) List(ctx context.Context) ([]contact.Contact, error) {
	rows, err := s.db.QueryContext(ctx, s.q.list)
	if err != nil {
		return nil, fmt.Errorf("backend: list contacts: %w", err)
	}
	defer rows.Close()

	out := []contact.Contact{}
	for rows.Next() {
		var c contact.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone); err != nil {
			return nil, fmt.Errorf("backend: scan contact: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("backend: list contacts: %w", err)
	}
	return out, nil
}

// Get returns the contact with id.
func (s *PostgresStore) Get(ctx context.Context, id string) (contact.Contact, error) {
	var c contact.Contact
	err := s.db.QueryRowContext(ctx, s.q.get, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return contact.Contact{}, ErrNotFound
	}
	if err != nil {
		return contact.Contact{}, fmt.Errorf("backend: get contact %s: %w", id, err)
	}
	return c, nil
}

// Create inserts d under a new id.
func (s *PostgresStore) Create(ctx context.Context, d contact.Draft) (contact.Contact, error) {
	id := s.newID()
	if _, err := s.db.ExecContext(ctx, s.q.insert, id, d.Name, d.Email, d.Phone); err != nil {
		return contact.Contact{}, fmt.Errorf("backend: create contact: %w", err)
	}
	return d.WithID(id), nil
}

// Update replaces every field of contact id with d.
func (s *PostgresStore) Update(ctx context.Context, id string, d contact.Draft) (contact.Contact, error) {
	res, err := s.db.ExecContext(ctx, s.q.update, id, d.Name, d.Email, d.Phone)
	if err != nil {
		return contact.Contact{}, fmt.Errorf("backend: update contact %s: %w", id, err)
	}
	if err := requireRow(res); err != nil {
		return contact.Contact{}, err
	}
	return d.WithID(id), nil
}

// Delete removes contact id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q.delete, id)
	if err != nil {
		return fmt.Errorf("backend: delete contact %s: %w", id, err)
	}
	return requireRow(res)
}

// requireRow maps zero affected rows to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("backend: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
