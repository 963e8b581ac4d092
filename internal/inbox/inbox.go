// Package inbox stores contact form messages in SQLite.
package inbox

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/pranayvarade/livefolio/internal/interaction"
)

// Message is a stored submission.
type Message struct {
	ID         string
	Form       interaction.ContactForm
	ReceivedAt time.Time
}

// Store wraps the inbox database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the inbox database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating inbox directory")
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening inbox")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging inbox")
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "running inbox migrations")
	}
	return s, nil
}

// OpenMemory creates an in-memory inbox (useful for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "opening in-memory inbox")
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: ":memory:"}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "running inbox migrations")
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    company TEXT NOT NULL DEFAULT '',
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    received_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_received ON messages(received_at);
`

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Save stores a submission and returns it with its assigned id.
func (s *Store) Save(ctx context.Context, form interaction.ContactForm) (Message, error) {
	msg := Message{
		ID:         uuid.New().String(),
		Form:       form,
		ReceivedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, name, email, company, subject, body, received_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, form.Name, form.Email, form.Company, form.Subject, form.Message, msg.ReceivedAt.UnixNano(),
	)
	if err != nil {
		return Message{}, errors.Wrap(err, "saving message")
	}
	return msg, nil
}

// List returns up to limit messages, newest first. A limit of zero or less
// returns every message.
func (s *Store) List(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, company, subject, body, received_at FROM messages ORDER BY received_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "listing messages")
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m  Message
			ns int64
		)
		if err := rows.Scan(&m.ID, &m.Form.Name, &m.Form.Email, &m.Form.Company, &m.Form.Subject, &m.Form.Message, &ns); err != nil {
			return nil, errors.Wrap(err, "scanning message")
		}
		m.ReceivedAt = time.Unix(0, ns).UTC()
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "iterating messages")
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "counting messages")
	}
	return n, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "pinging inbox")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
