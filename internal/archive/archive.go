// Package archive persists received messages to sqlite for later inspection.
// The poll loop's retained last-seen state stays in memory; the archive is a
// convenience log only.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/okazdal/mailtm/internal/parser"
	"github.com/okazdal/mailtm/pkg/models"
)

var (
	// ErrAlreadyArchived is returned when a message id was saved before.
	ErrAlreadyArchived = errors.New("message already archived")
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
)

// Store wraps the sqlite archive database.
type Store struct {
	db *sqlx.DB
}

// Record is one archived message row.
type Record struct {
	ID             string    `db:"id"`
	AccountID      string    `db:"account_id"`
	FromAddr       string    `db:"from_addr"`
	FromName       string    `db:"from_name"`
	Subject        string    `db:"subject"`
	Intro          string    `db:"intro"`
	BodyText       string    `db:"body_text"`
	HasAttachments bool      `db:"has_attachments"`
	Size           int64     `db:"size"`
	DetectedCodes  string    `db:"detected_codes"` // JSON array of parser.DetectedCode
	ReceivedAt     time.Time `db:"received_at"`
	ArchivedAt     time.Time `db:"archived_at"`
}

// Codes decodes the detected_codes column.
func (r *Record) Codes() []parser.DetectedCode {
	if r.DetectedCodes == "" {
		return nil
	}
	var codes []parser.DetectedCode
	if err := json.Unmarshal([]byte(r.DetectedCodes), &codes); err != nil {
		return nil
	}
	return codes
}

// New opens the archive at path, creating the directory if needed.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	// WAL mode keeps the watcher responsive while handlers write
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	return &Store{db: db}, nil
}

// Migrate creates the archive schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Save archives msg together with any verification codes detected in its
// body. Saving the same message id twice returns ErrAlreadyArchived.
func (s *Store) Save(ctx context.Context, msg models.Message, codes []parser.DetectedCode) error {
	var encoded string
	if len(codes) > 0 {
		buf, err := json.Marshal(codes)
		if err != nil {
			return fmt.Errorf("failed to encode detected codes: %w", err)
		}
		encoded = string(buf)
	}

	query := `
		INSERT OR IGNORE INTO messages (id, account_id, from_addr, from_name, subject, intro, body_text, has_attachments, size, detected_codes, received_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.AccountID,
		msg.FromAddress(),
		msg.FromName(),
		msg.Subject,
		msg.Intro,
		msg.Text,
		msg.HasAttachments,
		msg.Size,
		encoded,
		msg.CreatedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyArchived
	}
	return nil
}

// List returns the most recently received records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Record
	query := `SELECT * FROM messages ORDER BY received_at DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	return out, nil
}

// Get returns one archived message by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM messages WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &rec, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
