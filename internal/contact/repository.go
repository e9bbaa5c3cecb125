package contact

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/Zachkp/portfolio/internal/errors"
)

// Repository persists messages in the messages table.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an initialized database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListOptions filters and pages List.
type ListOptions struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

// Save inserts a message.
func (r *Repository) Save(ctx context.Context, m Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, subject, body, timestamp, read, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Email, m.Subject, m.Body, m.Timestamp.UnixMilli(), boolToInt(m.Read), m.Status)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Get returns one message.
func (r *Repository) Get(ctx context.Context, id string) (Message, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, subject, body, timestamp, read, status
		FROM messages WHERE id = ?
	`, id)
	m, err := scanMessage(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Message{}, errors.NewNotFound("message", id)
	}
	if err != nil {
		return Message{}, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// List returns messages newest first.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]Message, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	query := `SELECT id, name, email, subject, body, timestamp, read, status FROM messages`
	if opts.UnreadOnly {
		query += ` WHERE read = 0`
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead flags a message as read.
func (r *Repository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET read = 1, status = ? WHERE id = ?`, StatusRead, id)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return requireAffected(result, id)
}

// Delete removes a message permanently.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return requireAffected(result, id)
}

// Counts returns the total and unread number of messages.
func (r *Repository) Counts(ctx context.Context) (total, unread int64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN read = 0 THEN 1 ELSE 0 END), 0) FROM messages`,
	).Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("count messages: %w", err)
	}
	return total, unread, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (Message, error) {
	var (
		m    Message
		ts   int64
		read int
	)
	if err := s.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &ts, &read, &m.Status); err != nil {
		return Message{}, err
	}
	m.Timestamp = time.UnixMilli(ts).UTC()
	m.Read = read != 0
	return m, nil
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return errors.NewNotFound("message", id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
