// ABOUTME: Advice feed operations for SQLite storage.
// ABOUTME: Supports text search, topic filtering, and the distinct topic list.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

const adviceColumns = "id, title, body, topic, recorded_at, image_url, author_id"

// AllTopics is the topic filter value that matches every entry.
const AllTopics = "todos"

// CreateAdvice stores a new advice entry.
func (d *DB) CreateAdvice(ctx context.Context, a *models.Advice) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO advice (`+adviceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID.String(), a.Title, a.Body, a.Topic, formatTime(a.Timestamp),
			nullString(a.ImageURL), nullUUID(a.AuthorID),
		)
		if err != nil {
			return fmt.Errorf("insert advice: %w", err)
		}
		return nil
	})
}

// GetAdvice retrieves an advice entry by ID or ID prefix.
func (d *DB) GetAdvice(ctx context.Context, idOrPrefix string) (*models.Advice, error) {
	id, err := d.resolveID(ctx, "advice", idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := d.db.QueryRowContext(ctx, "SELECT "+adviceColumns+" FROM advice WHERE id = ?", id)
	return scanAdvice(row)
}

// ListAdvice returns entries newest first, narrowed by filter.
func (d *DB) ListAdvice(ctx context.Context, filter AdviceFilter) ([]*models.Advice, error) {
	var (
		where []string
		args  []interface{}
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(body) LIKE ? ESCAPE '!')")
		pattern := containsPattern(strings.ToLower(q))
		args = append(args, pattern, pattern)
	}
	if t := strings.TrimSpace(filter.Topic); t != "" && !strings.EqualFold(t, AllTopics) {
		where = append(where, "topic = ?")
		args = append(args, t)
	}

	query := "SELECT " + adviceColumns + " FROM advice"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at DESC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list advice: %w", err)
	}
	defer rows.Close()

	var out []*models.Advice
	for rows.Next() {
		a, err := scanAdvice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAdvice overwrites title, body, topic and image of an entry.
func (d *DB) UpdateAdvice(ctx context.Context, a *models.Advice) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE advice SET title = ?, body = ?, topic = ?, image_url = ? WHERE id = ?`,
			a.Title, a.Body, a.Topic, nullString(a.ImageURL), a.ID.String(),
		)
		if err != nil {
			return fmt.Errorf("update advice: %w", err)
		}
		return expectAffected(result, a.ID.String())
	})
}

// DeleteAdvice removes an advice entry.
func (d *DB) DeleteAdvice(ctx context.Context, id uuid.UUID) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM advice WHERE id = ?", id.String())
		if err != nil {
			return fmt.Errorf("delete advice: %w", err)
		}
		return expectAffected(result, id.String())
	})
}

// ListTopics returns the distinct topics in use, sorted.
func (d *DB) ListTopics(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT DISTINCT topic FROM advice ORDER BY topic")
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func scanAdvice(row rowScanner) (*models.Advice, error) {
	var (
		idStr, recordedAt string
		image, author     sql.NullString
	)
	a := &models.Advice{}
	err := row.Scan(&idStr, &a.Title, &a.Body, &a.Topic, &recordedAt, &image, &author)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan advice: %w", err)
	}

	if a.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid advice ID in database: %w", err)
	}
	if a.Timestamp, err = parseTime(recordedAt); err != nil {
		return nil, fmt.Errorf("invalid recorded_at timestamp: %w", err)
	}
	if image.Valid {
		a.ImageURL = &image.String
	}
	if author.Valid {
		authorID, err := uuid.Parse(author.String)
		if err != nil {
			return nil, fmt.Errorf("invalid author ID in database: %w", err)
		}
		a.AuthorID = &authorID
	}
	return a, nil
}

func nullUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}
