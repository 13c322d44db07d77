// ABOUTME: User account operations for SQLite storage.
// ABOUTME: DeleteUser cascades over every measurement table in one transaction.
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

const userColumns = "id, name, email, password_hash, role, age, sex, phone, created_at"

// CreateUser stores a new user. Name and email must both be unused.
func (d *DB) CreateUser(ctx context.Context, u *models.User) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		return insertUser(ctx, tx, u)
	})
}

func insertUser(ctx context.Context, tx *sql.Tx, u *models.User) error {
	if err := checkUnique(ctx, tx, u); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Name, u.Email, u.PasswordHash, string(u.Role),
		nullInt(u.Age), nullString(u.Sex), nullString(u.Phone), formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func checkUnique(ctx context.Context, tx *sql.Tx, u *models.User) error {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE name = ?", u.Name).Scan(&n); err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%s: %w", u.Name, ErrDuplicateName)
	}
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", u.Email).Scan(&n); err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%s: %w", u.Email, ErrDuplicateEmail)
	}
	return nil
}

// GetUser retrieves a user by ID or ID prefix.
func (d *DB) GetUser(ctx context.Context, idOrPrefix string) (*models.User, error) {
	id, err := d.resolveID(ctx, "users", idOrPrefix)
	if err != nil {
		return nil, err
	}
	row := d.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByName retrieves a user by exact name.
func (d *DB) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	row := d.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE name = ?", name)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by exact email.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := d.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// ListUsers returns users ordered by name. A non-empty search matches name
// or email case-insensitively.
func (d *DB) ListUsers(ctx context.Context, search string) ([]*models.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var args []interface{}
	if search = strings.TrimSpace(search); search != "" {
		query += " WHERE LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'"
		pattern := containsPattern(strings.ToLower(search))
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY name"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserRole changes a user's stored role.
func (d *DB) SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", string(role), id.String())
		if err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		return expectAffected(result, id.String())
	})
}

// DeleteUser removes every measurement owned by the user, detaches their
// advice, then removes the user row. Any failure rolls the whole thing back.
func (d *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		for _, k := range models.AllKinds {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+k.Table()+" WHERE user_id = ?", id.String()); err != nil {
				return fmt.Errorf("delete %s rows: %w", k, err)
			}
		}
		if _, err := tx.ExecContext(ctx, "UPDATE advice SET author_id = NULL WHERE author_id = ?", id.String()); err != nil {
			return fmt.Errorf("detach advice: %w", err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id.String())
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return expectAffected(result, id.String())
	})
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		idStr, role, createdAt string
		age                    sql.NullInt64
		sex, phone             sql.NullString
	)
	u := &models.User{}
	err := row.Scan(&idStr, &u.Name, &u.Email, &u.PasswordHash, &role, &age, &sex, &phone, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if u.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at timestamp: %w", err)
	}
	u.Role = models.Role(role)
	if age.Valid {
		a := int(age.Int64)
		u.Age = &a
	}
	if sex.Valid {
		u.Sex = &sex.String
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	return u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
