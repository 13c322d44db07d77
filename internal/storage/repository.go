// ABOUTME: Repository interface for vitals storage backends.
// ABOUTME: Defines the contract for users, per-kind measurements, and advice.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousID is returned when an ID prefix matches several rows.
	ErrAmbiguousID = errors.New("ambiguous id prefix")
	// ErrDuplicateName is returned when a user name is already taken.
	ErrDuplicateName = errors.New("user name already exists")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// FieldStats is the aggregate of one value column for one user.
type FieldStats struct {
	Field string
	Count int
	Avg   float64
	Min   float64
	Max   float64
}

// AdviceFilter narrows an advice listing. Empty fields match everything.
type AdviceFilter struct {
	Query string
	Topic string
}

// Repository defines the storage interface for vitals data.
// Every write runs in its own transaction.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, idOrPrefix string) (*models.User, error)
	GetUserByName(ctx context.Context, name string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, search string) ([]*models.User, error)
	SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error
	// DeleteUser removes the user and every measurement they own across all
	// kinds atomically.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Measurement operations
	CreateMeasurement(ctx context.Context, m *models.Measurement) error
	GetMeasurement(ctx context.Context, kind models.Kind, idOrPrefix string) (*models.Measurement, error)
	// ListMeasurements returns newest first; limit <= 0 means unbounded.
	ListMeasurements(ctx context.Context, userID uuid.UUID, kind models.Kind, limit int) ([]*models.Measurement, error)
	LatestMeasurement(ctx context.Context, userID uuid.UUID, kind models.Kind) (*models.Measurement, error)
	UpdateMeasurement(ctx context.Context, kind models.Kind, id uuid.UUID, values map[string]float64) error
	DeleteMeasurement(ctx context.Context, kind models.Kind, id uuid.UUID) error
	KindStats(ctx context.Context, userID uuid.UUID, kind models.Kind) ([]FieldStats, error)

	// Advice operations
	CreateAdvice(ctx context.Context, a *models.Advice) error
	GetAdvice(ctx context.Context, idOrPrefix string) (*models.Advice, error)
	ListAdvice(ctx context.Context, filter AdviceFilter) ([]*models.Advice, error)
	UpdateAdvice(ctx context.Context, a *models.Advice) error
	DeleteAdvice(ctx context.Context, id uuid.UUID) error
	ListTopics(ctx context.Context) ([]string, error)

	// ImportRecords writes an export in one transaction: the user when
	// absent, then every measurement whose ID is not stored yet.
	ImportRecords(ctx context.Context, u *models.User, ms []*models.Measurement) (*ImportSummary, error)

	// Lifecycle
	Close() error
}

// likeEscaper quotes LIKE wildcards with '!'; backslash literals differ on MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")

// containsPattern returns a LIKE pattern, used with ESCAPE '!', that matches
// s literally anywhere in a value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// normalizeIDPrefix lowercases a user-supplied ID or ID prefix and reports
// whether it only holds hex digits and dashes.
func normalizeIDPrefix(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == '-':
		default:
			return "", false
		}
	}
	return strings.ToLower(s), true
}
