// ABOUTME: Atomic import of one user and their measurements.
// ABOUTME: Existing user and measurement IDs are kept; everything else is written in one transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/vitals/internal/models"
	"gorm.io/gorm"
)

// ImportRecords creates u when absent and inserts every measurement whose
// ID is not stored yet. Any failure rolls back the whole import.
func (d *DB) ImportRecords(ctx context.Context, u *models.User, ms []*models.Measurement) (*ImportSummary, error) {
	summary := &ImportSummary{}
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", u.ID.String()).Scan(&n); err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if n == 0 {
			if err := insertUser(ctx, tx, u); err != nil {
				return fmt.Errorf("import user: %w", err)
			}
			summary.UserCreated = true
		}

		for _, m := range ms {
			if !m.Kind.Valid() {
				return fmt.Errorf("import measurement %s: unknown kind %q", m.ID, m.Kind)
			}
			err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+m.Kind.Table()+" WHERE id = ?", m.ID.String()).Scan(&n)
			if err != nil {
				return fmt.Errorf("check measurement %s: %w", m.ID, err)
			}
			if n > 0 {
				summary.Skipped++
				continue
			}
			if err := insertMeasurement(ctx, tx, m); err != nil {
				return fmt.Errorf("import measurement %s: %w", m.ID, err)
			}
			summary.Measurements++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ImportRecords creates u when absent and inserts every measurement whose
// ID is not stored yet. Any failure rolls back the whole import.
func (s *GormStore) ImportRecords(ctx context.Context, u *models.User, ms []*models.Measurement) (*ImportSummary, error) {
	summary := &ImportSummary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, "users", u.ID.String())
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !ok {
			if err := createUserTx(tx, u); err != nil {
				return fmt.Errorf("import user: %w", err)
			}
			summary.UserCreated = true
		}

		for _, m := range ms {
			if !m.Kind.Valid() {
				return fmt.Errorf("import measurement %s: unknown kind %q", m.ID, m.Kind)
			}
			ok, err := exists(tx, m.Kind.Table(), m.ID.String())
			if err != nil {
				return fmt.Errorf("check measurement %s: %w", m.ID, err)
			}
			if ok {
				summary.Skipped++
				continue
			}
			if err := createMeasurementTx(tx, m); err != nil {
				return fmt.Errorf("import measurement %s: %w", m.ID, err)
			}
			summary.Measurements++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
