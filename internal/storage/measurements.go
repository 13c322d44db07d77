// ABOUTME: Measurement CRUD operations for SQLite storage.
// ABOUTME: SQL is built per kind from the registry field list, so all seven tables share one code path.
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

// fieldNames returns the value columns of kind k.
func fieldNames(k models.Kind) ([]string, error) {
	defs := models.KindFields(k)
	if len(defs) == 0 {
		return nil, fmt.Errorf("unknown metric kind: %s", k)
	}
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Field
	}
	return names, nil
}

func selectColumns(fields []string) string {
	return "id, recorded_at, user_id, " + strings.Join(fields, ", ")
}

// CreateMeasurement stores a new measurement in its kind's table.
func (d *DB) CreateMeasurement(ctx context.Context, m *models.Measurement) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		return insertMeasurement(ctx, tx, m)
	})
}

func insertMeasurement(ctx context.Context, tx *sql.Tx, m *models.Measurement) error {
	fields, err := fieldNames(m.Kind)
	if err != nil {
		return err
	}

	args := []interface{}{m.ID.String(), formatTime(m.Timestamp), m.UserID.String()}
	for _, f := range fields {
		v, ok := m.Values[f]
		if !ok {
			return fmt.Errorf("create measurement: missing field %s", f)
		}
		args = append(args, v)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?%s)",
		m.Kind.Table(), selectColumns(fields), strings.Repeat(", ?", len(fields)))

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	return nil
}

// GetMeasurement retrieves a measurement by ID or ID prefix.
func (d *DB) GetMeasurement(ctx context.Context, kind models.Kind, idOrPrefix string) (*models.Measurement, error) {
	fields, err := fieldNames(kind)
	if err != nil {
		return nil, err
	}
	id, err := d.resolveID(ctx, kind.Table(), idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectColumns(fields), kind.Table())
	return scanMeasurement(d.db.QueryRowContext(ctx, query, id), kind, fields)
}

// ListMeasurements retrieves a user's measurements of one kind.
// Results are sorted by timestamp descending (most recent first).
func (d *DB) ListMeasurements(ctx context.Context, userID uuid.UUID, kind models.Kind, limit int) ([]*models.Measurement, error) {
	fields, err := fieldNames(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = ? ORDER BY recorded_at DESC`,
		selectColumns(fields), kind.Table())
	args := []interface{}{userID.String()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	var out []*models.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows, kind, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// LatestMeasurement returns the most recent measurement of a kind for a user.
func (d *DB) LatestMeasurement(ctx context.Context, userID uuid.UUID, kind models.Kind) (*models.Measurement, error) {
	ms, err := d.ListMeasurements(ctx, userID, kind, 1)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("no %s measurements: %w", kind, ErrNotFound)
	}
	return ms[0], nil
}

// UpdateMeasurement overwrites the value fields of an existing measurement.
// ID, timestamp and owner are left unchanged.
func (d *DB) UpdateMeasurement(ctx context.Context, kind models.Kind, id uuid.UUID, values map[string]float64) error {
	fields, err := fieldNames(kind)
	if err != nil {
		return err
	}

	sets := make([]string, len(fields))
	args := make([]interface{}, 0, len(fields)+1)
	for i, f := range fields {
		v, ok := values[f]
		if !ok {
			return fmt.Errorf("update measurement: missing field %s", f)
		}
		sets[i] = f + " = ?"
		args = append(args, v)
	}
	args = append(args, id.String())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", kind.Table(), strings.Join(sets, ", "))
	return d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update measurement: %w", err)
		}
		return expectAffected(result, id.String())
	})
}

// DeleteMeasurement removes a single measurement.
func (d *DB) DeleteMeasurement(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown metric kind: %s", kind)
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM "+kind.Table()+" WHERE id = ?", id.String())
		if err != nil {
			return fmt.Errorf("delete measurement: %w", err)
		}
		return expectAffected(result, id.String())
	})
}

// KindStats aggregates every value column of kind for one user.
func (d *DB) KindStats(ctx context.Context, userID uuid.UUID, kind models.Kind) ([]FieldStats, error) {
	fields, err := fieldNames(kind)
	if err != nil {
		return nil, err
	}

	var exprs []string
	for _, f := range fields {
		exprs = append(exprs, fmt.Sprintf("COUNT(%[1]s), AVG(%[1]s), MIN(%[1]s), MAX(%[1]s)", f))
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ?", strings.Join(exprs, ", "), kind.Table())

	counts := make([]int, len(fields))
	aggs := make([][3]sql.NullFloat64, len(fields))
	dest := make([]interface{}, 0, len(fields)*4)
	for i := range fields {
		dest = append(dest, &counts[i], &aggs[i][0], &aggs[i][1], &aggs[i][2])
	}

	if err := d.db.QueryRowContext(ctx, query, userID.String()).Scan(dest...); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", kind, err)
	}

	stats := make([]FieldStats, len(fields))
	for i, f := range fields {
		stats[i] = FieldStats{
			Field: f,
			Count: counts[i],
			Avg:   aggs[i][0].Float64,
			Min:   aggs[i][1].Float64,
			Max:   aggs[i][2].Float64,
		}
	}
	return stats, nil
}

// resolveID finds the full ID in table from a prefix.
func (d *DB) resolveID(ctx context.Context, table, idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", fmt.Errorf("empty id: %w", ErrNotFound)
	}
	prefix, ok := normalizeIDPrefix(idOrPrefix)
	if !ok {
		return "", fmt.Errorf("%q: %w", idOrPrefix, ErrNotFound)
	}
	// A full UUID is used directly.
	if len(prefix) == 36 && strings.Count(prefix, "-") == 4 {
		return prefix, nil
	}

	rows, err := d.db.QueryContext(ctx, "SELECT id FROM "+table+" WHERE id LIKE ? LIMIT 2", prefix+"%")
	if err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%s: %w", idOrPrefix, ErrNotFound)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("%s: %w", idOrPrefix, ErrAmbiguousID)
	}
	return matches[0], nil
}

func expectAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanMeasurement scans one row selected with selectColumns(fields).
func scanMeasurement(row rowScanner, kind models.Kind, fields []string) (*models.Measurement, error) {
	var idStr, recordedAt, userID string
	values := make([]float64, len(fields))
	dest := []interface{}{&idStr, &recordedAt, &userID}
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan measurement: %w", err)
	}

	m := &models.Measurement{Kind: kind, Values: make(map[string]float64, len(fields))}
	var err error
	if m.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid measurement ID in database: %w", err)
	}
	if m.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}
	if m.Timestamp, err = parseTime(recordedAt); err != nil {
		return nil, fmt.Errorf("invalid recorded_at timestamp: %w", err)
	}
	for i, f := range fields {
		m.Values[f] = values[i]
	}
	return m, nil
}
