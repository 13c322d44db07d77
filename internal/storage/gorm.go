// ABOUTME: GORM-backed Repository for MySQL, PostgreSQL, SQL Server, and SQLite.
// ABOUTME: Mirrors the SQLite schema with one table per measurement kind.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Backend names accepted by the storage factory.
const (
	BackendSQLite     = "sqlite"
	BackendGormSQLite = "gorm-sqlite"
	BackendMySQL      = "mysql"
	BackendPostgres   = "postgres"
	BackendSQLServer  = "sqlserver"
)

// Pool settings for server-backed databases.
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 180 * time.Second
)

// GormStore implements Repository over any GORM dialect.
type GormStore struct {
	db *gorm.DB
}

// Compile-time check that GormStore implements Repository.
var _ Repository = (*GormStore)(nil)

type userRow struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Name         string  `gorm:"size:100;not null;uniqueIndex"`
	Email        string  `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string  `gorm:"size:255;not null"`
	Role         string  `gorm:"size:16;not null;default:user"`
	Age          *int    `gorm:"column:age"`
	Sex          *string `gorm:"size:16"`
	Phone        *string `gorm:"size:32"`
	Created      string  `gorm:"column:created_at;size:40;not null"`
}

func (userRow) TableName() string { return "users" }

type adviceRow struct {
	ID         string  `gorm:"primaryKey;size:36"`
	Title      string  `gorm:"size:200;not null"`
	Body       string  `gorm:"type:text;not null"`
	Topic      string  `gorm:"size:64;not null;index"`
	RecordedAt string  `gorm:"column:recorded_at;size:40;not null"`
	ImageURL   *string `gorm:"size:512"`
	AuthorID   *string `gorm:"size:36"`
}

func (adviceRow) TableName() string { return "advice" }

// valueRow and pressureRow only drive AutoMigrate; each is applied to
// several tables, so they carry no index tags.
type valueRow struct {
	ID         string  `gorm:"primaryKey;size:36"`
	RecordedAt string  `gorm:"column:recorded_at;size:40;not null"`
	UserID     string  `gorm:"size:36;not null"`
	Value      float64 `gorm:"not null"`
}

type pressureRow struct {
	ID         string  `gorm:"primaryKey;size:36"`
	RecordedAt string  `gorm:"column:recorded_at;size:40;not null"`
	UserID     string  `gorm:"size:36;not null"`
	Systolic   float64 `gorm:"not null"`
	Diastolic  float64 `gorm:"not null"`
}

func rowModel(k models.Kind) interface{} {
	if k == models.KindBloodPressure {
		return &pressureRow{}
	}
	return &valueRow{}
}

// measurementScan receives any kind's row; fields are aliased v1 and v2.
type measurementScan struct {
	ID         string
	RecordedAt string
	UserID     string
	V1         float64
	V2         float64
}

// OpenGorm connects to backend with dsn, applies the pool policy, pings,
// and migrates the schema. For gorm-sqlite the dsn is a file path.
func OpenGorm(backend, dsnOrPath string) (*GormStore, error) {
	var dialector gorm.Dialector

	switch backend {
	case BackendMySQL:
		dialector = mysql.Open(dsnOrPath)
	case BackendPostgres:
		dialector = postgres.Open(dsnOrPath)
	case BackendSQLServer:
		dialector = sqlserver.Open(dsnOrPath)
	case BackendGormSQLite:
		if err := os.MkdirAll(filepath.Dir(dsnOrPath), 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		// Reuse the pure-Go driver registered by modernc.org/sqlite.
		dialector = sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn(dsnOrPath)})
	default:
		return nil, fmt.Errorf("unsupported database backend: %s", backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &GormStore{db: db}
	if err := s.autoMigrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func (s *GormStore) autoMigrate() error {
	if err := s.db.AutoMigrate(&userRow{}, &adviceRow{}); err != nil {
		return err
	}
	for _, k := range models.AllKinds {
		if err := s.db.Table(k.Table()).AutoMigrate(rowModel(k)); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// resolveID finds the full ID in table from a prefix.
func (s *GormStore) resolveID(ctx context.Context, table, idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", fmt.Errorf("empty id: %w", ErrNotFound)
	}
	prefix, ok := normalizeIDPrefix(idOrPrefix)
	if !ok {
		return "", fmt.Errorf("%q: %w", idOrPrefix, ErrNotFound)
	}
	if len(prefix) == 36 && strings.Count(prefix, "-") == 4 {
		return prefix, nil
	}

	var ids []string
	err := s.db.WithContext(ctx).Table(table).
		Where("id LIKE ?", prefix+"%").
		Limit(2).
		Pluck("id", &ids).Error
	if err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%s: %w", idOrPrefix, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%s: %w", idOrPrefix, ErrAmbiguousID)
	}
}

// exists reports whether a row with id is present in table.
func exists(tx *gorm.DB, table, id string) (bool, error) {
	var n int64
	if err := tx.Table(table).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// User operations

// CreateUser stores a new user. Name and email must both be unused.
func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createUserTx(tx, u)
	})
}

func createUserTx(tx *gorm.DB, u *models.User) error {
	var n int64
	if err := tx.Model(&userRow{}).Where("name = ?", u.Name).Count(&n).Error; err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%s: %w", u.Name, ErrDuplicateName)
	}
	if err := tx.Model(&userRow{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%s: %w", u.Email, ErrDuplicateEmail)
	}

	row := userRow{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Age:          u.Age,
		Sex:          u.Sex,
		Phone:        u.Phone,
		Created:      formatTime(u.CreatedAt),
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID or ID prefix.
func (s *GormStore) GetUser(ctx context.Context, idOrPrefix string) (*models.User, error) {
	id, err := s.resolveID(ctx, "users", idOrPrefix)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, "id = ?", id)
}

// GetUserByName retrieves a user by exact name.
func (s *GormStore) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	return s.findUser(ctx, "name = ?", name)
}

// GetUserByEmail retrieves a user by exact email.
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *GormStore) findUser(ctx context.Context, cond string, arg interface{}) (*models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where(cond, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toModel()
}

// ListUsers returns users ordered by name, optionally filtered by a
// case-insensitive substring of name or email.
func (s *GormStore) ListUsers(ctx context.Context, search string) ([]*models.User, error) {
	q := s.db.WithContext(ctx).Model(&userRow{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := containsPattern(strings.ToLower(search))
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'", pattern, pattern)
	}

	var rows []userRow
	if err := q.Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*models.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SetUserRole changes a user's stored role.
func (s *GormStore) SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, "users", id.String())
		if err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		if err := tx.Model(&userRow{}).Where("id = ?", id.String()).Update("role", string(role)).Error; err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		return nil
	})
}

// DeleteUser removes the user's measurements in every kind table, detaches
// their advice, and removes the user row in a single transaction.
func (s *GormStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range models.AllKinds {
			if err := tx.Table(k.Table()).Where("user_id = ?", id.String()).Delete(rowModel(k)).Error; err != nil {
				return fmt.Errorf("delete %s rows: %w", k, err)
			}
		}
		if err := tx.Model(&adviceRow{}).Where("author_id = ?", id.String()).Update("author_id", nil).Error; err != nil {
			return fmt.Errorf("detach advice: %w", err)
		}
		result := tx.Where("id = ?", id.String()).Delete(&userRow{})
		if result.Error != nil {
			return fmt.Errorf("delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *userRow) toModel() (*models.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}
	created, err := parseTime(r.Created)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at timestamp: %w", err)
	}
	return &models.User{
		ID:           id,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         models.Role(r.Role),
		Age:          r.Age,
		Sex:          r.Sex,
		Phone:        r.Phone,
		CreatedAt:    created,
	}, nil
}

// Measurement operations

// selectAliased selects a kind's columns with value fields renamed v1, v2.
func selectAliased(fields []string) string {
	cols := []string{"id", "recorded_at", "user_id"}
	for i, f := range fields {
		cols = append(cols, fmt.Sprintf("%s AS v%d", f, i+1))
	}
	return strings.Join(cols, ", ")
}

func (r *measurementScan) toModel(kind models.Kind, fields []string) (*models.Measurement, error) {
	m := &models.Measurement{Kind: kind, Values: make(map[string]float64, len(fields))}
	var err error
	if m.ID, err = uuid.Parse(r.ID); err != nil {
		return nil, fmt.Errorf("invalid measurement ID in database: %w", err)
	}
	if m.UserID, err = uuid.Parse(r.UserID); err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}
	if m.Timestamp, err = parseTime(r.RecordedAt); err != nil {
		return nil, fmt.Errorf("invalid recorded_at timestamp: %w", err)
	}
	vals := []float64{r.V1, r.V2}
	for i, f := range fields {
		m.Values[f] = vals[i]
	}
	return m, nil
}

// CreateMeasurement stores a new measurement in its kind's table.
func (s *GormStore) CreateMeasurement(ctx context.Context, m *models.Measurement) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createMeasurementTx(tx, m)
	})
}

func createMeasurementTx(tx *gorm.DB, m *models.Measurement) error {
	fields, err := fieldNames(m.Kind)
	if err != nil {
		return err
	}
	row := map[string]interface{}{
		"id":          m.ID.String(),
		"recorded_at": formatTime(m.Timestamp),
		"user_id":     m.UserID.String(),
	}
	for _, f := range fields {
		v, ok := m.Values[f]
		if !ok {
			return fmt.Errorf("create measurement: missing field %s", f)
		}
		row[f] = v
	}

	var n int64
	if err := tx.Model(&userRow{}).Where("id = ?", m.UserID.String()).Count(&n).Error; err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("create measurement: user %s: %w", m.UserID, ErrNotFound)
	}
	if err := tx.Table(m.Kind.Table()).Create(row).Error; err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	return nil
}

// GetMeasurement retrieves a measurement by ID or ID prefix.
func (s *GormStore) GetMeasurement(ctx context.Context, kind models.Kind, idOrPrefix string) (*models.Measurement, error) {
	fields, err := fieldNames(kind)
	if err != nil {
		return nil, err
	}
	id, err := s.resolveID(ctx, kind.Table(), idOrPrefix)
	if err != nil {
		return nil, err
	}

	var rows []measurementScan
	err = s.db.WithContext(ctx).Table(kind.Table()).
		Select(selectAliased(fields)).
		Where("id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get measurement: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toModel(kind, fields)
}

// ListMeasurements retrieves a user's measurements of one kind, newest first.
func (s *GormStore) ListMeasurements(ctx context.Context, userID uuid.UUID, kind models.Kind, limit int) ([]*models.Measurement, error) {
	fields, err := fieldNames(kind)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Table(kind.Table()).
		Select(selectAliased(fields)).
		Where("user_id = ?", userID.String()).
		Order("recorded_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []measurementScan
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}

	out := make([]*models.Measurement, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toModel(kind, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// LatestMeasurement returns the most recent measurement of a kind for a user.
func (s *GormStore) LatestMeasurement(ctx context.Context, userID uuid.UUID, kind models.Kind) (*models.Measurement, error) {
	ms, err := s.ListMeasurements(ctx, userID, kind, 1)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("no %s measurements: %w", kind, ErrNotFound)
	}
	return ms[0], nil
}

// UpdateMeasurement overwrites the value fields of an existing measurement.
func (s *GormStore) UpdateMeasurement(ctx context.Context, kind models.Kind, id uuid.UUID, values map[string]float64) error {
	fields, err := fieldNames(kind)
	if err != nil {
		return err
	}
	updates := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		v, ok := values[f]
		if !ok {
			return fmt.Errorf("update measurement: missing field %s", f)
		}
		updates[f] = v
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// MySQL reports unchanged rows as unaffected, so check existence first.
		ok, err := exists(tx, kind.Table(), id.String())
		if err != nil {
			return fmt.Errorf("update measurement: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		if err := tx.Table(kind.Table()).Where("id = ?", id.String()).Updates(updates).Error; err != nil {
			return fmt.Errorf("update measurement: %w", err)
		}
		return nil
	})
}

// DeleteMeasurement removes a single measurement.
func (s *GormStore) DeleteMeasurement(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown metric kind: %s", kind)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Table(kind.Table()).Where("id = ?", id.String()).Delete(rowModel(kind))
		if result.Error != nil {
			return fmt.Errorf("delete measurement: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// KindStats aggregates every value column of kind for one user.
func (s *GormStore) KindStats(ctx context.Context, userID uuid.UUID, kind models.Kind) ([]FieldStats, error) {
	fields, err := fieldNames(kind)
	if err != nil {
		return nil, err
	}

	stats := make([]FieldStats, 0, len(fields))
	for _, f := range fields {
		var agg struct {
			Cnt  int64
			Mean *float64
			Lo   *float64
			Hi   *float64
		}
		err := s.db.WithContext(ctx).Table(kind.Table()).
			Select(fmt.Sprintf("COUNT(%[1]s) AS cnt, AVG(%[1]s) AS mean, MIN(%[1]s) AS lo, MAX(%[1]s) AS hi", f)).
			Where("user_id = ?", userID.String()).
			Scan(&agg).Error
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", kind, err)
		}

		fs := FieldStats{Field: f, Count: int(agg.Cnt)}
		if agg.Mean != nil {
			fs.Avg = *agg.Mean
		}
		if agg.Lo != nil {
			fs.Min = *agg.Lo
		}
		if agg.Hi != nil {
			fs.Max = *agg.Hi
		}
		stats = append(stats, fs)
	}
	return stats, nil
}

// Advice operations

// CreateAdvice stores a new advice entry.
func (s *GormStore) CreateAdvice(ctx context.Context, a *models.Advice) error {
	row := adviceFromModel(a)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert advice: %w", err)
		}
		return nil
	})
}

// GetAdvice retrieves an advice entry by ID or ID prefix.
func (s *GormStore) GetAdvice(ctx context.Context, idOrPrefix string) (*models.Advice, error) {
	id, err := s.resolveID(ctx, "advice", idOrPrefix)
	if err != nil {
		return nil, err
	}
	var row adviceRow
	err = s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get advice: %w", err)
	}
	return row.toModel()
}

// ListAdvice returns entries newest first, narrowed by filter.
func (s *GormStore) ListAdvice(ctx context.Context, filter AdviceFilter) ([]*models.Advice, error) {
	q := s.db.WithContext(ctx).Model(&adviceRow{})
	if query := strings.TrimSpace(filter.Query); query != "" {
		pattern := containsPattern(strings.ToLower(query))
		q = q.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(body) LIKE ? ESCAPE '!'", pattern, pattern)
	}
	if t := strings.TrimSpace(filter.Topic); t != "" && !strings.EqualFold(t, AllTopics) {
		q = q.Where("topic = ?", t)
	}

	var rows []adviceRow
	if err := q.Order("recorded_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list advice: %w", err)
	}

	out := make([]*models.Advice, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// UpdateAdvice overwrites title, body, topic and image of an entry.
func (s *GormStore) UpdateAdvice(ctx context.Context, a *models.Advice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, "advice", a.ID.String())
		if err != nil {
			return fmt.Errorf("update advice: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s: %w", a.ID, ErrNotFound)
		}
		err = tx.Model(&adviceRow{}).Where("id = ?", a.ID.String()).Updates(map[string]interface{}{
			"title":     a.Title,
			"body":      a.Body,
			"topic":     a.Topic,
			"image_url": a.ImageURL,
		}).Error
		if err != nil {
			return fmt.Errorf("update advice: %w", err)
		}
		return nil
	})
}

// DeleteAdvice removes an advice entry.
func (s *GormStore) DeleteAdvice(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id.String()).Delete(&adviceRow{})
		if result.Error != nil {
			return fmt.Errorf("delete advice: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// ListTopics returns the distinct topics in use, sorted.
func (s *GormStore) ListTopics(ctx context.Context) ([]string, error) {
	var topics []string
	err := s.db.WithContext(ctx).Model(&adviceRow{}).
		Distinct("topic").
		Order("topic").
		Pluck("topic", &topics).Error
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

func adviceFromModel(a *models.Advice) adviceRow {
	row := adviceRow{
		ID:         a.ID.String(),
		Title:      a.Title,
		Body:       a.Body,
		Topic:      a.Topic,
		RecordedAt: formatTime(a.Timestamp),
		ImageURL:   a.ImageURL,
	}
	if a.AuthorID != nil {
		author := a.AuthorID.String()
		row.AuthorID = &author
	}
	return row
}

func (r *adviceRow) toModel() (*models.Advice, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid advice ID in database: %w", err)
	}
	ts, err := parseTime(r.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid recorded_at timestamp: %w", err)
	}
	a := &models.Advice{
		ID:        id,
		Title:     r.Title,
		Body:      r.Body,
		Topic:     r.Topic,
		Timestamp: ts,
		ImageURL:  r.ImageURL,
	}
	if r.AuthorID != nil {
		author, err := uuid.Parse(*r.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("invalid author ID in database: %w", err)
		}
		a.AuthorID = &author
	}
	return a, nil
}
