// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One table per measurement kind, generated from the registry field lists.
package storage

import (
	"fmt"
	"strings"

	"github.com/harperreed/vitals/internal/models"
)

const baseSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	age INTEGER,
	sex TEXT,
	phone TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS advice (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	topic TEXT NOT NULL,
	recorded_at TEXT NOT NULL,
	image_url TEXT,
	author_id TEXT REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_advice_recorded ON advice(recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_advice_topic ON advice(topic);
`

// kindSchema renders the table for one measurement kind. Measurement rows
// reference users without ON DELETE CASCADE: removing a user with surviving
// rows fails instead of silently orphaning or deleting them.
func kindSchema(k models.Kind) string {
	var cols []string
	for _, def := range models.KindFields(k) {
		typ := "REAL"
		if def.Type == models.Integer {
			typ = "INTEGER"
		}
		cols = append(cols, fmt.Sprintf("\t%s %s NOT NULL", def.Field, typ))
	}

	table := k.Table()
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id TEXT PRIMARY KEY,
	recorded_at TEXT NOT NULL,
	user_id TEXT NOT NULL REFERENCES users(id),
%[2]s
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_user_recorded ON %[1]s(user_id, recorded_at DESC);
`, table, strings.Join(cols, ",\n"))
}

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	var b strings.Builder
	b.WriteString(baseSchema)
	for _, k := range models.AllKinds {
		b.WriteString(kindSchema(k))
	}

	_, err := d.db.Exec(b.String())
	return err
}
