// ABOUTME: Backup snapshots of one user's export stored under timestamped keys.
// ABOUTME: Keys look like backup:<user-id>:<UTC timestamp> so they sort by time.
package charm

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BackupPrefix starts every backup key.
const BackupPrefix = "backup:"

const stampLayout = "20060102T150405.000000000Z"

// Backup describes one stored snapshot.
type Backup struct {
	Key       string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// BackupKey builds the key for a snapshot of userID taken at t.
func BackupKey(userID uuid.UUID, t time.Time) string {
	return BackupPrefix + userID.String() + ":" + t.UTC().Format(stampLayout)
}

// ParseBackupKey splits a key produced by BackupKey.
func ParseBackupKey(key string) (Backup, error) {
	rest, ok := strings.CutPrefix(key, BackupPrefix)
	if !ok {
		return Backup{}, fmt.Errorf("not a backup key: %q", key)
	}
	id, stamp, ok := strings.Cut(rest, ":")
	if !ok {
		return Backup{}, fmt.Errorf("malformed backup key: %q", key)
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		return Backup{}, fmt.Errorf("malformed backup key %q: %w", key, err)
	}
	at, err := time.Parse(stampLayout, stamp)
	if err != nil {
		return Backup{}, fmt.Errorf("malformed backup key %q: %w", key, err)
	}
	return Backup{Key: key, UserID: userID, CreatedAt: at}, nil
}

// Push stores data as a new snapshot of userID taken at t.
func (c *Client) Push(userID uuid.UUID, data []byte, t time.Time) (Backup, error) {
	key := BackupKey(userID, t)
	if err := c.set(key, data); err != nil {
		return Backup{}, fmt.Errorf("push backup: %w", err)
	}
	return ParseBackupKey(key)
}

// List returns userID's snapshots newest first.
func (c *Client) List(userID uuid.UUID) ([]Backup, error) {
	keys, err := c.keysWithPrefix(BackupPrefix + userID.String() + ":")
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	backups := make([]Backup, 0, len(keys))
	for _, key := range keys {
		b, err := ParseBackupKey(key)
		if err != nil {
			continue // Skip foreign entries
		}
		backups = append(backups, b)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Latest returns the newest snapshot of userID.
func (c *Client) Latest(userID uuid.UUID) (Backup, []byte, error) {
	backups, err := c.List(userID)
	if err != nil {
		return Backup{}, nil, err
	}
	if len(backups) == 0 {
		return Backup{}, nil, ErrNotFound
	}
	data, err := c.get(backups[0].Key)
	if err != nil {
		return Backup{}, nil, fmt.Errorf("get backup: %w", err)
	}
	return backups[0], data, nil
}

// Get returns the snapshot of userID whose timestamp starts with stamp.
func (c *Client) Get(userID uuid.UUID, stamp string) (Backup, []byte, error) {
	key, err := c.resolveKey(BackupPrefix + userID.String() + ":" + stamp)
	if err != nil {
		return Backup{}, nil, err
	}
	b, err := ParseBackupKey(key)
	if err != nil {
		return Backup{}, nil, err
	}
	data, err := c.get(key)
	if err != nil {
		return Backup{}, nil, fmt.Errorf("get backup: %w", err)
	}
	return b, data, nil
}

// Delete removes the snapshot of userID whose timestamp starts with stamp.
func (c *Client) Delete(userID uuid.UUID, stamp string) error {
	key, err := c.resolveKey(BackupPrefix + userID.String() + ":" + stamp)
	if err != nil {
		return err
	}
	if err := c.delete(key); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}

// Stamp returns the timestamp portion used to address b.
func (b Backup) Stamp() string {
	return b.CreatedAt.UTC().Format(stampLayout)
}
