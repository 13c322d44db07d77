// ABOUTME: Charm KV client wrapper for off-device vitals backups.
// ABOUTME: Provides thread-safe access and automatic cloud sync after writes.
package charm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

const (
	// DefaultDBName is the Charm KV database holding vitals backups.
	DefaultDBName = "vitals"
	// DefaultHost is the Charm server used when none is configured.
	DefaultHost = "charm.2389.dev"
)

var (
	// ErrNotFound is returned when no backup matches.
	ErrNotFound = errors.New("backup not found")
	// ErrAmbiguous is returned when a prefix matches several backups.
	ErrAmbiguous = errors.New("ambiguous backup prefix")
	// ErrReadOnly is returned for writes while another process holds the lock.
	ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")
)

// store is the subset of *kv.KV the client uses.
type store interface {
	Set(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	IsReadOnly() bool
	Close() error
}

// Options configures Open.
type Options struct {
	// Host overrides DefaultHost.
	Host string
	// DBName overrides DefaultDBName.
	DBName string
	// Dir stores the local replica in a specific directory instead of the
	// Charm data path.
	Dir string
	// AutoSync pushes to Charm Cloud after every write.
	AutoSync bool
}

// Client stores backups in Charm KV.
type Client struct {
	kv       store
	autoSync bool
	mu       sync.RWMutex
}

// Open connects to Charm KV and pulls remote state.
func Open(opts Options) (*Client, error) {
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	name := opts.DBName
	if name == "" {
		name = DefaultDBName
	}

	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, err
	}

	db, err := openKV(name, opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	c := newClient(db, opts.AutoSync)

	// Pull remote data on startup (skip in read-only mode)
	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return c, nil
}

func openKV(name, dir string) (*kv.KV, error) {
	if dir == "" {
		return kv.OpenWithDefaultsFallback(name)
	}

	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return nil, fmt.Errorf("create charm client: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	return kv.Open(cc, name, opts)
}

func newClient(db store, autoSync bool) *Client {
	return &Client{kv: db, autoSync: autoSync}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// syncIfEnabled calls Sync if autoSync is enabled.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// set stores a value with the given key.
func (c *Client) set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// delete removes a key.
func (c *Client) delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Delete([]byte(key)); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// get returns the value stored under key.
func (c *Client) get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Get([]byte(key))
}

// keysWithPrefix returns every key starting with prefix, sorted.
func (c *Client) keysWithPrefix(prefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	p := []byte(prefix)
	var matches []string
	for _, key := range keys {
		if bytes.HasPrefix(key, p) {
			matches = append(matches, string(key))
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// resolveKey finds the single key starting with prefix.
func (c *Client) resolveKey(prefix string) (string, error) {
	matches, err := c.keysWithPrefix(prefix)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
	}
}
