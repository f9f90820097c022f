// Package storage keeps browser-style key/value data in SQLite: a per-tab
// session scope and a durable local scope shared by every tab.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Scope is a string key/value area, modelled on the web storage API.
// Each call is atomic on its own; nothing is transactional across keys.
type Scope interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

// Repository provides data access methods
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, now: time.Now}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS session_items (
			tab_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (tab_id, key)
		)`,
		`CREATE TABLE IF NOT EXISTS local_items (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_items_updated ON session_items(updated_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// Session returns the session scope of one tab
func (r *Repository) Session(tabID string) *SessionScope {
	return &SessionScope{repo: r, tabID: tabID}
}

// Local returns the durable scope shared by all tabs
func (r *Repository) Local() *LocalScope {
	return &LocalScope{repo: r}
}

// ListTabs returns every tab ID that has at least one session item
func (r *Repository) ListTabs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT tab_id FROM session_items ORDER BY tab_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tabs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tabs = append(tabs, id)
	}
	return tabs, rows.Err()
}

// PurgeSessions deletes the session data of tabs not written to within maxAge.
// It returns the number of removed items.
func (r *Repository) PurgeSessions(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.now().Add(-maxAge).UnixNano()
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM session_items WHERE tab_id IN (
			SELECT tab_id FROM session_items GROUP BY tab_id HAVING MAX(updated_at) < ?
		)`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ==================== Session Scope ====================

// SessionScope holds the items of a single tab
type SessionScope struct {
	repo  *Repository
	tabID string
}

// TabID returns the tab this scope belongs to
func (s *SessionScope) TabID() string {
	return s.tabID
}

// GetItem returns the value stored under key, and whether it exists
func (s *SessionScope) GetItem(ctx context.Context, key string) (string, bool, error) {
	if s.tabID == "" || key == "" {
		return "", false, ErrInvalidKey
	}
	var value string
	err := s.repo.db.QueryRowContext(ctx,
		`SELECT value FROM session_items WHERE tab_id = ? AND key = ?`, s.tabID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem stores value under key
func (s *SessionScope) SetItem(ctx context.Context, key, value string) error {
	if s.tabID == "" || key == "" {
		return ErrInvalidKey
	}
	_, err := s.repo.db.ExecContext(ctx, `
		INSERT INTO session_items (tab_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(tab_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.tabID, key, value, s.repo.now().UnixNano())
	return err
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *SessionScope) RemoveItem(ctx context.Context, key string) error {
	if s.tabID == "" || key == "" {
		return ErrInvalidKey
	}
	_, err := s.repo.db.ExecContext(ctx,
		`DELETE FROM session_items WHERE tab_id = ? AND key = ?`, s.tabID, key)
	return err
}

// Clear deletes every item of the tab
func (s *SessionScope) Clear(ctx context.Context) error {
	if s.tabID == "" {
		return ErrInvalidKey
	}
	_, err := s.repo.db.ExecContext(ctx, `DELETE FROM session_items WHERE tab_id = ?`, s.tabID)
	return err
}

// Keys lists the keys stored for the tab
func (s *SessionScope) Keys(ctx context.Context) ([]string, error) {
	if s.tabID == "" {
		return nil, ErrInvalidKey
	}
	rows, err := s.repo.db.QueryContext(ctx,
		`SELECT key FROM session_items WHERE tab_id = ? ORDER BY key`, s.tabID)
	if err != nil {
		return nil, err
	}
	return scanKeys(rows)
}

// ==================== Local Scope ====================

// LocalScope holds items that outlive every tab
type LocalScope struct {
	repo *Repository
}

// GetItem returns the value stored under key, and whether it exists
func (l *LocalScope) GetItem(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	var value string
	err := l.repo.db.QueryRowContext(ctx, `SELECT value FROM local_items WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem stores value under key
func (l *LocalScope) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := l.repo.db.ExecContext(ctx, `
		INSERT INTO local_items (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// RemoveItem deletes key
func (l *LocalScope) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := l.repo.db.ExecContext(ctx, `DELETE FROM local_items WHERE key = ?`, key)
	return err
}

// Clear deletes every local item
func (l *LocalScope) Clear(ctx context.Context) error {
	_, err := l.repo.db.ExecContext(ctx, `DELETE FROM local_items`)
	return err
}

// Keys lists the stored keys
func (l *LocalScope) Keys(ctx context.Context) ([]string, error) {
	rows, err := l.repo.db.QueryContext(ctx, `SELECT key FROM local_items ORDER BY key`)
	if err != nil {
		return nil, err
	}
	return scanKeys(rows)
}

func scanKeys(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Ensure both scopes implement Scope
var (
	_ Scope = (*SessionScope)(nil)
	_ Scope = (*LocalScope)(nil)
)
