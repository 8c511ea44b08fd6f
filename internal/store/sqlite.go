// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Keeps settings and documents as JSON records in two tables with versioned layout

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/memoui/internal/document"
)

// Collection (table) names.
const (
	textStore     = "text_store"
	settingsStore = "settings_store"
)

// LayoutVersion is the physical table layout version kept in SQLite's
// user_version pragma. It is unrelated to document.SchemaVersion.
const LayoutVersion = 1

// DefaultBusyTimeout is how long Open and writes wait on a lock held by
// another session before SQLite reports SQLITE_BUSY.
const DefaultBusyTimeout = 5 * time.Second

// layoutMigration upgrades the table layout to version.
type layoutMigration struct {
	version    int
	statements []string
}

// layoutMigrations run in order for every version above the stored one.
var layoutMigrations = []layoutMigration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS text_store (
				id   TEXT PRIMARY KEY,
				body TEXT NOT NULL
			) WITHOUT ROWID`,
			`CREATE TABLE IF NOT EXISTS settings_store (
				id   TEXT PRIMARY KEY,
				body TEXT NOT NULL
			) WITHOUT ROWID`,
		},
	},
}

// SQLiteStore implements Store on a single shared SQLite connection.
type SQLiteStore struct {
	mu     sync.RWMutex // guards db and closed; held shared by operations
	db     *sql.DB
	closed bool
	logger *slog.Logger

	busyTimeout time.Duration

	// beforeCommit runs inside SaveBootstrap after both records are written
	// and before the transaction commits. A non-nil error aborts the commit.
	beforeCommit func() error
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// Open opens the database at path, creating it and its parent directory if
// needed, and brings the table layout up to LayoutVersion.
// Use ":memory:" for a throwaway in-memory database.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	return openWithTimeout(ctx, path, DefaultBusyTimeout)
}

func openWithTimeout(ctx context.Context, path string, busyTimeout time.Duration) (*SQLiteStore, error) {
	const op = "open"
	logger := slog.Default().With("component", "store")

	if path == "" {
		return nil, newError(op, KindOpenFailed, errors.New("database path is empty"))
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, newError(op, KindOpenFailed, fmt.Errorf("creating database directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, newError(op, KindOpenFailed, fmt.Errorf("opening database: %w", err))
	}

	// One connection: the store is single-writer and :memory: databases
	// are per-connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, newError(op, classifyOpen(err), fmt.Errorf("connecting: %w", err))
	}

	s := &SQLiteStore{
		db:          db,
		logger:      logger,
		busyTimeout: busyTimeout,
	}

	if err := s.applyPragmas(ctx); err != nil {
		db.Close()
		return nil, newError(op, classifyOpen(err), err)
	}

	if err := s.migrateLayout(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized", "path", path, "layout_version", LayoutVersion)
	return s, nil
}

// applyPragmas configures the connection. busy_timeout is set first so the
// journal mode switch already waits on a held lock.
func (s *SQLiteStore) applyPragmas(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = FULL;
	`, s.busyTimeout.Milliseconds()))
	if err != nil {
		return fmt.Errorf("applying pragmas: %w", err)
	}
	return nil
}

// migrateLayout runs pending layout migrations in one transaction. A stored
// version newer than LayoutVersion belongs to another build and is refused.
func (s *SQLiteStore) migrateLayout(ctx context.Context) error {
	const op = "open"

	stored, err := s.layoutVersion(ctx)
	if err != nil {
		return newError(op, classifyOpen(err), err)
	}
	if stored > LayoutVersion {
		return newError(op, KindVersionConflict,
			fmt.Errorf("database layout version %d is newer than supported version %d", stored, LayoutVersion))
	}
	if stored == LayoutVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(op, classifyOpen(err), fmt.Errorf("beginning layout migration: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range layoutMigrations {
		if m.version <= stored {
			continue
		}
		for i, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return newError(op, classifyOpen(err),
					fmt.Errorf("layout migration %d statement %d: %w", m.version, i+1, err))
			}
		}
		s.logger.Info("applied layout migration", "version", m.version)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", LayoutVersion)); err != nil {
		return newError(op, classifyOpen(err), fmt.Errorf("recording layout version: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return newError(op, classifyOpen(err), fmt.Errorf("committing layout migration: %w", err))
	}
	return nil
}

// layoutVersion reads PRAGMA user_version.
func (s *SQLiteStore) layoutVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading layout version: %w", err)
	}
	return version, nil
}

// Close closes the database connection. Later calls are no-ops, and every
// other operation fails with an error wrapping ErrClosed.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// LoadSettings returns the settings singleton, or nil if none exists yet.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (*document.Settings, error) {
	const op = "load settings"

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, newError(op, KindOpenFailed, ErrClosed)
	}

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM settings_store WHERE id = ?`, document.SettingsID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, newError(op, KindOpenFailed, fmt.Errorf("querying settings: %w", err))
	}

	var settings document.Settings
	if err := json.Unmarshal([]byte(body), &settings); err != nil {
		return nil, newError(op, KindValidationFailed, fmt.Errorf("decoding settings: %w", err))
	}
	if settings.ID != document.SettingsID {
		return nil, newError(op, KindValidationFailed, fmt.Errorf("settings record has id %q", settings.ID))
	}

	return &settings, nil
}

// LoadDocument loads and validates the document with the given id.
func (s *SQLiteStore) LoadDocument(ctx context.Context, id string) (*document.Document, error) {
	const op = "load document"

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, newError(op, KindOpenFailed, ErrClosed)
	}

	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM text_store WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(op, KindNotFound, fmt.Errorf("document %q", id))
	}
	if err != nil {
		return nil, newError(op, KindOpenFailed, fmt.Errorf("querying document %q: %w", id, err))
	}

	doc, err := decodeDocument(id, []byte(body))
	if err != nil {
		return nil, newError(op, KindValidationFailed, err)
	}
	return doc, nil
}

// decodeDocument decodes and validates a stored document body.
func decodeDocument(id string, body []byte) (*document.Document, error) {
	var doc document.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding document %q: %w", id, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("document %q: %w", id, err)
	}
	if doc.ID() != id {
		return nil, fmt.Errorf("document stored under %q has id %q", id, doc.ID())
	}
	return &doc, nil
}

// encodeDocument validates doc and encodes it for storage. A document that
// would fail validation on reload is never written.
func encodeDocument(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to save document %q: %w", doc.ID(), err)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return body, nil
}

// SaveDocument replaces the stored document record with doc.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *document.Document) error {
	const op = "save document"

	body, err := encodeDocument(doc)
	if err != nil {
		return newError(op, KindWriteFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return newError(op, KindWriteFailed, ErrClosed)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO text_store (id, body) VALUES (?, ?)`, doc.ID(), string(body))
	if err != nil {
		return newError(op, KindWriteFailed, fmt.Errorf("writing document %q: %w", doc.ID(), err))
	}

	s.logger.Debug("saved document", "document_id", doc.ID(), "size", len(body))
	return nil
}

// SaveBootstrap writes the first-run settings and document together.
// Either both records are committed or neither is.
func (s *SQLiteStore) SaveBootstrap(ctx context.Context, settings *document.Settings, doc *document.Document) error {
	const op = "save bootstrap"

	if settings == nil || doc == nil {
		return newError(op, KindWriteFailed, errors.New("settings and document are required"))
	}
	if !settings.HasActiveDocument() || *settings.ActiveDocumentID != doc.ID() {
		return newError(op, KindWriteFailed, fmt.Errorf("settings do not point at document %q", doc.ID()))
	}

	docBody, err := encodeDocument(doc)
	if err != nil {
		return newError(op, KindWriteFailed, err)
	}
	settingsBody, err := json.Marshal(settings)
	if err != nil {
		return newError(op, KindWriteFailed, fmt.Errorf("encoding settings: %w", err))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return newError(op, KindWriteFailed, ErrClosed)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(op, KindWriteFailed, fmt.Errorf("beginning transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO text_store (id, body) VALUES (?, ?)`, doc.ID(), string(docBody)); err != nil {
		return newError(op, KindWriteFailed, fmt.Errorf("writing document %q: %w", doc.ID(), err))
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings_store (id, body) VALUES (?, ?)`, settings.ID, string(settingsBody)); err != nil {
		return newError(op, KindWriteFailed, fmt.Errorf("writing settings: %w", err))
	}

	if s.beforeCommit != nil {
		if err := s.beforeCommit(); err != nil {
			return newError(op, KindWriteFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return newError(op, KindWriteFailed, fmt.Errorf("committing: %w", err))
	}

	s.logger.Info("saved bootstrap records", "document_id", doc.ID())
	return nil
}

// classifyOpen maps a low-level open error to a Kind. A database held
// locked by another session past the busy timeout is a version conflict.
func classifyOpen(err error) Kind {
	if isBusy(err) {
		return KindVersionConflict
	}
	return KindOpenFailed
}

// isBusy checks if err is SQLITE_BUSY or SQLITE_LOCKED.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "SQLITE_LOCKED")
}
