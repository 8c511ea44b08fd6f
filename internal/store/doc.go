// Package store provides persistent storage for memoui using SQLite.
//
// # Architecture
//
// The Store interface covers the two record collections:
//
//   - settings_store: the Settings singleton, keyed by "settings"
//   - text_store: Documents, keyed by document id
//
// Each row holds the record's JSON body. SQLiteStore implements Store on a
// single shared connection; MockStore is an in-memory stand-in for tests.
//
// # Atomicity
//
// SaveDocument replaces one row. SaveBootstrap writes the first document and
// the settings that point at it in one transaction, so a reader never sees
// settings naming a document that was not committed.
//
// # Layout Versions
//
// The physical table layout version lives in PRAGMA user_version. Open runs
// any pending layout migrations in one transaction and refuses a database
// whose version is newer than LayoutVersion. This is separate from the
// schemaVersion stamped on each Document.
//
// # SQLite Configuration
//
//	PRAGMA busy_timeout = 5000;
//	PRAGMA journal_mode = WAL;
//	PRAGMA synchronous = FULL;
//
// # Error Handling
//
// Every operation returns a *Error carrying a Kind:
//
//   - KindOpenFailed: database unavailable or corrupt, or store closed on read
//   - KindVersionConflict: newer layout, or another session holds the lock
//   - KindNotFound: LoadDocument on a missing id
//   - KindWriteFailed: SaveDocument / SaveBootstrap did not complete
//   - KindValidationFailed: a stored record does not decode or validate
//
// Match with errors.Is(err, store.ErrNotFound) or KindOf(err). The store
// never retries; callers own the retry policy.
//
// # Testing
//
// Use NewMockStore() for unit tests and Open(ctx, ":memory:") or a file in
// t.TempDir() for integration tests with real SQLite.
package store
