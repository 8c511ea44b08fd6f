// ABOUTME: Store interface and typed error taxonomy for memoui persistence
// ABOUTME: Defines the two-collection document store contract used by bootstrap and autosave

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/memoui/internal/document"
)

// Kind classifies store failures so callers can pick a recovery policy.
type Kind int

const (
	// KindOpenFailed means the database is unavailable or corrupt.
	KindOpenFailed Kind = iota + 1
	// KindVersionConflict means another session or build holds an incompatible version.
	KindVersionConflict
	// KindNotFound means a referenced record is absent.
	KindNotFound
	// KindWriteFailed means a save did not complete.
	KindWriteFailed
	// KindValidationFailed means a loaded record fails its structural checks.
	KindValidationFailed
)

func (k Kind) String() string {
	switch k {
	case KindOpenFailed:
		return "open failed"
	case KindVersionConflict:
		return "version conflict"
	case KindNotFound:
		return "not found"
	case KindWriteFailed:
		return "write failed"
	case KindValidationFailed:
		return "validation failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinel errors, one per Kind. A *Error matches the sentinel of its Kind
// under errors.Is.
var (
	ErrOpenFailed       = errors.New("open failed")
	ErrVersionConflict  = errors.New("version conflict")
	ErrNotFound         = errors.New("not found")
	ErrWriteFailed      = errors.New("write failed")
	ErrValidationFailed = errors.New("validation failed")
)

// ErrClosed is wrapped by errors from operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Error is the typed error returned by every store operation.
type Error struct {
	Op   string // operation, e.g. "load document"
	Kind Kind
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindOpenFailed:
		return ErrOpenFailed
	case KindVersionConflict:
		return ErrVersionConflict
	case KindNotFound:
		return ErrNotFound
	case KindWriteFailed:
		return ErrWriteFailed
	case KindValidationFailed:
		return ErrValidationFailed
	default:
		return nil
	}
}

// KindOf returns the Kind of err, or 0 if err is not a store error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func newError(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Store persists the Settings singleton and Documents in two collections.
// Implementations never retry internally; callers own the retry policy.
type Store interface {
	// LoadSettings returns nil, nil when no settings record exists yet.
	LoadSettings(ctx context.Context) (*document.Settings, error)

	// LoadDocument returns a validated document or a KindNotFound /
	// KindValidationFailed error.
	LoadDocument(ctx context.Context, id string) (*document.Document, error)

	// SaveDocument replaces the document record with the same id.
	SaveDocument(ctx context.Context, doc *document.Document) error

	// SaveBootstrap writes settings and document in one transaction.
	SaveBootstrap(ctx context.Context, settings *document.Settings, doc *document.Document) error

	// Close releases the database connection. It is idempotent.
	Close() error
}

// DocumentSaver is the subset of Store used by the autosave loop.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, doc *document.Document) error
}
