// ABOUTME: Startup controller choosing between first-run setup and reloading saved notes
// ABOUTME: Produces a Ready session or a Failed state carrying a user-facing notice

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/2389/memoui/internal/document"
	"github.com/2389/memoui/internal/session"
	"github.com/2389/memoui/internal/store"
)

// State is the controller lifecycle state.
type State int

const (
	StateStarting State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Path records which startup branch ran.
type Path int

const (
	PathNone Path = iota
	PathOOBE
	PathReload
)

// Options configures a Controller.
type Options struct {
	// Tabs are the configured tab names, in display order.
	Tabs []string
	// RequireSelection makes an unset active slide fall back to the first tab.
	RequireSelection bool
	// NewID mints document and slide ids. Defaults to random UUIDs.
	NewID func() string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Controller runs startup once and owns the resulting state.
type Controller struct {
	store  store.Store
	opts   Options
	logger *slog.Logger

	state     State
	path      Path
	notice    string
	err       error
	migration MigrationResult
	session   *session.Session
}

// New creates a Controller over an opened store.
func New(st store.Store, opts Options) *Controller {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:  st,
		opts:   opts,
		logger: logger.With("component", "bootstrap"),
		state:  StateStarting,
	}
}

// Start loads settings and either creates the first document or reloads
// and migrates the active one. On success the returned session is Ready.
// On failure the controller is in StateFailed, Notice explains what the
// user lost, and the store is left untouched.
func (c *Controller) Start(ctx context.Context) (*session.Session, error) {
	if c.state != StateStarting {
		return nil, fmt.Errorf("bootstrap already ran (state %s)", c.state)
	}

	settings, err := c.store.LoadSettings(ctx)
	if err != nil {
		return nil, c.fail(fmt.Errorf("loading settings: %w", err))
	}

	var doc *document.Document
	if !settings.HasActiveDocument() {
		c.path = PathOOBE
		doc, err = c.runOOBE(ctx, settings)
	} else {
		c.path = PathReload
		doc, err = c.runReload(ctx, *settings.ActiveDocumentID)
	}
	if err != nil {
		return nil, c.fail(err)
	}

	c.session = session.New(doc, c.opts.RequireSelection)
	c.session.SetReady(true)
	c.state = StateReady

	c.logger.Info("notes ready",
		"path", c.pathName(),
		"document_id", doc.ID(),
		"slides", doc.Len(),
	)
	return c.session, nil
}

// runOOBE builds the first document and saves it with the settings that
// point at it in one transaction.
func (c *Controller) runOOBE(ctx context.Context, settings *document.Settings) (*document.Document, error) {
	if settings == nil {
		settings = document.NewSettings()
	}

	doc, err := document.New(c.opts.NewID(), c.opts.Tabs, c.opts.NewID)
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	settings.SetActiveDocument(doc.ID())

	if err := c.store.SaveBootstrap(ctx, settings, doc); err != nil {
		return nil, fmt.Errorf("saving first-run records: %w", err)
	}

	c.logger.Info("created first document", "document_id", doc.ID(), "tabs", len(c.opts.Tabs))
	return doc, nil
}

// runReload loads the active document and reconciles it with the
// configured tabs. A missing or damaged document is never replaced.
func (c *Controller) runReload(ctx context.Context, id string) (*document.Document, error) {
	doc, err := c.store.LoadDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", id, err)
	}

	result, err := Migrate(doc, c.opts.Tabs, c.opts.NewID)
	if err != nil {
		return nil, fmt.Errorf("%w: migrating document %s: %w", store.ErrValidationFailed, id, err)
	}
	c.migration = result

	if result.Changed() {
		c.logger.Info("migrated document to configured tabs",
			"document_id", id,
			"added", len(result.Added),
			"removed", len(result.Removed),
		)
	}
	return doc, nil
}

func (c *Controller) fail(err error) error {
	c.state = StateFailed
	c.err = err
	c.notice = noticeFor(err)
	c.logger.Error("startup failed", "error", err)
	return err
}

// noticeFor turns a startup error into the message shown to the user.
func noticeFor(err error) string {
	switch {
	case errors.Is(err, store.ErrVersionConflict):
		return "Your notes are open in another session. Close it and try again."
	case errors.Is(err, store.ErrNotFound):
		return "Your saved notes could not be found. They cannot be recovered."
	case errors.Is(err, store.ErrValidationFailed):
		return "Your saved notes are damaged and cannot be recovered."
	case errors.Is(err, store.ErrWriteFailed):
		return "Your notes could not be created. Try again later."
	default:
		return "Your notes could not be opened."
	}
}

// State returns the controller state.
func (c *Controller) State() State { return c.state }

// Path returns which startup branch ran.
func (c *Controller) Path() Path { return c.path }

// Notice returns the user-facing failure message, or "" when not failed.
func (c *Controller) Notice() string { return c.notice }

// Err returns the startup error, if any.
func (c *Controller) Err() error { return c.err }

// Migration returns what the reload migration changed.
func (c *Controller) Migration() MigrationResult { return c.migration }

// Session returns the ready session, or nil before Ready.
func (c *Controller) Session() *session.Session { return c.session }

func (c *Controller) pathName() string {
	switch c.path {
	case PathOOBE:
		return "oobe"
	case PathReload:
		return "reload"
	default:
		return "none"
	}
}
