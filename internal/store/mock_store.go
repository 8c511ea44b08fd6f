// ABOUTME: Mock Store implementation for testing
// ABOUTME: Keeps encoded records in memory and can inject failures per operation

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/2389/memoui/internal/document"
)

// MockStore is an in-memory Store implementation for testing.
// Records are kept encoded so callers never share memory with the store.
type MockStore struct {
	mu        sync.Mutex
	settings  []byte            // encoded settings, nil if absent
	documents map[string][]byte // keyed by document ID
	closed    bool

	// LoadErr, when set, is returned by LoadSettings and LoadDocument.
	LoadErr error
	// SaveErr, when set, is returned by SaveDocument and SaveBootstrap.
	SaveErr error
	// FailSaves makes the next N SaveDocument calls fail with KindWriteFailed.
	FailSaves int

	saveCalls      int
	bootstrapCalls int
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		documents: make(map[string][]byte),
	}
}

// PutSettings seeds the settings record.
func (m *MockStore) PutSettings(settings *document.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings, _ = json.Marshal(settings)
}

// PutRawDocument seeds a document body verbatim, bypassing encoding.
func (m *MockStore) PutRawDocument(id string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[id] = append([]byte(nil), body...)
}

// DocumentCount returns the number of stored documents.
func (m *MockStore) DocumentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.documents)
}

// SaveCalls returns how many times SaveDocument was called.
func (m *MockStore) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

// BootstrapCalls returns how many times SaveBootstrap was called.
func (m *MockStore) BootstrapCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bootstrapCalls
}

// LoadSettings returns the seeded or saved settings, or nil if none.
func (m *MockStore) LoadSettings(ctx context.Context) (*document.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, newError("load settings", KindOpenFailed, ErrClosed)
	}
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.settings == nil {
		return nil, nil
	}

	var settings document.Settings
	if err := json.Unmarshal(m.settings, &settings); err != nil {
		return nil, newError("load settings", KindValidationFailed, err)
	}
	return &settings, nil
}

// LoadDocument retrieves a document by ID.
func (m *MockStore) LoadDocument(ctx context.Context, id string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, newError("load document", KindOpenFailed, ErrClosed)
	}
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}

	body, ok := m.documents[id]
	if !ok {
		return nil, newError("load document", KindNotFound, fmt.Errorf("document %q", id))
	}

	doc, err := decodeDocument(id, body)
	if err != nil {
		return nil, newError("load document", KindValidationFailed, err)
	}
	return doc, nil
}

// SaveDocument stores an encoded copy of doc.
func (m *MockStore) SaveDocument(ctx context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls++
	if m.closed {
		return newError("save document", KindWriteFailed, ErrClosed)
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.FailSaves > 0 {
		m.FailSaves--
		return newError("save document", KindWriteFailed, errors.New("injected failure"))
	}

	body, err := encodeDocument(doc)
	if err != nil {
		return newError("save document", KindWriteFailed, err)
	}
	m.documents[doc.ID()] = body
	return nil
}

// SaveBootstrap stores both records, or neither when SaveErr is set.
func (m *MockStore) SaveBootstrap(ctx context.Context, settings *document.Settings, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bootstrapCalls++
	if m.closed {
		return newError("save bootstrap", KindWriteFailed, ErrClosed)
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}

	settingsBody, err := json.Marshal(settings)
	if err != nil {
		return newError("save bootstrap", KindWriteFailed, err)
	}
	docBody, err := encodeDocument(doc)
	if err != nil {
		return newError("save bootstrap", KindWriteFailed, err)
	}

	m.settings = settingsBody
	m.documents[doc.ID()] = docBody
	return nil
}

// Close marks the store closed. It is idempotent.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
