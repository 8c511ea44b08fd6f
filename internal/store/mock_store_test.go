// ABOUTME: Tests for MockStore
// ABOUTME: Ensures the mock honors the Store contract used by higher layers

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/memoui/internal/document"
)

func TestMockStore_BootstrapAndLoad(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()

	settings, err := m.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	doc := newTestDocument(t, "doc-m", "Home", "Work")
	require.NoError(t, m.SaveBootstrap(ctx, settingsFor("doc-m"), doc))

	settings, err = m.LoadSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "doc-m", *settings.ActiveDocumentID)

	got, err := m.LoadDocument(ctx, "doc-m")
	require.NoError(t, err)
	assert.Equal(t, doc.SlideIDs(), got.SlideIDs())
	assert.Equal(t, 1, m.BootstrapCalls())
}

func TestMockStore_DoesNotShareMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()

	doc := newTestDocument(t, "doc-m", "Home")
	require.NoError(t, m.SaveDocument(ctx, doc))
	require.NoError(t, doc.SetSlideText(0, "changed after save"))

	got, err := m.LoadDocument(ctx, "doc-m")
	require.NoError(t, err)
	slide, err := got.Slide(0)
	require.NoError(t, err)
	assert.Nil(t, slide.Text)
}

func TestMockStore_FailSaves(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()
	m.FailSaves = 2

	doc := newTestDocument(t, "doc-f", "Home")
	assert.ErrorIs(t, m.SaveDocument(ctx, doc), ErrWriteFailed)
	assert.ErrorIs(t, m.SaveDocument(ctx, doc), ErrWriteFailed)
	assert.NoError(t, m.SaveDocument(ctx, doc))
	assert.Equal(t, 3, m.SaveCalls())
}

func TestMockStore_NotFoundAndCorrupt(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()

	_, err := m.LoadDocument(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	m.PutRawDocument("bad", []byte(`{"id":"bad","schemaVersion":1,"slideOrder":["a"],"slides":{}}`))
	_, err = m.LoadDocument(ctx, "bad")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestMockStore_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	err := m.SaveDocument(ctx, newTestDocument(t, "doc", "Home"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMockStore_RejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()

	var doc document.Document
	body := `{"id":"bad","schemaVersion":1,"activeSlideIndex":0,"slideOrder":["a"],"slides":{}}`
	require.NoError(t, doc.UnmarshalJSON([]byte(body)))

	assert.ErrorIs(t, m.SaveDocument(ctx, &doc), ErrWriteFailed)
	assert.ErrorIs(t, m.SaveBootstrap(ctx, settingsFor("bad"), &doc), ErrWriteFailed)
	assert.Equal(t, 0, m.DocumentCount())
}
