// ABOUTME: Single-writer owner of the in-memory document and its dirty flag
// ABOUTME: UI adapters mutate notes only through TextEdited and ActiveSlideChanged

package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/2389/memoui/internal/document"
)

// ErrNotReady is returned by UI operations before the session is Ready.
var ErrNotReady = errors.New("session is not ready")

// SlideView is the read model handed to the UI for one tab.
type SlideView struct {
	Index int
	Title string
	Text  string
}

// Session owns the one live Document. Every mutation goes through its
// methods, which set the dirty flag the autosave loop watches.
type Session struct {
	mu      sync.Mutex
	doc     *document.Document
	focused int // last-focused tab; copied into the document on snapshot
	dirty   bool
	ready   bool
}

// New wraps doc, restoring the focused tab from its activeSlideIndex.
// With requireSelection, an unset or out-of-range index falls back to the
// first tab; otherwise it falls back to document.NoSelection.
func New(doc *document.Document, requireSelection bool) *Session {
	focused := doc.ActiveSlideIndex()
	if focused < 0 || focused >= doc.Len() {
		focused = document.NoSelection
		if requireSelection && doc.Len() > 0 {
			focused = 0
		}
	}
	return &Session{doc: doc, focused: focused}
}

// SetReady enables or disables UI input.
func (s *Session) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Ready reports whether UI input is enabled.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// TextEdited replaces the text of a slide and marks the session dirty.
func (s *Session) TextEdited(slideIndex int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotReady
	}
	if err := s.doc.SetSlideText(slideIndex, text); err != nil {
		return fmt.Errorf("editing slide: %w", err)
	}
	s.dirty = true
	return nil
}

// ActiveSlideChanged records the focused tab. Refocusing the current tab
// is not a change.
func (s *Session) ActiveSlideChanged(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotReady
	}
	if index == s.focused {
		return nil
	}
	if index != document.NoSelection && (index < 0 || index >= s.doc.Len()) {
		return fmt.Errorf("changing slide: %w: %d", document.ErrSlideIndex, index)
	}
	s.focused = index
	s.dirty = true
	return nil
}

// ActiveSlide returns the focused tab index.
func (s *Session) ActiveSlide() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Slides returns the current titles and text in tab order.
func (s *Session) Slides() []SlideView {
	s.mu.Lock()
	defer s.mu.Unlock()

	slides := s.doc.Slides()
	views := make([]SlideView, len(slides))
	for i, sl := range slides {
		views[i] = SlideView{Index: i, Title: sl.TitleString(), Text: sl.TextString()}
	}
	return views
}

// Document returns a deep copy of the live document with the focused tab
// recorded. It does not touch the dirty flag.
func (s *Session) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.doc.Clone()
	_ = c.SetActiveSlideIndex(s.focused)
	return c
}

// Snapshot takes a deep copy for persisting when the session is dirty and
// clears the flag before returning, so edits made while the copy is being
// written dirty the session again. It returns nil, false when clean.
func (s *Session) Snapshot() (*document.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil, false
	}
	// focused is only set through validated paths
	_ = s.doc.SetActiveSlideIndex(s.focused)
	snap := s.doc.Clone()
	s.dirty = false
	return snap, true
}

// MarkDirty forces the next autosave cycle to write.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
}

// Dirty reports whether unsaved changes exist.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
