// ABOUTME: Tests for note sharing
// ABOUTME: Covers the empty-note guard and markdown rendering

package share

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/memoui/internal/document"
	"github.com/2389/memoui/internal/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	n := 0
	doc, err := document.New("doc", []string{"Home", "Work"}, func() string {
		n++
		return fmt.Sprintf("s%d", n)
	})
	require.NoError(t, err)
	s := session.New(doc, true)
	s.SetReady(true)
	return s
}

func TestSlide_EmptyNote(t *testing.T) {
	s := newSession(t)

	_, err := Slide(s)
	assert.ErrorIs(t, err, ErrNothingToShare)

	require.NoError(t, s.TextEdited(0, "   \n"))
	_, err = Slide(s)
	assert.ErrorIs(t, err, ErrNothingToShare)
}

func TestSlide_FocusedTab(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.TextEdited(0, "home note"))
	require.NoError(t, s.TextEdited(1, "work note"))
	require.NoError(t, s.ActiveSlideChanged(1))

	note, err := Slide(s)
	require.NoError(t, err)
	assert.Equal(t, Note{Title: "Work", Text: "work note"}, note)
	assert.Equal(t, "Work\n\nwork note\n", PlainText(note))
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(Note{Title: "R&D <x>", Text: "# Plan\n\n- **ship** it\n"})
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>R&amp;D &lt;x&gt;</h1>")
	assert.Contains(t, out, "<h1>Plan</h1>")
	assert.Contains(t, out, "<li><strong>ship</strong> it</li>")
}

func TestRenderHTML_NoTitle(t *testing.T) {
	out, err := RenderHTML(Note{Text: "plain"})
	require.NoError(t, err)
	assert.Equal(t, "<p>plain</p>\n", out)
}

func TestRenderHTML_EscapesQuotesInTitle(t *testing.T) {
	out, err := RenderHTML(Note{Title: `Bob's "list"`, Text: "x"})
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Bob&#39;s &#34;list&#34;</h1>")
}
