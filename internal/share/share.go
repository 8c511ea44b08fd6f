// ABOUTME: Share/export of the active note as plain text or rendered HTML
// ABOUTME: Markdown rendering is done with goldmark

package share

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/2389/memoui/internal/session"
)

// ErrNothingToShare is returned when the focused note has no text.
var ErrNothingToShare = errors.New("nothing to share")

// Note is a single shareable note.
type Note struct {
	Title string
	Text  string
}

// Slide returns the focused tab's note. A session with no focused tab or a
// blank note yields ErrNothingToShare.
func Slide(s *session.Session) (Note, error) {
	idx := s.ActiveSlide()
	slides := s.Slides()
	if idx < 0 || idx >= len(slides) {
		return Note{}, ErrNothingToShare
	}

	view := slides[idx]
	if strings.TrimSpace(view.Text) == "" {
		return Note{}, ErrNothingToShare
	}
	return Note{Title: view.Title, Text: view.Text}, nil
}

// PlainText formats a note the way it is handed to other apps.
func PlainText(n Note) string {
	if n.Title == "" {
		return n.Text + "\n"
	}
	return fmt.Sprintf("%s\n\n%s\n", n.Title, n.Text)
}

// RenderHTML renders the note body as markdown under an escaped heading.
func RenderHTML(n Note) (string, error) {
	var buf bytes.Buffer
	if n.Title != "" {
		fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(n.Title))
	}
	if err := goldmark.Convert([]byte(n.Text), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
