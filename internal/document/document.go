// ABOUTME: Versioned value types persisted by the note store: Settings and Document
// ABOUTME: Document owns an ordered set of named slides and enforces its shape invariants

package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// SchemaVersion is stamped on every newly created Document.
// Bump it when the persisted document shape changes.
const SchemaVersion = 1

// NoSelection is the activeSlideIndex value meaning no slide is focused.
const NoSelection = -1

// ErrInvalid is returned when a Document fails its structural checks.
var ErrInvalid = errors.New("invalid document")

// ErrSlideIndex is returned when a slide index is outside the slide order.
var ErrSlideIndex = errors.New("slide index out of range")

// Slide is a single named content slot. Both fields are nullable and
// a nil value round-trips as JSON null.
type Slide struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

// TitleString returns the slide title or "" when unset.
func (s Slide) TitleString() string {
	if s.Title == nil {
		return ""
	}
	return *s.Title
}

// TextString returns the slide text or "" when unset.
func (s Slide) TextString() string {
	if s.Text == nil {
		return ""
	}
	return *s.Text
}

func (s Slide) clone() Slide {
	return Slide{Title: cloneString(s.Title), Text: cloneString(s.Text)}
}

// Document is the persisted unit of user content: ordered, named slides.
//
// The zero value is not usable; construct with New or decode from JSON.
// Document is not safe for concurrent use; callers serialize access.
// Optional fields absent from a decoded record are nil and are re-encoded
// as explicit nulls.
type Document struct {
	id               string
	title            *string
	description      *string
	activeSlideIndex int
	schemaVersion    int
	slideOrder       []string
	slides           map[string]Slide
}

// record is the persisted JSON shape of a Document.
type record struct {
	ID               string           `json:"id"`
	Title            *string          `json:"title"`
	Description      *string          `json:"description"`
	ActiveSlideIndex int              `json:"activeSlideIndex"`
	SchemaVersion    int              `json:"schemaVersion"`
	SlideOrder       []string         `json:"slideOrder"`
	Slides           map[string]Slide `json:"slides"`
}

// New creates a Document with one slide per tab name, in order. Slide
// titles are the tab names and slide text starts out null. newID is
// called once per slide to mint its identifier.
func New(id string, tabs []string, newID func() string) (*Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalid)
	}

	d := &Document{
		id:               id,
		activeSlideIndex: 0,
		schemaVersion:    SchemaVersion,
		slideOrder:       make([]string, 0, len(tabs)),
		slides:           make(map[string]Slide, len(tabs)),
	}
	for _, tab := range tabs {
		if err := d.AppendSlide(newID(), tab); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ID returns the immutable document identifier.
func (d *Document) ID() string { return d.id }

// Title returns a copy of the optional document title.
func (d *Document) Title() *string { return cloneString(d.title) }

// Description returns a copy of the optional document description.
func (d *Document) Description() *string { return cloneString(d.description) }

// SchemaVersion returns the schema version the document was created with.
func (d *Document) SchemaVersion() int { return d.schemaVersion }

// ActiveSlideIndex returns the last-viewed slide position.
func (d *Document) ActiveSlideIndex() int { return d.activeSlideIndex }

// Len returns the number of slides.
func (d *Document) Len() int { return len(d.slideOrder) }

// SlideIDs returns a copy of the slide order.
func (d *Document) SlideIDs() []string { return slices.Clone(d.slideOrder) }

// SetMetadata replaces the optional title and description.
func (d *Document) SetMetadata(title, description *string) {
	d.title = validUTF8Ptr(title)
	d.description = validUTF8Ptr(description)
}

// SetActiveSlideIndex records the focused slide. NoSelection is accepted.
func (d *Document) SetActiveSlideIndex(index int) error {
	if index != NoSelection && (index < 0 || index >= len(d.slideOrder)) {
		return fmt.Errorf("%w: %d (have %d slides)", ErrSlideIndex, index, len(d.slideOrder))
	}
	d.activeSlideIndex = index
	return nil
}

// Slide returns a copy of the slide at the given position.
func (d *Document) Slide(index int) (Slide, error) {
	if index < 0 || index >= len(d.slideOrder) {
		return Slide{}, fmt.Errorf("%w: %d (have %d slides)", ErrSlideIndex, index, len(d.slideOrder))
	}
	return d.slides[d.slideOrder[index]].clone(), nil
}

// Slides returns copies of all slides in display order.
func (d *Document) Slides() []Slide {
	out := make([]Slide, 0, len(d.slideOrder))
	for _, id := range d.slideOrder {
		out = append(out, d.slides[id].clone())
	}
	return out
}

// SetSlideText replaces the text of the slide at the given position.
// Invalid UTF-8 is replaced with U+FFFD, as it would be when persisted.
func (d *Document) SetSlideText(index int, text string) error {
	if index < 0 || index >= len(d.slideOrder) {
		return fmt.Errorf("%w: %d (have %d slides)", ErrSlideIndex, index, len(d.slideOrder))
	}
	id := d.slideOrder[index]
	slide := d.slides[id]
	text = validUTF8(text)
	slide.Text = &text
	d.slides[id] = slide
	return nil
}

// AppendSlide adds a slide with the given title and null text at the end
// of the slide order.
func (d *Document) AppendSlide(id, title string) error {
	if id == "" {
		return fmt.Errorf("%w: empty slide id", ErrInvalid)
	}
	if _, exists := d.slides[id]; exists {
		return fmt.Errorf("%w: duplicate slide id %q", ErrInvalid, id)
	}
	d.slideOrder = append(d.slideOrder, id)
	title = validUTF8(title)
	d.slides[id] = Slide{Title: &title}
	return nil
}

// TruncateSlides removes slides from the end of the order until n remain,
// deleting their records. A focused slide that was removed moves focus to
// the last remaining slide, or NoSelection when none remain. It returns the
// removed slide ids in removal order.
func (d *Document) TruncateSlides(n int) []string {
	if n < 0 {
		n = 0
	}
	var removed []string
	for len(d.slideOrder) > n {
		last := d.slideOrder[len(d.slideOrder)-1]
		d.slideOrder = d.slideOrder[:len(d.slideOrder)-1]
		delete(d.slides, last)
		removed = append(removed, last)
	}
	if d.activeSlideIndex >= len(d.slideOrder) {
		d.activeSlideIndex = len(d.slideOrder) - 1
	}
	return removed
}

// Clone returns a deep, independent copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		id:               d.id,
		title:            cloneString(d.title),
		description:      cloneString(d.description),
		activeSlideIndex: d.activeSlideIndex,
		schemaVersion:    d.schemaVersion,
		slideOrder:       slices.Clone(d.slideOrder),
		slides:           make(map[string]Slide, len(d.slides)),
	}
	for id, s := range d.slides {
		c.slides[id] = s.clone()
	}
	return c
}

// Validate checks the structural invariants of a loaded document.
func (d *Document) Validate() error {
	if d.id == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if d.schemaVersion < 1 || d.schemaVersion > SchemaVersion {
		return fmt.Errorf("%w: unsupported schema version %d", ErrInvalid, d.schemaVersion)
	}
	if d.slides == nil {
		return fmt.Errorf("%w: missing slides", ErrInvalid)
	}

	seen := make(map[string]struct{}, len(d.slideOrder))
	for i, id := range d.slideOrder {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: slide %q appears twice in order", ErrInvalid, id)
		}
		seen[id] = struct{}{}
		if _, ok := d.slides[id]; !ok {
			return fmt.Errorf("%w: order entry %d (%q) has no slide", ErrInvalid, i, id)
		}
	}
	if len(d.slides) != len(d.slideOrder) {
		return fmt.Errorf("%w: %d slides but %d order entries", ErrInvalid, len(d.slides), len(d.slideOrder))
	}

	// An empty document may keep the initial index 0.
	limit := max(len(d.slideOrder), 1)
	if d.activeSlideIndex < NoSelection || d.activeSlideIndex >= limit {
		return fmt.Errorf("%w: active slide index %d out of range", ErrInvalid, d.activeSlideIndex)
	}
	return nil
}

// MarshalJSON encodes the persisted document shape.
func (d *Document) MarshalJSON() ([]byte, error) {
	r := record{
		ID:               d.id,
		Title:            d.title,
		Description:      d.description,
		ActiveSlideIndex: d.activeSlideIndex,
		SchemaVersion:    d.schemaVersion,
		SlideOrder:       d.slideOrder,
		Slides:           d.slides,
	}
	if r.SlideOrder == nil {
		r.SlideOrder = []string{}
	}
	if r.Slides == nil {
		r.Slides = map[string]Slide{}
	}
	return json.Marshal(r)
}

// UnmarshalJSON decodes the persisted document shape. It does not validate;
// call Validate on the result.
func (d *Document) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*d = Document{
		id:               r.ID,
		title:            r.Title,
		description:      r.Description,
		activeSlideIndex: r.ActiveSlideIndex,
		schemaVersion:    r.SchemaVersion,
		slideOrder:       r.SlideOrder,
		slides:           r.Slides,
	}
	return nil
}

// validUTF8 replaces invalid byte sequences the way encoding/json does, so
// the in-memory value matches what a reload returns.
func validUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError) // one per invalid byte
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func validUTF8Ptr(s *string) *string {
	if s == nil {
		return nil
	}
	v := validUTF8(*s)
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
