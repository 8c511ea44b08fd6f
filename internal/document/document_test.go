// ABOUTME: Tests for Document construction, mutation, validation and JSON shape
// ABOUTME: Covers invariant enforcement and null round-tripping of optional fields

package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqIDs returns an id generator yielding prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func strPtr(s string) *string { return &s }

func TestNew_OneSlidePerTab(t *testing.T) {
	doc, err := New("doc-1", []string{"Home", "Work", "Misc"}, seqIDs("s"))
	require.NoError(t, err)

	assert.Equal(t, "doc-1", doc.ID())
	assert.Equal(t, SchemaVersion, doc.SchemaVersion())
	assert.Equal(t, 0, doc.ActiveSlideIndex())
	assert.Nil(t, doc.Title())
	assert.Nil(t, doc.Description())
	assert.Equal(t, []string{"s-1", "s-2", "s-3"}, doc.SlideIDs())

	for i, want := range []string{"Home", "Work", "Misc"} {
		slide, err := doc.Slide(i)
		require.NoError(t, err)
		assert.Equal(t, want, slide.TitleString())
		assert.Nil(t, slide.Text, "slide %d text should start null", i)
	}
	require.NoError(t, doc.Validate())
}

func TestNew_RequiresID(t *testing.T) {
	_, err := New("", []string{"Home"}, seqIDs("s"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNew_DuplicateSlideID(t *testing.T) {
	_, err := New("doc", []string{"A", "B"}, func() string { return "same" })
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSetSlideText(t *testing.T) {
	doc, err := New("doc", []string{"Home", "Work"}, seqIDs("s"))
	require.NoError(t, err)

	require.NoError(t, doc.SetSlideText(1, "buy milk"))
	slide, err := doc.Slide(1)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", slide.TextString())

	assert.ErrorIs(t, doc.SetSlideText(2, "x"), ErrSlideIndex)
	assert.ErrorIs(t, doc.SetSlideText(-1, "x"), ErrSlideIndex)
}

func TestSetActiveSlideIndex(t *testing.T) {
	doc, err := New("doc", []string{"Home", "Work"}, seqIDs("s"))
	require.NoError(t, err)

	require.NoError(t, doc.SetActiveSlideIndex(1))
	assert.Equal(t, 1, doc.ActiveSlideIndex())

	require.NoError(t, doc.SetActiveSlideIndex(NoSelection))
	assert.Equal(t, NoSelection, doc.ActiveSlideIndex())

	assert.ErrorIs(t, doc.SetActiveSlideIndex(2), ErrSlideIndex)
	assert.ErrorIs(t, doc.SetActiveSlideIndex(-2), ErrSlideIndex)
}

func TestTruncateSlides_RemovesFromTail(t *testing.T) {
	doc, err := New("doc", []string{"A", "B", "C", "D"}, seqIDs("s"))
	require.NoError(t, err)

	removed := doc.TruncateSlides(2)
	assert.Equal(t, []string{"s-4", "s-3"}, removed)
	assert.Equal(t, []string{"s-1", "s-2"}, doc.SlideIDs())
	require.NoError(t, doc.Validate())

	assert.Empty(t, doc.TruncateSlides(5))
}

func TestTruncateSlides_MovesFocusOffRemovedSlide(t *testing.T) {
	doc, err := New("doc", []string{"A", "B", "C"}, seqIDs("s"))
	require.NoError(t, err)
	require.NoError(t, doc.SetActiveSlideIndex(2))

	doc.TruncateSlides(1)
	assert.Equal(t, 0, doc.ActiveSlideIndex())
	require.NoError(t, doc.Validate())

	doc.TruncateSlides(0)
	assert.Equal(t, NoSelection, doc.ActiveSlideIndex())
	require.NoError(t, doc.Validate())
}

func TestTruncateSlides_KeepsFocusOnSurvivingSlide(t *testing.T) {
	doc, err := New("doc", []string{"A", "B", "C"}, seqIDs("s"))
	require.NoError(t, err)
	require.NoError(t, doc.SetActiveSlideIndex(1))

	doc.TruncateSlides(2)
	assert.Equal(t, 1, doc.ActiveSlideIndex())
}

func TestInvalidUTF8_MatchesPersistedForm(t *testing.T) {
	doc, err := New("doc", []string{"Ho\xffme"}, seqIDs("s"))
	require.NoError(t, err)
	require.NoError(t, doc.SetSlideText(0, "a\xff\xfeb"))
	doc.SetMetadata(strPtr("t\xc3"), nil)

	slide, err := doc.Slide(0)
	require.NoError(t, err)
	assert.Equal(t, "a\uFFFD\uFFFDb", slide.TextString())
	assert.Equal(t, "Ho\uFFFDme", slide.TitleString())

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var got Document
	require.NoError(t, json.Unmarshal(data, &got))

	if diff := cmp.Diff(doc, &got, cmp.AllowUnexported(Document{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	doc, err := New("doc", []string{"Home", "Work"}, seqIDs("s"))
	require.NoError(t, err)
	require.NoError(t, doc.SetSlideText(0, "before"))

	snap := doc.Clone()
	require.NoError(t, doc.SetSlideText(0, "after"))
	require.NoError(t, doc.AppendSlide("s-9", "Extra"))
	require.NoError(t, doc.SetActiveSlideIndex(2))

	slide, err := snap.Slide(0)
	require.NoError(t, err)
	assert.Equal(t, "before", slide.TextString())
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, 0, snap.ActiveSlideIndex())
}

func TestSlides_ReturnsCopies(t *testing.T) {
	doc, err := New("doc", []string{"Home"}, seqIDs("s"))
	require.NoError(t, err)
	require.NoError(t, doc.SetSlideText(0, "original"))

	slides := doc.Slides()
	*slides[0].Text = "mutated"

	slide, err := doc.Slide(0)
	require.NoError(t, err)
	assert.Equal(t, "original", slide.TextString())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing id", `{"schemaVersion":1,"slideOrder":[],"slides":{}}`},
		{"future schema", `{"id":"d","schemaVersion":99,"slideOrder":[],"slides":{}}`},
		{"zero schema", `{"id":"d","schemaVersion":0,"slideOrder":[],"slides":{}}`},
		{"null slides", `{"id":"d","schemaVersion":1,"slideOrder":[],"slides":null}`},
		{"dangling order", `{"id":"d","schemaVersion":1,"slideOrder":["a","b"],"slides":{"a":{"title":"A","text":null}}}`},
		{"orphan slide", `{"id":"d","schemaVersion":1,"slideOrder":["a"],"slides":{"a":{"title":"A","text":null},"b":{"title":"B","text":null}}}`},
		{"duplicate order", `{"id":"d","schemaVersion":1,"slideOrder":["a","a"],"slides":{"a":{"title":"A","text":null}}}`},
		{"active out of range", `{"id":"d","schemaVersion":1,"activeSlideIndex":3,"slideOrder":["a"],"slides":{"a":{"title":"A","text":null}}}`},
		{"active below no selection", `{"id":"d","schemaVersion":1,"activeSlideIndex":-2,"slideOrder":["a"],"slides":{"a":{"title":"A","text":null}}}`},
		{"active set with no slides", `{"id":"d","schemaVersion":1,"activeSlideIndex":7,"slideOrder":[],"slides":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc Document
			require.NoError(t, json.Unmarshal([]byte(tt.json), &doc))
			err := doc.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestJSON_NullsRoundTrip(t *testing.T) {
	doc, err := New("doc", []string{"Home", "Work"}, seqIDs("s"))
	require.NoError(t, err)
	require.NoError(t, doc.SetSlideText(1, ""))
	doc.SetMetadata(strPtr("My notes"), nil)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "description")
	assert.Nil(t, raw["description"])
	assert.Equal(t, "My notes", raw["title"])

	var got Document
	require.NoError(t, json.Unmarshal(data, &got))
	require.NoError(t, got.Validate())

	if diff := cmp.Diff(doc, &got, cmp.AllowUnexported(Document{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	first, err := got.Slide(0)
	require.NoError(t, err)
	assert.Nil(t, first.Text, "null text must stay null")

	second, err := got.Slide(1)
	require.NoError(t, err)
	require.NotNil(t, second.Text, "empty text must stay non-null")
	assert.Equal(t, "", *second.Text)
}

func TestValidate_EmptyDocumentIndexes(t *testing.T) {
	for _, idx := range []int{NoSelection, 0} {
		var doc Document
		body := fmt.Sprintf(`{"id":"d","schemaVersion":1,"activeSlideIndex":%d,"slideOrder":[],"slides":{}}`, idx)
		require.NoError(t, json.Unmarshal([]byte(body), &doc))
		assert.NoError(t, doc.Validate(), "index %d", idx)
	}
}

func TestJSON_MissingFieldsEncodeAsNull(t *testing.T) {
	var doc Document
	body := `{"id":"d","schemaVersion":1,"activeSlideIndex":0,"slideOrder":["a"],"slides":{"a":{}}}`
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	require.NoError(t, doc.Validate())
	assert.Nil(t, doc.Title())

	data, err := json.Marshal(&doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title":null`)
	assert.Contains(t, string(data), `"a":{"title":null,"text":null}`)
}

func TestSettings(t *testing.T) {
	s := NewSettings()
	assert.Equal(t, SettingsID, s.ID)
	assert.False(t, s.HasActiveDocument())

	s.SetActiveDocument("doc-1")
	assert.True(t, s.HasActiveDocument())

	c := s.Clone()
	c.SetActiveDocument("doc-2")
	assert.Equal(t, "doc-1", *s.ActiveDocumentID)

	data, err := json.Marshal(NewSettings())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"settings","activeDocumentId":null}`, string(data))
}
