// ABOUTME: In-memory reconciliation of a loaded document against configured tab capacity
// ABOUTME: Grows by appending titled slides and shrinks by deleting from the tail

package bootstrap

import (
	"fmt"

	"github.com/2389/memoui/internal/document"
)

// MigrationResult lists the slide ids a migration touched.
type MigrationResult struct {
	Added   []string
	Removed []string
}

// Changed reports whether the migration mutated the document.
func (r MigrationResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Migrate reconciles doc's slide count with the configured tab names.
//
// When more tabs are configured than stored, new slides are appended and
// titled with the configured name at their position. When fewer are
// configured, slides are removed from the end of the order regardless of
// their titles. Existing slides keep their order and content.
func Migrate(doc *document.Document, tabs []string, newID func() string) (MigrationResult, error) {
	var result MigrationResult

	configured := len(tabs)
	stored := doc.Len()

	switch {
	case configured > stored:
		for i := stored; i < configured; i++ {
			id := newID()
			if err := doc.AppendSlide(id, tabs[i]); err != nil {
				return result, fmt.Errorf("appending slide %d: %w", i, err)
			}
			result.Added = append(result.Added, id)
		}
	case configured < stored:
		// A focused tail slide hands focus to the last remaining tab.
		result.Removed = doc.TruncateSlides(configured)
	}

	return result, nil
}
