// Package document defines the persisted value types of the note store.
//
// # Records
//
// Two records are persisted:
//
//   - Settings: singleton keyed by "settings", pointing at the active document
//   - Document: ordered named slides keyed by a generated id
//
// The persisted Document shape is:
//
//	{
//	  "id": "…",
//	  "title": null,
//	  "description": null,
//	  "activeSlideIndex": 0,
//	  "schemaVersion": 1,
//	  "slideOrder": ["…", "…"],
//	  "slides": { "…": { "title": "Home", "text": null } }
//	}
//
// slideOrder gives tab order; slides maps each id in slideOrder to its
// record. Optional values round-trip as JSON null.
//
// # Mutation
//
// Document fields are unexported. All changes go through methods
// (SetSlideText, SetActiveSlideIndex, AppendSlide, TruncateSlides) so the
// order and slide map never disagree. Clone takes the deep snapshot used by
// autosave.
package document
