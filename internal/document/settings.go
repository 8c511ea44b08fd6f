// ABOUTME: Settings singleton record pointing at the active document
// ABOUTME: A nil ActiveDocumentID means no document has been created yet

package document

// SettingsID is the fixed key of the Settings singleton.
const SettingsID = "settings"

// Settings holds application preferences. It is created once on first run
// and afterwards only repointed at a new active document.
type Settings struct {
	ID               string  `json:"id"`
	ActiveDocumentID *string `json:"activeDocumentId"`
}

// NewSettings returns the first-run settings record with no active document.
func NewSettings() *Settings {
	return &Settings{ID: SettingsID}
}

// HasActiveDocument reports whether the settings name a document.
func (s *Settings) HasActiveDocument() bool {
	return s != nil && s.ActiveDocumentID != nil && *s.ActiveDocumentID != ""
}

// SetActiveDocument points the settings at the given document id.
func (s *Settings) SetActiveDocument(id string) {
	s.ActiveDocumentID = &id
}

// Clone returns an independent copy.
func (s *Settings) Clone() *Settings {
	return &Settings{ID: s.ID, ActiveDocumentID: cloneString(s.ActiveDocumentID)}
}
