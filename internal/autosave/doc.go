// Package autosave writes the live document to the store whenever it has
// unsaved edits, waiting a fixed interval between attempts.
package autosave
