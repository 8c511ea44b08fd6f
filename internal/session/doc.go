// Package session holds the in-memory document being edited.
package session
