// Package share exports the focused note as text or HTML.
package share
