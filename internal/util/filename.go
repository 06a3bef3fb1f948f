// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the scribe-tui application.
package util

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultImageFilename is used when no usable filename survives sanitizing.
const DefaultImageFilename = "image.png"

// SanitizeFilename derives a download filename from a diagram title:
// alphanumerics are kept, everything else collapses to underscores, the
// result is lowercased and given a .png extension.
func SanitizeFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title) + 4)
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return DefaultImageFilename
	}
	return b.String() + ".png"
}

// headerFilter strips everything a Content-Disposition filename cannot
// safely carry: non-ASCII (after NFD decomposition drops accents), control
// characters, quotes, and path separators.
var headerFilter = transform.Chain(
	norm.NFD,
	runes.Remove(runes.Predicate(func(r rune) bool {
		if r < 0x20 || r > 0x7e {
			return true
		}
		switch r {
		case '"', '\\', '/', ';':
			return true
		}
		return false
	})),
)

// SanitizeHeaderFilename reduces a caller-supplied filename to printable
// ASCII safe for a Content-Disposition header. An empty or fully stripped
// name falls back to DefaultImageFilename.
func SanitizeHeaderFilename(name string) string {
	cleaned, _, err := transform.String(headerFilter, name)
	if err != nil {
		return DefaultImageFilename
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return DefaultImageFilename
	}
	return cleaned
}
