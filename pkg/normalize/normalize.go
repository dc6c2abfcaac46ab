// Copyright (c) 2026 Pricewatch. All rights reserved.

// Package normalize folds arbitrary Unicode strings into comparable forms.
//
// # Usage
//
// Duplicate detection compares titles from three different sources (user CSV
// cells, catalog responses, stored inventory), each with its own casing and
// accent conventions. Folding them through this package makes "Amélie " and
// "amelie" compare equal.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Title converts a title or name into its canonical comparison form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 3. Removes combining marks (accents).
// 4. Converts to lowercase.
// 5. Collapses internal whitespace runs to a single space.
func Title(s string) string {
	// 1. Trim
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// 2+3. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	// 4. Lowercase
	result = strings.ToLower(result)

	// 5. Collapse whitespace
	return strings.Join(strings.Fields(result), " ")
}

// Equal reports whether two strings are the same after [Title] folding.
func Equal(a, b string) bool {
	return Title(a) == Title(b)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
