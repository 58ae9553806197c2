// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-safe slugs for category and attribute names.
package slug

import (
	"regexp"
	"strings"
)

// MaxLen is the longest slug accepted for categories and attributes.
const MaxLen = 120

var (
	// separators matches every run of characters outside [a-z0-9].
	separators = regexp.MustCompile(`[^a-z0-9]+`)
	// valid matches lowercase words joined by single hyphens.
	valid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate creates a URL-safe slug from a display name. Every run of
// non-alphanumeric characters becomes one hyphen.
// Example: "Food & Beverages" → "food-beverages"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = separators.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLen {
		result = strings.TrimRight(result[:MaxLen], "-")
	}
	return result
}

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool {
	return len(s) <= MaxLen && valid.MatchString(s)
}
