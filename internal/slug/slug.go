// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation for page folders.
package slug

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators are turned into hyphens before stripping.
	separators = regexp.MustCompile(`[\s_.]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string. Accented
// letters are folded to their base letter.
// Example: "Café Release 1_0" → "cafe-release-1-0"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = separators.ReplaceAllString(result, "-")
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// FromPath derives a folder slug from a content file path. The file name
// without extension is used, except for index files which take the name
// of their directory.
// Example: "releases/1-0/index.md" → "1-0", "guides/Intro.md" → "intro"
func FromPath(p string) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	base := strings.TrimSuffix(path.Base(p), path.Ext(p))
	if strings.EqualFold(base, "index") {
		if dir := path.Dir(p); dir != "." && dir != "/" {
			base = path.Base(dir)
		}
	}
	return Generate(base)
}

// fold strips combining marks after canonical decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
