// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package permalink derives the canonical URL path of a page from its
// folder, and the absolute URLs used for social sharing.
package permalink

import (
	"net/url"
	"sort"
	"strings"

	"nailsite/internal/slug"
)

// Root is the site-relative prefix every permalink starts with.
const Root = "/"

// Path returns the canonical path for a folder. The result depends only
// on folder and is never empty: a folder with no usable characters maps
// to Root.
// Example: "release-1-0" → "/release-1-0"
func Path(folder string) string {
	s := slug.Generate(folder)
	if s == "" {
		return Root
	}
	return Root + s
}

// reserved holds the top-level paths served by the site itself. A page
// using one of them as its folder would be shadowed by the route or would
// overwrite the exported file.
var reserved = map[string]bool{
	"blog":   true,
	"health": true,
	"static": true,
}

// IsReserved reports whether folder maps to a path owned by the site.
func IsReserved(folder string) bool {
	return reserved[slug.Generate(folder)]
}

// Reserved returns the reserved folder names in lexical order.
func Reserved() []string {
	out := make([]string, 0, len(reserved))
	for name := range reserved {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolver builds absolute URLs for a site hosted at BaseURL.
type Resolver struct {
	BaseURL string
}

// NewResolver returns a Resolver for the given base URL. A trailing slash
// is dropped.
func NewResolver(baseURL string) Resolver {
	return Resolver{BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// URL returns the absolute permalink of a folder. Without a base URL it
// falls back to the site-relative path.
func (r Resolver) URL(folder string) string {
	return r.BaseURL + Path(folder)
}

// ShareLinks holds the social-sharing URLs for one page.
type ShareLinks struct {
	Twitter  string
	LinkedIn string
}

// Share returns the X/Twitter and LinkedIn share URLs for a folder.
func (r Resolver) Share(folder string) ShareLinks {
	target := url.QueryEscape(r.URL(folder))
	return ShareLinks{
		Twitter:  "https://twitter.com/intent/tweet?url=" + target,
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?url=" + target,
	}
}
