// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"nailsite/internal/permalink"
)

// DateLayout is the display format of Page.Date.
const DateLayout = "January 2, 2006"

// Page is one content item, a blog post or a static page. Pages are built
// once by the loader and never mutated afterwards.
type Page struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	// Markdown is the raw, unconverted body.
	Markdown string `json:"markdown"`

	// Date is PublishedAt formatted with DateLayout.
	Date string `json:"date"`

	// Author and Image are nil when absent: no byline, no cover image.
	Author      *string `json:"author,omitempty"`
	AuthorImage string  `json:"author_image"`
	Image       *string `json:"image,omitempty"`

	// Folder is the unique identity of the page and its permalink basis.
	Folder   string `json:"folder"`
	Category string `json:"category"`

	PublishedAt time.Time `json:"published_at"`
	SourcePath  string    `json:"source_path"`
}

// Permalink returns the canonical site path of the page.
func (p Page) Permalink() string {
	return permalink.Path(p.Folder)
}

// Clone returns a copy of p that shares no memory with it, including the
// optional fields behind pointers.
func (p Page) Clone() Page {
	p.Author = clonePtr(p.Author)
	p.Image = clonePtr(p.Image)
	return p
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// HasImage returns true if the page has a cover image.
func (p Page) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}

// HasAuthor returns true if the page has a byline.
func (p Page) HasAuthor() bool {
	return p.Author != nil && *p.Author != ""
}

// FormatDate renders t in DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
