// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is a named group of pages in display order. A page belongs to
// exactly one category.
type Category struct {
	Name  string `json:"name"`
	Pages []Page `json:"pages"`
}

// Summary is the ordered set of categories consumed by list views.
type Summary struct {
	Categories []Category `json:"categories"`
}

// Pages returns every page of the summary, category by category.
func (s Summary) Pages() []Page {
	var n int
	for _, c := range s.Categories {
		n += len(c.Pages)
	}
	pages := make([]Page, 0, n)
	for _, c := range s.Categories {
		pages = append(pages, c.Pages...)
	}
	return pages
}

// Len returns the total number of pages across all categories.
func (s Summary) Len() int {
	var n int
	for _, c := range s.Categories {
		n += len(c.Pages)
	}
	return n
}
