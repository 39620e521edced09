// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site assembles loaded pages into the structures the templates
// consume: ordered categories, the summary and an immutable snapshot of
// the whole build.
package site

import (
	"strings"

	"golang.org/x/text/cases"

	"nailsite/internal/models"
)

// DefaultCategory holds pages without a category.
const DefaultCategory = "General"

// Group partitions pages into categories. Categories named in order come
// first, in that order, if they have pages; the rest follow in the order
// they are first seen. Pages keep their input order within a category.
// Every input page appears in exactly one category.
//
// Names are matched by categoryKey, so "Releases", "releases" and
// "RELEASES" are one category. It is displayed with the spelling from
// order when listed there, otherwise with the first spelling seen.
func Group(pages []models.Page, order []string) []models.Category {
	fold := cases.Fold()
	index := make(map[string]int)
	var cats []models.Category

	for _, name := range order {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := categoryKey(fold, name)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(cats)
		cats = append(cats, models.Category{Name: name})
	}

	for _, p := range pages {
		name := strings.TrimSpace(p.Category)
		if name == "" {
			name = DefaultCategory
		}
		key := categoryKey(fold, name)
		i, ok := index[key]
		if !ok {
			i = len(cats)
			index[key] = i
			cats = append(cats, models.Category{Name: name})
		}
		cats[i].Pages = append(cats[i].Pages, p)
	}

	result := cats[:0]
	for _, c := range cats {
		if len(c.Pages) > 0 {
			result = append(result, c)
		}
	}
	return result
}

// categoryKey ignores case, hyphens, underscores and repeated spaces, the
// same separators the loader replaces when it derives a name from a
// directory.
func categoryKey(fold cases.Caser, name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return fold.String(strings.Join(strings.Fields(name), " "))
}

// BuildSummary aggregates categories into a summary. Categories and pages
// are deep-copied so the summary shares no memory with the caller.
func BuildSummary(categories []models.Category) models.Summary {
	out := make([]models.Category, len(categories))
	for i, c := range categories {
		out[i] = models.Category{Name: c.Name, Pages: clonePages(c.Pages)}
	}
	return models.Summary{Categories: out}
}

func clonePages(pages []models.Page) []models.Page {
	if pages == nil {
		return nil
	}
	out := make([]models.Page, len(pages))
	for i, p := range pages {
		out[i] = p.Clone()
	}
	return out
}
