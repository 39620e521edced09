// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nailsite/internal/models"
	"nailsite/internal/slug"
)

var (
	// ErrInvalidRecord is returned when a content file lacks a required field.
	ErrInvalidRecord = errors.New("invalid content record")

	// ErrDuplicateFolder is returned when two content files resolve to the
	// same folder. Folders are the routing key, so this fails the build.
	ErrDuplicateFolder = errors.New("duplicate folder")

	// ErrReservedFolder is returned when a content file resolves to a
	// folder that the site uses for its own routes, such as "blog".
	ErrReservedFolder = errors.New("reserved folder")
)

// dateLayouts are tried in order when the date is given as a string.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var folderPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Field limits, counted in runes.
const (
	maxTitleLen       = 300
	maxFolderLen      = 300
	maxDescriptionLen = 500
)

// frontMatter mirrors the metadata block at the top of a content file.
type frontMatter struct {
	Title       string `yaml:"title" toml:"title" json:"title"`
	Description string `yaml:"description" toml:"description" json:"description"`
	Date        any    `yaml:"date" toml:"date" json:"date"`
	Author      string `yaml:"author" toml:"author" json:"author"`
	AuthorImage string `yaml:"author_image" toml:"author_image" json:"author_image"`
	Image       string `yaml:"image" toml:"image" json:"image"`
	Folder      string `yaml:"folder" toml:"folder" json:"folder"`
	Slug        string `yaml:"slug" toml:"slug" json:"slug"`
	Category    string `yaml:"category" toml:"category" json:"category"`
	Draft       bool   `yaml:"draft" toml:"draft" json:"draft"`
}

// Record is one parsed content file before it becomes a models.Page.
type Record struct {
	Path        string
	Title       string
	Description string
	Body        string
	PublishedAt time.Time
	Author      string
	AuthorImage string
	Image       string
	Folder      string
	Category    string
	Draft       bool
}

// Validate checks the fields every page needs.
func (r Record) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&r.Description, validation.RuneLength(0, maxDescriptionLen)),
		validation.Field(&r.Folder, validation.Required, validation.RuneLength(1, maxFolderLen), validation.Match(folderPattern)),
	)
}

// Page converts the record into an immutable page. Blank optional fields
// become nil pointers.
func (r Record) Page() models.Page {
	return models.Page{
		Title:       r.Title,
		Description: r.Description,
		Markdown:    r.Body,
		Date:        models.FormatDate(r.PublishedAt),
		Author:      optional(r.Author),
		AuthorImage: r.AuthorImage,
		Image:       optional(r.Image),
		Folder:      r.Folder,
		Category:    r.Category,
		PublishedAt: r.PublishedAt,
		SourcePath:  r.Path,
	}
}

// Parse reads a content file. p is the slash-separated path relative to
// the content root; it supplies the default folder and category.
func Parse(p string, source []byte) (Record, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &fm)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: front matter: %v", ErrInvalidRecord, p, err)
	}

	published, err := parseDate(fm.Date)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, p, err)
	}

	r := Record{
		Path:        p,
		Title:       strings.TrimSpace(fm.Title),
		Description: strings.TrimSpace(fm.Description),
		Body:        string(body),
		PublishedAt: published,
		Author:      strings.TrimSpace(fm.Author),
		AuthorImage: strings.TrimSpace(fm.AuthorImage),
		Image:       strings.TrimSpace(fm.Image),
		Folder:      folderFor(p, fm),
		Category:    categoryFor(p, fm),
		Draft:       fm.Draft,
	}

	if err := r.Validate(); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, p, err)
	}
	return r, nil
}

// folderFor picks the explicit folder, then slug, then the file path.
// Paths with no Latin letters or digits ("日本語.md") slug to nothing, so
// they get "page-" plus a hash of the path, which is stable across builds.
func folderFor(p string, fm frontMatter) string {
	for _, v := range []string{fm.Folder, fm.Slug} {
		if s := slug.Generate(v); s != "" {
			return s
		}
	}
	if s := slug.FromPath(p); s != "" {
		return s
	}
	return fallbackFolder(p)
}

func fallbackFolder(p string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(path.Clean(p)))
	return "page-" + id.String()[:8]
}

// categoryFor picks the explicit category, then the top-level directory
// of the file, title-cased. Files at the root get no category.
func categoryFor(p string, fm frontMatter) string {
	if c := strings.TrimSpace(fm.Category); c != "" {
		return c
	}
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	top := strings.Split(strings.TrimPrefix(dir, "/"), "/")[0]
	top = strings.NewReplacer("-", " ", "_", " ").Replace(top)
	return cases.Title(language.English).String(top)
}

func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return d.UTC(), nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("date: unrecognised format %q", s)
	default:
		return time.Time{}, fmt.Errorf("date: unsupported value %v", v)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
