// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders pages and summaries into complete HTML documents
// using the embedded html/templates. Post bodies are converted from
// Markdown lazily, the first time a post is rendered, and memoised per
// build since content never changes within a build.
package engine

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"time"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"nailsite/internal/markdown"
	"nailsite/internal/models"
	"nailsite/internal/permalink"
	"nailsite/web"
)

// Section identifies the navigation entry highlighted by the layout.
type Section string

const (
	SectionHome Section = "home"
	SectionBlog Section = "blog"
)

// Site holds site-wide values available to every template as {{.Site}}.
type Site struct {
	Name    string
	BaseURL string
}

// PostData holds the variables available to the post template.
type PostData struct {
	Site        Site
	Section     Section
	Title       string
	Description string
	Image       string // cover image for og:image, empty if none
	Canonical   string
	Page        models.Page
	Body        template.HTML // converted, sanitized Markdown body
	Share       permalink.ShareLinks
	Year        int
}

// ListData holds the variables available to the list template.
type ListData struct {
	Site        Site
	Section     Section
	Title       string
	Description string
	Image       string
	Canonical   string
	Heading     string
	Subheading  string
	Summary     models.Summary
	Year        int
}

// Config configures an Engine.
type Config struct {
	Site      Site
	Converter *markdown.Converter

	// Subheading is shown under the site name on the blog listing.
	Subheading string

	// Style is the chroma style used for the highlighting stylesheet. It
	// should match the converter's style.
	Style string
}

// Engine renders HTML documents from the embedded templates. It is safe
// for concurrent use.
type Engine struct {
	site       Site
	subheading string
	converter  *markdown.Converter
	resolver   permalink.Resolver
	templates  map[string]*template.Template
	bodies     *bodyCache
	chromaCSS  []byte
}

// views lists the templates rendered inside the base layout.
var views = []string{"post", "list", "notfound"}

// New parses the embedded templates and returns a ready Engine.
func New(cfg Config) (*Engine, error) {
	conv := cfg.Converter
	if conv == nil {
		conv = markdown.New(markdown.Options{Style: cfg.Style})
	}
	subheading := cfg.Subheading
	if subheading == "" {
		subheading = "Updates and Versions"
	}

	tmpls, err := parseTemplates(web.TemplatesFS)
	if err != nil {
		return nil, err
	}

	css, err := highlightCSS(cfg.Style)
	if err != nil {
		return nil, err
	}

	return &Engine{
		site:       cfg.Site,
		subheading: subheading,
		converter:  conv,
		resolver:   permalink.NewResolver(cfg.Site.BaseURL),
		templates:  tmpls,
		bodies:     newBodyCache(),
		chromaCSS:  css,
	}, nil
}

var funcMap = template.FuncMap{
	// deref safely dereferences an optional string field.
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// parseTemplates pairs each view with the base layout and footer.
func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(views))
	for _, name := range views {
		tmpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(fsys,
			"templates/layout.html", "templates/footer.html", "templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		out[name] = tmpl
	}
	return out, nil
}

// highlightCSS generates the stylesheet for class-based code highlighting.
func highlightCSS(style string) ([]byte, error) {
	if style == "" {
		style = "monokai"
	}
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(style)); err != nil {
		return nil, fmt.Errorf("write highlight css: %w", err)
	}
	return buf.Bytes(), nil
}

// HighlightCSS returns the stylesheet for highlighted code blocks.
func (e *Engine) HighlightCSS() []byte {
	return e.chromaCSS
}

// Body returns the converted body of a page. Results are cached under
// buildID, so pass the snapshot ID the page came from.
func (e *Engine) Body(buildID string, p models.Page) template.HTML {
	if html, ok := e.bodies.get(buildID, p.Folder); ok {
		return html
	}
	html := template.HTML(e.converter.Convert(p.Markdown))
	e.bodies.put(buildID, p.Folder, html)
	return html
}

// Retain drops cached bodies of every build except buildID. Called after
// a rebuild is published.
func (e *Engine) Retain(buildID string) {
	e.bodies.retain(buildID)
}

// RenderPost renders the detail view of one page.
func (e *Engine) RenderPost(buildID string, p models.Page) ([]byte, error) {
	data := PostData{
		Site:        e.site,
		Section:     SectionBlog,
		Title:       p.Title,
		Description: p.Description,
		Canonical:   e.canonical(p.Folder),
		Page:        p,
		Body:        e.Body(buildID, p),
		Share:       e.resolver.Share(p.Folder),
		Year:        time.Now().Year(),
	}
	if p.HasImage() {
		data.Image = *p.Image
	}
	return e.render("post", data)
}

// RenderList renders the blog listing for a summary.
func (e *Engine) RenderList(s models.Summary) ([]byte, error) {
	data := ListData{
		Site:        e.site,
		Section:     SectionBlog,
		Title:       "Blog",
		Description: "Blog",
		Canonical:   e.canonical("blog"),
		Heading:     e.site.Name,
		Subheading:  e.subheading,
		Summary:     s,
		Year:        time.Now().Year(),
	}
	return e.render("list", data)
}

// RenderNotFound renders the 404 page.
func (e *Engine) RenderNotFound() ([]byte, error) {
	data := ListData{
		Site:        e.site,
		Section:     SectionHome,
		Title:       "Not found",
		Description: "Page not found",
		Year:        time.Now().Year(),
	}
	return e.render("notfound", data)
}

func (e *Engine) canonical(folder string) string {
	if e.site.BaseURL == "" {
		return ""
	}
	return e.resolver.URL(folder)
}

func (e *Engine) render(view string, data any) ([]byte, error) {
	tmpl, ok := e.templates[view]
	if !ok {
		return nil, fmt.Errorf("template %q not found", view)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Error("template execution failed", "view", view, "error", err)
		return nil, fmt.Errorf("execute template %s: %w", view, err)
	}
	return buf.Bytes(), nil
}
