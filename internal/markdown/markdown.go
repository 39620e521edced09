// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts Markdown post bodies into HTML fragments using
// goldmark. Conversion never fails: a body that cannot be converted is
// returned as escaped preformatted text so one bad post cannot break a build.
// Unless the converter is marked trusted, output is sanitized with a
// bluemonday policy before it reaches the templates.
package markdown

import (
	"bytes"
	"html"
	"log/slog"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Options configures a Converter.
type Options struct {
	// Trusted disables sanitization and lets raw HTML embedded in the
	// Markdown through. Only for content written by the site owners.
	Trusted bool

	// Style is the chroma style name used for fenced code blocks.
	Style string
}

// Converter turns Markdown into HTML. It is safe for concurrent use.
type Converter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a Converter. Code blocks are highlighted with CSS classes
// rather than inline styles so the sanitizer can keep them.
func New(opts Options) *Converter {
	style := opts.Style
	if style == "" {
		style = "monokai"
	}

	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,         // tables, strikethrough, autolinks, task lists
			extension.Typographer, // smart quotes and dashes
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	}
	if opts.Trusted {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	}

	c := &Converter{md: goldmark.New(rendererOpts...)}
	if !opts.Trusted {
		c.policy = Policy()
	}
	return c
}

var (
	classNames = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)
	headingIDs = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Policy returns the sanitization policy applied to untrusted output. It is
// the bluemonday UGC policy plus the attributes goldmark and chroma emit:
// heading anchors, highlighter classes and GFM task-list checkboxes.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").Matching(headingIDs).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(classNames).OnElements("pre", "code", "span", "div")
	p.AllowElements("input")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

// Convert renders source as an HTML fragment. It is deterministic and
// never returns an error.
func (c *Converter) Convert(source string) string {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(source), &buf); err != nil {
		slog.Warn("markdown conversion failed, using escaped source", "error", err)
		return fallback(source)
	}
	if c.policy == nil {
		return buf.String()
	}
	return c.policy.Sanitize(buf.String())
}

// fallback renders source as literal preformatted text.
func fallback(source string) string {
	return "<pre>" + html.EscapeString(source) + "</pre>\n"
}

var defaultConverter = New(Options{})

// ToHTML converts Markdown with the default sanitizing converter.
func ToHTML(source string) string {
	return defaultConverter.Convert(source)
}
