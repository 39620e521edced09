// Package web provides the embedded site templates and static assets
// (stylesheet, social-sharing icons). Both are compiled into the binary so
// the server and the static export need nothing on disk besides content.
package web

import "embed"

// TemplatesFS embeds the web/templates/ directory: the base layout, the
// footer partial and one file per view.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the web/static/ directory tree, served at /static/.
//
//go:embed all:static
var StaticFS embed.FS
