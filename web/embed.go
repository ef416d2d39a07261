package web

import "embed"

// TemplatesFS embeds the statement templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet inlined into every statement.
//
//go:embed static/*
var StaticFS embed.FS
