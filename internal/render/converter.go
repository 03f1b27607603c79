// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Converter turns markdown into display markup.
type Converter interface {
	Convert(markdown string) (string, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(markdown string) (string, error)

// Convert calls f.
func (f ConverterFunc) Convert(markdown string) (string, error) {
	return f(markdown)
}

// =============================================================================
// TERMINAL (GLAMOUR)
// =============================================================================

// GlamourConverter renders markdown for the terminal.
type GlamourConverter struct {
	renderer *glamour.TermRenderer
}

// NewGlamourConverter builds a terminal converter. style is a glamour
// standard style name ("dark", "light", "notty", ...) or "auto".
func NewGlamourConverter(style string, wordWrap int) (*GlamourConverter, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	opts := []glamour.TermRendererOption{styleOpt}
	if wordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wordWrap))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &GlamourConverter{renderer: r}, nil
}

// Convert renders markdown. A panic inside glamour is returned as an error.
func (g *GlamourConverter) Convert(markdown string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("markdown renderer panicked: %v", r)
		}
	}()

	out, err = g.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// =============================================================================
// HTML (GOLDMARK + BLUEMONDAY)
// =============================================================================

// HTMLConverter renders markdown to sanitized HTML.
type HTMLConverter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLConverter builds an HTML converter with GitHub-flavored markdown.
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Convert renders markdown to HTML and strips anything the policy rejects.
func (h *HTMLConverter) Convert(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return strings.TrimSpace(h.policy.Sanitize(buf.String())), nil
}
