// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"html"
	"log"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// Format selects the markup a Renderer produces.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatHTML     Format = "html"
)

// DefaultCitationExcerptLength is how many characters of each citation are shown.
const DefaultCitationExcerptLength = 100

// SourcesHeading introduces the citation block.
const SourcesHeading = "Sources:"

// Options configures a Renderer.
type Options struct {
	Format Format

	// CitationExcerptLength caps each citation excerpt, in runes.
	CitationExcerptLength int

	// WordWrap is the terminal markdown wrap width; 0 disables wrapping.
	WordWrap int

	// Style is the glamour style name, "auto" to detect.
	Style string

	// DisableMarkdown forces the fallback path.
	DisableMarkdown bool
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatTerminal
	}
	if o.CitationExcerptLength <= 0 {
		o.CitationExcerptLength = DefaultCitationExcerptLength
	}
	if o.Style == "" {
		o.Style = "auto"
	}
	return o
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer converts ChatResponse values into display markup.
// It is safe for concurrent use.
type Renderer struct {
	mu        sync.RWMutex
	opts      Options
	converter Converter
	custom    bool
}

// New creates a Renderer with the default converter for opts.Format.
// If the converter cannot be built, the Renderer uses the fallback path.
func New(opts Options) *Renderer {
	opts = opts.withDefaults()
	return &Renderer{opts: opts, converter: defaultConverter(opts)}
}

// NewWithConverter creates a Renderer with an explicit converter; nil
// selects the fallback path.
func NewWithConverter(opts Options, converter Converter) *Renderer {
	return &Renderer{opts: opts.withDefaults(), converter: converter, custom: true}
}

func defaultConverter(opts Options) Converter {
	if opts.DisableMarkdown {
		return nil
	}
	if opts.Format == FormatHTML {
		return NewHTMLConverter()
	}
	conv, err := NewGlamourConverter(opts.Style, opts.WordWrap)
	if err != nil {
		log.Printf("RENDER_WARN | converter unavailable, using plain text: %v", err)
		return nil
	}
	return conv
}

// Options returns the renderer's options.
func (r *Renderer) Options() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts
}

// SetWordWrap rebuilds the terminal converter for a new wrap width.
func (r *Renderer) SetWordWrap(width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.WordWrap == width {
		return
	}
	r.opts.WordWrap = width
	if !r.custom && r.opts.Format == FormatTerminal {
		r.converter = defaultConverter(r.opts)
	}
}

// Render produces markup for resp: the converted answer, then the sources
// block when there are citations.
func (r *Renderer) Render(resp model.ChatResponse) string {
	r.mu.RLock()
	opts, conv := r.opts, r.converter
	r.mu.RUnlock()

	answer := Sanitize(resp.Answer)

	var body string
	if conv != nil {
		out, err := conv.Convert(replaceMarkers(answer, markdownMarker))
		if err != nil {
			log.Printf("RENDER_WARN | markdown conversion failed, using fallback: %v", err)
		} else {
			body = out
		}
	}
	if body == "" {
		body = fallback(opts.Format, answer)
	}

	if len(resp.Citations) == 0 {
		return body
	}
	return body + sources(opts, resp.Citations)
}

// =============================================================================
// FALLBACK AND SOURCES
// =============================================================================

var (
	markerStyle  = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.TextSecondary)
	excerptStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
	divider      = strings.Repeat("─", 24)
)

func markdownMarker(m string) string { return "**" + m + "**" }

func htmlMarker(m string) string { return "<strong>" + m + "</strong>" }

// fallback renders text without a markdown converter.
func fallback(format Format, text string) string {
	if format == FormatHTML {
		escaped := replaceMarkers(html.EscapeString(text), htmlMarker)
		return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>\n") + "</p>"
	}
	return replaceMarkers(text, func(m string) string { return markerStyle.Render(m) })
}

// sources renders the citation block in input order.
func sources(opts Options, citations []model.Citation) string {
	var b strings.Builder
	if opts.Format == FormatHTML {
		b.WriteString("\n<div class=\"citations\"><hr><strong>")
		b.WriteString(SourcesHeading)
		b.WriteString("</strong><br>\n")
		for _, c := range citations {
			b.WriteString("<small>[")
			b.WriteString(html.EscapeString(Sanitize(c.ID.String())))
			b.WriteString("] ")
			b.WriteString(html.EscapeString(Excerpt(Sanitize(c.Text), opts.CitationExcerptLength)))
			b.WriteString("</small><br>\n")
		}
		b.WriteString("</div>")
		return b.String()
	}

	b.WriteString("\n\n")
	b.WriteString(excerptStyle.Render(divider))
	b.WriteByte('\n')
	b.WriteString(headingStyle.Render(SourcesHeading))
	for _, c := range citations {
		b.WriteByte('\n')
		line := "[" + Sanitize(c.ID.String()) + "] " + Excerpt(Sanitize(c.Text), opts.CitationExcerptLength)
		b.WriteString(excerptStyle.Render(line))
	}
	return b.String()
}
