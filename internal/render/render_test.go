// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragdesk/internal/model"
)

// identity passes markdown through so assertions can see the input.
var identity = ConverterFunc(func(md string) (string, error) { return md, nil })

var failing = ConverterFunc(func(string) (string, error) { return "", errors.New("broken") })

// =============================================================================
// SANITIZE AND EXCERPT
// =============================================================================

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"keeps newlines and tabs", "a\n\tb", "a\n\tb"},
		{"strips color codes", "\x1b[31mred\x1b[0m", "red"},
		{"strips OSC title", "\x1b]0;pwned\x07ok", "ok"},
		{"strips bell and NUL", "a\x07b\x00c", "abc"},
		{"normalizes CRLF", "a\r\nb", "a\nb"},
		{"composes combining marks", "cafe\u0301", "caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := Excerpt(long, 100)
	assert.Equal(t, strings.Repeat("x", 100)+"...", got)

	assert.Equal(t, "short", Excerpt("short", 100))
	assert.Equal(t, "a b", Excerpt("a\n\n b", 100))
	assert.Equal(t, "日本...", Excerpt("日本語テキスト", 2))
}

func TestReplaceMarkers(t *testing.T) {
	wrap := func(m string) string { return "<" + m + ">" }

	assert.Equal(t, "See <[1]> and <[23]>.", replaceMarkers("See [1] and [23].", wrap))
	assert.Equal(t, "[1](http://x) <[2]>", replaceMarkers("[1](http://x) [2]", wrap))
	assert.Equal(t, "[1]: http://x", replaceMarkers("[1]: http://x", wrap))
	assert.Equal(t, "[a] [] plain", replaceMarkers("[a] [] plain", wrap))
}

// =============================================================================
// RENDERER
// =============================================================================

func TestRender_ConverterPath(t *testing.T) {
	r := NewWithConverter(Options{Format: FormatTerminal}, identity)
	got := r.Render(model.ChatResponse{Answer: "March 15th [1]."})

	assert.Equal(t, "March 15th **[1]**.", got)
}

func TestRender_FallbackOnNilConverter(t *testing.T) {
	r := NewWithConverter(Options{Format: FormatTerminal}, nil)
	got := r.Render(model.ChatResponse{Answer: "plain [1] text"})

	assert.Contains(t, got, "plain")
	assert.Contains(t, got, "[1]")
	assert.NotContains(t, got, "**")
}

func TestRender_FallbackOnConverterError(t *testing.T) {
	r := NewWithConverter(Options{Format: FormatHTML}, failing)
	got := r.Render(model.ChatResponse{Answer: "<script>alert(1)</script> see [2]\nnext"})

	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
	assert.Contains(t, got, "<strong>[2]</strong>")
	assert.Contains(t, got, "<br>")
}

func TestRender_SourcesBlock(t *testing.T) {
	long := strings.Repeat("y", 150)
	r := NewWithConverter(Options{Format: FormatTerminal, CitationExcerptLength: 100}, identity)
	got := r.Render(model.ChatResponse{
		Answer: "answer",
		Citations: []model.Citation{
			{ID: "2", Text: long},
			{ID: "1", Text: "The deadline is March 15th."},
		},
	})

	require.Contains(t, got, SourcesHeading)
	lines := strings.Split(got[strings.Index(got, SourcesHeading):], "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[2] "+strings.Repeat("y", 100)+"...", lines[1])
	assert.Equal(t, "[1] The deadline is March 15th.", lines[2])
}

func TestRender_NoCitationsNoSources(t *testing.T) {
	r := NewWithConverter(Options{}, identity)
	got := r.Render(model.ChatResponse{Answer: "just this"})
	assert.NotContains(t, got, SourcesHeading)
}

func TestRender_SanitizesCitationText(t *testing.T) {
	r := NewWithConverter(Options{Format: FormatHTML}, identity)
	got := r.Render(model.ChatResponse{
		Answer:    "a",
		Citations: []model.Citation{{ID: "1", Text: "<img src=x onerror=alert(1)>"}},
	})
	assert.NotContains(t, got, "<img")
	assert.Contains(t, got, "[1] &lt;img")
}

func TestRender_Deterministic(t *testing.T) {
	r := New(Options{Format: FormatHTML})
	resp := model.ChatResponse{
		Answer:    "# Title\n\nThe answer is **42** [1].",
		Citations: []model.Citation{{ID: "1", Text: "forty-two"}},
	}
	first := r.Render(resp)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Render(resp))
	}
}

func TestRender_HTMLConverter(t *testing.T) {
	r := New(Options{Format: FormatHTML})
	got := r.Render(model.ChatResponse{Answer: "Hello **world** [1] <script>x()</script>"})

	assert.Contains(t, got, "<strong>world</strong>")
	assert.Contains(t, got, "<strong>[1]</strong>")
	assert.NotContains(t, got, "<script>")
}

func TestRender_GlamourConverter(t *testing.T) {
	r := New(Options{Format: FormatTerminal, Style: "notty", WordWrap: 60})
	got := r.Render(model.ChatResponse{Answer: "The deadline is March 15th."})

	assert.Contains(t, got, "deadline")
	assert.NotContains(t, got, "\x1b]")
}

func TestSetWordWrap_KeepsCustomConverter(t *testing.T) {
	r := NewWithConverter(Options{}, identity)
	r.SetWordWrap(40)

	assert.Equal(t, 40, r.Options().WordWrap)
	assert.Equal(t, "x **[1]**", r.Render(model.ChatResponse{Answer: "x [1]"}))
}

func TestOptionsDefaults(t *testing.T) {
	r := NewWithConverter(Options{}, nil)
	opts := r.Options()
	assert.Equal(t, FormatTerminal, opts.Format)
	assert.Equal(t, DefaultCitationExcerptLength, opts.CitationExcerptLength)
}
