// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/ragdesk/internal/util"
)

// Sanitize removes terminal escape sequences and control characters other
// than newline and tab from remote text. The result is in NFC form so an
// excerpt never separates a letter from its combining mark.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Excerpt returns the first n runes of s, followed by "..." when anything
// was cut. Whitespace runs, newlines included, collapse to one space.
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	cut := util.TruncateRunesNoEllipsis(s, n)
	if cut != s {
		return cut + "..."
	}
	return s
}

// markerPattern matches citation markers like [1] or [12].
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// replaceMarkers rewrites each citation marker with wrap(marker). Markers
// used as markdown link text or reference labels, "[1](" and "[1]:", are
// left alone.
func replaceMarkers(s string, wrap func(marker string) string) string {
	locs := markerPattern.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if end < len(s) && (s[end] == '(' || s[end] == ':') {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(wrap(s[start:end]))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}
