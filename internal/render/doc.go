// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a chat response into display markup.
//
// The answer is treated as markdown and converted by a Converter: glamour
// for the terminal, goldmark for HTML. Text from the backend is untrusted,
// so it is sanitized before conversion (terminal escape sequences and
// control characters are removed) and HTML output is filtered through a
// bluemonday policy. When no converter is available, or it fails, the
// fallback path escapes the text instead. Both paths emphasize citation
// markers such as [1] and append a "Sources:" block listing each citation
// with a short excerpt.
//
// Rendering is a pure function of the response and the options: the same
// input always produces the same output.
//
// # Usage
//
//	r := render.New(render.Options{Format: render.FormatTerminal, WordWrap: 80})
//	fmt.Println(r.Render(resp))
package render
