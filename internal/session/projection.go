// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/jeranaias/ragdesk/internal/model"
)

// EmptyKnowledgePlaceholder is shown before anything has been indexed.
const EmptyKnowledgePlaceholder = "(Memory is empty. Paste text and press Ctrl+S to teach it something.)"

// KnowledgeSeparator divides consecutive knowledge log entries.
const KnowledgeSeparator = "\n\n--------------------------------\n\n"

// KnowledgeView renders the knowledge log as display text: the placeholder
// while empty, otherwise each entry under its timestamp header.
func KnowledgeView(entries []model.KnowledgeLogEntry) string {
	if len(entries) == 0 {
		return EmptyKnowledgePlaceholder
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString(KnowledgeSeparator)
		}
		b.WriteString(e.Header())
		b.WriteByte('\n')
		b.WriteString(e.Text)
	}
	return b.String()
}
