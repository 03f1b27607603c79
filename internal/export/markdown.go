// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/session"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
	now     func() time.Time
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts, now: time.Now}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("session: %s\n", escapeYAML(t.SessionID)))
		sb.WriteString(fmt.Sprintf("started: %s\n", t.StartedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(t.Messages)))
		sb.WriteString(fmt.Sprintf("knowledge_entries: %d\n", len(t.Knowledge)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", e.now().Format(time.RFC3339)))
		sb.WriteString("generator: ragdesk\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# ragdesk session\n\n")
	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("- **Session**: %s\n", t.SessionID))
		sb.WriteString(fmt.Sprintf("- **Started**: %s\n\n", formatTimestamp(t.StartedAt)))
	}

	sb.WriteString("## Conversation\n\n")
	if len(t.Messages) == 0 {
		sb.WriteString("_No questions asked._\n\n")
	}
	for i, msg := range t.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				roleLabel(msg), formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", roleLabel(msg)))
		}
		sb.WriteString(strings.TrimSpace(msg.Text))
		sb.WriteString("\n\n")
		if msg.Role == model.RoleAssistant && msg.Status == model.StatusComplete && msg.TimeTaken > 0 {
			sb.WriteString(fmt.Sprintf("<sub>Answered in %.2fs</sub>\n\n", msg.TimeTaken))
		}
		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("## Knowledge Base\n\n")
	if len(t.Knowledge) == 0 {
		sb.WriteString(session.EmptyKnowledgePlaceholder + "\n")
	}
	for _, entry := range t.Knowledge {
		sb.WriteString(fmt.Sprintf("### %s\n\n", escapeMarkdown(entry.Header())))
		sb.WriteString("```\n")
		sb.WriteString(strings.TrimRight(entry.Text, "\n"))
		sb.WriteString("\n```\n\n")
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from ragdesk on %s*\n",
		e.now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

func roleLabel(msg model.ChatMessage) string {
	label := msg.Role.DisplayName()
	switch msg.Status {
	case model.StatusFailed:
		label += " (failed)"
	case model.StatusPending:
		label += " (pending)"
	}
	return label
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break headings.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("#", "\\#", "*", "\\*", "_", "\\_", "[", "\\[", "]", "\\]")
	return r.Replace(s)
}

// escapeYAML quotes a value that contains YAML syntax.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
