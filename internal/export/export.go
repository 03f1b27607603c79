// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/render"
	"github.com/jeranaias/ragdesk/internal/session"
	"github.com/jeranaias/ragdesk/internal/util"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("nothing to export: chat and knowledge logs are empty")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the exportable view of a session.
type Transcript struct {
	SessionID string                    `json:"session_id"`
	StartedAt time.Time                 `json:"started_at"`
	Messages  []model.ChatMessage       `json:"messages"`
	Knowledge []model.KnowledgeLogEntry `json:"knowledge"`
}

// FromState copies a session snapshot into a Transcript. Message text is
// stripped of terminal styling.
func FromState(sessionID string, startedAt time.Time, state session.State) *Transcript {
	msgs := state.Messages()
	for i := range msgs {
		msgs[i].Text = render.Sanitize(msgs[i].Text)
	}
	return &Transcript{
		SessionID: sessionID,
		StartedAt: startedAt,
		Messages:  msgs,
		Knowledge: state.Knowledge(),
	}
}

// IsEmpty reports whether the transcript holds no messages and no knowledge.
func (t *Transcript) IsEmpty() bool {
	return t == nil || (len(t.Messages) == 0 && len(t.Knowledge) == 0)
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export converts a transcript to the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are saved.
	OutputDir string

	// IncludeMetadata adds the session header block.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message times.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// ForFormat returns the exporter for a format name ("markdown", "md", "json").
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md", "":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportToFile writes t with exporter into opts.OutputDir and returns the
// file path.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if t.IsEmpty() {
		return "", ErrEmptyTranscript
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("ragdesk_%s_%s%s",
		sanitizeFilename(shortID(t.SessionID)),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	s = util.TruncateRunesNoEllipsis(s, 50)

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
