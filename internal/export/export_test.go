// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/session"
)

func sampleState(t *testing.T) session.State {
	t.Helper()
	store := session.NewStore()
	user := model.NewUserMessage("What is Titan?")
	reply := model.NewPendingAssistantMessage("Thinking...")
	_, err := store.Update(func(s session.State) (session.State, error) {
		return s.AppendMessages(user, reply), nil
	})
	require.NoError(t, err)

	done, err := reply.Complete("\x1b[1mA hydro plant\x1b[0m [1]", 1.5)
	require.NoError(t, err)
	_, err = store.Update(func(s session.State) (session.State, error) {
		s, err := s.SettleMessage(done)
		if err != nil {
			return s, err
		}
		return s.AppendKnowledge(model.KnowledgeLogEntry{
			Timestamp: time.Date(2025, 1, 2, 9, 30, 0, 0, time.Local),
			Text:      "Project Titan is a hydro plant.",
		}), nil
	})
	require.NoError(t, err)
	return store.Snapshot()
}

func TestFromState_StripsStyling(t *testing.T) {
	tr := FromState("abc", time.Now(), sampleState(t))

	require.Len(t, tr.Messages, 2)
	assert.Equal(t, "A hydro plant [1]", tr.Messages[1].Text)
	assert.Len(t, tr.Knowledge, 1)
	assert.False(t, tr.IsEmpty())
}

func TestMarkdownExporter(t *testing.T) {
	tr := FromState("session-1", time.Now(), sampleState(t))

	out, err := NewMarkdownExporter(nil).Export(tr)
	require.NoError(t, err)
	md := string(out)

	assert.Contains(t, md, "generator: ragdesk")
	assert.Contains(t, md, "### You")
	assert.Contains(t, md, "What is Titan?")
	assert.Contains(t, md, "Answered in 1.50s")
	assert.Contains(t, md, "\\[Update @ 09:30:00\\]")
	assert.Contains(t, md, "Project Titan is a hydro plant.")
}

func TestMarkdownExporter_EmptyKnowledge(t *testing.T) {
	tr := &Transcript{
		SessionID: "s",
		Messages:  []model.ChatMessage{model.NewUserMessage("hi")},
	}
	out, err := NewMarkdownExporter(&Options{}).Export(tr)
	require.NoError(t, err)
	assert.Contains(t, string(out), session.EmptyKnowledgePlaceholder)
	assert.NotContains(t, string(out), "generator:")
}

func TestJSONExporter(t *testing.T) {
	tr := FromState("session-1", time.Now(), sampleState(t))

	out, err := NewJSONExporter(nil).Export(tr)
	require.NoError(t, err)

	var decoded Transcript
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "session-1", decoded.SessionID)
	assert.Len(t, decoded.Messages, 2)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	tr := FromState("0123456789abcdef", time.Now(), sampleState(t))

	path, err := ExportToFile(tr, NewMarkdownExporter(nil), &Options{OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "ragdesk_01234567_"))
	assert.True(t, strings.HasSuffix(path, ".md"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "What is Titan?")
}

func TestExportToFile_Empty(t *testing.T) {
	_, err := ExportToFile(&Transcript{}, NewJSONExporter(nil), &Options{OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestForFormat(t *testing.T) {
	e, err := ForFormat("MD", nil)
	require.NoError(t, err)
	assert.Equal(t, ".md", e.FileExtension())

	e, err = ForFormat("json", nil)
	require.NoError(t, err)
	assert.Equal(t, ".json", e.FileExtension())

	_, err = ForFormat("pdf", nil)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "abc"},
		{"a/b:c", "a-b-c"},
		{"a b", "a_b"},
		{"", "session"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}
