// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragdesk/internal/export"
	"github.com/jeranaias/ragdesk/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTranscript(id string) *export.Transcript {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return &export.Transcript{
		SessionID: id,
		StartedAt: start,
		Messages: []model.ChatMessage{
			{ID: "u1", Role: model.RoleUser, Text: "What is the\nbudget?", Status: model.StatusComplete, Timestamp: start.Add(time.Minute)},
			{ID: "a1", Role: model.RoleAssistant, Text: "$5.2 Billion [1]", Status: model.StatusComplete, Timestamp: start.Add(2 * time.Minute), TimeTaken: 1.25},
		},
		Knowledge: []model.KnowledgeLogEntry{
			{Timestamp: start, Text: "Project Titan budget memo"},
		},
	}
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

func TestSaveAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	in := sampleTranscript("0f8fad5b-d9cb-469f-a165-70867728950e")

	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx, in.SessionID)
	require.NoError(t, err)
	assert.Equal(t, in.SessionID, out.SessionID)
	assert.True(t, in.StartedAt.Equal(out.StartedAt))
	require.Len(t, out.Messages, 2)
	assert.Equal(t, model.RoleUser, out.Messages[0].Role)
	assert.Equal(t, "What is the\nbudget?", out.Messages[0].Text)
	assert.Equal(t, model.StatusComplete, out.Messages[1].Status)
	assert.InDelta(t, 1.25, out.Messages[1].TimeTaken, 1e-9)
	assert.True(t, in.Messages[1].Timestamp.Equal(out.Messages[1].Timestamp))
	require.Len(t, out.Knowledge, 1)
	assert.Equal(t, "Project Titan budget memo", out.Knowledge[0].Text)
}

func TestSaveReplacesEarlierSave(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	tr := sampleTranscript("session-a")
	require.NoError(t, store.Save(ctx, tr))

	tr.Messages = tr.Messages[:1]
	tr.Knowledge = append(tr.Knowledge, model.KnowledgeLogEntry{Timestamp: time.Now(), Text: "second"})
	require.NoError(t, store.Save(ctx, tr))

	out, err := store.Load(ctx, "session-a")
	require.NoError(t, err)
	assert.Len(t, out.Messages, 1)
	assert.Len(t, out.Knowledge, 2)

	metas, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, 1, metas[0].MessageCount)
	assert.Equal(t, 2, metas[0].KnowledgeCount)
}

func TestSaveEmptyTranscript(t *testing.T) {
	store := openTestStore(t)
	err := store.Save(context.Background(), &export.Transcript{SessionID: "x"})
	assert.ErrorIs(t, err, export.ErrEmptyTranscript)
}

func TestLoadByPrefix(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleTranscript("abc123")))
	require.NoError(t, store.Save(ctx, sampleTranscript("abd456")))
	require.NoError(t, store.Save(ctx, sampleTranscript("ab")))

	out, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", out.SessionID)

	out, err = store.Load(ctx, "ab")
	require.NoError(t, err, "an exact ID wins over prefix matches")
	assert.Equal(t, "ab", out.SessionID)

	_, err = store.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = store.Load(ctx, "zzz")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Load(ctx, "  ")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// =============================================================================
// LIST / SEARCH / DELETE
// =============================================================================

func TestListOrderAndPreview(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := sampleTranscript("first")
	require.NoError(t, store.Save(ctx, first))

	kbOnly := &export.Transcript{
		SessionID: "second",
		StartedAt: time.Now(),
		Knowledge: []model.KnowledgeLogEntry{{Timestamp: time.Now(), Text: "only   knowledge\nhere"}},
	}
	require.NoError(t, store.Save(ctx, kbOnly))

	metas, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "second", metas[0].ID)
	assert.Equal(t, "[ingest] only knowledge here", metas[0].Preview)
	assert.Equal(t, "first", metas[1].ID)
	assert.Equal(t, "What is the budget?", metas[1].Preview)
}

func TestListEmpty(t *testing.T) {
	store := openTestStore(t)
	metas, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, metas)
	assert.Equal(t, "No saved sessions.", FormatSessionList(metas))
}

func TestSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleTranscript("titan")))

	other := sampleTranscript("other")
	other.Messages[0].Text = "Who is the CEO?"
	other.Messages[1].Text = "Elon Musk"
	other.Knowledge[0].Text = "unrelated"
	require.NoError(t, store.Save(ctx, other))

	metas, err := store.Search(ctx, "TITAN")
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "titan", metas[0].ID)

	metas, err = store.Search(ctx, "musk")
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "other", metas[0].ID)

	metas, err = store.Search(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, metas)

	metas, err = store.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleTranscript("doomed-session")))

	full, err := store.Delete(ctx, "doomed")
	require.NoError(t, err)
	assert.Equal(t, "doomed-session", full)

	_, err = store.Load(ctx, full)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Delete(ctx, full)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMaxSessionsPrunesOldest(t *testing.T) {
	store := openTestStore(t)
	store.MaxSessions = 2
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Save(ctx, sampleTranscript(fmt.Sprintf("s%d", i))))
	}

	metas, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "s3", metas[0].ID)
	assert.Equal(t, "s2", metas[1].ID)

	_, err = store.Load(ctx, "s0")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	metas, err = store.Search(ctx, "budget")
	require.NoError(t, err)
	assert.Len(t, metas, 2, "pruned sessions leave no searchable rows")
}

func TestFormatSessionList(t *testing.T) {
	out := FormatSessionList([]SessionMeta{{
		ID:             "0f8fad5b-d9cb-469f-a165-70867728950e",
		SavedAt:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		MessageCount:   4,
		KnowledgeCount: 1,
		Preview:        strings.Repeat("x", 60),
	}})

	assert.Contains(t, out, "0f8fad5b ")
	assert.NotContains(t, out, "0f8fad5b-d9cb")
	assert.Contains(t, out, "2026-03-01 10:00")
	assert.NotContains(t, out, strings.Repeat("x", 41))
}

// =============================================================================
// DATABASE FAILURES
// =============================================================================

func TestSaveRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sessions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM messages").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM knowledge").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO messages").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = NewWithDB(db).Save(context.Background(), sampleTranscript("s"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save message 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM sessions").WillReturnError(errors.New("database is locked"))

	_, err = NewWithDB(db).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	saved := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "started_at", "saved_at", "message_count", "knowledge_count", "preview"}).
		AddRow("abc", saved.Add(-time.Hour).UnixNano(), saved.UnixNano(), 2, 1, "hi")
	mock.ExpectQuery("SELECT (.+) FROM sessions ORDER BY saved_at DESC").WillReturnRows(rows)

	metas, err := NewWithDB(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.True(t, saved.Equal(metas[0].SavedAt))
	assert.Equal(t, "hi", metas[0].Preview)
	assert.NoError(t, mock.ExpectationsWereMet())
}
