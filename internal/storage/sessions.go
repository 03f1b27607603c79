// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/ragdesk/internal/export"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSessionNotFound is returned when no saved session matches an ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAmbiguousID is returned when an ID prefix matches several sessions.
	ErrAmbiguousID = errors.New("session ID prefix matches more than one session")
)

// DefaultMaxSessions is how many sessions a new Store keeps.
const DefaultMaxSessions = 100

// previewLength is the rune length of SessionMeta.Preview.
const previewLength = 80

// =============================================================================
// TYPES
// =============================================================================

// SessionMeta contains metadata for listing sessions.
type SessionMeta struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	SavedAt        time.Time `json:"saved_at"`
	MessageCount   int       `json:"message_count"`
	KnowledgeCount int       `json:"knowledge_count"`
	Preview        string    `json:"preview"` // First question, truncated
}

// Store handles session persistence.
type Store struct {
	db *sql.DB

	// MaxSessions limits stored sessions; the least recently saved go first
	MaxSessions int
}

// =============================================================================
// OPEN / CLOSE
// =============================================================================

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(SchemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	log.Printf("HISTORY_OPEN | path=%s", path)
	return NewWithDB(db), nil
}

// NewWithDB wraps an already prepared database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, MaxSessions: DefaultMaxSessions}
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes t, replacing any earlier save of the same session, then
// prunes the oldest sessions beyond MaxSessions.
func (s *Store) Save(ctx context.Context, t *export.Transcript) error {
	if t.IsEmpty() {
		return export.ErrEmptyTranscript
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, saved_at, preview, message_count, knowledge_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			saved_at = excluded.saved_at,
			preview = excluded.preview,
			message_count = excluded.message_count,
			knowledge_count = excluded.knowledge_count`,
		t.SessionID, t.StartedAt.UnixNano(), now.UnixNano(), preview(t),
		len(t.Messages), len(t.Knowledge),
	); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	for _, q := range []string{
		`DELETE FROM messages WHERE session_id = ?`,
		`DELETE FROM knowledge WHERE session_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, t.SessionID); err != nil {
			return fmt.Errorf("clear session rows: %w", err)
		}
	}

	for i, m := range t.Messages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (session_id, seq, id, role, status, text, created_at, time_taken)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.SessionID, i, m.ID, string(m.Role), string(m.Status), m.Text,
			m.Timestamp.UnixNano(), m.TimeTaken,
		); err != nil {
			return fmt.Errorf("save message %d: %w", i, err)
		}
	}
	for i, k := range t.Knowledge {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO knowledge (session_id, seq, created_at, text) VALUES (?, ?, ?, ?)`,
			t.SessionID, i, k.Timestamp.UnixNano(), k.Text,
		); err != nil {
			return fmt.Errorf("save knowledge entry %d: %w", i, err)
		}
	}

	if err := s.enforceLimit(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Printf("HISTORY_SAVE | id=%s messages=%d knowledge=%d", t.SessionID, len(t.Messages), len(t.Knowledge))
	return nil
}

// enforceLimit deletes the least recently saved sessions beyond MaxSessions.
func (s *Store) enforceLimit(ctx context.Context, tx *sql.Tx) error {
	if s.MaxSessions <= 0 {
		return nil
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY saved_at DESC LIMIT ?
		)`, s.MaxSessions)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	for _, q := range []string{
		`DELETE FROM messages WHERE session_id NOT IN (SELECT id FROM sessions)`,
		`DELETE FROM knowledge WHERE session_id NOT IN (SELECT id FROM sessions)`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("prune session rows: %w", err)
		}
	}
	return nil
}

// preview is the first question of t, or its first knowledge entry.
func preview(t *export.Transcript) string {
	for _, m := range t.Messages {
		if m.Role == model.RoleUser {
			return util.TruncateRunes(oneLine(m.Text), previewLength)
		}
	}
	if len(t.Knowledge) > 0 {
		return util.TruncateRunes("[ingest] "+oneLine(t.Knowledge[0].Text), previewLength)
	}
	return ""
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// =============================================================================
// LOAD
// =============================================================================

// Resolve returns the full ID of the session whose ID is prefix, or else
// the one session whose ID starts with prefix.
func (s *Store) Resolve(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrSessionNotFound
	}

	var exact string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM sessions WHERE id = ?`, prefix).Scan(&exact)
	if err == nil {
		return exact, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE substr(id, 1, length(?)) = ? LIMIT 2`, prefix, prefix)
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// Load reads the session whose ID is, or starts with, id.
func (s *Store) Load(ctx context.Context, id string) (*export.Transcript, error) {
	full, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	var started int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT started_at FROM sessions WHERE id = ?`, full,
	).Scan(&started); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, err
	}

	t := &export.Transcript{SessionID: full, StartedAt: time.Unix(0, started)}
	if t.Messages, err = s.loadMessages(ctx, full); err != nil {
		return nil, err
	}
	if t.Knowledge, err = s.loadKnowledge(ctx, full); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) loadMessages(ctx context.Context, id string) ([]model.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, status, text, created_at, time_taken
		FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		var role, status string
		var created int64
		if err := rows.Scan(&m.ID, &role, &status, &m.Text, &created, &m.TimeTaken); err != nil {
			return nil, err
		}
		m.Role = model.Role(role)
		m.Status = model.MessageStatus(status)
		m.Timestamp = time.Unix(0, created)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *Store) loadKnowledge(ctx context.Context, id string) ([]model.KnowledgeLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, text FROM knowledge WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load knowledge: %w", err)
	}
	defer rows.Close()

	var entries []model.KnowledgeLogEntry
	for rows.Next() {
		var k model.KnowledgeLogEntry
		var created int64
		if err := rows.Scan(&created, &k.Text); err != nil {
			return nil, err
		}
		k.Timestamp = time.Unix(0, created)
		entries = append(entries, k)
	}
	return entries, rows.Err()
}

// =============================================================================
// LIST / SEARCH / DELETE
// =============================================================================

const metaColumns = `id, started_at, saved_at, message_count, knowledge_count, preview`

// List returns all saved sessions, most recently saved first.
func (s *Store) List(ctx context.Context) ([]SessionMeta, error) {
	return s.queryMetas(ctx, `SELECT `+metaColumns+` FROM sessions ORDER BY saved_at DESC`)
}

// Search returns sessions whose messages or knowledge contain query,
// case-insensitively.
func (s *Store) Search(ctx context.Context, query string) ([]SessionMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	return s.queryMetas(ctx, `
		SELECT `+metaColumns+` FROM sessions WHERE id IN (
			SELECT session_id FROM messages WHERE instr(lower(text), lower(?)) > 0
			UNION
			SELECT session_id FROM knowledge WHERE instr(lower(text), lower(?)) > 0
		) ORDER BY saved_at DESC`, query, query)
}

func (s *Store) queryMetas(ctx context.Context, q string, args ...interface{}) ([]SessionMeta, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	metas := []SessionMeta{}
	for rows.Next() {
		var m SessionMeta
		var started, saved int64
		if err := rows.Scan(&m.ID, &started, &saved, &m.MessageCount, &m.KnowledgeCount, &m.Preview); err != nil {
			return nil, err
		}
		m.StartedAt = time.Unix(0, started)
		m.SavedAt = time.Unix(0, saved)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Delete removes the session whose ID is, or starts with, id.
func (s *Store) Delete(ctx context.Context, id string) (string, error) {
	full, err := s.Resolve(ctx, id)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, q := range []string{
		`DELETE FROM messages WHERE session_id = ?`,
		`DELETE FROM knowledge WHERE session_id = ?`,
		`DELETE FROM sessions WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, full); err != nil {
			return "", fmt.Errorf("delete session: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	log.Printf("HISTORY_DELETE | id=%s", full)
	return full, nil
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatSessionList formats sessions as a plain table.
func FormatSessionList(sessions []SessionMeta) string {
	if len(sessions) == 0 {
		return "No saved sessions."
	}

	var sb strings.Builder
	sb.WriteString(pad("ID", 10) + pad("Saved", 18) + pad("Msgs", 6) + pad("KB", 4) + "Preview\n")
	sb.WriteString(strings.Repeat("-", 78) + "\n")
	for _, s := range sessions {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		sb.WriteString(pad(id, 10) +
			pad(s.SavedAt.Format("2006-01-02 15:04"), 18) +
			pad(strconv.Itoa(s.MessageCount), 6) +
			pad(strconv.Itoa(s.KnowledgeCount), 4) +
			util.TruncateWidth(s.Preview, 40) + "\n")
	}
	return sb.String()
}

// pad left-aligns s in a column of width cells.
func pad(s string, width int) string {
	if w := util.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s + " "
}
