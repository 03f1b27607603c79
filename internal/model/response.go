// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// CITATIONS
// =============================================================================

// CitationID is a citation label. The backend sends integers, but string
// labels are accepted as well and printed verbatim.
type CitationID string

// UnmarshalJSON accepts a JSON number or string.
func (c *CitationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CitationID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("citation id must be a number or string: %w", err)
	}
	*c = CitationID(n.String())
	return nil
}

// MarshalJSON writes integer labels as numbers and everything else as strings.
func (c CitationID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(c), 10, 64); err == nil {
		return []byte(c), nil
	}
	return json.Marshal(string(c))
}

// String returns the label.
func (c CitationID) String() string {
	return string(c)
}

// Citation references a source chunk supporting an answer.
type Citation struct {
	ID   CitationID `json:"id" validate:"required"`
	Text string     `json:"text"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// ChatResponse is the decoded answer to a question.
type ChatResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	TimeTaken float64    `json:"time_taken"`
}

// Latency returns TimeTaken as a duration.
func (r ChatResponse) Latency() time.Duration {
	return time.Duration(r.TimeTaken * float64(time.Second))
}

// IngestResult is the decoded outcome of an ingestion.
type IngestResult struct {
	Chunks int    `json:"chunks"`
	Status string `json:"status,omitempty"`
}

// =============================================================================
// KNOWLEDGE LOG
// =============================================================================

// KnowledgeLogEntry records text that was successfully indexed.
type KnowledgeLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// NewKnowledgeLogEntry stamps text with the current time.
func NewKnowledgeLogEntry(text string) KnowledgeLogEntry {
	return KnowledgeLogEntry{Timestamp: time.Now(), Text: text}
}

// Header returns the display header, e.g. "[Update @ 14:03:27]".
func (e KnowledgeLogEntry) Header() string {
	return "[Update @ " + e.Timestamp.Format("15:04:05") + "]"
}
