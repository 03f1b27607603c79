// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a session transcript to disk.
//
// # Key Types
//
//   - Transcript: A frozen copy of a session's chat log and knowledge log
//   - Exporter: Format interface (Markdown, JSON)
//   - Options: Output directory and metadata switches
//
// # Usage
//
//	t := export.FromState(store.ID(), store.StartTime(), store.Snapshot())
//	path, err := export.ExportToFile(t, export.NewMarkdownExporter(nil), opts)
package export
