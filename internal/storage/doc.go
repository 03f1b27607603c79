// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps finished ragdesk sessions in a SQLite database.
//
// A session is stored as an export.Transcript: its chat log and its
// knowledge log, in order. Saving a session again replaces its rows.
//
// # Key Types
//
//   - Store: the database handle
//   - SessionMeta: lightweight row for listing
//
// # Usage
//
//	store, err := storage.Open(path)
//	defer store.Close()
//	err = store.Save(ctx, transcript)
//
//	metas, err := store.List(ctx)
//	t, err := store.Load(ctx, metas[0].ID[:8])
//
// # Storage Location
//
// ~/.ragdesk/sessions.db unless history.path is set.
package storage
