// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/session"
	"github.com/jeranaias/ragdesk/internal/status"
)

// Ingestion status lines.
const (
	IngestBusyStatus = "Chunking & Embedding..."
)

// =============================================================================
// INGESTION CONTROLLER
// =============================================================================

// Ingestion adds operator text to the remote knowledge base.
type Ingestion struct {
	backend  Ingester
	store    Store
	reporter status.Reporter
	surface  InputSurface
	guard    *Guard
	now      func() time.Time
}

// NewIngestion creates an ingestion controller. reporter may be nil.
func NewIngestion(backend Ingester, store Store, reporter status.Reporter) *Ingestion {
	if reporter == nil {
		reporter = status.Discard
	}
	return &Ingestion{
		backend:  backend,
		store:    store,
		reporter: reporter,
		guard:    NewGuard(),
		now:      time.Now,
	}
}

// SetSurface attaches the input the controller clears after a success.
func (c *Ingestion) SetSurface(s InputSurface) {
	c.surface = s
}

// InFlight reports whether an ingestion is unsettled.
func (c *Ingestion) InFlight() bool {
	return c.guard.Busy()
}

// PendingIngest is an accepted ingestion awaiting its backend call.
type PendingIngest struct {
	c       *Ingestion
	text    string
	started time.Time
	once    sync.Once
}

// Text returns the text being ingested, exactly as submitted.
func (p *PendingIngest) Text() string {
	return p.text
}

// Begin validates rawText and, if accepted, marks ingestion in flight.
// Blank text returns ErrEmptyText without touching state; a second call
// before the first settles returns ErrBusy.
func (c *Ingestion) Begin(rawText string) (*PendingIngest, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrEmptyText
	}
	if !c.guard.TryAcquire() {
		log.Printf("INGEST_REJECTED | reason=busy")
		return nil, ErrBusy
	}

	if _, err := c.store.Update(func(s session.State) (session.State, error) {
		return s.WithIngestInFlight(true), nil
	}); err != nil {
		c.guard.Release()
		return nil, err
	}
	c.reporter.Report(status.RegionIngest, IngestBusyStatus)
	log.Printf("INGEST_START | chars=%d", len([]rune(rawText)))

	return &PendingIngest{c: c, text: rawText, started: c.now()}, nil
}

// Run performs the /ingest call.
func (p *PendingIngest) Run(ctx context.Context) Outcome[model.IngestResult] {
	return Await(ctx, func(ctx context.Context) (model.IngestResult, error) {
		return p.c.backend.Ingest(ctx, p.text)
	})
}

// Settle applies the outcome: on success the text joins the knowledge log
// and the input is cleared; on failure only the status changes. The guard
// is released either way. Settle returns the outcome's error.
func (p *PendingIngest) Settle(o Outcome[model.IngestResult]) error {
	settled := false
	p.once.Do(func() { settled = true })
	if !settled {
		return ErrSettled
	}
	c := p.c
	defer c.guard.Release()

	elapsed := c.now().Sub(p.started).Round(time.Millisecond)

	if o.Err != nil {
		_, _ = c.store.Update(func(s session.State) (session.State, error) {
			return s.WithIngestInFlight(false), nil
		})
		c.reporter.Report(status.RegionIngest, FailureText(o.Err))
		log.Printf("INGEST_ERROR | elapsed=%s err=%v", elapsed, o.Err)
		return o.Err
	}

	entry := model.KnowledgeLogEntry{Timestamp: c.now(), Text: p.text}
	if _, err := c.store.Update(func(s session.State) (session.State, error) {
		return s.AppendKnowledge(entry).WithIngestInFlight(false), nil
	}); err != nil {
		// The entry could not be recorded; still clear the flag.
		_, _ = c.store.Update(func(s session.State) (session.State, error) {
			return s.WithIngestInFlight(false), nil
		})
		c.reporter.Report(status.RegionIngest, "Error: "+err.Error())
		log.Printf("INGEST_SETTLE_ERROR | err=%v", err)
		return err
	}
	c.reporter.Report(status.RegionIngest, fmt.Sprintf("Success! Indexed %d chunks.", o.Value.Chunks))
	if c.surface != nil {
		c.surface.ClearInput()
	}
	log.Printf("INGEST_COMPLETE | chunks=%d elapsed=%s", o.Value.Chunks, elapsed)
	return nil
}

// Ingest runs Begin, Run and Settle in sequence.
func (c *Ingestion) Ingest(ctx context.Context, rawText string) (model.IngestResult, error) {
	p, err := c.Begin(rawText)
	if err != nil {
		return model.IngestResult{}, err
	}
	o := p.Run(ctx)
	if err := p.Settle(o); err != nil {
		return model.IngestResult{}, err
	}
	return o.Value, nil
}
