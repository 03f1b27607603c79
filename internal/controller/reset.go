// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"log"

	"github.com/jeranaias/ragdesk/internal/status"
)

// Reset status lines.
const (
	ResetBusyStatus   = "Resetting DB..."
	ResetDoneStatus   = "Memory Wiped & Ready"
	ResetFailedStatus = "Reset Failed"
)

// Reset wipes the backend at the start of a session. Failure is reported
// but never stops the session.
type Reset struct {
	backend  Resetter
	reporter status.Reporter
}

// NewReset creates a reset controller. reporter may be nil.
func NewReset(backend Resetter, reporter status.Reporter) *Reset {
	if reporter == nil {
		reporter = status.Discard
	}
	return &Reset{backend: backend, reporter: reporter}
}

// Begin shows the reset as in progress.
func (r *Reset) Begin() {
	r.reporter.Report(status.RegionReset, ResetBusyStatus)
}

// Run performs the /reset call.
func (r *Reset) Run(ctx context.Context) Outcome[struct{}] {
	return Await(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.backend.Reset(ctx)
	})
}

// Settle reports the outcome and returns its error.
func (r *Reset) Settle(o Outcome[struct{}]) error {
	if o.Err != nil {
		r.reporter.Report(status.RegionReset, ResetFailedStatus)
		log.Printf("RESET_ERROR | err=%v", o.Err)
		return o.Err
	}
	r.reporter.Report(status.RegionReset, ResetDoneStatus)
	log.Printf("RESET_COMPLETE")
	return nil
}

// Do runs Begin, Run and Settle in sequence.
func (r *Reset) Do(ctx context.Context) error {
	r.Begin()
	return r.Settle(r.Run(ctx))
}
