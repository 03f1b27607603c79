// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// reset.go - Wipe the backend knowledge store.
package cli

import (
	"context"

	"github.com/jeranaias/ragdesk/internal/controller"
)

// ResetData is the --json payload of reset.
type ResetData struct {
	Status string `json:"status"`
}

// RunReset handles the "reset" command.
func RunReset(ctx context.Context, env *Env, args Args) error {
	if err := controller.NewReset(env.Client, env.Reporter(args)).Do(ctx); err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("reset", ResetData{Status: controller.ResetDoneStatus}).Print(env.Stdout)
	}
	return nil
}
