// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question.
//
// Examples:
//
//	ragdesk ask "What is the budget for Project Titan?"
//	ragdesk ask --html "Who leads it?" > answer.html
//	echo "Who leads it?" | ragdesk ask --json
package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/ragdesk/internal/controller"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/render"
	"github.com/jeranaias/ragdesk/internal/session"
)

// AskData is the --json payload of ask.
type AskData struct {
	Question  string           `json:"question"`
	Answer    string           `json:"answer"`
	Rendered  string           `json:"rendered"`
	Citations []model.Citation `json:"citations"`
	TimeTaken float64          `json:"time_taken"`
}

// answerRecorder keeps the raw response next to the rendered text so
// --json can report both.
type answerRecorder struct {
	next controller.ResponseRenderer
	last model.ChatResponse
}

func (r *answerRecorder) Render(resp model.ChatResponse) string {
	r.last = resp
	return r.next.Render(resp)
}

// RunAsk handles the "ask" command.
func RunAsk(ctx context.Context, env *Env, args Args) error {
	question, err := env.ReadText("ask", args.Query, args.File)
	if err != nil {
		return err
	}

	format := render.FormatTerminal
	if args.HTML {
		format = render.FormatHTML
	}
	recorder := &answerRecorder{next: env.Renderer(format)}
	chat := controller.NewChat(env.Client, recorder, session.NewStore(), env.Reporter(args))

	reply, err := chat.Send(ctx, question)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			Question:  question,
			Answer:    recorder.last.Answer,
			Rendered:  reply.Text,
			Citations: recorder.last.Citations,
			TimeTaken: recorder.last.TimeTaken,
		}).Print(env.Stdout)
	}
	fmt.Fprintln(env.Stdout, reply.Text)
	return nil
}
