// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// eval.go - Built-in end-to-end evaluation.
//
// eval resets the backend, ingests a knowledge base, sends every test
// question in one combined request and prints the answer, the citations
// and the expected answers for manual comparison.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/ragdesk/internal/controller"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/render"
	"github.com/jeranaias/ragdesk/internal/session"
)

// evalExcerptLength is the citation excerpt length in eval output.
const evalExcerptLength = 50

// EvalKnowledgeBase is the default knowledge base for eval.
const EvalKnowledgeBase = `
*** PROJECT TITAN: INTERNAL MEMO ***
Project Titan is a secret initiative to develop a solar-powered coffee machine for deep-space missions.
Lead Engineer: Dr. Aris Thorne.
Budget: $5.2 Billion.
Key Feature: "Zero-G Brewing" technology using centrifugal force to separate liquid from grounds.
Launch Date: Expected Q3 2028 onboard the Mars Vessel 'Ares V'.
Constraints: Cannot use boiling water (safety hazard); uses super-heated steam instead.
`

// EvalCase is one test question and what a good answer contains.
type EvalCase struct {
	Kind     string `json:"type"`
	Question string `json:"question"`
	Expected string `json:"expected"`
}

// EvalCases are the default test questions.
var EvalCases = []EvalCase{
	{Kind: "Specific (Fact)", Question: "What is the budget for Project Titan?", Expected: "$5.2 Billion"},
	{Kind: "Specific (Reasoning)", Question: "How does it brew coffee without gravity?", Expected: "Centrifugal force / Zero-G Brewing"},
	{Kind: "Specific (Constraint)", Question: "Why can't they use boiling water?", Expected: "Safety hazard / Uses steam instead"},
	{Kind: "General Knowledge (Hybrid Test)", Question: "Who is the CEO of Tesla?", Expected: "Elon Musk (Should answer from general knowledge)"},
	{Kind: "Out of Context (Hallucination Check)", Question: "What is the top speed of the X-9000 Scooter?", Expected: "Should say not found or answer generically (Project Titan doc doesn't mention scooters)"},
}

// CombinedQuestion joins cases into one numbered question.
func CombinedQuestion(cases []EvalCase) string {
	var sb strings.Builder
	sb.WriteString("Please answer these questions individually:\n")
	for i, c := range cases {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, c.Question))
	}
	return sb.String()
}

// EvalData is the --json payload of eval.
type EvalData struct {
	KnowledgeChars int              `json:"knowledge_chars"`
	Chunks         int              `json:"chunks"`
	Question       string           `json:"question"`
	Answer         string           `json:"answer"`
	Citations      []model.Citation `json:"citations"`
	Latency        float64          `json:"latency_seconds"`
	Cases          []EvalCase       `json:"cases"`
}

// RunEval handles the "eval" command.
func RunEval(ctx context.Context, env *Env, args Args) error {
	kb := EvalKnowledgeBase
	if args.File != "" {
		text, err := env.ReadText("eval", "", args.File)
		if err != nil {
			return err
		}
		kb = text
	}
	out := env.Stdout
	say := func(format string, a ...interface{}) {
		if !args.JSON {
			fmt.Fprintf(out, format, a...)
		}
	}
	reporter := env.Reporter(Args{Quiet: true})

	say("%s\n\n", TitleStyle.Render("STARTING EVALUATION..."))

	say("Resetting Knowledge Base... ")
	if err := controller.NewReset(env.Client, reporter).Do(ctx); err != nil {
		say("%s\n", ErrorStyle.Render("Failed (Is server running?)"))
		return err
	}
	say("Done.\n")

	say("Ingesting Knowledge Base... ")
	ingestion := controller.NewIngestion(env.Client, session.NewStore(), reporter)
	result, err := ingestion.Ingest(ctx, kb)
	if err != nil {
		say("%s %s\n", ErrorStyle.Render("Failed:"), controller.FailureText(err))
		return err
	}
	say("Success (%d chars, %d chunks)\n", len([]rune(kb)), result.Chunks)

	question := CombinedQuestion(EvalCases)
	say("\nRunning Q/A Test Set...\n%s\n", Separator(80))
	say("Sending Payload:\n%s\n%s\n", strings.TrimSpace(question), strings.Repeat("-", 40))

	start := time.Now()
	resp, err := env.Client.Chat(ctx, question)
	latency := time.Since(start).Seconds()
	if err != nil {
		say("%s %s\n", ErrorStyle.Render("Error asking batch question:"), controller.FailureText(err))
		return err
	}

	if args.JSON {
		return NewJSONResponse("eval", EvalData{
			KnowledgeChars: len([]rune(kb)),
			Chunks:         result.Chunks,
			Question:       question,
			Answer:         resp.Answer,
			Citations:      resp.Citations,
			Latency:        latency,
			Cases:          EvalCases,
		}).Print(out)
	}

	say("Model Response (%.2fs):\n%s\n%s\n", latency, render.Sanitize(resp.Answer), strings.Repeat("-", 40))
	if len(resp.Citations) > 0 {
		say("Citations Used: %d\n", len(resp.Citations))
		for _, c := range resp.Citations {
			say("   - [%s] %s\n", render.Sanitize(string(c.ID)), render.Excerpt(render.Sanitize(c.Text), evalExcerptLength))
		}
	} else {
		say("Citations: None (General Knowledge or Logic).\n")
	}

	say("\nComparison (Check above answer against these):\n")
	for i, c := range EvalCases {
		say("   Q%d Expected: '%s'\n", i+1, c.Expected)
	}
	say("\n%s\n", SuccessStyle.Render("EVALUATION COMPLETE."))
	return nil
}
