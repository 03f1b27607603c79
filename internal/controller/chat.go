// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/ragdesk/internal/backend"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/render"
	"github.com/jeranaias/ragdesk/internal/session"
	"github.com/jeranaias/ragdesk/internal/status"
)

// Chat placeholder and status lines.
const (
	ThinkingPlaceholder = "Thinking..."
	ChatBusyStatus      = "Waiting for answer..."
	GenericServerIssue  = "Server issue"
)

// =============================================================================
// CHAT CONTROLLER
// =============================================================================

// Chat asks questions and records the answers in the session's chat log.
type Chat struct {
	backend  Asker
	renderer ResponseRenderer
	store    Store
	reporter status.Reporter
	surface  ChatSurface
	guard    *Guard
}

// NewChat creates a chat controller. reporter may be nil.
func NewChat(backend Asker, renderer ResponseRenderer, store Store, reporter status.Reporter) *Chat {
	if reporter == nil {
		reporter = status.Discard
	}
	return &Chat{
		backend:  backend,
		renderer: renderer,
		store:    store,
		reporter: reporter,
		guard:    NewGuard(),
	}
}

// SetSurface attaches the display the controller clears and scrolls.
func (c *Chat) SetSurface(s ChatSurface) {
	c.surface = s
}

// InFlight reports whether a question is unsettled.
func (c *Chat) InFlight() bool {
	return c.guard.Busy()
}

// PendingChat is an accepted question awaiting its answer.
type PendingChat struct {
	c        *Chat
	question string
	userID   string
	replyID  string
	once     sync.Once
}

// Question returns the submitted question.
func (p *PendingChat) Question() string { return p.question }

// ReplyID returns the ID of the assistant placeholder.
func (p *PendingChat) ReplyID() string { return p.replyID }

// Submit accepts a question: the user message and a pending assistant
// placeholder are appended, the input is cleared, and chat is marked in
// flight. Blank questions return ErrEmptyQuestion and change nothing; a
// question asked while another is unsettled returns ErrBusy.
func (c *Chat) Submit(question string) (*PendingChat, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if !c.guard.TryAcquire() {
		log.Printf("CHAT_REJECTED | reason=busy")
		return nil, ErrBusy
	}

	user := model.NewUserMessage(question)
	reply := model.NewPendingAssistantMessage(ThinkingPlaceholder)
	if _, err := c.store.Update(func(s session.State) (session.State, error) {
		return s.AppendMessages(user, reply).WithChatInFlight(true), nil
	}); err != nil {
		c.guard.Release()
		return nil, err
	}

	c.reporter.Report(status.RegionChat, ChatBusyStatus)
	if c.surface != nil {
		c.surface.ClearInput()
		c.surface.ScrollToLatest()
	}
	log.Printf("CHAT_SUBMIT | id=%s chars=%d", reply.ID, len([]rune(question)))

	return &PendingChat{c: c, question: question, userID: user.ID, replyID: reply.ID}, nil
}

// Run performs the /chat call.
func (p *PendingChat) Run(ctx context.Context) Outcome[model.ChatResponse] {
	return Await(ctx, func(ctx context.Context) (model.ChatResponse, error) {
		return p.c.backend.Chat(ctx, p.question)
	})
}

// Settle resolves the placeholder from the outcome and releases the guard.
// It returns the settled assistant message and the outcome's error.
func (p *PendingChat) Settle(o Outcome[model.ChatResponse]) (model.ChatMessage, error) {
	settled := false
	p.once.Do(func() { settled = true })
	if !settled {
		return model.ChatMessage{}, ErrSettled
	}
	c := p.c
	defer c.guard.Release()
	defer func() {
		if c.surface != nil {
			c.surface.ScrollToLatest()
		}
	}()

	var final model.ChatMessage
	state, err := c.store.Update(func(s session.State) (session.State, error) {
		placeholder, ok := s.Message(p.replyID)
		if !ok {
			return s, fmt.Errorf("%w: %s", session.ErrUnknownMessage, p.replyID)
		}

		var next model.ChatMessage
		var err error
		if o.Err == nil {
			next, err = placeholder.Complete(c.renderer.Render(o.Value), o.Value.TimeTaken)
		} else {
			next, err = placeholder.Fail(FailureText(o.Err))
		}
		if err != nil {
			return s, err
		}
		final = next

		s, err = s.SettleMessage(next)
		if err != nil {
			return s, err
		}
		return s.WithChatInFlight(false), nil
	})
	if err != nil {
		// The placeholder could not be settled; still clear the flag.
		_, _ = c.store.Update(func(s session.State) (session.State, error) {
			return s.WithChatInFlight(false), nil
		})
		log.Printf("CHAT_SETTLE_ERROR | id=%s err=%v", p.replyID, err)
		return model.ChatMessage{}, err
	}

	if o.Err != nil {
		c.reporter.Report(status.RegionChat, final.Text)
		log.Printf("CHAT_ERROR | id=%s type=%s err=%v", p.replyID, backend.Classify(o.Err), o.Err)
		return final, o.Err
	}

	c.reporter.Report(status.RegionChat, fmt.Sprintf("Answered in %.2fs", o.Value.TimeTaken))
	log.Printf("CHAT_COMPLETE | id=%s citations=%d time_taken=%.3f messages=%d",
		p.replyID, len(o.Value.Citations), o.Value.TimeTaken, state.MessageCount())
	return final, nil
}

// Send runs Submit, Run and Settle in sequence.
func (c *Chat) Send(ctx context.Context, question string) (model.ChatMessage, error) {
	p, err := c.Submit(question)
	if err != nil {
		return model.ChatMessage{}, err
	}
	return p.Settle(p.Run(ctx))
}

// FailureText is the inline text shown in place of an answer that failed.
// Server detail is kept verbatim apart from terminal control sequences.
func FailureText(err error) string {
	var connErr *backend.ConnectionError
	if errors.As(err, &connErr) {
		return "Connection Error: " + render.Sanitize(connErr.Error())
	}
	detail := backend.Detail(err)
	switch backend.Classify(err) {
	case backend.ErrTypeServer, backend.ErrTypeMalformed:
		if detail == "" {
			detail = GenericServerIssue
		}
	default:
		if detail == "" {
			detail = err.Error()
		}
	}
	return "Error: " + render.Sanitize(detail)
}
