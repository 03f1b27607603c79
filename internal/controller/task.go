// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"fmt"
	"log"
)

// Outcome is the typed result of an asynchronous request: a value or an error.
type Outcome[T any] struct {
	Value T
	Err   error
}

// OK reports whether the request succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Await runs fn and captures its result. A panic in fn becomes the error.
func Await[T any](ctx context.Context, fn func(context.Context) (T, error)) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("TASK_PANIC | %v", r)
			out = Outcome[T]{Err: fmt.Errorf("request panicked: %v", r)}
		}
	}()
	v, err := fn(ctx)
	return Outcome[T]{Value: v, Err: err}
}
