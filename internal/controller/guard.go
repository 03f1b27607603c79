// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

// Guard is a semaphore of capacity one.
type Guard struct {
	sem chan struct{}
}

// NewGuard creates a released guard.
func NewGuard() *Guard {
	return &Guard{sem: make(chan struct{}, 1)}
}

// TryAcquire takes the guard if it is free and reports whether it did.
func (g *Guard) TryAcquire() bool {
	select {
	case g.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the guard. Releasing a free guard does nothing.
func (g *Guard) Release() {
	select {
	case <-g.sem:
	default:
	}
}

// Busy reports whether the guard is held.
func (g *Guard) Busy() bool {
	return len(g.sem) == 1
}
