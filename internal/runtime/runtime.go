// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package runtime holds the process-wide run state every soft-real-time
// goroutine polls once per period, and the pause-button semantics that
// drive it (spec 5: RUNNING/PAUSED/EXITING).
package runtime

import "sync/atomic"

type State int32

const (
	Running State = iota
	Paused
	Exiting
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Exiting:
		return "EXITING"
	default:
		return "UNKNOWN"
	}
}

// Controller is the shared, lock-free run-state latch.
type Controller struct {
	state atomic.Int32
}

func New() *Controller {
	return &Controller{}
}

func (c *Controller) Get() State {
	return State(c.state.Load())
}

func (c *Controller) Set(s State) {
	c.state.Store(int32(s))
}

// Running reports whether soft threads should keep looping (not EXITING).
func (c *Controller) Running() bool {
	return c.Get() != Exiting
}

// OnLongPress transitions to EXITING (spec 5: long press of the pause
// button).
func (c *Controller) OnLongPress() {
	c.Set(Exiting)
}

// OnShortPress is provided for callers that want to route a short press
// through the controller; the disarm side effect itself lives with
// whoever holds the CoreSetpoint (a short press disarms only, spec 5).
func (c *Controller) OnShortPress(disarm func()) {
	if c.Get() == Exiting {
		return
	}
	disarm()
}
