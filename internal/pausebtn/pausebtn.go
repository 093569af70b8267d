// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pausebtn polls a GPIO-attached pushbutton and distinguishes a
// long press (transition to EXITING) from a short press (disarm only),
// per spec 5.
package pausebtn

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/relabs-tech/flightcore/internal/runtime"
)

// pollPeriod is how often the button level is sampled.
const pollPeriod = 20 * time.Millisecond

// LongPressThreshold is how long the button must be held to count as a
// long press rather than a short one.
const LongPressThreshold = 1500 * time.Millisecond

// inPin is the narrow slice of gpio.PinIO pausebtn needs.
type inPin interface {
	Read() gpio.Level
}

// Button polls a pull-up active-low pushbutton.
type Button struct {
	pin     inPin
	runtime *runtime.Controller
	OnShort func()

	pressedAt time.Time
	wasDown   bool
}

// NewButton resolves the configured GPIO pin name and wires it as an
// input with a pull-up, consistent with an active-low pushbutton to
// ground.
func NewButton(pinName string, rt *runtime.Controller, onShort func()) (*Button, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("pausebtn: no such GPIO pin %q", pinName)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("pausebtn: init button pin: %w", err)
	}
	return newButton(pin, rt, onShort), nil
}

func newButton(pin inPin, rt *runtime.Controller, onShort func()) *Button {
	return &Button{pin: pin, runtime: rt, OnShort: onShort}
}

// Run polls at pollPeriod until the runtime controller enters EXITING
// (which this goroutine itself may cause, on a long press).
func (b *Button) Run() {
	ticker := time.NewTicker(pollPeriod)
	defer ticker.Stop()
	for b.runtime.Running() {
		b.poll()
		<-ticker.C
	}
}

func (b *Button) poll() {
	down := b.pin.Read() == gpio.Low
	switch {
	case down && !b.wasDown:
		b.wasDown = true
		b.pressedAt = time.Now()
	case down && b.wasDown:
		if time.Since(b.pressedAt) >= LongPressThreshold {
			b.runtime.OnLongPress()
		}
	case !down && b.wasDown:
		b.wasDown = false
		if time.Since(b.pressedAt) < LongPressThreshold {
			b.runtime.OnShortPress(b.OnShort)
		}
	}
}
