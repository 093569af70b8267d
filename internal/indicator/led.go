// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package indicator drives the two-LED arm-state signal and the OLED
// status renderer (spec 4.8): red flash while disarmed, solid green
// while armed.
package indicator

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/runtime"
)

// FlashPeriod is the half-period of the disarmed red flash (1 Hz full
// cycle, spec 4.8).
const FlashPeriod = 500 * time.Millisecond

// outPin is the narrow slice of gpio.PinIO that LED needs, so tests can
// supply a fake without implementing periph.io's full pin interface.
type outPin interface {
	Out(l gpio.Level) error
}

// LED drives the red/green arm-state pair.
type LED struct {
	red, green outPin
	Setpoint   *core.Setpoint
	runtime    *runtime.Controller

	toggle bool
}

// NewLED resolves the configured GPIO pin names and wires them as
// outputs, starting both LOW.
func NewLED(redPin, greenPin string, sp *core.Setpoint, rt *runtime.Controller) (*LED, error) {
	red := gpioreg.ByName(redPin)
	if red == nil {
		return nil, fmt.Errorf("indicator: no such GPIO pin %q for red LED", redPin)
	}
	green := gpioreg.ByName(greenPin)
	if green == nil {
		return nil, fmt.Errorf("indicator: no such GPIO pin %q for green LED", greenPin)
	}
	return newLED(red, green, sp, rt)
}

func newLED(red, green outPin, sp *core.Setpoint, rt *runtime.Controller) (*LED, error) {
	if err := red.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("indicator: init red LED: %w", err)
	}
	if err := green.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("indicator: init green LED: %w", err)
	}
	return &LED{red: red, green: green, Setpoint: sp, runtime: rt}, nil
}

// Run ticks the LED state at FlashPeriod until the runtime controller
// enters EXITING.
func (l *LED) Run() {
	ticker := time.NewTicker(FlashPeriod)
	defer ticker.Stop()
	for l.runtime.Running() {
		l.tick()
		<-ticker.C
	}
	_ = l.red.Out(gpio.Low)
	_ = l.green.Out(gpio.Low)
}

// tick advances one half-period of LED state. While armed, green is
// held solid and red stays off. While disarmed, red alternates once
// per call — an upstream toggle bookkeeping quirk reassigned the same
// value on both branches of its conditional, but the observable 1 Hz
// flash this produced is preserved here directly rather than ported.
func (l *LED) tick() {
	if l.Setpoint.Mode() != core.ModeDisarmed {
		_ = l.green.Out(gpio.High)
		_ = l.red.Out(gpio.Low)
		l.toggle = false
		return
	}

	_ = l.green.Out(gpio.Low)
	l.toggle = !l.toggle
	if l.toggle {
		_ = l.red.Out(gpio.High)
	} else {
		_ = l.red.Out(gpio.Low)
	}
}
