// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package actuator defines the normalized-pulse motor driver contract the
// flight core writes its mixed motor outputs to, plus a periph.io-backed
// PWM adapter and a recording mock for tests.
package actuator

import "fmt"

// MinPulse is the normalized minimum calibration pulse emitted on every
// channel on first arm (spec 4.3 step 13) and during the arming
// supervisor's ESC wake sequence (spec 4.5 step 7).
const MinPulse = 0.05

// Driver sends a normalized pulse width in [0,1] to one of four motor
// channels (1-indexed, matching the external contract).
type Driver interface {
	SendPulseNormalized(channel int, x float64) error
	Close() error
}

// ErrChannelRange reports an out-of-range channel argument.
type ErrChannelRange struct{ Channel int }

func (e ErrChannelRange) Error() string {
	return fmt.Sprintf("actuator: channel %d out of range [1,4]", e.Channel)
}
