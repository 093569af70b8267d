// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package stack implements the ~100 Hz cooperative loop that maps pilot
// intent and the current flight mode into flight-core setpoints.
package stack

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/relabs-tech/flightcore/internal/arm"
	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/link"
)

// FlightMode selects how the stack maps UserInterface into CoreSetpoint.
// Per the ch6 mode-switch note preserved from the system this is adapted
// from, both switch branches currently resolve to USER_ATTITUDE; the
// remaining values are carried so the enum surface is stable for when a
// second mode is wired up.
type FlightMode int32

const (
	FlightModeUserAttitude FlightMode = iota
	FlightModeEmergencyLand
	FlightModeEmergencyKill
	FlightModePositionHold // reserved, unimplemented
)

func (m FlightMode) String() string {
	switch m {
	case FlightModeUserAttitude:
		return "USER_ATTITUDE"
	case FlightModeEmergencyLand:
		return "EMERGENCY_LAND"
	case FlightModeEmergencyKill:
		return "EMERGENCY_KILL"
	case FlightModePositionHold:
		return "POSITION_HOLD"
	default:
		return "UNKNOWN"
	}
}

// EmergencyLandThrottle is the fixed throttle held during EMERGENCY_LAND.
const EmergencyLandThrottle = 0.15

// Stack owns the flight-mode state machine and is the sole writer of
// CoreSetpoint's non-mode fields.
type Stack struct {
	Setpoint *core.Setpoint
	UI       *link.UserInterface
	Arm      *arm.Supervisor

	mode atomic.Int32

	mu        sync.Mutex
	lastMode  FlightMode
	announced bool
}

// New builds a Stack wired to the shared setpoint, the link watcher's
// UserInterface, and the arming supervisor it delegates re-arming to.
func New(sp *core.Setpoint, ui *link.UserInterface, armSup *arm.Supervisor) *Stack {
	return &Stack{Setpoint: sp, UI: ui, Arm: armSup}
}

// SetMode requests a flight mode change. Called from the link watcher's
// callbacks (ch6 decode and loss-of-link emergency land).
func (s *Stack) SetMode(m FlightMode) {
	s.mode.Store(int32(m))
}

// Mode returns the currently requested flight mode.
func (s *Stack) Mode() FlightMode {
	return FlightMode(s.mode.Load())
}

// Period runs one iteration of the stack's loop: read intent, write
// setpoint. Called at ~100 Hz by the caller's own ticker.
func (s *Stack) Period() {
	ui := s.UI.Snapshot()
	mode := s.Mode()

	s.mu.Lock()
	if mode != s.lastMode {
		log.Printf("stack: flight mode -> %s", mode)
		s.lastMode = mode
	}
	s.mu.Unlock()

	if ui.Kill || mode == FlightModeEmergencyKill {
		s.Setpoint.Disarm()
		return
	}

	wasDisarmed := s.Setpoint.Mode() == core.ModeDisarmed

	switch mode {
	case FlightModeUserAttitude:
		s.Setpoint.Set(
			(ui.Throttle+1)/2,
			ui.Roll*s.Arm.Cfg().MaxRoll,
			ui.Pitch*s.Arm.Cfg().MaxPitch,
			ui.Yaw*s.Arm.Cfg().MaxYawRate,
		)
	case FlightModeEmergencyLand:
		s.Setpoint.Set(EmergencyLandThrottle, 0, 0, 0)
	default:
		// no-op placeholder (POSITION_HOLD and any future mode)
	}

	if wasDisarmed && mode != FlightModeEmergencyKill {
		s.Arm.RequestArm(s.Setpoint)
	}
}
