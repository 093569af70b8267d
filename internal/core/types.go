// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package core implements the 200 Hz flight control tick: estimator
// update, mode switch, PID march, motor mixing, desaturation, and
// actuator writeout. It is the hard-real-time heart of the autopilot;
// nothing in this package blocks.
package core

import (
	"sync"
	"sync/atomic"
)

// Mode is the flight core's arm state and control mode. The full enum
// surface is preserved even though only Disarmed and Attitude are
// implemented; Position and the remaining placeholders are declared so
// future work does not reshape the interface.
type Mode int32

const (
	ModeDisarmed Mode = iota
	ModeAttitude
	ModePosition // reserved, unimplemented
	ModeLoiter   // reserved, unimplemented
	ModeCartesian
	ModeRadial
	ModeTargetHold
)

func (m Mode) String() string {
	switch m {
	case ModeDisarmed:
		return "DISARMED"
	case ModeAttitude:
		return "ATTITUDE"
	case ModePosition:
		return "POSITION"
	case ModeLoiter:
		return "LOITER"
	case ModeCartesian:
		return "CARTESIAN"
	case ModeRadial:
		return "RADIAL"
	case ModeTargetHold:
		return "TARGET_HOLD"
	default:
		return "UNKNOWN"
	}
}

// Setpoint is CoreSetpoint: single writer is the flight stack, except
// Mode, which any goroutine may push to ModeDisarmed. Disarm is a sticky
// one-way latch — only Rearm (called exclusively by the arming
// supervisor) may move the mode away from ModeDisarmed.
type Setpoint struct {
	mode atomic.Int32

	mu       sync.RWMutex
	Throttle float64
	Roll     float64
	Pitch    float64
	YawRate  float64
	Yaw      float64 // accumulated yaw setpoint

	// Reserved for POSITION mode; read by the core but never acted on.
	PosX, PosY, PosZ float64
}

// Mode returns the current core mode.
func (s *Setpoint) Mode() Mode {
	return Mode(s.mode.Load())
}

// Disarm asserts ModeDisarmed. Any goroutine may call this.
func (s *Setpoint) Disarm() {
	s.mode.Store(int32(ModeDisarmed))
}

// Rearm moves the mode away from ModeDisarmed. Only the arming
// supervisor, after its full gesture sequence completes, may call this.
func (s *Setpoint) Rearm(mode Mode) {
	s.mode.Store(int32(mode))
}

// Set updates the non-mode fields. Only the flight stack calls this.
func (s *Setpoint) Set(throttle, roll, pitch, yawRate float64) {
	s.mu.Lock()
	s.Throttle, s.Roll, s.Pitch, s.YawRate = throttle, roll, pitch, yawRate
	s.mu.Unlock()
}

// AddYaw accumulates dyaw into the yaw setpoint. Only the core calls
// this, from within its own tick (step 3, ATTITUDE branch).
func (s *Setpoint) AddYaw(dyaw float64) {
	s.mu.Lock()
	s.Yaw += dyaw
	s.mu.Unlock()
}

// ZeroYaw resets the accumulated yaw setpoint to zero.
func (s *Setpoint) ZeroYaw() {
	s.mu.Lock()
	s.Yaw = 0
	s.mu.Unlock()
}

// SetPosition updates the reserved POSITION-mode target fields. Fed by
// internal/gpsfeed; read by Snapshot but never acted on by Tick, since
// POSITION mode itself is an unimplemented placeholder (spec's explicit
// Non-goal).
func (s *Setpoint) SetPosition(x, y, z float64) {
	s.mu.Lock()
	s.PosX, s.PosY, s.PosZ = x, y, z
	s.mu.Unlock()
}

// Snapshot is a torn-read-free copy of the non-mode fields, taken under
// a read lock, for the core to consume once per tick.
type Snapshot struct {
	Throttle, Roll, Pitch, YawRate, Yaw float64
	PosX, PosY, PosZ                    float64
}

func (s *Setpoint) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Throttle: s.Throttle, Roll: s.Roll, Pitch: s.Pitch,
		YawRate: s.YawRate, Yaw: s.Yaw,
		PosX: s.PosX, PosY: s.PosY, PosZ: s.PosZ,
	}
}

// State is CoreState: single writer is the core itself; readers
// (telemetry, log, console) may observe torn reads of non-critical
// telemetry fields, which is acceptable.
type State struct {
	mu sync.RWMutex

	Roll, Pitch, Yaw    float64
	DRoll, DPitch, DYaw float64

	U   [4]float64 // throttle, roll, pitch, yaw control components
	ESC [4]float64 // normalized motor outputs, post mix/desaturation

	LoopCounter    uint64
	BatteryVoltage float64
	PreviousMode   Mode

	// History arrays of length 32 are reserved in the upstream state
	// record this was adapted from, but only ever used as scalars in
	// the live control path; kept here for layout parity, unused.
	history [32]float64
}

// StateSnapshot is a value copy of State for readers outside the core.
type StateSnapshot struct {
	Roll, Pitch, Yaw    float64
	DRoll, DPitch, DYaw float64
	U                   [4]float64
	ESC                 [4]float64
	LoopCounter         uint64
	BatteryVoltage      float64
	PreviousMode        Mode
}

func (s *State) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StateSnapshot{
		Roll: s.Roll, Pitch: s.Pitch, Yaw: s.Yaw,
		DRoll: s.DRoll, DPitch: s.DPitch, DYaw: s.DYaw,
		U: s.U, ESC: s.ESC,
		LoopCounter:    s.LoopCounter,
		BatteryVoltage: s.BatteryVoltage,
		PreviousMode:   s.PreviousMode,
	}
}
