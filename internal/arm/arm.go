// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package arm implements the blocking arm-gesture recognizer the flight
// stack hands control to on every DISARMED->armed transition (spec
// 4.5): a down/up/down throttle-stick sequence bracketed by level
// checks, an ESC wake sequence, and a config reload before the flight
// core is allowed to spin up.
package arm

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/flightcore/internal/actuator"
	"github.com/relabs-tech/flightcore/internal/config"
	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/link"
	"github.com/relabs-tech/flightcore/internal/runtime"
)

// pollPeriod is the gesture recognizer's own poll rate (spec 4.5: "every
// waiting poll is at 10 Hz").
const pollPeriod = 100 * time.Millisecond

// wakePeriod is the spacing between the ten minimum-pulse ESC wake
// commands (spec 4.5 step 7: "200 Hz spacing").
const wakePeriod = 5 * time.Millisecond

const wakePulseCount = 10

const stickDeflected = 0.9

// Supervisor recognizes the arm gesture and, once satisfied, reloads
// config and rearms the flight core. It also owns the live config
// handed to the flight stack, since step 8 of the gesture reloads it.
type Supervisor struct {
	configPath string
	core       *core.Core
	ui         *link.UserInterface
	driver     actuator.Driver
	runtime    *runtime.Controller

	mu  sync.RWMutex
	cfg *config.Config
}

// New builds a Supervisor from an already-loaded config. configPath is
// kept for the reload that happens at the end of every successful
// gesture.
func New(configPath string, cfg *config.Config, c *core.Core, ui *link.UserInterface, driver actuator.Driver, rt *runtime.Controller) *Supervisor {
	return &Supervisor{configPath: configPath, cfg: cfg, core: c, ui: ui, driver: driver, runtime: rt}
}

// Cfg returns the currently loaded config. Safe for concurrent use by
// the flight stack's Period while a gesture is in progress.
func (s *Supervisor) Cfg() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Supervisor) setCfg(cfg *config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// RequestArm blocks the calling goroutine (the flight stack's period)
// until the full gesture sequence completes or the process enters
// EXITING. It is idempotent to call again after an abort: the gesture
// simply restarts from step 1.
func (s *Supervisor) RequestArm(setpoint *core.Setpoint) {
	log.Printf("arm: gesture sequence started")
	for {
		if !s.runtime.Running() {
			log.Printf("arm: aborted, process exiting")
			return
		}

		if !s.waitLevel() {
			return
		}
		if !s.waitKillClear() {
			return
		}
		if !s.waitStick(func(v float64) bool { return v < -stickDeflected }) {
			return
		}
		if !s.waitStick(func(v float64) bool { return v > stickDeflected }) {
			return
		}
		if !s.waitStick(func(v float64) bool { return v < -stickDeflected }) {
			return
		}

		if !s.level() {
			log.Printf("arm: level check failed after gesture, restarting")
			continue
		}

		s.wakeESCs()
		s.reloadConfig()
		setpoint.Rearm(core.ModeAttitude)
		log.Printf("arm: gesture sequence complete, core ATTITUDE")
		return
	}
}

func (s *Supervisor) level() bool {
	th := s.Cfg().ArmTipThreshold
	snap := s.core.State.Snapshot()
	return math.Abs(snap.Roll) < th && math.Abs(snap.Pitch) < th
}

// waitLevel polls at pollPeriod until the craft is level, returning
// false if the process exits while waiting.
func (s *Supervisor) waitLevel() bool {
	for !s.level() {
		if !s.sleep() {
			return false
		}
	}
	return true
}

func (s *Supervisor) waitKillClear() bool {
	for s.ui.Snapshot().Kill {
		if !s.sleep() {
			return false
		}
	}
	return true
}

func (s *Supervisor) waitStick(satisfied func(v float64) bool) bool {
	for !satisfied(s.ui.Snapshot().Throttle) {
		if !s.sleep() {
			return false
		}
	}
	return true
}

// sleep waits one poll period, returning false if the process has
// entered EXITING in the meantime.
func (s *Supervisor) sleep() bool {
	time.Sleep(pollPeriod)
	return s.runtime.Running()
}

// wakeESCs emits the minimum calibration pulse on all four channels ten
// times at 200 Hz spacing, waking ESCs that entered calibration mode
// while unpowered (spec 4.5 step 7).
func (s *Supervisor) wakeESCs() {
	for i := 0; i < wakePulseCount; i++ {
		for ch := 1; ch <= 4; ch++ {
			_ = s.driver.SendPulseNormalized(ch, actuator.MinPulse)
		}
		time.Sleep(wakePeriod)
	}
}

func (s *Supervisor) reloadConfig() {
	cfg, err := config.Reload(s.configPath)
	if err != nil {
		log.Printf("arm: config reload failed, keeping previous gains: %v", err)
		return
	}
	s.setCfg(cfg)
	s.core.ReloadGains(cfg)
}
