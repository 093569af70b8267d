// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package safety runs the ~20 Hz tipover check that disarms the flight
// core independently of the arming supervisor and the link watcher
// (spec 4.6).
package safety

import (
	"log"
	"math"
	"time"

	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/runtime"
)

// Period is the safety supervisor's own poll rate.
const Period = 50 * time.Millisecond

// Supervisor disarms the flight core the instant roll or pitch exceeds
// the configured tip threshold while armed.
type Supervisor struct {
	State         *core.State
	Setpoint      *core.Setpoint
	TipThreshold  float64
	runtime       *runtime.Controller
	tippedAlready bool
}

func New(state *core.State, sp *core.Setpoint, tipThreshold float64, rt *runtime.Controller) *Supervisor {
	return &Supervisor{State: state, Setpoint: sp, TipThreshold: tipThreshold, runtime: rt}
}

// Run polls at Period until the runtime controller enters EXITING.
func (s *Supervisor) Run() {
	ticker := time.NewTicker(Period)
	defer ticker.Stop()
	for s.runtime.Running() {
		s.check()
		<-ticker.C
	}
}

func (s *Supervisor) check() {
	if s.Setpoint.Mode() == core.ModeDisarmed {
		s.tippedAlready = false
		return
	}

	snap := s.State.Snapshot()
	tipped := math.Abs(snap.Roll) > s.TipThreshold || math.Abs(snap.Pitch) > s.TipThreshold
	if tipped && !s.tippedAlready {
		log.Printf("safety: tipover detected (roll=%.2f pitch=%.2f), disarming", snap.Roll, snap.Pitch)
		s.Setpoint.Disarm()
	}
	s.tippedAlready = tipped
}
