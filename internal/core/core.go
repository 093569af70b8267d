// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package core

import (
	"math"

	"github.com/relabs-tech/flightcore/internal/actuator"
	"github.com/relabs-tech/flightcore/internal/config"
	"github.com/relabs-tech/flightcore/internal/estimator"
	"github.com/relabs-tech/flightcore/internal/flightlog"
	"github.com/relabs-tech/flightcore/internal/pid"
)

// DT is the fixed control period. The discrete PID coefficients are
// synthesized against this value; changing it without retuning gains
// invalidates stability (spec 5).
const DT = 0.005

// Fixed control thresholds independent of config (spec 3, 4.3, 9).
const (
	// IntCutoffTh is the throttle level above which integrators
	// accumulate; below it they hold (prevents windup while grounded).
	IntCutoffTh = 0.3

	// YawCutoffTh is the throttle level above which the yaw setpoint
	// integrates pilot yaw-rate input; independent by design from
	// ThrottleGroundTh even though both are 0.1 here.
	YawCutoffTh = 0.1

	// LandSaturation tightly bounds PID output while throttle is near
	// zero so small disturbances while grounded don't spin the motors.
	LandSaturation = 0.05

	// ThrottleGroundTh is the setpoint.throttle threshold below which
	// LandSaturation (rather than per-axis MAX) is applied.
	ThrottleGroundTh = 0.1
)

// Actuator channels are 1-indexed per the external contract; ch returns
// the 1-based channel number for a 0-based mixer index.
func ch(i int) int { return i + 1 }

// Core is the 200 Hz flight control tick. It owns State, reads Setpoint
// once per tick, and has no suspension points of its own: Tick reads
// fresh inputs, computes, and writes outputs synchronously.
type Core struct {
	Setpoint *Setpoint
	State    *State
	Est      *estimator.Estimator
	Driver   actuator.Driver
	Log      *flightlog.Ring

	cfg *config.Config

	rollRatePID  *pid.Filter
	pitchRatePID *pid.Filter
	yawPID       *pid.Filter
}

// New builds a Core wired to the given shared setpoint, actuator driver,
// and log ring, with PID filters constructed from cfg.
func New(sp *Setpoint, driver actuator.Driver, logRing *flightlog.Ring, cfg *config.Config) *Core {
	c := &Core{
		Setpoint: sp,
		State:    &State{},
		Est:      &estimator.Estimator{RollErr: cfg.IMURollErr, PitchErr: cfg.IMUPitchErr, GyroFSR: cfg.GyroFSR},
		Driver:   driver,
		Log:      logRing,
		cfg:      cfg,
	}
	c.buildPIDs(cfg)
	return c
}

func (c *Core) buildPIDs(cfg *config.Config) {
	c.rollRatePID = pid.New(cfg.RollRateKp, cfg.RollRateKi, cfg.RollRateKd, cfg.DerivativeCutoff, DT)
	c.pitchRatePID = pid.New(cfg.PitchRateKp, cfg.PitchRateKi, cfg.PitchRateKd, cfg.DerivativeCutoff, DT)
	c.yawPID = pid.New(cfg.YawKp, cfg.YawKi, cfg.YawKd, cfg.DerivativeCutoff, DT)
}

// ReloadGains reinitializes the PID filters from freshly loaded config
// gains, preserving no history (called by the arming supervisor, spec
// 4.5 step 8).
func (c *Core) ReloadGains(cfg *config.Config) {
	c.cfg = cfg
	c.Est.RollErr, c.Est.PitchErr, c.Est.GyroFSR = cfg.IMURollErr, cfg.IMUPitchErr, cfg.GyroFSR
	c.buildPIDs(cfg)
}


// Tick runs one control cycle. ok reports whether the IMU sample is
// valid; a false ok skips the tick entirely (transient sensor miss, no
// interpolation, no accumulation).
func (c *Core) Tick(euler [3]float64, rawGyro [3]int16, ok bool) {
	if !ok {
		return
	}

	pose := c.Est.Update(euler, rawGyro) // step 1
	mode := c.Setpoint.Mode()
	sp := c.Setpoint.Snapshot()

	c.State.mu.Lock()
	defer c.State.mu.Unlock()

	previousMode := c.State.PreviousMode
	if previousMode == ModeDisarmed && mode != ModeDisarmed {
		// step 2: first tick after DISARMED->armed
		c.Est.ResetYawOrigin(euler[2])
	}

	c.State.Roll, c.State.Pitch, c.State.Yaw = pose.Roll, pose.Pitch, pose.Yaw
	c.State.DRoll, c.State.DPitch, c.State.DYaw = pose.DRoll, pose.DPitch, pose.DYaw

	if mode == ModeDisarmed {
		c.rollRatePID.Zero()
		c.pitchRatePID.Zero()
		c.yawPID.Zero()
		c.Setpoint.ZeroYaw()
		c.State.U = [4]float64{}
		c.State.ESC = [4]float64{}
		for i := range c.State.ESC {
			_ = c.Driver.SendPulseNormalized(ch(i), 0)
		}
		c.State.PreviousMode = mode
		c.appendLog()
		return
	}

	if mode == ModeAttitude && sp.Throttle > YawCutoffTh {
		c.Setpoint.AddYaw(sp.YawRate * DT)
		sp = c.Setpoint.Snapshot()
	}

	thr := sp.Throttle*(c.cfg.MaxThrust-c.cfg.IdleThrottle) + c.cfg.IdleThrottle
	u0 := thr / (math.Cos(pose.Roll) * math.Cos(pose.Pitch))

	dRollSp := (sp.Roll - pose.Roll) * c.cfg.RollRatePerRad
	dPitchSp := (sp.Pitch - pose.Pitch) * c.cfg.PitchRatePerRad

	dRollErr := dRollSp - pose.DRoll
	dPitchErr := dPitchSp - pose.DPitch
	yawErr := sp.Yaw - pose.Yaw

	integrate := u0 > IntCutoffTh

	c.rollRatePID.March(dRollErr, integrate)
	c.pitchRatePID.March(dPitchErr, integrate)
	c.yawPID.March(yawErr, integrate)

	if sp.Throttle < ThrottleGroundTh {
		c.rollRatePID.Saturate(-LandSaturation, LandSaturation)
		c.pitchRatePID.Saturate(-LandSaturation, LandSaturation)
		c.yawPID.Saturate(-LandSaturation, LandSaturation)
	} else {
		c.rollRatePID.Saturate(-c.cfg.MaxRollOutput, c.cfg.MaxRollOutput)
		c.pitchRatePID.Saturate(-c.cfg.MaxPitchOutput, c.cfg.MaxPitchOutput)
		c.yawPID.Saturate(-c.cfg.MaxYawOutput, c.cfg.MaxYawOutput)
	}
	u1, u2, u3 := c.rollRatePID.Output(), c.pitchRatePID.Output(), c.yawPID.Output()

	u := [4]float64{u0, u1, u2, u3}
	m := Mix(u)

	if previousMode == ModeDisarmed {
		for i := range m {
			m[i] = actuator.MinPulse
		}
	}

	for i, v := range m {
		_ = c.Driver.SendPulseNormalized(ch(i), v)
	}

	c.State.U = u
	c.State.ESC = m
	c.State.PreviousMode = mode
	c.appendLog()
}

// appendLog pushes the current tick's state onto the log ring. Caller
// must hold c.State.mu.
func (c *Core) appendLog() {
	c.State.LoopCounter++
	if c.Log == nil {
		return
	}
	c.Log.Push(flightlog.Row{
		LoopNumber: c.State.LoopCounter,
		Roll:       c.State.Roll, Pitch: c.State.Pitch, Yaw: c.State.Yaw,
		DRoll: c.State.DRoll, DPitch: c.State.DPitch, DYaw: c.State.DYaw,
		U: c.State.U, ESC: c.State.ESC,
		BatteryVoltage: c.State.BatteryVoltage,
	})
}
