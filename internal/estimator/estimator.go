// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package estimator turns a raw IMU sample into the continuous
// roll/pitch/yaw pose and body rates the flight core's controllers need,
// including yaw unwrap across the IMU's own +/-pi wrap.
package estimator

import "math"

// spinJumpThreshold is the sample-to-sample yaw jump magnitude, in
// radians, above which the estimator treats the jump as a +/-pi wrap
// rather than real motion and adjusts the spin count.
const spinJumpThreshold = 6.0

// Pose is the estimator's output for one tick: continuous angles in
// radians and body rates in radians/second.
type Pose struct {
	Roll, Pitch, Yaw    float64
	DRoll, DPitch, DYaw float64
}

// Estimator holds the running state needed to unwrap yaw across ticks.
// It is a plain data structure owned by the flight core; it does no I/O.
type Estimator struct {
	RollErr  float64 // imu_roll_err sensor-axis trim, radians
	PitchErr float64 // imu_pitch_err sensor-axis trim, radians
	GyroFSR  float64 // degrees/sec full-scale range of rawGyro inputs

	lastYaw      float64
	numYawSpins  int
	yawOnTakeoff float64
	haveLastYaw  bool
}

// ResetYawOrigin captures the current IMU yaw sample as the new origin
// and clears the spin count. Called on the first tick after a
// DISARMED->armed transition (spec 4.2/4.3 step 2).
func (e *Estimator) ResetYawOrigin(eulerZ float64) {
	e.numYawSpins = 0
	e.yawOnTakeoff = eulerZ
	e.lastYaw = 0
	e.haveLastYaw = false
}

// Update transforms one raw sample into a Pose, advancing yaw unwrap
// state. euler is the device's fused Euler angles (X, Y, Z) in radians;
// rawGyro is the 16-bit signed raw gyro reading on each axis.
func (e *Estimator) Update(euler [3]float64, rawGyro [3]int16) Pose {
	roll := -(euler[1] - e.RollErr)
	pitch := euler[0] - e.PitchErr

	scale := e.GyroFSR * (math.Pi / 180) / 32767
	dRoll := float64(rawGyro[1]) * scale
	dPitch := float64(rawGyro[0]) * scale
	dYaw := float64(rawGyro[2]) * scale

	newYaw := (euler[2] - e.yawOnTakeoff) + 2*math.Pi*float64(e.numYawSpins)
	if e.haveLastYaw {
		delta := newYaw - e.lastYaw
		if delta > spinJumpThreshold {
			e.numYawSpins--
		} else if delta < -spinJumpThreshold {
			e.numYawSpins++
		}
		newYaw = (euler[2] - e.yawOnTakeoff) + 2*math.Pi*float64(e.numYawSpins)
	}
	e.lastYaw = newYaw
	e.haveLastYaw = true

	return Pose{
		Roll: roll, Pitch: pitch, Yaw: newYaw,
		DRoll: dRoll, DPitch: dPitch, DYaw: dYaw,
	}
}
