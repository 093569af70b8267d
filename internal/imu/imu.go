// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package imu defines the narrow driver contract the flight core consumes
// from an inertial measurement unit, plus a hardware-backed adapter and a
// deterministic replay source for tests.
package imu

// Sample is the last reading exposed by a Device: fused Euler angles in
// radians (X=roll axis, Y=pitch axis, Z=yaw axis) and raw gyro counts at
// the device's configured full-scale range.
type Sample struct {
	Euler   [3]float64
	RawGyro [3]int16
}

// Device is the driver contract the flight core depends on. Init wires the
// sample rate and a 3x3 mounting-orientation correction matrix (row-major,
// 9 entries); SetSampleCallback registers the function invoked from the
// driver's own interrupt or polling goroutine each time a new sample is
// ready; Read reports whether the last sample is valid.
type Device interface {
	Init(rateHz float64, orientation [9]float64) error
	SetSampleCallback(fn func())
	Read() (Sample, bool)
	Close() error
}

// FSRDegPerSec is the gyro full-scale range the estimator's scaling factor
// assumes for the default adapters in this package.
const FSRDegPerSec = 2000.0
