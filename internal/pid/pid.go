// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pid implements the discrete-time controller used by the flight
// core for the roll-rate, pitch-rate, and yaw control loops. It is a pure
// data structure: no I/O, no shared state beyond what its owner gives it.
package pid

import "math"

// Filter is a discrete PID controller with a low-pass filtered derivative
// term. Kp, Ki, Kd are the proportional, integral, and derivative gains;
// TauD is the derivative cutoff time constant; Dt is the fixed sample
// period the gains were tuned for.
type Filter struct {
	Kp, Ki, Kd float64
	TauD       float64
	Dt         float64

	integrator float64
	lastErr    float64
	derivative float64
	output     float64

	lo, hi float64
}

// New builds a Filter with the given gains, derivative cutoff, and sample
// period. Saturation bounds default to unbounded until Saturate is called.
func New(kp, ki, kd, tauD, dt float64) *Filter {
	f := &Filter{Kp: kp, Ki: ki, Kd: kd, TauD: tauD, Dt: dt}
	f.lo, f.hi = negInf, posInf
	return f
}

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)

// March advances the filter by one tick given the current error. integrate
// gates integrator accumulation — the caller (flight core) decides per-tick
// whether u[0] clears INT_CUTOFF_TH. It returns the new output.
func (f *Filter) March(err float64, integrate bool) float64 {
	d := (err - f.lastErr) / f.Dt
	alpha := f.Dt / (f.TauD + f.Dt)
	f.derivative += alpha * (d - f.derivative)
	f.lastErr = err

	if integrate {
		f.integrator = clamp(f.integrator+f.Ki*err*f.Dt, f.lo, f.hi)
	}

	f.output = clamp(f.Kp*err+f.integrator+f.Kd*f.derivative, f.lo, f.hi)
	return f.output
}

// Output returns the output computed by the most recent March call.
func (f *Filter) Output() float64 {
	return f.output
}

// Zero clears all internal state and the stored output.
func (f *Filter) Zero() {
	f.integrator = 0
	f.lastErr = 0
	f.derivative = 0
	f.output = 0
}

// Preload initializes history to a steady-state consistent with err, so
// the first March after arming does not produce a derivative-term
// transient. The integrator is left at zero and the proportional term
// alone seeds the output; this is the chosen policy among several that
// would satisfy "smooth continuation" (spec leaves the exact approach to
// the implementer).
func (f *Filter) Preload(err float64) {
	f.lastErr = err
	f.derivative = 0
	f.integrator = 0
	f.output = clamp(f.Kp*err, f.lo, f.hi)
}

// Saturate clamps the current output and bounds the integrator to the
// same [lo, hi] range, preventing windup beyond the output's own limits.
func (f *Filter) Saturate(lo, hi float64) {
	f.lo, f.hi = lo, hi
	f.integrator = clamp(f.integrator, lo, hi)
	f.output = clamp(f.output, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
