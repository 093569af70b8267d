// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package core

// Mix applies the X-quadrotor motor mixing matrix (motor rotation pattern
// CW/CCW/CCW/CW for channels 0..3), uniformly desaturates if any channel
// would exceed 1, then clamps to [0, 1]. The uniform-subtraction pass
// preserves torque differentials between channels at the cost of
// absolute thrust.
func Mix(u [4]float64) [4]float64 {
	m := [4]float64{
		u[0] - u[1] + u[2] - u[3],
		u[0] + u[1] - u[2] - u[3],
		u[0] + u[1] + u[2] + u[3],
		u[0] - u[1] - u[2] + u[3],
	}

	max := m[0]
	for _, v := range m[1:] {
		if v > max {
			max = v
		}
	}
	if max > 1 {
		excess := max - 1
		for i := range m {
			m[i] -= excess
		}
	}

	for i := range m {
		if m[i] < 0 {
			m[i] = 0
		} else if m[i] > 1 {
			m[i] = 1
		}
	}
	return m
}
