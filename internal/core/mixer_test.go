// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMixPreservesTorqueDifferentialsAfterDesaturation(t *testing.T) {
	t.Parallel()

	u := [4]float64{0.9, 0.2, 0.2, 0.2}
	pre := [4]float64{
		u[0] - u[1] + u[2] - u[3],
		u[0] + u[1] - u[2] - u[3],
		u[0] + u[1] + u[2] + u[3],
		u[0] - u[1] - u[2] + u[3],
	}

	m := Mix(u)

	max := m[0]
	for _, v := range m[1:] {
		if v > max {
			max = v
		}
	}
	require.InDelta(t, 1.0, max, 1e-9)

	require.InDelta(t, pre[0]-pre[1], m[0]-m[1], 1e-9)
	require.InDelta(t, pre[2]-pre[3], m[2]-m[3], 1e-9)
	require.InDelta(t, pre[0]+pre[2]-pre[1]-pre[3], m[0]+m[2]-m[1]-m[3], 1e-9)
}

func TestMixClampsToUnitRange(t *testing.T) {
	t.Parallel()

	m := Mix([4]float64{-1, 0, 0, 0})
	for _, v := range m {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}
