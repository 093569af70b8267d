// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package estimator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateAppliesRollPitchSignCorrection(t *testing.T) {
	t.Parallel()

	e := &Estimator{RollErr: 0.1, PitchErr: 0.05, GyroFSR: 2000}
	pose := e.Update([3]float64{0.2, 0.3, 0}, [3]int16{0, 0, 0})

	require.InDelta(t, -(0.3 - 0.1), pose.Roll, 1e-9)
	require.InDelta(t, 0.2-0.05, pose.Pitch, 1e-9)
}

func TestUpdateScalesRawGyroByFSR(t *testing.T) {
	t.Parallel()

	e := &Estimator{GyroFSR: 2000}
	pose := e.Update([3]float64{0, 0, 0}, [3]int16{32767, 16383, -32767})

	require.InDelta(t, 2000*3.14159265/180, pose.DPitch, 1e-3)
	require.InDelta(t, 1000*3.14159265/180, pose.DRoll, 1e-2)
	require.InDelta(t, -2000*3.14159265/180, pose.DYaw, 1e-3)
}

func TestYawUnwrapAcrossWrapBoundary(t *testing.T) {
	t.Parallel()

	e := &Estimator{}
	e.ResetYawOrigin(0)

	samples := []float64{3.0, 3.1, -3.1, -3.0}
	want := []float64{3.0, 3.1, 3.18, 3.28}

	for i, z := range samples {
		pose := e.Update([3]float64{0, 0, z}, [3]int16{0, 0, 0})
		require.InDelta(t, want[i], pose.Yaw, 0.01, "sample %d", i)
	}
}

func TestResetYawOriginCapturesNewZeroAndClearsSpins(t *testing.T) {
	t.Parallel()

	e := &Estimator{}
	e.ResetYawOrigin(0)
	e.Update([3]float64{0, 0, 3.1}, [3]int16{0, 0, 0})
	e.Update([3]float64{0, 0, -3.1}, [3]int16{0, 0, 0})
	require.NotEqual(t, 0, e.numYawSpins)

	e.ResetYawOrigin(1.0)
	require.Equal(t, 0, e.numYawSpins)

	pose := e.Update([3]float64{0, 0, 1.0}, [3]int16{0, 0, 0})
	require.InDelta(t, 0, pose.Yaw, 1e-9)
}
