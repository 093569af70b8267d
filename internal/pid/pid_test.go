// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarchComputesProportionalTerm(t *testing.T) {
	t.Parallel()

	f := New(2, 0, 0, 0.02, 0.005)
	out := f.March(1.5, false)

	require.InDelta(t, 3.0, out, 1e-9)
	require.InDelta(t, 3.0, f.Output(), 1e-9)
}

func TestMarchAccumulatesIntegratorOnlyWhenGated(t *testing.T) {
	t.Parallel()

	f := New(0, 1, 0, 0.02, 0.005)

	f.March(2, false)
	require.InDelta(t, 0, f.Output(), 1e-9)

	f.March(2, true)
	require.InDelta(t, 2*0.005, f.Output(), 1e-9)

	f.March(2, true)
	require.InDelta(t, 2*2*0.005, f.Output(), 1e-9)
}

func TestZeroClearsAllInternalState(t *testing.T) {
	t.Parallel()

	f := New(1, 1, 1, 0.02, 0.005)
	f.March(1, true)
	f.March(2, true)
	require.NotEqual(t, 0.0, f.Output())

	f.Zero()

	require.Equal(t, 0.0, f.Output())
	require.Equal(t, 0.0, f.integrator)
	require.Equal(t, 0.0, f.lastErr)
	require.Equal(t, 0.0, f.derivative)
}

func TestPreloadSeedsSmoothContinuation(t *testing.T) {
	t.Parallel()

	f := New(3, 1, 1, 0.02, 0.005)
	f.Preload(0.5)

	require.InDelta(t, 1.5, f.Output(), 1e-9)
	require.Equal(t, 0.0, f.integrator)

	out := f.March(0.5, true)
	require.InDelta(t, 0.0, (out-1.5)/f.Dt, 5.0)
}

func TestSaturateClampsOutputAndIntegrator(t *testing.T) {
	t.Parallel()

	f := New(0, 10, 0, 0.02, 0.005)
	for i := 0; i < 100; i++ {
		f.March(1, true)
	}
	require.Greater(t, f.Output(), 1.0)

	f.Saturate(-1, 1)
	require.Equal(t, 1.0, f.Output())
	require.Equal(t, 1.0, f.integrator)

	out := f.March(1, true)
	require.LessOrEqual(t, out, 1.0)
}

func TestSaturateBoundsPreventWindupBeyondLimit(t *testing.T) {
	t.Parallel()

	f := New(0, 50, 0, 0.02, 0.005)
	f.Saturate(-0.3, 0.3)

	for i := 0; i < 1000; i++ {
		f.March(1, true)
	}

	require.Equal(t, 0.3, f.Output())
	require.Equal(t, 0.3, f.integrator)
}
