// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/flightcore/internal/actuator"
	"github.com/relabs-tech/flightcore/internal/config"
	"github.com/relabs-tech/flightcore/internal/flightlog"
)

func newTestCore() (*Core, *actuator.Recorder) {
	cfg := config.Default()
	rec := actuator.NewRecorder()
	sp := &Setpoint{}
	c := New(sp, rec, flightlog.NewRing(16), cfg)
	return c, rec
}

func TestTickWhileDisarmedZeroesESCAndIntegrators(t *testing.T) {
	t.Parallel()

	c, _ := newTestCore()
	c.Setpoint.Set(0.5, 0.1, 0.1, 0.1)
	c.Tick([3]float64{0, 0, 0}, [3]int16{100, 100, 100}, true)

	snap := c.State.Snapshot()
	require.Equal(t, [4]float64{}, snap.ESC)
}

func TestTickSkipsOnInvalidSample(t *testing.T) {
	t.Parallel()

	c, _ := newTestCore()
	before := c.State.Snapshot().LoopCounter
	c.Tick([3]float64{1, 1, 1}, [3]int16{1, 1, 1}, false)
	after := c.State.Snapshot().LoopCounter

	require.Equal(t, before, after)
}

func TestColdArmEmitsMinimumPulseOnFirstTick(t *testing.T) {
	t.Parallel()

	c, rec := newTestCore()
	c.Setpoint.Set(0.5, 0, 0, 0)
	c.Setpoint.Rearm(ModeAttitude)

	c.Tick([3]float64{0, 0, 0}, [3]int16{0, 0, 0}, true)

	for ch := 1; ch <= 4; ch++ {
		require.InDelta(t, actuator.MinPulse, rec.Last(ch), 1e-9)
	}

	c.Tick([3]float64{0, 0, 0}, [3]int16{0, 0, 0}, true)
	nonZero := false
	for ch := 1; ch <= 4; ch++ {
		if rec.Last(ch) != actuator.MinPulse {
			nonZero = true
		}
	}
	require.True(t, nonZero)
}

func TestYawSetpointHoldsBelowCutoffWhileGrounded(t *testing.T) {
	t.Parallel()

	c, _ := newTestCore()
	c.Setpoint.Set(0, 0, 0, 1.0) // throttle=0, yaw_stick positive
	c.Setpoint.Rearm(ModeAttitude)

	for i := 0; i < 200; i++ {
		c.Tick([3]float64{0, 0, 0}, [3]int16{0, 0, 0}, true)
	}

	require.Equal(t, 0.0, c.Setpoint.Snapshot().Yaw)
}

func TestDisarmIsStickyAcrossTicks(t *testing.T) {
	t.Parallel()

	c, rec := newTestCore()
	c.Setpoint.Set(0.9, 0, 0, 0)
	c.Setpoint.Rearm(ModeAttitude)
	c.Tick([3]float64{0, 0, 0}, [3]int16{0, 0, 0}, true)

	c.Setpoint.Disarm()
	c.Tick([3]float64{0, 0, 0}, [3]int16{0, 0, 0}, true)
	c.Tick([3]float64{0, 0, 0}, [3]int16{0, 0, 0}, true)

	require.Equal(t, ModeDisarmed, c.Setpoint.Mode())
	for ch := 1; ch <= 4; ch++ {
		require.Equal(t, 0.0, rec.Last(ch))
	}
}
