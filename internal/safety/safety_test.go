// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package safety

import (
	"testing"

	"github.com/relabs-tech/flightcore/internal/actuator"
	"github.com/relabs-tech/flightcore/internal/config"
	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/runtime"
	"github.com/stretchr/testify/require"
)

func newTestCore() *core.Core {
	cfg := config.Default()
	sp := &core.Setpoint{}
	return core.New(sp, actuator.NewRecorder(), nil, cfg)
}

// tickWithRoll drives the core through one tick whose Euler sample
// produces the given roll angle (roll = -(euler.Y - imu_roll_err), and
// imu_roll_err defaults to 0, so euler.Y = -roll).
func tickWithRoll(c *core.Core, roll float64) {
	c.Setpoint.Set(0.5, 0, 0, 0)
	c.Tick([3]float64{0, -roll, 0}, [3]int16{0, 0, 0}, true)
}

func TestTipoverDisarmsWhenRollExceedsThreshold(t *testing.T) {
	t.Parallel()

	c := newTestCore()
	c.Setpoint.Rearm(core.ModeAttitude)
	tickWithRoll(c, 0)

	s := New(c.State, c.Setpoint, 1.5, runtime.New())

	tickWithRoll(c, 1.6)
	s.check()

	require.Equal(t, core.ModeDisarmed, c.Setpoint.Mode())
}

func TestNoTipoverLeavesModeUntouched(t *testing.T) {
	t.Parallel()

	c := newTestCore()
	c.Setpoint.Rearm(core.ModeAttitude)
	tickWithRoll(c, 0.2)

	s := New(c.State, c.Setpoint, 1.5, runtime.New())
	s.check()

	require.Equal(t, core.ModeAttitude, c.Setpoint.Mode())
}

func TestDisarmedCraftIsNeverCheckedForTipover(t *testing.T) {
	t.Parallel()

	c := newTestCore()
	tickWithRoll(c, 3.0) // mode is still DISARMED: Tick records roll=3.0, but check skips it

	s := New(c.State, c.Setpoint, 1.5, runtime.New())
	s.check()

	require.Equal(t, core.ModeDisarmed, c.Setpoint.Mode())
}
