// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"testing"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/runtime"
	"github.com/stretchr/testify/require"
)

type fakePin struct {
	level gpio.Level
	n     int
}

func (p *fakePin) Out(l gpio.Level) error {
	p.level = l
	p.n++
	return nil
}

func TestArmedHoldsGreenSolidAndRedOff(t *testing.T) {
	t.Parallel()

	sp := &core.Setpoint{}
	sp.Rearm(core.ModeAttitude)
	red, green := &fakePin{}, &fakePin{}
	led, err := newLED(red, green, sp, runtime.New())
	require.NoError(t, err)

	led.tick()
	led.tick()
	led.tick()

	require.Equal(t, gpio.High, green.level)
	require.Equal(t, gpio.Low, red.level)
}

func TestDisarmedFlashesRedEveryTick(t *testing.T) {
	t.Parallel()

	sp := &core.Setpoint{}
	red, green := &fakePin{}, &fakePin{}
	led, err := newLED(red, green, sp, runtime.New())
	require.NoError(t, err)

	led.tick()
	first := red.level
	led.tick()
	second := red.level

	require.Equal(t, gpio.Low, green.level)
	require.NotEqual(t, first, second)
}
