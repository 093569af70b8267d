// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pausebtn

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/flightcore/internal/runtime"
	"github.com/stretchr/testify/require"
)

type fakeButtonPin struct {
	level gpio.Level
}

func (p *fakeButtonPin) Read() gpio.Level { return p.level }

func TestShortPressInvokesOnShortWithoutExiting(t *testing.T) {
	t.Parallel()

	pin := &fakeButtonPin{level: gpio.High}
	rt := runtime.New()
	shortFired := false
	b := newButton(pin, rt, func() { shortFired = true })

	pin.level = gpio.Low
	b.poll()
	pin.level = gpio.High
	b.poll()

	require.True(t, shortFired)
	require.Equal(t, runtime.Running, rt.Get())
}

func TestLongPressTransitionsToExiting(t *testing.T) {
	t.Parallel()

	pin := &fakeButtonPin{level: gpio.High}
	rt := runtime.New()
	b := newButton(pin, rt, func() {})

	pin.level = gpio.Low
	b.poll()
	b.pressedAt = time.Now().Add(-2 * time.Second)
	b.poll()

	require.Equal(t, runtime.Exiting, rt.Get())
}
