// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"image"
	"testing"

	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/stack"
	"github.com/stretchr/testify/require"
)

type fakeDisplay struct {
	drawn image.Image
	calls int
}

func (d *fakeDisplay) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.drawn = src
	d.calls++
	return nil
}

func (d *fakeDisplay) Bounds() image.Rectangle {
	return image.Rect(0, 0, 128, 64)
}

func TestRenderDrawsOnceWithoutError(t *testing.T) {
	t.Parallel()

	dev := &fakeDisplay{}
	o := NewOLED(dev)

	st := core.StateSnapshot{Roll: 0.1, Pitch: -0.2, Yaw: 3.0, LoopCounter: 42}
	err := o.Render(core.ModeAttitude, stack.FlightModeUserAttitude, st)

	require.NoError(t, err)
	require.Equal(t, 1, dev.calls)
	require.NotNil(t, dev.drawn)
}
