// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/runtime"
	"github.com/relabs-tech/flightcore/internal/stack"
)

// RenderPeriod is the OLED status panel's refresh rate (spec 4.8:
// "~5 Hz").
const RenderPeriod = 200 * time.Millisecond

// display is the slice of *ssd1306.Dev that OLED needs, narrowed so
// tests can supply a fake instead of real I2C hardware.
type display interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Bounds() image.Rectangle
}

// OLED renders a one-screen flight status panel: mode, flight mode,
// attitude, and loop counter.
type OLED struct {
	dev display
}

func NewOLED(dev display) *OLED {
	return &OLED{dev: dev}
}

// Render draws the current core/stack snapshot to the display.
func (o *OLED) Render(mode core.Mode, flightMode stack.FlightMode, st core.StateSnapshot) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := range img.Pix {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(mode.String() + " " + flightMode.String()))

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte(fmt.Sprintf("R:%5.1f P:%5.1f", st.Roll, st.Pitch)))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawBytes([]byte(fmt.Sprintf("Y:%6.1f", st.Yaw)))

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawBytes([]byte(fmt.Sprintf("loop:%d", st.LoopCounter)))

	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}

// Run refreshes the panel at RenderPeriod until the runtime controller
// enters EXITING, matching the poll-loop shape of LED.Run/Button.Run.
func (o *OLED) Run(rt *runtime.Controller, sp *core.Setpoint, st *stack.Stack, state *core.State) {
	ticker := time.NewTicker(RenderPeriod)
	defer ticker.Stop()
	for rt.Running() {
		if err := o.Render(sp.Mode(), st.Mode(), state.Snapshot()); err != nil {
			log.Printf("indicator: oled render error: %v", err)
		}
		<-ticker.C
	}
}
