// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package actuator

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// escHz is the PWM carrier frequency ESCs expect.
const escHz = 400 * physic.Hertz

// HWDriver drives four ESCs over periph.io GPIO pins configured for
// hardware PWM, the same gpioreg.ByName wiring idiom the rest of this
// codebase's drivers use for GPIO access.
type HWDriver struct {
	pins [4]gpio.PinIO
}

// NewHWDriver resolves pinNames (four GPIO/PWM-capable pin names, one per
// motor channel) via gpioreg and returns a ready HWDriver.
func NewHWDriver(pinNames [4]string) (*HWDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("actuator: periph host init: %w", err)
	}

	var d HWDriver
	for i, name := range pinNames {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("actuator: pin %q not found", name)
		}
		d.pins[i] = pin
	}
	return &d, nil
}

func (d *HWDriver) SendPulseNormalized(channel int, x float64) error {
	if channel < 1 || channel > 4 {
		return ErrChannelRange{Channel: channel}
	}
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}

	duty := gpio.Duty(x * float64(gpio.DutyMax))
	if err := d.pins[channel-1].PWM(duty, escHz); err != nil {
		return fmt.Errorf("actuator: channel %d PWM: %w", channel, err)
	}
	return nil
}

func (d *HWDriver) Close() error {
	for _, p := range d.pins {
		if p != nil {
			_ = p.PWM(0, escHz)
		}
	}
	return nil
}
