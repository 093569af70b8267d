// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package indicator

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// NewHWOLED opens the default I2C bus and initializes an SSD1306 panel
// at addr, the same i2creg.Open/ssd1306.NewI2C wiring the rest of this
// codebase's drivers use host.Init() for. The returned bus must be
// closed by the caller once the OLED is no longer needed.
func NewHWOLED(addr uint16) (*OLED, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("indicator: periph host init: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, nil, fmt.Errorf("indicator: open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, addr, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("indicator: init ssd1306 at 0x%02X: %w", addr, err)
	}

	return NewOLED(dev), bus, nil
}
