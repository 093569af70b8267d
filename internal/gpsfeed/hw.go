// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gpsfeed

import (
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

// OpenPort opens the GPS serial port using the same OpenOptions idiom
// as internal/radio/hw.go and the teacher's GPS producer.
func OpenPort(port string, baud int) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	conn, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("gpsfeed: open %s: %w", port, err)
	}
	return conn, nil
}
