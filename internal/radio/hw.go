// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package radio

import (
	"bufio"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
)

// HWReceiver reads newline-terminated, comma-separated six-channel
// frames (e.g. "0.12,-0.40,0.00,0.03,-1.00,1.00\n") from a serial port,
// using the same OpenOptions idiom the rest of this codebase's serial
// consumers use.
type HWReceiver struct {
	port      string
	baud      int
	conn      serialPort
	reader    *bufio.Reader
	mu        sync.Mutex
	channels  [7]float64
	haveFrame bool
}

type serialPort interface {
	Read(p []byte) (int, error)
	Close() error
}

// NewHWReceiver returns an HWReceiver bound to the given serial port and
// baud rate. Init opens the port.
func NewHWReceiver(port string, baud int) *HWReceiver {
	return &HWReceiver{port: port, baud: baud}
}

func (r *HWReceiver) Init() error {
	opts := serial.OpenOptions{
		PortName:              r.port,
		BaudRate:              uint(r.baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	conn, err := serial.Open(opts)
	if err != nil {
		return fmt.Errorf("radio: open %s: %w", r.port, err)
	}
	r.conn = conn
	r.reader = bufio.NewReader(conn)
	log.Printf("radio: serial port opened on %s at %d baud", r.port, r.baud)
	return nil
}

// HasNewFrame reads and decodes one line if available, storing the
// result for ChannelNormalized. It never blocks past the underlying
// port's own read timeout configuration.
func (r *HWReceiver) HasNewFrame() bool {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	fields := strings.Split(line, ",")
	if len(fields) < 6 {
		return false
	}

	var ch [7]float64
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return false
		}
		ch[i+1] = v
	}

	r.mu.Lock()
	r.channels = ch
	r.haveFrame = true
	r.mu.Unlock()
	return true
}

func (r *HWReceiver) ChannelNormalized(i int) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channels[i]
}

func (r *HWReceiver) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
