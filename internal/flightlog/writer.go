// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package flightlog

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"time"
)

// Writer drains a Ring at a fixed poll interval and appends each row as a
// CSV line to a session log file. On open failure it logs a warning and
// runs as a no-op drain, per the "log-open failure: warn; continue
// without logging" error-handling rule.
type Writer struct {
	ring     *Ring
	file     *os.File
	buf      *bufio.Writer
	interval time.Duration
}

// NewWriter opens (creating if absent) path for appending and returns a
// Writer bound to ring. enabled=false skips the file open entirely (the
// -l flag is off) and the writer just drains and discards.
func NewWriter(ring *Ring, path string, enabled bool) *Writer {
	w := &Writer{ring: ring, interval: 20 * time.Millisecond}
	if !enabled {
		return w
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("flightlog: could not open %s, continuing without logging: %v", path, err)
		return w
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	fmt.Fprintln(w.buf, "loop,roll,pitch,yaw,droll,dpitch,dyaw,u0,u1,u2,u3,esc0,esc1,esc2,esc3,battery")
	return w
}

// Run drains ring until stop is closed, flushing periodically. It is the
// SPSC consumer side; the flight core is the sole producer.
func (w *Writer) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			w.drain()
			w.close()
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

func (w *Writer) drain() {
	for {
		row, ok := w.ring.Pop()
		if !ok {
			break
		}
		w.writeRow(row)
	}
	if w.buf != nil {
		w.buf.Flush()
	}
}

func (w *Writer) writeRow(r Row) {
	if w.buf == nil {
		return
	}
	fmt.Fprintf(w.buf, "%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.3f\n",
		r.LoopNumber, r.Roll, r.Pitch, r.Yaw, r.DRoll, r.DPitch, r.DYaw,
		r.U[0], r.U[1], r.U[2], r.U[3],
		r.ESC[0], r.ESC[1], r.ESC[2], r.ESC[3],
		r.BatteryVoltage)
}

func (w *Writer) close() {
	if w.file == nil {
		return
	}
	if err := w.file.Close(); err != nil {
		log.Printf("flightlog: close error: %v", err)
	}
}
