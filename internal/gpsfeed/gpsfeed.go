// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gpsfeed parses NMEA sentences from a serial-attached GPS
// receiver into a Fix record. Position mode remains an unimplemented,
// declared-only core_mode (spec 9); this package exists to exercise the
// reserved CoreSetpoint position fields and the adrianmo/go-nmea +
// jacobsa/go-serial dependencies without acting on the data.
package gpsfeed

import (
	"bufio"
	"io"
	"log"
	"strings"
	"sync"

	nmea "github.com/adrianmo/go-nmea"
)

// Fix is the latest parsed GPS position, built up from RMC (position,
// validity) and GGA (altitude) sentences, same split as the teacher's
// GPS producer.
type Fix struct {
	Latitude, Longitude, Altitude float64
	Valid                         bool
}

// Feed holds the latest Fix behind a mutex for concurrent readers.
type Feed struct {
	mu  sync.RWMutex
	fix Fix
}

func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) Snapshot() Fix {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fix
}

// Run reads newline-terminated NMEA sentences from r until it returns
// an error (typically the port closing), updating the feed and
// invoking onFix after every RMC or GGA sentence, whether or not its
// values differ from the previous fix.
func (f *Feed) Run(r io.Reader, onFix func(Fix)) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}

		changed := f.apply(sentence)
		if changed && onFix != nil {
			onFix(f.Snapshot())
		}
	}
}

func (f *Feed) apply(sentence nmea.Sentence) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch sentence.DataType() {
	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		f.fix.Latitude = m.Latitude
		f.fix.Longitude = m.Longitude
		f.fix.Valid = m.Validity == "A"
		return true

	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		f.fix.Altitude = m.Altitude
		return true

	default:
		return false
	}
}

// LogFix is a convenience onFix callback used by cmd/gps_monitor.
func LogFix(fix Fix) {
	log.Printf("gpsfeed: lat=%.6f lon=%.6f alt=%.1fm valid=%v", fix.Latitude, fix.Longitude, fix.Altitude, fix.Valid)
}
