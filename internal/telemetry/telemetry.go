// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry sends a heartbeat+attitude packet to a ground
// station over UDP (spec 4.8, 6: "a UDP-like send(bytes) endpoint
// configurable by ground-station IP"). The real MAVLink wire format is
// explicitly out of scope (spec 9); this is a minimal internal packet
// encoding instead.
package telemetry

import (
	"bytes"
	"encoding/binary"
	"log"
	"net"
	"time"

	"github.com/relabs-tech/flightcore/internal/core"
)

// Period is the telemetry send rate (spec 4.8: "~10 Hz").
const Period = 100 * time.Millisecond

// packetMagic tags every packet so a ground-station parser can sanity
// check framing before decoding fields.
const packetMagic uint32 = 0x464c4354 // "FLCT"

// Sender pushes packets to a fixed ground-station address over UDP. A
// UDP net.Conn never blocks on packet loss, matching the spec's
// "UDP-like" contract: a best-effort heartbeat, not a reliable stream.
type Sender struct {
	conn net.Conn
	seq  uint32
}

// New dials the ground-station address over UDP. Dialing UDP never
// actually contacts the peer; Close releases the local socket.
func New(addr string) (*Sender, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	log.Printf("telemetry: sending to %s", addr)
	return &Sender{conn: conn}, nil
}

func (s *Sender) Close() error {
	return s.conn.Close()
}

// Send encodes one heartbeat+attitude packet and writes it best-effort;
// send errors (typically ICMP port-unreachable on a loopback test
// ground station) are logged and otherwise ignored, since losing one
// telemetry packet is never a flight-safety condition.
func (s *Sender) Send(mode core.Mode, st core.StateSnapshot) {
	s.seq++

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, packetMagic)
	binary.Write(&buf, binary.BigEndian, s.seq)
	binary.Write(&buf, binary.BigEndian, int32(mode))
	binary.Write(&buf, binary.BigEndian, st.Roll)
	binary.Write(&buf, binary.BigEndian, st.Pitch)
	binary.Write(&buf, binary.BigEndian, st.Yaw)
	binary.Write(&buf, binary.BigEndian, st.ESC)
	binary.Write(&buf, binary.BigEndian, st.LoopCounter)
	binary.Write(&buf, binary.BigEndian, st.BatteryVoltage)

	if _, err := s.conn.Write(buf.Bytes()); err != nil {
		log.Printf("telemetry: send error: %v", err)
	}
}

// Run sends at Period until stop is closed.
func (s *Sender) Run(stop <-chan struct{}, state *core.State, sp *core.Setpoint) {
	ticker := time.NewTicker(Period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Send(sp.Mode(), state.Snapshot())
		}
	}
}
