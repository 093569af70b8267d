// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/flightcore/internal/core"
)

func TestSendWritesADecodablePacket(t *testing.T) {
	t.Parallel()

	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	sender, err := New(listener.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	st := core.StateSnapshot{Roll: 0.1, Pitch: -0.2, Yaw: 1.5, LoopCounter: 42}
	sender.Send(core.ModeAttitude, st)

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 256)
	n, _, err := listener.ReadFrom(buf)
	require.NoError(t, err)

	r := bytes.NewReader(buf[:n])
	var magic, seq uint32
	var mode int32
	require.NoError(t, binary.Read(r, binary.BigEndian, &magic))
	require.NoError(t, binary.Read(r, binary.BigEndian, &seq))
	require.NoError(t, binary.Read(r, binary.BigEndian, &mode))

	require.Equal(t, packetMagic, magic)
	require.Equal(t, uint32(1), seq)
	require.Equal(t, int32(core.ModeAttitude), mode)

	var roll, pitch, yaw float64
	require.NoError(t, binary.Read(r, binary.BigEndian, &roll))
	require.NoError(t, binary.Read(r, binary.BigEndian, &pitch))
	require.NoError(t, binary.Read(r, binary.BigEndian, &yaw))
	require.InDelta(t, 0.1, roll, 1e-9)
	require.InDelta(t, -0.2, pitch, 1e-9)
	require.InDelta(t, 1.5, yaw, 1e-9)
}

func TestSequenceNumberIncrementsEachSend(t *testing.T) {
	t.Parallel()

	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	sender, err := New(listener.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	sender.Send(core.ModeDisarmed, core.StateSnapshot{})
	sender.Send(core.ModeDisarmed, core.StateSnapshot{})

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	var lastSeq uint32
	for i := 0; i < 2; i++ {
		buf := make([]byte, 256)
		n, _, err := listener.ReadFrom(buf)
		require.NoError(t, err)
		r := bytes.NewReader(buf[:n])
		var magic uint32
		require.NoError(t, binary.Read(r, binary.BigEndian, &magic))
		require.NoError(t, binary.Read(r, binary.BigEndian, &lastSeq))
	}
	require.Equal(t, uint32(2), lastSeq)
}
