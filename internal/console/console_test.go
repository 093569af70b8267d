// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package console

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/flightcore/internal/core"
)

func TestIndexPageServesHTML(t *testing.T) {
	t.Parallel()

	s := New(&core.State{}, &core.Setpoint{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
}

func TestSnapshotReflectsCurrentStateAndMode(t *testing.T) {
	t.Parallel()

	state := &core.State{}
	sp := &core.Setpoint{}
	sp.Rearm(core.ModeAttitude)
	s := New(state, sp)

	msg := s.snapshot()
	require.Equal(t, "ATTITUDE", msg.Mode)

	data, err := s.marshal()
	require.NoError(t, err)
	require.Contains(t, string(data), "ATTITUDE")
}

func TestWebsocketStreamDeliversAtLeastOneFrame(t *testing.T) {
	t.Parallel()

	sp := &core.Setpoint{}
	sp.Rearm(core.ModeAttitude)
	s := New(&core.State{}, sp)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg snapshotMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "ATTITUDE", msg.Mode)
}
