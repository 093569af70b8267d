// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package console serves a read-only browser view of flight state over
// a websocket, grounded on the teacher's calibration websocket handler
// idiom. It never writes into flight core state.
package console

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/flightcore/internal/core"
)

// StreamPeriod is how often a connected browser receives a snapshot
// (spec 7.2: "~10 Hz").
const StreamPeriod = 100 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// snapshotMessage is the JSON frame pushed to every connected browser.
type snapshotMessage struct {
	Mode        string     `json:"mode"`
	Roll        float64    `json:"roll"`
	Pitch       float64    `json:"pitch"`
	Yaw         float64    `json:"yaw"`
	ESC         [4]float64 `json:"esc"`
	LoopCounter uint64     `json:"loop"`
}

// Server owns the shared state it streams and the index page it serves.
type Server struct {
	State    *core.State
	Setpoint *core.Setpoint
}

func New(state *core.State, sp *core.Setpoint) *Server {
	return &Server{State: state, Setpoint: sp}
}

// Handler returns an http.Handler with the index page and the
// websocket stream endpoint wired up.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveStream)
	return mux
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(indexPage))
}

func (s *Server) serveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("console: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(StreamPeriod)
	defer ticker.Stop()

	for range ticker.C {
		msg := s.snapshot()
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("console: websocket write error: %v", err)
			return
		}
	}
}

func (s *Server) snapshot() snapshotMessage {
	st := s.State.Snapshot()
	return snapshotMessage{
		Mode:        s.Setpoint.Mode().String(),
		Roll:        st.Roll,
		Pitch:       st.Pitch,
		Yaw:         st.Yaw,
		ESC:         st.ESC,
		LoopCounter: st.LoopCounter,
	}
}

func (s *Server) marshal() ([]byte, error) {
	return json.Marshal(s.snapshot())
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>flightcore console</title></head>
<body>
<pre id="out">connecting...</pre>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => { document.getElementById("out").textContent = ev.data; };
</script>
</body>
</html>`
