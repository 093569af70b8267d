// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package groundbus mirrors operator-facing flight state onto MQTT so a
// ground station can observe it without being on the control path. It
// is a pure sink: it never subscribes to anything and never feeds back
// into the flight core.
package groundbus

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/gpsfeed"
	"github.com/relabs-tech/flightcore/internal/stack"
)

// AttitudePeriod is the publish rate for the attitude mirror (spec
// 7.1: "~10 Hz").
const AttitudePeriod = 100 * time.Millisecond

// attitudeMessage is the JSON payload published to the attitude topic.
type attitudeMessage struct {
	Roll        float64    `json:"roll"`
	Pitch       float64    `json:"pitch"`
	Yaw         float64    `json:"yaw"`
	DRoll       float64    `json:"droll"`
	DPitch      float64    `json:"dpitch"`
	DYaw        float64    `json:"dyaw"`
	ESC         [4]float64 `json:"esc"`
	LoopCounter uint64     `json:"loop"`
}

// Bus publishes to the flight topics.
type Bus struct {
	client mqtt.Client

	topicAttitude string
	topicMode     string
	topicArmed    string
	topicGPS      string
}

// New connects to the configured broker and returns a Bus ready to
// publish. The caller owns the connection's lifetime via Close.
func New(broker, clientID, topicAttitude, topicMode, topicArmed, topicGPS string) (*Bus, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("groundbus: connected to MQTT broker at %s", broker)
	return &Bus{
		client:        client,
		topicAttitude: topicAttitude,
		topicMode:     topicMode,
		topicArmed:    topicArmed,
		topicGPS:      topicGPS,
	}, nil
}

func (b *Bus) Close() {
	b.client.Disconnect(250)
}

// PublishAttitude publishes the current pose snapshot, best-effort.
func (b *Bus) PublishAttitude(st core.StateSnapshot) {
	payload, err := json.Marshal(attitudeMessage{
		Roll: st.Roll, Pitch: st.Pitch, Yaw: st.Yaw,
		DRoll: st.DRoll, DPitch: st.DPitch, DYaw: st.DYaw,
		ESC: st.ESC, LoopCounter: st.LoopCounter,
	})
	if err != nil {
		log.Printf("groundbus: attitude marshal error: %v", err)
		return
	}
	b.client.Publish(b.topicAttitude, 0, true, payload)
}

// PublishMode publishes the combined core/flight mode string. Called on
// change only, per spec 7.1.
func (b *Bus) PublishMode(mode core.Mode, flightMode stack.FlightMode) {
	b.client.Publish(b.topicMode, 0, true, []byte(mode.String()+" "+flightMode.String()))
}

// PublishArmed publishes whether the core is armed. Called on change
// only, per spec 7.1.
func (b *Bus) PublishArmed(armed bool) {
	payload := []byte("false")
	if armed {
		payload = []byte("true")
	}
	b.client.Publish(b.topicArmed, 0, true, payload)
}

// PublishGPS publishes the latest GPS fix, best-effort. Fed by
// internal/gpsfeed; purely informational, since POSITION mode itself
// is an unimplemented placeholder.
func (b *Bus) PublishGPS(fix gpsfeed.Fix) {
	if !fix.Valid {
		return
	}
	payload, err := json.Marshal(fix)
	if err != nil {
		log.Printf("groundbus: gps marshal error: %v", err)
		return
	}
	b.client.Publish(b.topicGPS, 0, true, payload)
}

// Run publishes the attitude mirror at AttitudePeriod, and the mode/armed
// mirrors whenever they change, until stop is closed.
func (b *Bus) Run(stop <-chan struct{}, state *core.State, sp *core.Setpoint, st *stack.Stack) {
	ticker := time.NewTicker(AttitudePeriod)
	defer ticker.Stop()

	var lastMode core.Mode = -1
	var lastFlightMode stack.FlightMode = -1

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.PublishAttitude(state.Snapshot())

			mode := sp.Mode()
			flightMode := st.Mode()
			if mode != lastMode || flightMode != lastFlightMode {
				b.PublishMode(mode, flightMode)
				b.PublishArmed(mode != core.ModeDisarmed)
				lastMode, lastFlightMode = mode, flightMode
			}
		}
	}
}
