// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"sync"
	"time"
)

// MockDevice generates a smoothly varying fake attitude, the same shape
// of sine/cosine motion the orientation mock source elsewhere in this
// codebase produces, driven by an internal ticker instead of hardware.
type MockDevice struct {
	mu       sync.Mutex
	start    time.Time
	last     Sample
	ok       bool
	callback func()

	stop chan struct{}
	done chan struct{}
}

// NewMockDevice returns a MockDevice. Init starts its ticker.
func NewMockDevice() *MockDevice {
	return &MockDevice{}
}

func (m *MockDevice) Init(rateHz float64, _ [9]float64) error {
	m.mu.Lock()
	m.start = time.Now()
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.mu.Unlock()

	period := time.Duration(float64(time.Second) / rateHz)
	go m.pollLoop(period)
	return nil
}

func (m *MockDevice) pollLoop(period time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *MockDevice) tick() {
	m.mu.Lock()
	elapsed := time.Since(m.start).Seconds()
	m.last = Sample{
		Euler: [3]float64{
			0.35 * math.Sin(elapsed),
			0.25 * math.Cos(elapsed*0.7),
			math.Mod(elapsed*0.5, 2*math.Pi),
		},
		RawGyro: [3]int16{
			int16(1000 * math.Cos(elapsed)),
			int16(-1000 * math.Sin(elapsed*0.7)),
			int16(500),
		},
	}
	m.ok = true
	cb := m.callback
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (m *MockDevice) SetSampleCallback(fn func()) {
	m.mu.Lock()
	m.callback = fn
	m.mu.Unlock()
}

func (m *MockDevice) Read() (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.ok
}

func (m *MockDevice) Close() error {
	if m.stop != nil {
		close(m.stop)
		<-m.done
	}
	return nil
}

// Replay is a deterministic Device that steps through a fixed script of
// samples on demand, for unit tests that need exact control over what the
// flight core observes each tick.
type Replay struct {
	mu       sync.Mutex
	script   []Sample
	idx      int
	ok       bool
	callback func()
}

// NewReplay returns a Replay that will emit script[0], script[1], ... on
// successive calls to Step.
func NewReplay(script []Sample) *Replay {
	return &Replay{script: script}
}

func (r *Replay) Init(rateHz float64, orientation [9]float64) error { return nil }

func (r *Replay) SetSampleCallback(fn func()) {
	r.mu.Lock()
	r.callback = fn
	r.mu.Unlock()
}

func (r *Replay) Read() (Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idx == 0 {
		return Sample{}, false
	}
	return r.script[r.idx-1], r.ok
}

// Step advances to the next scripted sample and invokes the registered
// callback synchronously, the way the flight core's tick is driven from
// the IMU's own sample-ready callback. It reports whether a sample was
// available.
func (r *Replay) Step() bool {
	r.mu.Lock()
	if r.idx >= len(r.script) {
		r.ok = false
		r.mu.Unlock()
		return false
	}
	r.idx++
	r.ok = true
	cb := r.callback
	r.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

// StepFail marks the current sample invalid without advancing the
// script, simulating a transient sensor miss (spec: tick is skipped, no
// interpolation).
func (r *Replay) StepFail() {
	r.mu.Lock()
	r.ok = false
	cb := r.callback
	r.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (r *Replay) Close() error { return nil }
