// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package radio

import "sync"

// Scripted is a Receiver that replays a fixed sequence of channel frames,
// one per HasNewFrame call that returns true, for tests driving the link
// watcher and arming supervisor without real hardware.
type Scripted struct {
	mu     sync.Mutex
	frames [][7]float64
	pos    int
	ch     [7]float64
}

// NewScripted returns a Scripted receiver that will hand out frames in
// order, one per call to HasNewFrame, then report no new frame forever.
func NewScripted(frames [][7]float64) *Scripted {
	return &Scripted{frames: frames}
}

func (s *Scripted) Init() error { return nil }

func (s *Scripted) HasNewFrame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.frames) {
		return false
	}
	s.ch = s.frames[s.pos]
	s.pos++
	return true
}

func (s *Scripted) ChannelNormalized(i int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch[i]
}

// Hold freezes the receiver on the last delivered frame, simulating a
// radio that has stopped producing new frames (loss of link).
func (s *Scripted) Hold() {
	s.mu.Lock()
	s.pos = len(s.frames)
	s.mu.Unlock()
}
