// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package radio implements the narrow receiver contract the link watcher
// polls, backed by a serial-attached receiver, plus a scripted mock for
// tests.
package radio

// Receiver mirrors the external driver contract (spec 6): six normalized
// channels in [-1,1], polled for new frames rather than pushed.
type Receiver interface {
	Init() error
	HasNewFrame() bool
	ChannelNormalized(i int) float64
}
