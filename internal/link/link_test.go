// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedRadio struct {
	hasFrame bool
	ch       [7]float64
}

func (r *scriptedRadio) Init() error { return nil }
func (r *scriptedRadio) HasNewFrame() bool {
	f := r.hasFrame
	r.hasFrame = false
	return f
}
func (r *scriptedRadio) ChannelNormalized(i int) float64 { return r.ch[i] }

func TestColdStartDoesNotTriggerLossOfLink(t *testing.T) {
	t.Parallel()

	radio := &scriptedRadio{}
	ui := &UserInterface{}
	landed := false
	w := NewWatcher(radio, ui, func() { landed = true }, func() {})

	w.Period()
	require.False(t, landed)
}

func TestFrameDecodeAppliesAxisSignConvention(t *testing.T) {
	t.Parallel()

	radio := &scriptedRadio{hasFrame: true}
	radio.ch[1], radio.ch[2], radio.ch[3], radio.ch[4], radio.ch[5] = 0.5, 0.3, -0.2, 0.1, -1
	ui := &UserInterface{}
	w := NewWatcher(radio, ui, func() {}, func() {})

	w.Period()

	snap := ui.Snapshot()
	require.Equal(t, 0.5, snap.Throttle)
	require.Equal(t, -0.3, snap.Roll)
	require.Equal(t, 0.2, snap.Pitch)
	require.Equal(t, 0.1, snap.Yaw)
	require.True(t, snap.Kill)
}

func TestLossOfLinkEscalatesToEmergencyLandThenDisarm(t *testing.T) {
	t.Parallel()

	radio := &scriptedRadio{hasFrame: true}
	ui := &UserInterface{}
	landed, disarmed := false, false
	w := NewWatcher(radio, ui, func() { landed = true }, func() { disarmed = true })

	w.Period() // establish first good frame
	w.lastGoodFrame = time.Now().Add(-310 * time.Millisecond)

	w.Period()
	require.True(t, landed)
	require.False(t, disarmed)

	w.lastGoodFrame = time.Now().Add(-5010 * time.Millisecond)
	w.Period()
	require.True(t, disarmed)
}

func TestDisarmLatchClearsOnNextGoodFrameSoASecondLossEscalatesAgain(t *testing.T) {
	t.Parallel()

	radio := &scriptedRadio{hasFrame: true}
	ui := &UserInterface{}
	disarmCount := 0
	w := NewWatcher(radio, ui, func() {}, func() { disarmCount++ })

	w.Period() // establish first good frame
	w.lastGoodFrame = time.Now().Add(-5010 * time.Millisecond)
	w.Period()
	require.Equal(t, 1, disarmCount)

	// Pilot re-establishes the link (e.g. after a rearm); a fresh good
	// frame must clear the latch.
	radio.hasFrame = true
	w.Period()
	require.False(t, w.disarmed)

	w.lastGoodFrame = time.Now().Add(-5010 * time.Millisecond)
	w.Period()
	require.Equal(t, 2, disarmCount)
}
