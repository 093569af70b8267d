// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package flightlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushPopPreservesOrder(t *testing.T) {
	t.Parallel()

	r := NewRing(8)
	for i := uint64(0); i < 5; i++ {
		r.Push(Row{LoopNumber: i})
	}

	for i := uint64(0); i < 5; i++ {
		row, ok := r.Pop()
		require.True(t, ok)
		require.Equal(t, i, row.LoopNumber)
	}

	_, ok := r.Pop()
	require.False(t, ok)
}

func TestPushNeverBlocksWhenFull(t *testing.T) {
	t.Parallel()

	r := NewRing(4)
	for i := uint64(0); i < 100; i++ {
		r.Push(Row{LoopNumber: i})
	}

	row, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, uint64(96), row.LoopNumber)
}

func TestThousandTicksProduceThousandOrderedRows(t *testing.T) {
	t.Parallel()

	r := NewRing(64)
	const n = 1000

	done := make(chan struct{})
	go func() {
		for i := uint64(0); i < n; i++ {
			r.Push(Row{LoopNumber: i})
		}
		close(done)
	}()

	var got []uint64
	for uint64(len(got)) < n {
		if row, ok := r.Pop(); ok {
			got = append(got, row.LoopNumber)
		}
	}
	<-done

	require.Len(t, got, n)
	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i], got[i-1])
	}
}
