// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func mkID(b byte) EntityID {
	var id EntityID
	id[0] = b
	return id
}

func TestAssignPositionsInjectiveAndInRange(t *testing.T) {
	ids := []EntityID{mkID(1), mkID(2), mkID(3), mkID(4), mkID(5)}
	mapping, err := assignPositions(ids, 16, rand.Reader)
	require.NoError(t, err)
	require.Len(t, mapping, len(ids))

	seen := make(map[uint64]bool)
	for _, id := range ids {
		x, ok := mapping[id]
		require.True(t, ok)
		require.Less(t, x, uint64(16))
		require.False(t, seen[x], "position %d assigned twice", x)
		seen[x] = true
	}
}

func TestAssignPositionsFullWidth(t *testing.T) {
	ids := make([]EntityID, 8)
	for i := range ids {
		ids[i] = mkID(byte(i + 1))
	}
	mapping, err := assignPositions(ids, 8, rand.Reader)
	require.NoError(t, err)

	seen := make([]bool, 8)
	for _, id := range ids {
		x := mapping[id]
		require.False(t, seen[x])
		seen[x] = true
	}
	for _, s := range seen {
		require.True(t, s)
	}
}

func TestAssignPositionsRejectsTooManyEntities(t *testing.T) {
	ids := []EntityID{mkID(1), mkID(2), mkID(3)}
	_, err := assignPositions(ids, 2, rand.Reader)
	require.ErrorIs(t, err, ErrTooManyEntities)
}

func TestAssignPositionsDeterministicUnderFixedRandomness(t *testing.T) {
	ids := []EntityID{mkID(1), mkID(2), mkID(3), mkID(4)}

	seed := bytes.Repeat([]byte{0x42}, 256)
	m1, err := assignPositions(ids, 16, bytes.NewReader(seed))
	require.NoError(t, err)
	m2, err := assignPositions(ids, 16, bytes.NewReader(seed))
	require.NoError(t, err)
	require.Equal(t, m1, m2)
}

// TestAssignPositionsUniformity is a coarse sanity check (not a rigorous
// chi-squared test) that positions are not systematically skewed: over many
// trials of a single entity into a small width, every slot should be hit a
// roughly comparable number of times.
func TestAssignPositionsUniformity(t *testing.T) {
	const width = 8
	const trials = 4000
	counts := make([]int, width)

	for i := 0; i < trials; i++ {
		mapping, err := assignPositions([]EntityID{mkID(1)}, width, rand.Reader)
		require.NoError(t, err)
		counts[mapping[mkID(1)]]++
	}

	expected := float64(trials) / float64(width)
	for slot, c := range counts {
		ratio := float64(c) / expected
		require.Greater(t, ratio, 0.7, "slot %d under-represented: %d hits", slot, c)
		require.Less(t, ratio, 1.3, "slot %d over-represented: %d hits", slot, c)
	}
}

func TestRandomUint64InRange(t *testing.T) {
	v, err := randomUint64InRange(rand.Reader, 5, 6)
	require.NoError(t, err)
	require.Equal(t, uint64(5), v)

	for i := 0; i < 1000; i++ {
		v, err := randomUint64InRange(rand.Reader, 10, 20)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, uint64(10))
		require.Less(t, v, uint64(20))
	}
}
