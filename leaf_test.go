// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/silversixpence-crypto/dapol/coordinate"
)

func TestBuildLeafDeterministic(t *testing.T) {
	master := [32]byte{1}
	saltCom := [32]byte{2}
	saltHash := [32]byte{3}

	n1, err := buildLeaf(master, saltCom, saltHash, mkID(7), 42, 1000)
	require.NoError(t, err)
	n2, err := buildLeaf(master, saltCom, saltHash, mkID(7), 42, 1000)
	require.NoError(t, err)

	require.Equal(t, n1.Hash, n2.Hash)
	require.True(t, n1.Commitment.Equal(n2.Commitment))
	require.True(t, n1.Blinding.Equal(n2.Blinding))
}

func TestBuildLeafRejectsOverLimit(t *testing.T) {
	_, err := buildLeaf([32]byte{1}, [32]byte{2}, [32]byte{3}, mkID(1), 101, 100)
	require.ErrorIs(t, err, ErrLiabilityOverflow)
}

func TestBuildPaddingDeterministicAndZeroLiability(t *testing.T) {
	master := [32]byte{1}
	saltCom := [32]byte{2}
	saltHash := [32]byte{3}
	c := coordinate.Coord{X: 5, Y: 2}

	p1, err := buildPadding(master, saltCom, saltHash, c)
	require.NoError(t, err)
	p2, err := buildPadding(master, saltCom, saltHash, c)
	require.NoError(t, err)

	require.Equal(t, uint64(0), p1.Liability)
	require.Equal(t, p1.Hash, p2.Hash)
	require.True(t, p1.Commitment.Equal(p2.Commitment))
}

func TestBuildPaddingVariesByCoordinate(t *testing.T) {
	master := [32]byte{1}
	saltCom := [32]byte{2}
	saltHash := [32]byte{3}

	p1, err := buildPadding(master, saltCom, saltHash, coordinate.Coord{X: 0, Y: 0})
	require.NoError(t, err)
	p2, err := buildPadding(master, saltCom, saltHash, coordinate.Coord{X: 1, Y: 0})
	require.NoError(t, err)

	require.NotEqual(t, p1.Hash, p2.Hash)
}
