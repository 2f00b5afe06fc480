// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestTree(t *testing.T, height uint8, entities []Entity) *DapolTree {
	t.Helper()
	saltCom, saltHash := fixedSalts()
	tree, err := Build(Config{
		Height: height, MaxLiability: 1000, SaltCom: saltCom, SaltHash: saltHash,
		MasterSecret: [32]byte{0x42}, Entities: entities, MaxThreadCount: 4,
		StoreDepth: height, RangeProofBitLength: 32,
	})
	require.NoError(t, err)
	return tree
}

func TestProofPathLengthMatchesHeight(t *testing.T) {
	tree := buildTestTree(t, 5, []Entity{{ID: idFromString("a"), Liability: 3}})
	proof, err := tree.GenerateInclusionProof(idFromString("a"), nil)
	require.NoError(t, err)
	require.Equal(t, uint8(5), proof.PathLength)
	require.Len(t, proof.Siblings, 4)
}

func TestProofAggregationFactorOverride(t *testing.T) {
	tree := buildTestTree(t, 5, []Entity{{ID: idFromString("a"), Liability: 3}})
	factor := 16
	proof, err := tree.GenerateInclusionProof(idFromString("a"), &factor)
	require.NoError(t, err)
	require.Equal(t, 16, proof.RangeProof.NumValues)

	hRoot, cRoot, err := tree.PublicRootData()
	require.NoError(t, err)
	require.NoError(t, proof.Verify(hRoot, cRoot))
}

func TestProofAggregationFactorRejectsNonPowerOfTwo(t *testing.T) {
	tree := buildTestTree(t, 5, []Entity{{ID: idFromString("a"), Liability: 3}})
	factor := 6
	_, err := tree.GenerateInclusionProof(idFromString("a"), &factor)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestProofAggregationFactorRejectsTooSmall(t *testing.T) {
	tree := buildTestTree(t, 5, []Entity{{ID: idFromString("a"), Liability: 3}})
	factor := 2
	_, err := tree.GenerateInclusionProof(idFromString("a"), &factor)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
