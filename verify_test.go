// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyRejectsTamperedLeafLiability(t *testing.T) {
	tree := buildTestTree(t, 4, []Entity{{ID: idFromString("a"), Liability: 3}, {ID: idFromString("b"), Liability: 4}})
	proof, err := tree.GenerateInclusionProof(idFromString("a"), nil)
	require.NoError(t, err)

	hRoot, cRoot, err := tree.PublicRootData()
	require.NoError(t, err)
	require.NoError(t, proof.Verify(hRoot, cRoot))

	proof.LeafLiability++
	require.Error(t, proof.Verify(hRoot, cRoot))
}

func TestVerifyRejectsTamperedSibling(t *testing.T) {
	tree := buildTestTree(t, 4, []Entity{{ID: idFromString("a"), Liability: 3}, {ID: idFromString("b"), Liability: 4}})
	proof, err := tree.GenerateInclusionProof(idFromString("a"), nil)
	require.NoError(t, err)

	hRoot, cRoot, err := tree.PublicRootData()
	require.NoError(t, err)

	proof.Siblings[0].Hash[0] ^= 0xFF
	require.Error(t, proof.Verify(hRoot, cRoot))
}

func TestVerifyRejectsTamperedDirectionBit(t *testing.T) {
	tree := buildTestTree(t, 4, []Entity{{ID: idFromString("a"), Liability: 3}, {ID: idFromString("b"), Liability: 4}})
	proof, err := tree.GenerateInclusionProof(idFromString("a"), nil)
	require.NoError(t, err)

	hRoot, cRoot, err := tree.PublicRootData()
	require.NoError(t, err)

	proof.Siblings[0].IsLeftChild = !proof.Siblings[0].IsLeftChild
	require.Error(t, proof.Verify(hRoot, cRoot))
}

func TestVerifyRejectsWrongSiblingCount(t *testing.T) {
	tree := buildTestTree(t, 4, []Entity{{ID: idFromString("a"), Liability: 3}})
	proof, err := tree.GenerateInclusionProof(idFromString("a"), nil)
	require.NoError(t, err)

	hRoot, cRoot, err := tree.PublicRootData()
	require.NoError(t, err)

	proof.Siblings = proof.Siblings[:len(proof.Siblings)-1]
	require.ErrorIs(t, proof.Verify(hRoot, cRoot), ErrInvalidPath)
}

func TestVerifyRootCommitmentTamperDetection(t *testing.T) {
	tree := buildTestTree(t, 3, []Entity{{ID: idFromString("a"), Liability: 3}})
	liabilitySum, blindingSum, err := tree.SecretRootData()
	require.NoError(t, err)
	_, cRoot, err := tree.PublicRootData()
	require.NoError(t, err)

	require.True(t, tree.VerifyRootCommitment(cRoot, blindingSum, liabilitySum))
	require.False(t, tree.VerifyRootCommitment(cRoot, blindingSum, liabilitySum+1))
}
