// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"fmt"

	"github.com/silversixpence-crypto/dapol/bulletproofs"
	"github.com/silversixpence-crypto/dapol/ristretto"
)

// Verify checks p against a claimed (root_hash, root_commitment), per spec
// §4.9: re-derive the leaf, walk up combining with each disclosed sibling,
// compare to the claimed root, then verify the aggregated range proof
// against the reconstructed chain of commitments.
func (p *InclusionProof) Verify(rootHash [32]byte, rootCommitment *ristretto.Point) error {
	if len(p.Siblings) != int(p.PathLength)-1 {
		return fmt.Errorf("%w: expected %d siblings, got %d", ErrInvalidPath, int(p.PathLength)-1, len(p.Siblings))
	}

	leafCommitment := ristretto.Commit(ristretto.ScalarFromUint64(p.LeafLiability), p.LeafBlinding)
	leafHash := hashLeaf(p.LeafID, p.LeafSalt, leafCommitment)

	chain := make([]*ristretto.Point, 0, len(p.Siblings)+1)
	chain = append(chain, leafCommitment)

	curHash := leafHash
	curCommitment := leafCommitment
	for _, sib := range p.Siblings {
		var leftHash, rightHash [32]byte
		var leftCommitment, rightCommitment *ristretto.Point
		if sib.IsLeftChild {
			leftHash, leftCommitment = sib.Hash, sib.Commitment
			rightHash, rightCommitment = curHash, curCommitment
		} else {
			leftHash, leftCommitment = curHash, curCommitment
			rightHash, rightCommitment = sib.Hash, sib.Commitment
		}
		curCommitment = leftCommitment.Add(rightCommitment)
		curHash = hashInterior(leftHash, rightHash, curCommitment)
		chain = append(chain, curCommitment)
	}

	if curHash != rootHash {
		return ErrInvalidPath
	}
	if !curCommitment.Equal(rootCommitment) {
		return ErrInvalidPath
	}

	if err := bulletproofs.Verify(p.RangeProof, chain); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRangeProof, err)
	}
	return nil
}
