// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"fmt"

	"github.com/silversixpence-crypto/dapol/coordinate"
	"github.com/silversixpence-crypto/dapol/kdf"
	"github.com/silversixpence-crypto/dapol/ristretto"
)

// buildLeaf constructs a blinded leaf NodeContent for one entity, per spec
// §3's leaf content derivation. It rejects liabilities over maxLiability
// (spec §4.4).
func buildLeaf(masterSecret [32]byte, saltCom, saltHash [32]byte, id EntityID, liability uint64, maxLiability uint64) (NodeContent, error) {
	if liability > maxLiability {
		return NodeContent{}, fmt.Errorf("%w: leaf %s liability %d > max %d", ErrLiabilityOverflow, id, liability, maxLiability)
	}

	w := kdf.DeriveVerificationKey(masterSecret, id[:])
	blinding, err := kdf.DeriveBlinding(w, saltCom)
	if err != nil {
		return NodeContent{}, fmt.Errorf("dapol: derive leaf blinding for %s: %w", id, err)
	}
	leafSalt := kdf.DeriveLeafSalt(w, saltHash)

	commitment := ristretto.Commit(ristretto.ScalarFromUint64(liability), blinding)
	hash := hashLeaf(id, leafSalt, commitment)

	return NodeContent{
		Hash:       hash,
		Commitment: commitment,
		Liability:  liability,
		Blinding:   blinding,
	}, nil
}

// buildPadding constructs the deterministic padding NodeContent for an
// unoccupied coordinate, per spec §3's padding content derivation:
// liability is always zero, and the commitment/hash are pure functions of
// (master_secret, coord, salts) so any party can recompute an "empty
// subtree" without materializing it (spec §9).
func buildPadding(masterSecret [32]byte, saltCom, saltHash [32]byte, c coordinate.Coord) (NodeContent, error) {
	blinding, salt, err := kdf.DerivePaddingContent(masterSecret, c, saltCom, saltHash)
	if err != nil {
		return NodeContent{}, fmt.Errorf("dapol: derive padding at %s: %w", c, err)
	}

	commitment := ristretto.Commit(ristretto.ScalarFromUint64(0), blinding)
	hash := hashPadding(c.X, c.Y, salt, commitment)

	return NodeContent{
		Hash:       hash,
		Commitment: commitment,
		Liability:  0,
		Blinding:   blinding,
	}, nil
}
