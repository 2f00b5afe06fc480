// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"encoding/binary"
	"math"

	"github.com/holiman/uint256"
	"github.com/zeebo/blake3"

	"github.com/silversixpence-crypto/dapol/ristretto"
)

// Domain separator tags, fixed as part of the wire protocol (spec §6:
// "do not change without a format bump").
const (
	domainLeaf = "leaf"
	domainPad  = "pad"
	domainNode = "node"
)

// NodeContent is the full (secret + public) content of one tree node:
// hash and commitment are shared upward and disclosed in proofs; liability
// and blinding are the secret opening only the prover (and, for a leaf,
// the owning entity) ever sees.
type NodeContent struct {
	Hash       [32]byte
	Commitment *ristretto.Point
	Liability  uint64
	Blinding   *ristretto.Scalar
}

func hashLeaf(id EntityID, leafSalt [32]byte, commitment *ristretto.Point) [32]byte {
	h := blake3.New()
	h.Write([]byte(domainLeaf))
	h.Write(id[:])
	h.Write(leafSalt[:])
	h.Write(commitment.Bytes())
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashPadding(x uint64, y uint8, salt [32]byte, commitment *ristretto.Point) [32]byte {
	h := blake3.New()
	h.Write([]byte(domainPad))
	var coordBuf [9]byte
	binary.BigEndian.PutUint64(coordBuf[:8], x)
	coordBuf[8] = y
	h.Write(coordBuf[:])
	h.Write(salt[:])
	h.Write(commitment.Bytes())
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashInterior(left, right [32]byte, commitment *ristretto.Point) [32]byte {
	h := blake3.New()
	h.Write([]byte(domainNode))
	h.Write(left[:])
	h.Write(right[:])
	h.Write(commitment.Bytes())
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// combine merges two child NodeContents into their parent per spec §3:
// additive commitment, additive (overflow-checked) liability, additive
// blinding, and a hash binding both children's hashes and the parent
// commitment. cap is the maximum liability the resulting sum may reach
// before the build is aborted (spec §4.6: "max_liability × 2^H").
func combine(left, right NodeContent, cap uint64) (NodeContent, error) {
	sum := new(uint256.Int).SetUint64(left.Liability)
	overflowed := sum.AddOverflow(sum, new(uint256.Int).SetUint64(right.Liability))
	if overflowed || !sum.IsUint64() || sum.Uint64() > cap {
		return NodeContent{}, ErrLiabilityOverflow
	}

	commitment := left.Commitment.Add(right.Commitment)
	blinding := left.Blinding.Add(right.Blinding)
	hash := hashInterior(left.Hash, right.Hash, commitment)

	return NodeContent{
		Hash:       hash,
		Commitment: commitment,
		Liability:  sum.Uint64(),
		Blinding:   blinding,
	}, nil
}

// liabilityCap computes max_liability * 2^H, saturating at math.MaxUint64
// rather than overflowing, since any real commitment sum that would reach
// that saturated value is already rejected by the per-leaf max_liability
// check (spec §4.4).
func liabilityCap(maxLiability uint64, height uint8) uint64 {
	cap := new(uint256.Int).SetUint64(maxLiability)
	shift := new(uint256.Int).Lsh(uint256.NewInt(1), uint(height))
	cap.Mul(cap, shift)
	if !cap.IsUint64() {
		return math.MaxUint64
	}
	return cap.Uint64()
}
