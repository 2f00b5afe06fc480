// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/silversixpence-crypto/dapol/bulletproofs"
	"github.com/silversixpence-crypto/dapol/coordinate"
	"github.com/silversixpence-crypto/dapol/kdf"
	"github.com/silversixpence-crypto/dapol/ristretto"
)

// Sibling is one entry of an inclusion proof's path: the hash and
// commitment of the node adjacent to the path at a given level, plus
// which side it sits on.
type Sibling struct {
	Hash        [32]byte
	Commitment  *ristretto.Point
	IsLeftChild bool // true if this sibling is the left child of its parent
}

// InclusionProof is C8's output, per spec §6's wire layout. PathLength
// records the tree height H the proof was generated against (the wire
// spec's "path_length: u8 // = H"); Siblings holds the H-1 adjacent nodes
// actually needed to recombine up to the root — the root itself has no
// sibling to pair with.
type InclusionProof struct {
	BitLength     uint8
	PathLength    uint8
	LeafID        EntityID
	LeafSalt      [32]byte
	LeafLiability uint64
	LeafBlinding  *ristretto.Scalar
	Siblings      []Sibling
	RangeProof    *bulletproofs.AggregatedRangeProof
}

// GenerateInclusionProof builds an InclusionProof for entity id, per spec
// §4.8. aggregationFactor, if non-nil, overrides the default
// next-power-of-two aggregation width; it must be a power of two no
// smaller than the number of path nodes (leaf + every ancestor including
// root).
func (t *DapolTree) GenerateInclusionProof(id EntityID, aggregationFactor *int) (*InclusionProof, error) {
	start := time.Now()

	x, ok := t.mapping[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}

	ctx := context.Background()
	height := t.config.Height
	leafCoord := coordinate.Coord{X: x, Y: 0}
	path := leafCoord.PathToRoot(height) // leaf .. root, inclusive, length H

	pathNodes := make([]NodeContent, len(path))
	for i, c := range path {
		content, err := t.store.Get(ctx, c)
		if err != nil {
			return nil, err
		}
		pathNodes[i] = content
	}

	siblings := make([]Sibling, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		sibCoord := path[i].Sibling()
		sibContent, err := t.store.Get(ctx, sibCoord)
		if err != nil {
			return nil, err
		}
		siblings = append(siblings, Sibling{
			Hash:        sibContent.Hash,
			Commitment:  sibContent.Commitment,
			IsLeftChild: sibCoord.IsLeftChild(),
		})
	}

	w := kdf.DeriveVerificationKey(t.config.MasterSecret, id[:])
	leafSalt := kdf.DeriveLeafSalt(w, t.config.SaltHash)

	n := len(pathNodes)
	aggCount := bulletproofs.NextPowerOfTwo(n)
	if aggregationFactor != nil {
		if *aggregationFactor < n || (*aggregationFactor&(*aggregationFactor-1)) != 0 {
			return nil, fmt.Errorf("%w: aggregation_factor %d must be a power of two >= %d", ErrInvalidConfig, *aggregationFactor, n)
		}
		aggCount = *aggregationFactor
	}

	values := make([]uint64, 0, aggCount)
	blindings := make([]*ristretto.Scalar, 0, aggCount)
	for _, node := range pathNodes {
		values = append(values, node.Liability)
		blindings = append(blindings, node.Blinding)
	}
	if padCount := aggCount - n; padCount > 0 {
		dummyValues, dummyBlindings, err := bulletproofs.RandomDummyCommitmentInputs(padCount, rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("dapol: generate dummy padding commitments: %w", err)
		}
		values = append(values, dummyValues...)
		blindings = append(blindings, dummyBlindings...)
	}

	rangeProof, err := bulletproofs.Prove(values, blindings, t.config.RangeProofBitLength)
	if err != nil {
		return nil, fmt.Errorf("dapol: generate aggregated range proof: %w", err)
	}

	t.logger.Debugw("generated inclusion proof", "entity", id.String(), "path_length", len(path), "aggregation_count", aggCount)
	t.metrics.ObserveProof(time.Since(start).Seconds())

	return &InclusionProof{
		BitLength:     t.config.RangeProofBitLength,
		PathLength:    height,
		LeafID:        id,
		LeafSalt:      leafSalt,
		LeafLiability: pathNodes[0].Liability,
		LeafBlinding:  pathNodes[0].Blinding,
		Siblings:      siblings,
		RangeProof:    rangeProof,
	}, nil
}
