// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"sort"
	"time"

	"github.com/silversixpence-crypto/dapol/coordinate"
	"github.com/silversixpence-crypto/dapol/dlog"
	"github.com/silversixpence-crypto/dapol/metrics"
	"github.com/silversixpence-crypto/dapol/ristretto"
)

// state is the tree lifecycle from spec §4.10: Empty -> Building -> Built
// -> Serialized, with no reverse transitions.
type state uint8

const (
	stateEmpty state = iota
	stateBuilding
	stateBuilt
	stateSerialized
)

// DapolTree is an immutable-after-build NDM-SMT Proof of Liabilities
// accumulator.
type DapolTree struct {
	config  Config
	state   state
	store   *Store
	root    coordinate.Coord
	mapping map[EntityID]uint64

	logger  dlog.Logger
	metrics *metrics.Collectors
}

// Build constructs a DapolTree from config: validates input, shuffles
// entities into bottom-layer positions (C5), then recursively builds the
// tree bottom-up (C6) through the selective node store (C7).
func Build(config Config) (*DapolTree, error) {
	start := time.Now()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.MasterSecret == ([32]byte{}) {
		return nil, fmt.Errorf("%w: master_secret is required", ErrInvalidConfig)
	}
	if err := config.randomizeSalts(); err != nil {
		return nil, err
	}
	if err := validateEntities(config.Entities, config.MaxLiability); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = dlog.Noop()
	}

	width := coordinate.LeafWidth(config.Height)
	ids := make([]EntityID, len(config.Entities))
	liabilities := make(map[EntityID]uint64, len(config.Entities))
	for i, e := range config.Entities {
		ids[i] = e.ID
		liabilities[e.ID] = e.Liability
	}
	// Shuffle in id order so positions depend on the entity set, not on the
	// order of the input list.
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	rnd := config.DeterministicSeed
	if rnd == nil {
		rnd = rand.Reader
	}
	mapping, err := assignPositions(ids, width, rnd)
	if err != nil {
		return nil, err
	}

	entries := make([]leafEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, leafEntry{X: mapping[id], ID: id, Liability: liabilities[id]})
	}

	store := newStore(config.Height, config.StoreDepth, config.MaxLiability, config.MasterSecret, config.SaltCom, config.SaltHash, entries, config.MaxThreadCount)

	rootCoord := coordinate.Root(config.Height)
	rootContent, err := store.Get(context.Background(), rootCoord)
	if err != nil {
		return nil, err
	}

	if config.RangeProofBitLength < 64 {
		bound := uint64(1) << config.RangeProofBitLength
		if rootContent.Liability >= bound {
			return nil, fmt.Errorf("%w: liability_sum %d exceeds 2^%d", ErrLiabilityOverflow, rootContent.Liability, config.RangeProofBitLength)
		}
	}

	logger.Infow("tree built", "height", config.Height, "entities", len(config.Entities), "store_depth", config.StoreDepth)
	config.Metrics.ObserveBuild(time.Since(start).Seconds())

	return &DapolTree{
		config:  config,
		state:   stateBuilt,
		store:   store,
		root:    rootCoord,
		mapping: mapping,
		logger:  logger,
		metrics: config.Metrics,
	}, nil
}

func (t *DapolTree) rootContent(ctx context.Context) (NodeContent, error) {
	return t.store.Get(ctx, t.root)
}

// PublicRootData returns (h_root, c_root), the only values a verifier ever
// needs.
func (t *DapolTree) PublicRootData() (hRoot [32]byte, cRoot *ristretto.Point, err error) {
	content, err := t.rootContent(context.Background())
	if err != nil {
		return [32]byte{}, nil, err
	}
	return content.Hash, content.Commitment, nil
}

// SecretRootData returns (liability_sum, blinding_sum), the ProveTot
// output — only ever held by the prover.
func (t *DapolTree) SecretRootData() (liabilitySum uint64, blindingSum *ristretto.Scalar, err error) {
	content, err := t.rootContent(context.Background())
	if err != nil {
		return 0, nil, err
	}
	return content.Liability, content.Blinding, nil
}

// VerifyRootCommitment checks, in constant time, that cRoot opens to
// (liabilitySum, blindingSum) — the ProveTot/VerifyTot check from spec §8
// property 5.
func (t *DapolTree) VerifyRootCommitment(cRoot *ristretto.Point, blindingSum *ristretto.Scalar, liabilitySum uint64) bool {
	recomputed := ristretto.Commit(ristretto.ScalarFromUint64(liabilitySum), blindingSum)
	return subtle.ConstantTimeCompare(recomputed.Bytes(), cRoot.Bytes()) == 1
}

// MasterSecret returns the prover-only seed feeding every HKDF derivation
// in the tree.
func (t *DapolTree) MasterSecret() [32]byte {
	return t.config.MasterSecret
}

// EntityMapping returns a copy of the secret entity -> bottom-layer-x map.
func (t *DapolTree) EntityMapping() map[EntityID]uint64 {
	out := make(map[EntityID]uint64, len(t.mapping))
	for k, v := range t.mapping {
		out[k] = v
	}
	return out
}

// Height returns the tree's configured height H.
func (t *DapolTree) Height() uint8 { return t.config.Height }

// StoredNodeCount exposes the store's materialized node count, used by
// callers comparing memory footprint across store-depth settings.
func (t *DapolTree) StoredNodeCount() int { return t.store.StoredNodeCount() }

// VerifyInclusionProof is the metrics-instrumented counterpart to
// (*InclusionProof).Verify: it runs the same check and, on failure,
// increments the tree's configured VerifyFailures counter. Verifiers that
// never built a DapolTree (the common case — the verifier only ever sees a
// root hash/commitment and a proof) call proof.Verify directly instead.
func (t *DapolTree) VerifyInclusionProof(proof *InclusionProof, rootHash [32]byte, rootCommitment *ristretto.Point) error {
	err := proof.Verify(rootHash, rootCommitment)
	if err != nil {
		t.metrics.IncVerifyFailure()
	}
	return err
}
