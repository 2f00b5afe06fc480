// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// assignPositions implements C5: it shuffles N distinct entity ids into
// unique x-coordinates in [0, width) chosen uniformly at random among all
// injective maps, via the hashmap-optimized Durstenfeld variant from spec
// §4.5. The published paper's naive form has an off-by-one/symmetry flaw
// (only one swap endpoint fetched through the sparse map); this fetches
// both endpoints through m, which is required for an unbiased sample.
func assignPositions(ids []EntityID, width uint64, rnd io.Reader) (map[EntityID]uint64, error) {
	n := uint64(len(ids))
	if n > width {
		return nil, fmt.Errorf("%w: %d entities, capacity %d", ErrTooManyEntities, n, width)
	}

	m := make(map[uint64]uint64, n) // sparse: slot -> value currently sitting there, default identity
	get := func(k uint64) uint64 {
		if v, ok := m[k]; ok {
			return v
		}
		return k
	}

	mapping := make(map[EntityID]uint64, n)
	for i := uint64(0); i < n; i++ {
		j, err := randomUint64InRange(rnd, i, width)
		if err != nil {
			return nil, fmt.Errorf("dapol: ndm-smt shuffle: %w", err)
		}
		x := get(j)
		m[j] = get(i)
		mapping[ids[i]] = x
	}
	return mapping, nil
}

// randomUint64InRange draws a uniformly random value in [lo, hi) from rnd,
// via rejection sampling so that every value in the range is equally
// likely even when hi-lo is not a power of two and hi can be as large as
// 2^63 (spec §4.5: "despite W possibly being 2^63").
func randomUint64InRange(rnd io.Reader, lo, hi uint64) (uint64, error) {
	span := hi - lo
	if span == 0 {
		return 0, fmt.Errorf("dapol: empty range [%d,%d)", lo, hi)
	}
	if span == 1 {
		return lo, nil
	}
	// math/big.Int.Rand-free uniform sampling via crypto/rand.Int, which
	// itself performs the rejection sampling against span internally.
	n, err := randUint64(rnd, span)
	if err != nil {
		return 0, err
	}
	return lo + n, nil
}

func randUint64(rnd io.Reader, span uint64) (uint64, error) {
	max := new(big.Int).SetUint64(span)
	v, err := rand.Int(rnd, max)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}
