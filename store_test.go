// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/silversixpence-crypto/dapol/coordinate"
)

func testEntries(n int) []leafEntry {
	entries := make([]leafEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = leafEntry{X: uint64(i), ID: mkID(byte(i + 1)), Liability: uint64(i + 1)}
	}
	return entries
}

func TestStoreGetRootMatchesManualCombine(t *testing.T) {
	const height = 3 // leaf width 4
	entries := testEntries(4)
	store := newStore(height, height, 1000, [32]byte{1}, [32]byte{2}, [32]byte{3}, entries, 4)

	root, err := store.Get(context.Background(), coordinate.Root(height))
	require.NoError(t, err)

	var sum uint64
	for _, e := range entries {
		sum += e.Liability
	}
	require.Equal(t, sum, root.Liability)
}

func TestStoreDepthZeroStoresOnlyRoot(t *testing.T) {
	const height = 4
	entries := testEntries(3)
	store := newStore(height, 0, 1000, [32]byte{1}, [32]byte{2}, [32]byte{3}, entries, 2)

	_, err := store.Get(context.Background(), coordinate.Root(height))
	require.NoError(t, err)

	require.Equal(t, 1, store.StoredNodeCount())
}

func TestStoreDepthFullStoresEveryNode(t *testing.T) {
	const height = 3
	entries := testEntries(4)
	store := newStore(height, height, 1000, [32]byte{1}, [32]byte{2}, [32]byte{3}, entries, 2)

	_, err := store.Get(context.Background(), coordinate.Root(height))
	require.NoError(t, err)

	// height 3: 4 leaves + 2 interior + 1 root = 7 nodes.
	require.Equal(t, 7, store.StoredNodeCount())
}

func TestStoreOnDemandRebuildMatchesFullyStored(t *testing.T) {
	const height = 4
	entries := testEntries(5)

	fullStore := newStore(height, height, 1000, [32]byte{9}, [32]byte{8}, [32]byte{7}, entries, 4)
	sparseStore := newStore(height, 1, 1000, [32]byte{9}, [32]byte{8}, [32]byte{7}, entries, 4)

	ctx := context.Background()
	rootFull, err := fullStore.Get(ctx, coordinate.Root(height))
	require.NoError(t, err)
	rootSparse, err := sparseStore.Get(ctx, coordinate.Root(height))
	require.NoError(t, err)

	require.Equal(t, rootFull.Hash, rootSparse.Hash)
	require.True(t, rootFull.Commitment.Equal(rootSparse.Commitment))
	require.Less(t, sparseStore.StoredNodeCount(), fullStore.StoredNodeCount())
}

func TestStorePaddingAtEmptyCoordinate(t *testing.T) {
	const height = 3
	store := newStore(height, height, 1000, [32]byte{1}, [32]byte{2}, [32]byte{3}, nil, 2)

	content, err := store.Get(context.Background(), coordinate.Root(height))
	require.NoError(t, err)
	require.Equal(t, uint64(0), content.Liability)
}
