// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/silversixpence-crypto/dapol/coordinate"
)

// spawnThreshold is the subtree entry count above which the builder hands
// the left child off to a worker goroutine instead of recursing inline
// (spec §4.6: "T chosen so per-task overhead dominates at <= ~1000
// combines" — picked conservatively smaller since our combine is a single
// point addition plus one BLAKE3 call, cheaper than the teacher's typical
// precompile work unit).
const spawnThreshold = 256

// leafEntry is one occupied bottom-layer position, kept in a slice sorted
// by X so any coordinate's covered range can be located with two binary
// searches instead of re-partitioning a set at every recursion level.
type leafEntry struct {
	X         uint64
	ID        EntityID
	Liability uint64
}

// Store is C7: the selective, concurrent node store. It doubles as the
// home of C6's parallel builder, since "build the tree" and "recompute a
// missing node on demand" are the same recursive combine reduced to two
// different entry coordinates — the spec's own lookup contract ("on miss,
// transparently triggers a minimal re-build... anchored on the nearest
// stored ancestor") falls out for free once Get always resolves a
// coordinate by recomputation-or-cache-hit.
type Store struct {
	height       uint8
	storeDepth   uint8
	maxLiability uint64
	cap          uint64
	masterSecret [32]byte
	saltCom      [32]byte
	saltHash     [32]byte

	entries []leafEntry // sorted ascending by X; len == number of entities

	nodes        sync.Map // coordinate.Coord -> NodeContent
	paddingCache sync.Map // coordinate.Coord -> NodeContent; append-only memoization (spec §5)

	sem *semaphore.Weighted
}

func newStore(height, storeDepth uint8, maxLiability uint64, masterSecret, saltCom, saltHash [32]byte, entries []leafEntry, maxThreadCount uint16) *Store {
	sorted := append([]leafEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	threads := int64(maxThreadCount)
	if threads <= 0 {
		threads = 1
	}
	return &Store{
		height:       height,
		storeDepth:   storeDepth,
		maxLiability: maxLiability,
		cap:          liabilityCap(maxLiability, height),
		masterSecret: masterSecret,
		saltCom:      saltCom,
		saltHash:     saltHash,
		entries:      sorted,
		sem:          semaphore.NewWeighted(threads),
	}
}

// rangeFor returns the [lo, hi) span of leaf-layer X positions a
// coordinate covers.
func rangeFor(c coordinate.Coord) (lo, hi uint64) {
	span := uint64(1) << c.Y
	return c.X * span, (c.X + 1) * span
}

// entriesInRange returns the contiguous sub-slice of s.entries whose X
// falls in c's covered leaf range.
func (s *Store) entriesInRange(c coordinate.Coord) []leafEntry {
	lo, hi := rangeFor(c)
	start := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].X >= lo })
	end := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].X >= hi })
	return s.entries[start:end]
}

// Get resolves the NodeContent at c, serving from the store if present and
// otherwise recomputing it (and, per policy, caching it) from the known
// entity inputs and deterministic padding derivation.
func (s *Store) Get(ctx context.Context, c coordinate.Coord) (NodeContent, error) {
	if v, ok := s.nodes.Load(c); ok {
		return v.(NodeContent), nil
	}
	content, err := s.computeSubtree(ctx, c)
	if err != nil {
		return NodeContent{}, err
	}
	s.maybeStore(c, content)
	return content, nil
}

// computeSubtree is the recursive combine of spec §4.6: empty range ->
// padding; y==0 -> the single occupied leaf; otherwise split by the x
// bit at y-1 and recurse, fanning the left child out to a worker
// goroutine once the remaining subtree is large enough to be worth the
// overhead (bounded by s.sem, sized to max_thread_count).
func (s *Store) computeSubtree(ctx context.Context, c coordinate.Coord) (NodeContent, error) {
	if err := ctx.Err(); err != nil {
		return NodeContent{}, err
	}

	entries := s.entriesInRange(c)
	if len(entries) == 0 {
		return s.paddingAt(c)
	}
	if c.Y == 0 {
		if len(entries) != 1 {
			panicInvariant(fmt.Sprintf("multiple entities mapped to leaf x=%d", c.X))
		}
		e := entries[0]
		return buildLeaf(s.masterSecret, s.saltCom, s.saltHash, e.ID, e.Liability, s.maxLiability)
	}

	leftC, rightC := c.Children()

	var leftContent, rightContent NodeContent
	var leftErr, rightErr error

	if len(entries) >= spawnThreshold && s.sem.TryAcquire(1) {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.sem.Release(1)
			leftContent, leftErr = s.Get(ctx, leftC)
		}()
		rightContent, rightErr = s.Get(ctx, rightC)
		wg.Wait()
	} else {
		leftContent, leftErr = s.Get(ctx, leftC)
		if leftErr == nil {
			rightContent, rightErr = s.Get(ctx, rightC)
		}
	}
	if leftErr != nil {
		return NodeContent{}, leftErr
	}
	if rightErr != nil {
		return NodeContent{}, rightErr
	}
	return combine(leftContent, rightContent, s.cap)
}

// paddingAt returns the deterministic padding node at c, memoized in an
// append-only cache shared across build and every later proof generation
// (spec §5, §9).
func (s *Store) paddingAt(c coordinate.Coord) (NodeContent, error) {
	if v, ok := s.paddingCache.Load(c); ok {
		return v.(NodeContent), nil
	}
	content, err := buildPadding(s.masterSecret, s.saltCom, s.saltHash, c)
	if err != nil {
		return NodeContent{}, err
	}
	actual, _ := s.paddingCache.LoadOrStore(c, content)
	return actual.(NodeContent), nil
}

// maybeStore inserts content at c if the store-depth policy (spec §4.7)
// says c should be materialized: D==H stores everything; D==0 stores only
// the root; otherwise the topmost D layers plus every occupied leaf.
func (s *Store) maybeStore(c coordinate.Coord, content NodeContent) {
	if !s.shouldStore(c) {
		return
	}
	s.nodes.LoadOrStore(c, content)
}

func (s *Store) shouldStore(c coordinate.Coord) bool {
	if s.storeDepth >= s.height {
		return true
	}
	if s.storeDepth == 0 {
		return c.IsRoot(s.height)
	}
	if c.Y >= s.height-s.storeDepth {
		return true
	}
	if c.Y == 0 {
		lo, _ := rangeFor(c)
		idx := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].X >= lo })
		return idx < len(s.entries) && s.entries[idx].X == lo
	}
	return false
}

// StoredNodeCount returns the number of nodes currently materialized in
// the store, used by tests to check the store-depth knob actually changes
// memory footprint (spec §8, S4).
func (s *Store) StoredNodeCount() int {
	n := 0
	s.nodes.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
