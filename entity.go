// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import "fmt"

// EntityIDSize is the width of an entity id: a 512-bit opaque bytestring
// (spec §3).
const EntityIDSize = 64

// EntityID is a 512-bit opaque identifier, unique across an input set.
type EntityID [EntityIDSize]byte

// String renders the first 8 bytes of the id as hex, enough to
// disambiguate in logs without printing the whole 64-byte value.
func (id EntityID) String() string {
	return fmt.Sprintf("%x…", id[:8])
}

// Entity is a single liability-holder: an opaque id paired with its
// liability amount.
type Entity struct {
	ID        EntityID
	Liability uint64
}

// validateEntities checks the uniqueness invariant from spec §3 ("Ids
// unique across input set; duplicates → error") and that every liability
// fits under maxLiability (spec §4.4: "Must reject liability >
// max_liability").
func validateEntities(entities []Entity, maxLiability uint64) error {
	seen := make(map[EntityID]struct{}, len(entities))
	for _, e := range entities {
		if _, ok := seen[e.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateEntityID, e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.Liability > maxLiability {
			return fmt.Errorf("%w: entity %s liability %d exceeds max_liability %d", ErrLiabilityOverflow, e.ID, e.Liability, maxLiability)
		}
	}
	return nil
}
