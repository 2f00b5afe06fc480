// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import "errors"

// Error kinds from spec §7. Each is a sentinel, checked with errors.Is;
// callers that need more detail should inspect the wrapped message via
// Error(), following the teacher's own error style (zk/verifier.go,
// zk/commitment.go: inline errors.New values, wrapped with fmt.Errorf at
// the call site).
var (
	// ErrInvalidConfig covers missing/out-of-range build configuration:
	// height, bit length, or a missing master secret.
	ErrInvalidConfig = errors.New("dapol: invalid config")

	// ErrTooManyEntities is returned when N > 2^(H-1).
	ErrTooManyEntities = errors.New("dapol: too many entities for tree height")

	// ErrDuplicateEntityID is returned when two entities share an id.
	ErrDuplicateEntityID = errors.New("dapol: duplicate entity id")

	// ErrLiabilityOverflow covers a leaf liability above max_liability, a
	// liability_sum not below 2^B, or a combine whose sum would exceed
	// max_liability * 2^H.
	ErrLiabilityOverflow = errors.New("dapol: liability overflow")

	// ErrUnknownEntity is returned by proof generation for an id that was
	// never part of the build.
	ErrUnknownEntity = errors.New("dapol: unknown entity")

	// ErrInvalidPath is returned by verification when the recomputed root
	// does not match the claimed root.
	ErrInvalidPath = errors.New("dapol: invalid inclusion path")

	// ErrInvalidRangeProof is returned by verification when the aggregated
	// range proof fails.
	ErrInvalidRangeProof = errors.New("dapol: invalid range proof")

	// ErrDeserialization covers a bad magic, a truncated input, or a field
	// that does not decode; the wire formats carry no checksum.
	ErrDeserialization = errors.New("dapol: deserialization error")
)

// InvariantError is panicked (never returned) when an internal invariant
// is violated — spec §7 treats these as bugs, not recoverable input
// errors, and the process is expected to terminate.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "dapol: internal invariant violated: " + e.Msg
}

// panicInvariant raises an InvariantError. It exists as a named choke
// point so every invariant violation in the codebase is easy to grep for.
func panicInvariant(msg string) {
	panic(&InvariantError{Msg: msg})
}
