// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bulletproofs

import (
	"encoding/binary"

	"github.com/zeebo/blake3"

	"github.com/silversixpence-crypto/dapol/ristretto"
)

// transcript accumulates every public value a Fiat-Shamir proof commits to
// before a challenge is derived, so that a verifier can recompute the exact
// same challenge from the proof's own public fields. BLAKE3's extendable
// output is used to squeeze the 64 bytes a uniform scalar needs, the same
// hash primitive the rest of the tree uses for domain-separated digests.
type transcript struct {
	h *blake3.Hasher
}

func newTranscript(domain string) *transcript {
	h := blake3.New()
	h.Write([]byte(domain))
	return &transcript{h: h}
}

func (t *transcript) appendBytes(label string, b []byte) {
	t.h.Write([]byte(label))
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(b)))
	t.h.Write(length[:])
	t.h.Write(b)
}

func (t *transcript) appendUint64(label string, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	t.appendBytes(label, buf[:])
}

func (t *transcript) appendPoint(label string, p *ristretto.Point) {
	t.appendBytes(label, p.Bytes())
}

// challengeScalar derives a uniform scalar from the transcript state so far
// without mutating it, so the same transcript can still absorb more data
// afterward if a multi-round protocol needs it.
func (t *transcript) challengeScalar(label string) (*ristretto.Scalar, error) {
	digest := t.h.Clone()
	digest.Write([]byte(label))
	var wide [64]byte
	reader := digest.Digest()
	if _, err := reader.Read(wide[:]); err != nil {
		return nil, err
	}
	return ristretto.ScalarFromUniformBytes(wide[:])
}
