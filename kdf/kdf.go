// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package kdf implements C3 (secret derivation): every use the accumulator
// makes of the master secret, funneled through HKDF-SHA-256 so that the
// master secret itself never appears directly in a hash or commitment
// (spec §4.3). All functions here are pure and deterministic in their
// inputs.
package kdf

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/silversixpence-crypto/dapol/coordinate"
	"github.com/silversixpence-crypto/dapol/ristretto"
)

// Domain-separation info tags for the two derivations hung off a
// verification key, matching the "salt_com"/"salt_hash" names in spec §3.
const (
	infoCom  = "dapol/salt_com"
	infoHash = "dapol/salt_hash"
)

// expand runs HKDF-SHA-256(ikm, info) and reads length bytes deterministically.
func expand(ikm, info []byte, length int) []byte {
	r := hkdf.New(sha256.New, ikm, nil, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		// HKDF-SHA-256 can expand up to 255*32 bytes; any failure here means
		// a caller requested an absurd length, which is a programming bug.
		panic(fmt.Sprintf("kdf: hkdf expand failed: %v", err))
	}
	return out
}

// DeriveVerificationKey computes w_u = HKDF(master_secret, id), the
// per-entity verification key an entity can be given so it can recompute
// its own leaf without learning anything about other entities.
func DeriveVerificationKey(masterSecret [32]byte, id []byte) [32]byte {
	var out [32]byte
	copy(out[:], expand(masterSecret[:], id, 32))
	return out
}

// DeriveBlinding computes blinding_factor_u = HKDF(w_u, salt_com)
// interpreted as a Ristretto scalar via 64-byte wide reduction.
func DeriveBlinding(w [32]byte, saltCom [32]byte) (*ristretto.Scalar, error) {
	info := append([]byte(infoCom), saltCom[:]...)
	wide := expand(w[:], info, 64)
	return ristretto.ScalarFromUniformBytes(wide)
}

// DeriveLeafSalt computes leaf_salt_u = HKDF(w_u, salt_hash).
func DeriveLeafSalt(w [32]byte, saltHash [32]byte) [32]byte {
	info := append([]byte(infoHash), saltHash[:]...)
	var out [32]byte
	copy(out[:], expand(w[:], info, 32))
	return out
}

// encodeCoord serializes a coordinate as 8 bytes big-endian X followed by
// 1 byte Y, the canonical encoding used whenever a coordinate is hashed or
// fed into a KDF.
func encodeCoord(c coordinate.Coord) []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf[:8], c.X)
	buf[8] = c.Y
	return buf
}

// derivePaddingVerificationKey computes w_pad = HKDF(master_secret, (x,y)).
func derivePaddingVerificationKey(masterSecret [32]byte, c coordinate.Coord) [32]byte {
	var out [32]byte
	copy(out[:], expand(masterSecret[:], encodeCoord(c), 32))
	return out
}

// DerivePaddingContent computes the deterministic (blinding, salt) pair for
// an unoccupied coordinate (a bottom-layer position or the top of an empty
// subtree at any layer), per spec §3's padding content
// derivation: w_pad = HKDF(master, coord); blinding_pad = HKDF(w_pad,
// salt_com); salt_pad = HKDF(w_pad, salt_hash).
func DerivePaddingContent(masterSecret [32]byte, c coordinate.Coord, saltCom, saltHash [32]byte) (blinding *ristretto.Scalar, salt [32]byte, err error) {
	wPad := derivePaddingVerificationKey(masterSecret, c)
	blinding, err = DeriveBlinding(wPad, saltCom)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("kdf: derive padding blinding at %s: %w", c, err)
	}
	salt = DeriveLeafSalt(wPad, saltHash)
	return blinding, salt, nil
}
