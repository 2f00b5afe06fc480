// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ristretto wraps the Ristretto255 prime-order group (via
// cloudflare/circl's constant-time implementation) behind the narrow
// Scalar/Point surface the accumulator needs: generation, addition,
// scalar multiplication and canonical 32-byte (de)serialization. Every
// other package in this module goes through here rather than importing
// circl/group directly, so the choice of curve library stays a single
// swappable seam (spec §4.1, "fixed choices... part of the wire format").
package ristretto

import (
	"fmt"
	"io"

	"github.com/cloudflare/circl/group"
	"golang.org/x/crypto/sha3"
)

// grp is the Ristretto255 group instance backing every Scalar and Point in
// this package.
var grp = group.Ristretto255

// ScalarSize and PointSize are the canonical encoded lengths for Ristretto255.
const (
	ScalarSize = 32
	PointSize  = 32
)

// Scalar is an element of the Ristretto255 scalar field (mod group order).
type Scalar struct{ s group.Scalar }

// Point is a Ristretto255 group element.
type Point struct{ p group.Element }

// NewScalar returns the additive identity (zero) scalar.
func NewScalar() *Scalar { return &Scalar{s: grp.NewScalar()} }

// ScalarFromUint64 builds a scalar from a small non-negative integer, used
// to embed a u64 liability value into a Pedersen commitment exponent.
func ScalarFromUint64(v uint64) *Scalar {
	s := grp.NewScalar()
	s.SetUint64(v)
	return &Scalar{s: s}
}

// ScalarFromUniformBytes reduces a 64-byte uniformly-random buffer modulo
// the group order, matching §4.1's "64-byte output reduced mod group
// order" rule for turning HKDF/transcript output into a scalar.
func ScalarFromUniformBytes(b []byte) (*Scalar, error) {
	if len(b) != 64 {
		return nil, fmt.Errorf("ristretto: uniform scalar input must be 64 bytes, got %d", len(b))
	}
	s := grp.NewScalar()
	if err := s.UnmarshalBinary(deriveUniformScalarBytes(b)); err != nil {
		return nil, fmt.Errorf("ristretto: reduce scalar: %w", err)
	}
	return &Scalar{s: s}, nil
}

// deriveUniformScalarBytes folds a 64-byte wide-reduction input down into a
// canonical 32-byte little-endian scalar encoding by computing
// hi*2^256 + lo (mod order) through the group's
// own scalar arithmetic so the final reduction always matches the order the
// group itself enforces.
func deriveUniformScalarBytes(wide []byte) []byte {
	lo := wide[:32]
	hi := wide[32:]

	loS := grp.NewScalar()
	// UnmarshalBinary on a non-canonical (unreduced) 32-byte string is not
	// guaranteed to succeed, so build the low limb via SetUint64 accumulation
	// over bytes instead of a raw unmarshal.
	accumulateLE(loS, lo)

	hiS := grp.NewScalar()
	accumulateLE(hiS, hi)

	// pow = 2^256 mod order, built by multiplying 1 by 2 256 times.
	two := grp.NewScalar()
	two.SetUint64(2)
	pow := grp.NewScalar()
	pow.SetUint64(1)
	for i := 0; i < 256; i++ {
		pow.Mul(pow, two)
	}

	result := grp.NewScalar()
	result.Mul(hiS, pow)
	result.Add(result, loS)

	out, err := result.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("ristretto: marshal reduced scalar: %v", err))
	}
	return out
}

// accumulateLE folds little-endian bytes into s via repeated
// shift-and-add, i.e. Horner's method base-256, entirely through scalar
// field arithmetic so every intermediate value stays properly reduced.
func accumulateLE(s group.Scalar, b []byte) {
	base := grp.NewScalar()
	base.SetUint64(256)
	acc := grp.NewScalar()
	acc.SetUint64(0)
	digit := grp.NewScalar()
	for i := len(b) - 1; i >= 0; i-- {
		acc.Mul(acc, base)
		digit.SetUint64(uint64(b[i]))
		acc.Add(acc, digit)
	}
	s.Set(acc)
}

// RandomScalar draws a uniformly random non-zero scalar from rnd.
func RandomScalar(rnd io.Reader) (*Scalar, error) {
	s := grp.RandomNonZeroScalar(rnd)
	return &Scalar{s: s}, nil
}

// Add returns s + other.
func (s *Scalar) Add(other *Scalar) *Scalar {
	out := grp.NewScalar()
	out.Add(s.s, other.s)
	return &Scalar{s: out}
}

// Sub returns s - other.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	out := grp.NewScalar()
	out.Sub(s.s, other.s)
	return &Scalar{s: out}
}

// Mul returns s * other.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	out := grp.NewScalar()
	out.Mul(s.s, other.s)
	return &Scalar{s: out}
}

// Neg returns -s.
func (s *Scalar) Neg() *Scalar {
	out := grp.NewScalar()
	out.Neg(s.s)
	return &Scalar{s: out}
}

// Inverse returns s^-1 mod the group order. Panics if s is zero.
func (s *Scalar) Inverse() *Scalar {
	out := grp.NewScalar()
	out.Inv(s.s)
	return &Scalar{s: out}
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.s.IsZero()
}

// Equal reports whether s and other encode the same field element.
func (s *Scalar) Equal(other *Scalar) bool {
	return s.s.IsEqual(other.s)
}

// Bytes returns the canonical 32-byte little-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b, err := s.s.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("ristretto: marshal scalar: %v", err))
	}
	return b
}

// ScalarFromBytes decodes a canonical 32-byte scalar encoding.
func ScalarFromBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarSize {
		return nil, fmt.Errorf("ristretto: scalar must be %d bytes, got %d", ScalarSize, len(b))
	}
	s := grp.NewScalar()
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("ristretto: unmarshal scalar: %w", err)
	}
	return &Scalar{s: s}, nil
}

// Identity returns the group identity element (point at infinity).
func Identity() *Point {
	return &Point{p: grp.Identity()}
}

// Generator returns g1, the Ristretto255 basepoint used as the value
// generator for Pedersen commitments.
func Generator() *Point {
	return &Point{p: grp.Generator()}
}

var cachedG2 *Point

// BlindingGenerator returns g2, the second Pedersen generator, derived as
// Elligator(SHA3-512(compressed(g1))) per §4.1 so that the discrete log
// between g1 and g2 is unknown to any party (nothing-up-my-sleeve).
func BlindingGenerator() *Point {
	if cachedG2 != nil {
		return cachedG2
	}
	g1 := Generator()
	digest := sha3.Sum512(g1.Bytes())
	el := grp.HashToElement(digest[:], []byte("DAPOL+/ristretto255/g2/v1"))
	cachedG2 = &Point{p: el}
	return cachedG2
}

// Add returns p + other (group operation).
func (p *Point) Add(other *Point) *Point {
	out := grp.NewElement()
	out.Add(p.p, other.p)
	return &Point{p: out}
}

// Neg returns -p.
func (p *Point) Neg() *Point {
	out := grp.NewElement()
	out.Neg(p.p)
	return &Point{p: out}
}

// ScalarMult returns s*p.
func (p *Point) ScalarMult(s *Scalar) *Point {
	out := grp.NewElement()
	out.Mul(p.p, s.s)
	return &Point{p: out}
}

// Equal reports whether p and other encode the same group element.
func (p *Point) Equal(other *Point) bool {
	return p.p.IsEqual(other.p)
}

// Bytes returns the canonical 32-byte compressed encoding of p.
func (p *Point) Bytes() []byte {
	b, err := p.p.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("ristretto: marshal point: %v", err))
	}
	return b
}

// PointFromBytes decodes a canonical 32-byte compressed Ristretto255 point.
func PointFromBytes(b []byte) (*Point, error) {
	if len(b) != PointSize {
		return nil, fmt.Errorf("ristretto: point must be %d bytes, got %d", PointSize, len(b))
	}
	el := grp.NewElement()
	if err := el.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("ristretto: unmarshal point: %w", err)
	}
	return &Point{p: el}, nil
}

// Commit computes the Pedersen commitment value*g1 + blinding*g2.
func Commit(value *Scalar, blinding *Scalar) *Point {
	g1 := Generator()
	g2 := BlindingGenerator()
	return g1.ScalarMult(value).Add(g2.ScalarMult(blinding))
}
