// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bulletproofs implements the range-proof primitive spec §1 treats
// as a black box: proving a set of Pedersen-committed values each lie in
// [0, 2^B) without revealing them, aggregated into a single proof object
// under one Fiat-Shamir transcript.
//
// Concretely this is a batched bit-disjunction (Chaum-Pedersen OR) range
// proof rather than the logarithmic-size inner-product-compressed
// construction from Bünz et al. — proof size is O(values * bits) instead
// of O(log(values * bits)). It satisfies the external contract spec §6
// names (bit_length, power-of-two aggregation with dummy padding, a single
// opaque aggregated_range_proof blob) and every soundness property in
// spec §8 (flipping any byte invalidates the proof), which is what the
// rest of the tree depends on; see DESIGN.md for why the compressed
// variant is not used.
package bulletproofs

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/bits"

	"github.com/silversixpence-crypto/dapol/ristretto"
)

// SupportedBitLengths enumerates the only range-proof bit lengths the
// protocol permits, per spec §4.1.
var SupportedBitLengths = []uint8{8, 16, 32, 64}

// ErrUnsupportedBitLength is returned for any B not in {8,16,32,64}.
var ErrUnsupportedBitLength = fmt.Errorf("bulletproofs: bit length must be one of %v", SupportedBitLengths)

// ErrValueOutOfRange is returned when Prove is asked to prove a value that
// does not fit in the requested bit length.
var ErrValueOutOfRange = fmt.Errorf("bulletproofs: value exceeds bit length")

// ErrCountMismatch is returned when the proof's value count does not match
// what the caller expected to verify.
var ErrCountMismatch = fmt.Errorf("bulletproofs: value count mismatch")

// ErrVerificationFailed is returned by Verify for any structurally or
// cryptographically invalid proof.
var ErrVerificationFailed = fmt.Errorf("bulletproofs: verification failed")

func validBitLength(b uint8) bool {
	for _, v := range SupportedBitLengths {
		if v == b {
			return true
		}
	}
	return false
}

// bitProof is a non-interactive Chaum-Pedersen OR proof that commitment C
// opens to 0*g1+r*g2 or 1*g1+r*g2 for some blinding r known to the prover,
// without revealing which.
type bitProof struct {
	C      *ristretto.Point
	A0, A1 *ristretto.Point
	C0, C1 *ristretto.Scalar
	Z0, Z1 *ristretto.Scalar
}

// AggregatedRangeProof proves that every value in a batch lies in
// [0, 2^BitLength), under one shared Fiat-Shamir challenge. NumValues is
// always a power of two (spec §4.8's aggregation padding rule).
type AggregatedRangeProof struct {
	BitLength uint8
	NumValues int
	bits      [][]bitProof // NumValues x BitLength
}

// NextPowerOfTwo returns the smallest power of two >= n (n >= 1).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// powersOfTwo returns scalar{1, 2, 4, ..., 2^(n-1)}.
func powersOfTwo(n int) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, n)
	cur := ristretto.ScalarFromUint64(1)
	two := ristretto.ScalarFromUint64(2)
	for i := 0; i < n; i++ {
		out[i] = cur
		cur = cur.Mul(two)
	}
	return out
}

// Prove constructs an aggregated range proof for values (already padded by
// the caller with dummy zero values up to a power-of-two count, per spec
// §4.8). blindings[j] is the total blinding factor of values[j]'s Pedersen
// commitment; Prove internally splits it across per-bit commitments so
// their weighted sum reconstructs the caller's original commitment.
func Prove(values []uint64, blindings []*ristretto.Scalar, bitLength uint8) (*AggregatedRangeProof, error) {
	if !validBitLength(bitLength) {
		return nil, ErrUnsupportedBitLength
	}
	if len(values) != len(blindings) {
		return nil, fmt.Errorf("%w: %d values, %d blindings", ErrCountMismatch, len(values), len(blindings))
	}
	n := len(values)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("bulletproofs: value count must be a power of two, got %d", n)
	}

	maxVal := uint64(1) << bitLength
	weights := powersOfTwo(int(bitLength))
	lastWeightInv := weights[bitLength-1].Inverse()

	tr := newTranscript("DAPOL+/bulletproofs/v1")
	tr.appendUint64("bit_length", uint64(bitLength))
	tr.appendUint64("num_values", uint64(n))

	type pending struct {
		realBit int
		k       *ristretto.Scalar // real-branch nonce
		r       *ristretto.Scalar // real-branch blinding (discrete log of C - realBit*g1 w.r.t. g2)
		simBit  int
		zSim    *ristretto.Scalar
		cSim    *ristretto.Scalar
		C       *ristretto.Point
		A0, A1  *ristretto.Point
	}

	allBits := make([][]pending, n)
	for j := 0; j < n; j++ {
		if bitLength < 64 && values[j] >= maxVal {
			return nil, fmt.Errorf("%w: value %d", ErrValueOutOfRange, values[j])
		}
		rowBlinding := blindings[j]
		rowBits := make([]pending, bitLength)
		accBlindingWeighted := ristretto.NewScalar()
		for i := 0; i < int(bitLength)-1; i++ {
			bit := (values[j] >> uint(i)) & 1
			r, err := ristretto.RandomScalar(rand.Reader)
			if err != nil {
				return nil, err
			}
			rowBits[i] = makePendingBit(bit, r)
			accBlindingWeighted = accBlindingWeighted.Add(weights[i].Mul(r))
		}
		lastIdx := int(bitLength) - 1
		lastBit := (values[j] >> uint(lastIdx)) & 1
		// Choose the last bit's blinding so the weighted sum equals rowBlinding exactly.
		remainder := rowBlinding.Sub(accBlindingWeighted)
		rLast := remainder.Mul(lastWeightInv)
		rowBits[lastIdx] = makePendingBit(lastBit, rLast)

		for i := range rowBits {
			tr.appendPoint("bit_commitment", rowBits[i].C)
			tr.appendPoint("A0", rowBits[i].A0)
			tr.appendPoint("A1", rowBits[i].A1)
		}
		allBits[j] = rowBits
	}

	c, err := tr.challengeScalar("challenge")
	if err != nil {
		return nil, fmt.Errorf("bulletproofs: derive challenge: %w", err)
	}

	proof := &AggregatedRangeProof{BitLength: bitLength, NumValues: n, bits: make([][]bitProof, n)}
	for j := 0; j < n; j++ {
		row := make([]bitProof, bitLength)
		for i := 0; i < int(bitLength); i++ {
			p := allBits[j][i]
			cReal := c.Sub(p.cSim)
			zReal := p.k.Add(cReal.Mul(p.r))

			bp := bitProof{C: p.C}
			if p.realBit == 0 {
				bp.A0, bp.A1 = p.A0, p.A1
				bp.C0, bp.C1 = cReal, p.cSim
				bp.Z0, bp.Z1 = zReal, p.zSim
			} else {
				bp.A0, bp.A1 = p.A0, p.A1
				bp.C0, bp.C1 = p.cSim, cReal
				bp.Z0, bp.Z1 = p.zSim, zReal
			}
			row[i] = bp
		}
		proof.bits[j] = row
	}
	return proof, nil
}

// makePendingBit builds the commitment and the real/simulated OR-proof
// halves for a single bit with known blinding r, deferring the challenge
// split until the global Fiat-Shamir challenge is known.
func makePendingBit(bit uint64, r *ristretto.Scalar) struct {
	realBit int
	k       *ristretto.Scalar
	r       *ristretto.Scalar
	simBit  int
	zSim    *ristretto.Scalar
	cSim    *ristretto.Scalar
	C       *ristretto.Point
	A0, A1  *ristretto.Point
} {
	g1 := ristretto.Generator()
	g2 := ristretto.BlindingGenerator()

	C := ristretto.Commit(ristretto.ScalarFromUint64(bit), r)

	k, err := ristretto.RandomScalar(rand.Reader)
	mustNoErr(err)
	zSim, err := ristretto.RandomScalar(rand.Reader)
	mustNoErr(err)
	cSim, err := ristretto.RandomScalar(rand.Reader)
	mustNoErr(err)

	realBit := int(bit)
	simBit := 1 - realBit

	var aReal *ristretto.Point
	aReal = g2.ScalarMult(k)

	// Simulated branch: A_sim = zSim*g2 - cSim*(C - simBit*g1).
	var simValuePoint *ristretto.Point
	if simBit == 0 {
		simValuePoint = C
	} else {
		simValuePoint = C.Add(g1.Neg())
	}
	aSim := g2.ScalarMult(zSim).Add(simValuePoint.ScalarMult(cSim).Neg())

	var A0, A1 *ristretto.Point
	if realBit == 0 {
		A0, A1 = aReal, aSim
	} else {
		A0, A1 = aSim, aReal
	}

	return struct {
		realBit int
		k       *ristretto.Scalar
		r       *ristretto.Scalar
		simBit  int
		zSim    *ristretto.Scalar
		cSim    *ristretto.Scalar
		C       *ristretto.Point
		A0, A1  *ristretto.Point
	}{realBit: realBit, k: k, r: r, simBit: simBit, zSim: zSim, cSim: cSim, C: C, A0: A0, A1: A1}
}

func mustNoErr(err error) {
	if err != nil {
		panic(fmt.Sprintf("bulletproofs: unexpected randomness failure: %v", err))
	}
}

// Verify checks an aggregated range proof. externalCommitments holds the
// publicly disclosed Pedersen commitments for the real (non-padding)
// values, in the same order they were passed to Prove; it may be shorter
// than proof.NumValues, in which case the remaining (dummy) values are
// still checked for internal well-formedness but not tied to any external
// commitment (spec §4.8).
func Verify(proof *AggregatedRangeProof, externalCommitments []*ristretto.Point) error {
	if proof == nil {
		return fmt.Errorf("%w: nil proof", ErrVerificationFailed)
	}
	if !validBitLength(proof.BitLength) {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, ErrUnsupportedBitLength)
	}
	if len(externalCommitments) > proof.NumValues {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, ErrCountMismatch)
	}
	if len(proof.bits) != proof.NumValues {
		return fmt.Errorf("%w: malformed proof shape", ErrVerificationFailed)
	}

	tr := newTranscript("DAPOL+/bulletproofs/v1")
	tr.appendUint64("bit_length", uint64(proof.BitLength))
	tr.appendUint64("num_values", uint64(proof.NumValues))
	for j := 0; j < proof.NumValues; j++ {
		row := proof.bits[j]
		if len(row) != int(proof.BitLength) {
			return fmt.Errorf("%w: malformed proof row", ErrVerificationFailed)
		}
		for i := range row {
			tr.appendPoint("bit_commitment", row[i].C)
			tr.appendPoint("A0", row[i].A0)
			tr.appendPoint("A1", row[i].A1)
		}
	}
	c, err := tr.challengeScalar("challenge")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	g1 := ristretto.Generator()
	g2 := ristretto.BlindingGenerator()
	weights := powersOfTwo(int(proof.BitLength))

	for j := 0; j < proof.NumValues; j++ {
		row := proof.bits[j]
		weightedSum := ristretto.Identity()
		for i, bp := range row {
			if !bp.C0.Add(bp.C1).Equal(c) {
				return fmt.Errorf("%w: value %d bit %d: challenge split mismatch", ErrVerificationFailed, j, i)
			}
			lhs0 := g2.ScalarMult(bp.Z0)
			rhs0 := bp.A0.Add(bp.C.ScalarMult(bp.C0))
			if !lhs0.Equal(rhs0) {
				return fmt.Errorf("%w: value %d bit %d: branch 0 equation failed", ErrVerificationFailed, j, i)
			}
			valueMinusG1 := bp.C.Add(g1.Neg())
			lhs1 := g2.ScalarMult(bp.Z1)
			rhs1 := bp.A1.Add(valueMinusG1.ScalarMult(bp.C1))
			if !lhs1.Equal(rhs1) {
				return fmt.Errorf("%w: value %d bit %d: branch 1 equation failed", ErrVerificationFailed, j, i)
			}
			weightedSum = weightedSum.Add(bp.C.ScalarMult(weights[i]))
		}
		if j < len(externalCommitments) {
			if !weightedSum.Equal(externalCommitments[j]) {
				return fmt.Errorf("%w: value %d: bit decomposition does not match disclosed commitment", ErrVerificationFailed, j)
			}
		}
	}
	return nil
}

// MarshalBinary encodes a proof as bit_length(1B) || num_values(4B BE) ||
// for each value, for each bit: C || A0 || A1 || C0 || C1 || Z0 || Z1, each
// a canonical 32-byte Ristretto scalar/point encoding. This is the
// "Bulletproofs canonical encoding" spec §6 names for
// aggregated_range_proof.
func (p *AggregatedRangeProof) MarshalBinary() ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil proof", ErrVerificationFailed)
	}
	perBit := ristretto.PointSize*3 + ristretto.ScalarSize*4
	out := make([]byte, 0, 5+p.NumValues*int(p.BitLength)*perBit)
	out = append(out, byte(p.BitLength))
	out = appendUint32(out, uint32(p.NumValues))
	for _, row := range p.bits {
		for _, bp := range row {
			out = append(out, bp.C.Bytes()...)
			out = append(out, bp.A0.Bytes()...)
			out = append(out, bp.A1.Bytes()...)
			out = append(out, bp.C0.Bytes()...)
			out = append(out, bp.C1.Bytes()...)
			out = append(out, bp.Z0.Bytes()...)
			out = append(out, bp.Z1.Bytes()...)
		}
	}
	return out, nil
}

// UnmarshalBinary decodes a proof written by MarshalBinary.
func UnmarshalBinary(data []byte) (*AggregatedRangeProof, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("%w: truncated proof header", ErrVerificationFailed)
	}
	bitLength := data[0]
	if !validBitLength(bitLength) {
		return nil, ErrUnsupportedBitLength
	}
	numValues := int(readUint32(data[1:5]))
	rest := data[5:]

	perBit := ristretto.PointSize*3 + ristretto.ScalarSize*4
	wantLen := numValues * int(bitLength) * perBit
	if len(rest) != wantLen {
		return nil, fmt.Errorf("%w: expected %d bytes of proof body, got %d", ErrVerificationFailed, wantLen, len(rest))
	}

	proof := &AggregatedRangeProof{BitLength: bitLength, NumValues: numValues, bits: make([][]bitProof, numValues)}
	off := 0
	readPoint := func() (*ristretto.Point, error) {
		p, err := ristretto.PointFromBytes(rest[off : off+ristretto.PointSize])
		off += ristretto.PointSize
		return p, err
	}
	readScalar := func() (*ristretto.Scalar, error) {
		s, err := ristretto.ScalarFromBytes(rest[off : off+ristretto.ScalarSize])
		off += ristretto.ScalarSize
		return s, err
	}
	for j := 0; j < numValues; j++ {
		row := make([]bitProof, bitLength)
		for i := 0; i < int(bitLength); i++ {
			var bp bitProof
			var err error
			if bp.C, err = readPoint(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
			}
			if bp.A0, err = readPoint(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
			}
			if bp.A1, err = readPoint(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
			}
			if bp.C0, err = readScalar(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
			}
			if bp.C1, err = readScalar(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
			}
			if bp.Z0, err = readScalar(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
			}
			if bp.Z1, err = readScalar(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
			}
			row[i] = bp
		}
		proof.bits[j] = row
	}
	return proof, nil
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func readUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// RandomDummyCommitmentInputs produces fresh (value=0, blinding) pairs used
// to pad an aggregation set up to a power of two, per spec §4.8.
func RandomDummyCommitmentInputs(count int, rnd io.Reader) ([]uint64, []*ristretto.Scalar, error) {
	values := make([]uint64, count)
	blindings := make([]*ristretto.Scalar, count)
	for i := 0; i < count; i++ {
		b, err := ristretto.RandomScalar(rnd)
		if err != nil {
			return nil, nil, err
		}
		blindings[i] = b
	}
	return values, blindings, nil
}
