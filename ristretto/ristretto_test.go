// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ristretto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarArithmetic(t *testing.T) {
	a := ScalarFromUint64(7)
	b := ScalarFromUint64(3)

	require.True(t, a.Add(b).Equal(ScalarFromUint64(10)))
	require.True(t, a.Sub(b).Equal(ScalarFromUint64(4)))
	require.True(t, a.Mul(b).Equal(ScalarFromUint64(21)))
	require.False(t, a.Equal(b))
}

func TestScalarRoundTrip(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	require.NoError(t, err)

	decoded, err := ScalarFromBytes(s.Bytes())
	require.NoError(t, err)
	require.True(t, s.Equal(decoded))
}

func TestScalarFromUniformBytesDeterministic(t *testing.T) {
	wide := make([]byte, 64)
	for i := range wide {
		wide[i] = byte(i)
	}
	s1, err := ScalarFromUniformBytes(wide)
	require.NoError(t, err)
	s2, err := ScalarFromUniformBytes(wide)
	require.NoError(t, err)
	require.True(t, s1.Equal(s2))

	wide[0] ^= 0xFF
	s3, err := ScalarFromUniformBytes(wide)
	require.NoError(t, err)
	require.False(t, s1.Equal(s3))
}

func TestGeneratorsAreDistinctAndStable(t *testing.T) {
	g1 := Generator()
	g2a := BlindingGenerator()
	g2b := BlindingGenerator()

	require.False(t, g1.Equal(g2a), "g1 and g2 must be independent generators")
	require.True(t, g2a.Equal(g2b), "BlindingGenerator must be deterministic/cached")
}

func TestPedersenCommitmentHomomorphism(t *testing.T) {
	v1, v2 := ScalarFromUint64(10), ScalarFromUint64(20)
	b1, b2 := ScalarFromUint64(111), ScalarFromUint64(222)

	c1 := Commit(v1, b1)
	c2 := Commit(v2, b2)
	sum := c1.Add(c2)

	expected := Commit(v1.Add(v2), b1.Add(b2))
	require.True(t, sum.Equal(expected))
}

func TestPointRoundTrip(t *testing.T) {
	p := Commit(ScalarFromUint64(42), ScalarFromUint64(7))
	decoded, err := PointFromBytes(p.Bytes())
	require.NoError(t, err)
	require.True(t, p.Equal(decoded))
}

func TestCommitDiffersWithBlinding(t *testing.T) {
	v := ScalarFromUint64(5)
	c1 := Commit(v, ScalarFromUint64(1))
	c2 := Commit(v, ScalarFromUint64(2))
	require.False(t, c1.Equal(c2), "hiding property: same value, different blinding must differ")
}
