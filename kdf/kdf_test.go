// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kdf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/silversixpence-crypto/dapol/coordinate"
)

var testMaster = [32]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

func TestDeriveVerificationKeyDeterministic(t *testing.T) {
	w1 := DeriveVerificationKey(testMaster, []byte("alice"))
	w2 := DeriveVerificationKey(testMaster, []byte("alice"))
	require.Equal(t, w1, w2)

	w3 := DeriveVerificationKey(testMaster, []byte("bob"))
	require.NotEqual(t, w1, w3)
}

func TestDeriveBlindingDeterministic(t *testing.T) {
	w := DeriveVerificationKey(testMaster, []byte("alice"))
	saltCom := [32]byte{0xAA}

	b1, err := DeriveBlinding(w, saltCom)
	require.NoError(t, err)
	b2, err := DeriveBlinding(w, saltCom)
	require.NoError(t, err)
	require.True(t, b1.Equal(b2))

	saltCom2 := [32]byte{0xBB}
	b3, err := DeriveBlinding(w, saltCom2)
	require.NoError(t, err)
	require.False(t, b1.Equal(b3), "different salts must yield different blinding")
}

func TestDeriveLeafSaltDeterministic(t *testing.T) {
	w := DeriveVerificationKey(testMaster, []byte("alice"))
	saltHash := [32]byte{0xCC}

	s1 := DeriveLeafSalt(w, saltHash)
	s2 := DeriveLeafSalt(w, saltHash)
	require.Equal(t, s1, s2)
}

func TestDerivePaddingContentDeterministic(t *testing.T) {
	c, err := coordinate.New(3, 0, 8)
	require.NoError(t, err)
	saltCom := [32]byte{0x01}
	saltHash := [32]byte{0x02}

	b1, s1, err := DerivePaddingContent(testMaster, c, saltCom, saltHash)
	require.NoError(t, err)
	b2, s2, err := DerivePaddingContent(testMaster, c, saltCom, saltHash)
	require.NoError(t, err)

	require.True(t, b1.Equal(b2))
	require.Equal(t, s1, s2)

	other, err := coordinate.New(4, 0, 8)
	require.NoError(t, err)
	b3, _, err := DerivePaddingContent(testMaster, other, saltCom, saltHash)
	require.NoError(t, err)
	require.False(t, b1.Equal(b3), "padding at different coordinates must differ")
}

func TestPaddingDependsOnMasterSecret(t *testing.T) {
	c, err := coordinate.New(3, 0, 8)
	require.NoError(t, err)
	saltCom := [32]byte{0x01}
	saltHash := [32]byte{0x02}

	var otherMaster [32]byte
	copy(otherMaster[:], testMaster[:])
	otherMaster[31] ^= 0xFF

	b1, _, err := DerivePaddingContent(testMaster, c, saltCom, saltHash)
	require.NoError(t, err)
	b2, _, err := DerivePaddingContent(otherMaster, c, saltCom, saltHash)
	require.NoError(t, err)
	require.False(t, b1.Equal(b2), "padding must depend on master secret")
}
