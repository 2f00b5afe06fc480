// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coordinate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateHeight(t *testing.T) {
	tests := []struct {
		name    string
		height  uint8
		wantErr bool
	}{
		{"min", 2, false},
		{"max", 64, false},
		{"too small", 1, true},
		{"too big", 65, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateHeight(tc.height)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidHeight)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLeafWidth(t *testing.T) {
	require.Equal(t, uint64(2), LeafWidth(2))
	require.Equal(t, uint64(8), LeafWidth(4))
	require.Equal(t, uint64(1)<<31, LeafWidth(32))
}

func TestParentSibling(t *testing.T) {
	c := Coord{X: 6, Y: 0}
	require.Equal(t, Coord{X: 3, Y: 1}, c.Parent())
	require.Equal(t, Coord{X: 7, Y: 0}, c.Sibling())
	require.True(t, c.IsLeftChild())

	c2 := Coord{X: 7, Y: 0}
	require.Equal(t, Coord{X: 3, Y: 1}, c2.Parent())
	require.False(t, c2.IsLeftChild())
}

func TestChildrenRoundTrip(t *testing.T) {
	parent := Coord{X: 3, Y: 2}
	left, right := parent.Children()
	require.Equal(t, parent, left.Parent())
	require.Equal(t, parent, right.Parent())
	require.Equal(t, left.Sibling(), right)
}

func TestRoot(t *testing.T) {
	root := Root(4)
	require.Equal(t, Coord{X: 0, Y: 3}, root)
	require.True(t, root.IsRoot(4))
	require.False(t, Coord{X: 0, Y: 2}.IsRoot(4))
}

func TestPathToRoot(t *testing.T) {
	path := Coord{X: 5, Y: 0}.PathToRoot(4)
	require.Equal(t, []Coord{
		{X: 5, Y: 0},
		{X: 2, Y: 1},
		{X: 1, Y: 2},
		{X: 0, Y: 3},
	}, path)
}

func TestBitAt(t *testing.T) {
	require.Equal(t, uint64(0), BitAt(0b1010, 0))
	require.Equal(t, uint64(1), BitAt(0b1010, 2))
	require.Equal(t, uint64(0), BitAt(0b1010, 3))
}

func TestNewCoordValidation(t *testing.T) {
	_, err := New(0, 4, 4) // y == height is out of range
	require.Error(t, err)

	_, err = New(8, 0, 4) // x beyond layer width (width = 8 at y=0, height=4)
	require.Error(t, err)

	c, err := New(7, 0, 4)
	require.NoError(t, err)
	require.Equal(t, Coord{X: 7, Y: 0}, c)
}
