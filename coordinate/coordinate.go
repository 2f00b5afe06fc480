// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package coordinate implements the squashed-left Cartesian addressing
// scheme used to locate nodes in the sparse Merkle sum tree. It is a pure,
// stateless module: every function is a deterministic transform on (x, y)
// pairs, with no I/O and no shared state.
package coordinate

import (
	"errors"
	"fmt"
)

// MinHeight and MaxHeight bound the tree height H, per the data model's
// H ∈ [2, 64] invariant.
const (
	MinHeight = 2
	MaxHeight = 64
)

// ErrInvalidHeight is returned when a height falls outside [MinHeight, MaxHeight].
var ErrInvalidHeight = errors.New("coordinate: height out of range")

// Coord addresses a node at horizontal position X within layer Y. Y=0 is the
// bottom (leaf) layer; Y=H-1 is the root.
type Coord struct {
	X uint64
	Y uint8
}

// New validates and constructs a Coord for a tree of the given height.
func New(x uint64, y uint8, height uint8) (Coord, error) {
	if y >= height {
		return Coord{}, fmt.Errorf("coordinate: y=%d out of range for height=%d", y, height)
	}
	if width := LayerWidth(y, height); x >= width {
		return Coord{}, fmt.Errorf("coordinate: x=%d out of range for layer width=%d", x, width)
	}
	return Coord{X: x, Y: y}, nil
}

// ValidateHeight checks H ∈ [2, 64].
func ValidateHeight(height uint8) error {
	if height < MinHeight || height > MaxHeight {
		return fmt.Errorf("%w: %d", ErrInvalidHeight, height)
	}
	return nil
}

// LeafWidth returns the capacity of the bottom layer, 2^(H-1).
func LeafWidth(height uint8) uint64 {
	return uint64(1) << (height - 1)
}

// LayerWidth returns the number of positions in layer y: 2^(H-1-y).
func LayerWidth(y uint8, height uint8) uint64 {
	return uint64(1) << (height - 1 - y)
}

// Root returns the coordinate of the root node, (0, H-1).
func Root(height uint8) Coord {
	return Coord{X: 0, Y: height - 1}
}

// IsRoot reports whether c is the root of a tree of the given height.
func (c Coord) IsRoot(height uint8) bool {
	return c.Y == height-1 && c.X == 0
}

// Parent returns the coordinate of c's parent: (x >> 1, y+1).
func (c Coord) Parent() Coord {
	return Coord{X: c.X >> 1, Y: c.Y + 1}
}

// Sibling returns the coordinate of the node sharing c's parent.
func (c Coord) Sibling() Coord {
	return Coord{X: c.X ^ 1, Y: c.Y}
}

// IsLeftChild reports whether c is the left (even) child of its parent.
func (c Coord) IsLeftChild() bool {
	return c.X&1 == 0
}

// Children returns the (left, right) children of an interior coordinate c at
// layer y+1: (2x, y), (2x+1, y).
func (c Coord) Children() (left, right Coord) {
	return Coord{X: c.X * 2, Y: c.Y - 1}, Coord{X: c.X*2 + 1, Y: c.Y - 1}
}

// String renders a coordinate as "(x,y)", used in log fields and errors.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// PathToRoot walks c upward to the root of a tree of the given height,
// returning the sequence of coordinates visited including c itself and the
// root, in bottom-up order.
func (c Coord) PathToRoot(height uint8) []Coord {
	path := make([]Coord, 0, int(height)-int(c.Y))
	cur := c
	for {
		path = append(path, cur)
		if cur.IsRoot(height) {
			break
		}
		cur = cur.Parent()
	}
	return path
}

// BitAt returns the bit of x at position y-1, used by the builder to split
// an occupied set into its left/right subtree partitions (§4.6).
func BitAt(x uint64, y uint8) uint64 {
	if y == 0 {
		return 0
	}
	return (x >> (y - 1)) & 1
}
