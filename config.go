// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import (
	"crypto/rand"
	"fmt"
	"io"
	"runtime"

	"github.com/silversixpence-crypto/dapol/bulletproofs"
	"github.com/silversixpence-crypto/dapol/coordinate"
	"github.com/silversixpence-crypto/dapol/dlog"
	"github.com/silversixpence-crypto/dapol/metrics"
)

// AccumulatorKind tags which accumulator variant a tree was built with.
// Only NdmSmt is populated; DmSmt is reserved per spec §9's open question
// ("leave the accumulator kind as a tagged variant with only NDM-SMT
// populated").
type AccumulatorKind uint8

const (
	NdmSmt AccumulatorKind = iota
	dmSmtReserved
)

func (k AccumulatorKind) String() string {
	switch k {
	case NdmSmt:
		return "NdmSmt"
	default:
		return "reserved"
	}
}

// DefaultHeight, DefaultMaxLiability and DefaultRangeProofBitLength mirror
// spec §6's documented defaults.
const (
	DefaultHeight              = 32
	DefaultMaxLiability        = uint64(1) << 32
	DefaultRangeProofBitLength = 64
)

// Config is the full input to Build, per spec §6.
type Config struct {
	Accumulator         AccumulatorKind
	Height              uint8
	MaxLiability        uint64
	SaltCom             [32]byte
	SaltHash            [32]byte
	MasterSecret        [32]byte
	Entities            []Entity
	MaxThreadCount      uint16
	StoreDepth          uint8
	RangeProofBitLength uint8

	// DeterministicSeed, when non-nil, replaces the OS CSPRNG as the
	// entropy source for the NDM-SMT shuffle. This is a supplemented
	// feature beyond the published interface, needed for deterministic
	// test mode (spec §5: "for deterministic test mode, a caller-supplied
	// seed overrides thread_rng").
	DeterministicSeed io.Reader

	// Logger and Metrics are optional ambient collaborators; nil means
	// "don't log" / "don't record metrics" respectively.
	Logger  dlog.Logger
	Metrics *metrics.Collectors
}

// DefaultConfig returns a Config with every field set to its spec-default
// except MasterSecret and Entities, which the caller must always supply.
func DefaultConfig() Config {
	return Config{
		Accumulator:         NdmSmt,
		Height:              DefaultHeight,
		MaxLiability:        DefaultMaxLiability,
		MaxThreadCount:      uint16(runtime.GOMAXPROCS(0)),
		StoreDepth:          DefaultHeight,
		RangeProofBitLength: DefaultRangeProofBitLength,
	}
}

// randomizeSalts fills SaltCom/SaltHash from crypto/rand if they are still
// their zero value, matching §6's "default random" for both salts. A
// genuinely all-zero salt is indistinguishable from "unset" at this layer,
// and Build always calls this, so a tree is never built with an all-zero
// salt.
func (c *Config) randomizeSalts() error {
	if c.SaltCom == ([32]byte{}) {
		if _, err := io.ReadFull(rand.Reader, c.SaltCom[:]); err != nil {
			return fmt.Errorf("dapol: generate salt_com: %w", err)
		}
	}
	if c.SaltHash == ([32]byte{}) {
		if _, err := io.ReadFull(rand.Reader, c.SaltHash[:]); err != nil {
			return fmt.Errorf("dapol: generate salt_hash: %w", err)
		}
	}
	return nil
}

// Validate checks the structural preconditions from spec §3/§6 that don't
// require looking at the entity list: height and bit-length range,
// store_depth <= height, and a non-zero max_thread_count. The master
// secret is checked by Build, since DefaultConfig leaves it unset.
func (c *Config) Validate() error {
	if err := coordinate.ValidateHeight(c.Height); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	validBitLength := false
	for _, b := range bulletproofs.SupportedBitLengths {
		if b == c.RangeProofBitLength {
			validBitLength = true
			break
		}
	}
	if !validBitLength {
		return fmt.Errorf("%w: range_proof_bit_length %d not in %v", ErrInvalidConfig, c.RangeProofBitLength, bulletproofs.SupportedBitLengths)
	}
	if c.StoreDepth > c.Height {
		return fmt.Errorf("%w: store_depth %d exceeds height %d", ErrInvalidConfig, c.StoreDepth, c.Height)
	}
	if c.MaxThreadCount == 0 {
		return fmt.Errorf("%w: max_thread_count must be > 0", ErrInvalidConfig)
	}
	return nil
}
