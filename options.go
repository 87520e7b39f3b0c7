//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package astra implements a family of three-party secure multi-party
// computation protocols in the honest-majority, semi-honest setting
// for arithmetic computation over power-of-two rings Z/2^k. The family
// has two online protocol variants and their offline (preprocessing)
// counterparts that share a common secret-sharing scheme, a common
// preprocessing file layout, and a common set of high-level operations:
// round-batched multiplication and dot product, probabilistic
// truncation of fixed-point values, and bit-composition of arithmetic
// shares.
package astra

import (
	"github.com/pkg/errors"
)

// DefaultTruncError is the default log2 error bound for probabilistic
// truncation. It is also the threshold between the big-gap and
// small-gap truncation regimes.
const DefaultTruncError = 40

// DefaultBatchSize is the default preprocessing batch size.
const DefaultBatchSize = 10000

// RingSizes lists the recognized cleartext ring bit widths.
var RingSizes = []int{64, 128, 192, 256, 384, 512}

// Options implements the runtime configuration of the protocol
// engines.
type Options struct {
	// RingSize is the cleartext ring bit width k.
	RingSize int

	// TruncError is the log2 error bound for small-gap truncation;
	// it also selects between the big-gap and small-gap regimes.
	TruncError int

	// Rep3Prep uses the replicated generator for daBits and edaBits
	// instead of building them from bit and multiplication
	// primitives.
	Rep3Prep bool

	// VerboseAstra logs preprocessing file names and batch sizes.
	VerboseAstra bool

	// VerboseAnd logs AND-gate batch counts.
	VerboseAnd bool

	// AlwaysCheck calls the semi-honest check hook after every
	// multiplication batch.
	AlwaysCheck bool

	// CodeLocations logs the first call per source site.
	CodeLocations bool

	// BatchSize is the preprocessing batch size.
	BatchSize int

	// PrepDir is the preprocessing file directory.
	PrepDir string

	// NParties is the number of parties. The protocol family is
	// fixed at three.
	NParties int
}

// NewOptions returns options with default values.
func NewOptions() *Options {
	return &Options{
		RingSize:   64,
		TruncError: DefaultTruncError,
		BatchSize:  DefaultBatchSize,
		PrepDir:    ".",
		NParties:   3,
	}
}

// Validate checks the options for consistency. Unsupported values are
// configuration errors.
func (o *Options) Validate() error {
	var recognized bool
	for _, size := range RingSizes {
		if o.RingSize == size {
			recognized = true
			break
		}
	}
	if !recognized || o.RingSize > 128 {
		// Widths above 128 have no compiled ring element type.
		return errors.Errorf("unsupported ring width %d", o.RingSize)
	}
	if o.NParties != 3 {
		return errors.Errorf("unsupported number of parties %d",
			o.NParties)
	}
	if o.TruncError < 1 {
		return errors.Errorf("invalid truncation error %d",
			o.TruncError)
	}
	return nil
}
