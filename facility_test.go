//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

func facilityOptions(dir string, rep3Prep bool) *Options {
	opts := NewOptions()
	opts.PrepDir = dir
	opts.BatchSize = 4
	opts.Rep3Prep = rep3Prep
	return opts
}

func runFacilityPrep(t *testing.T, opts *Options, tag byte,
	program func(f *Facility[ring.Z64]) error) {

	pairs := seededPairs(t, tag)
	pairs0 := seededPairs(t, tag+1)
	bitPairs := seededPairs(t, tag+2)
	bitPairs0 := seededPairs(t, tag+3)

	runParties(t, 3, func(i int, p *p2p.Player) error {
		e, err := NewSeededPrepEngine[ring.Z64](p, opts, testLogger(),
			0, pairs[i], pairs0[i])
		if err != nil {
			return err
		}
		defer e.Close()

		st := NewShareThread(share.KindAstraPrep, i, 0)
		defer st.Release()
		bit, err := NewSeededBitPrepEngine(p, opts, testLogger(), st,
			bitPairs[i], bitPairs0[i])
		if err != nil {
			return err
		}
		defer bit.Close()

		return program(NewPrepFacility(e, bit))
	})
}

func runFacilityOnline(t *testing.T, opts *Options,
	program func(f *Facility[ring.Z64], p *p2p.Player) error) {

	runParties(t, 2, func(i int, p *p2p.Player) error {
		e, err := NewEngine[ring.Z64](p, opts, testLogger(), 0)
		if err != nil {
			return err
		}
		defer e.Close()

		st := NewShareThread(share.KindAstra, i, 0)
		defer st.Release()
		bit, err := NewBitEngine(p, opts, testLogger(), st)
		if err != nil {
			return err
		}
		defer bit.Close()

		return program(NewFacility(e, bit), p)
	})
}

func TestFacilityBits(t *testing.T) {
	opts := facilityOptions(t.TempDir(), false)

	runFacilityPrep(t, opts, 51, func(f *Facility[ring.Z64]) error {
		_, err := f.GetBit()
		return err
	})

	results := make([]ring.Z64, 2)
	runFacilityOnline(t, opts,
		func(f *Facility[ring.Z64], p *p2p.Player) error {
			bit, err := f.GetBit()
			if err != nil {
				return err
			}
			mc := NewOpener[ring.Z64](share.KindAstra)
			values, err := mc.Open(p, []share.Share[ring.Z64]{bit})
			if err != nil {
				return err
			}
			results[p.MyNum()] = values[0]
			return nil
		})

	require.Contains(t, []ring.Z64{0, 1}, results[0])
	require.Equal(t, results[0], results[1])
}

func TestFacilityDaBits(t *testing.T) {
	opts := facilityOptions(t.TempDir(), false)

	runFacilityPrep(t, opts, 61, func(f *Facility[ring.Z64]) error {
		_, err := f.GetDaBit()
		return err
	})

	arith := make([]ring.Z64, 2)
	bools := make([]ring.BitVec, 2)
	runFacilityOnline(t, opts,
		func(f *Facility[ring.Z64], p *p2p.Player) error {
			dabit, err := f.GetDaBit()
			if err != nil {
				return err
			}
			mc := NewOpener[ring.Z64](share.KindAstra)
			values, err := mc.Open(p,
				[]share.Share[ring.Z64]{dabit.A})
			if err != nil {
				return err
			}
			arith[p.MyNum()] = values[0]

			bmc := NewOpener[ring.BitVec](share.KindAstra)
			bits, err := bmc.Open(p,
				[]share.Share[ring.BitVec]{dabit.B})
			if err != nil {
				return err
			}
			bools[p.MyNum()] = bits[0]
			return nil
		})

	// The arithmetic and Boolean sharings carry the same bit.
	require.Contains(t, []ring.Z64{0, 1}, arith[0])
	require.Equal(t, arith[0], arith[1])
	require.Equal(t, uint64(arith[0]), bools[0].Uint64())
	require.Equal(t, bools[0], bools[1])
}

func TestFacilityEdaBits(t *testing.T) {
	opts := facilityOptions(t.TempDir(), false)

	const nBits = 3

	runFacilityPrep(t, opts, 71, func(f *Facility[ring.Z64]) error {
		_, err := f.GetEdaBit(nBits)
		return err
	})

	arith := make([]ring.Z64, 2)
	bools := make([][]ring.BitVec, 2)
	runFacilityOnline(t, opts,
		func(f *Facility[ring.Z64], p *p2p.Player) error {
			edabit, err := f.GetEdaBit(nBits)
			if err != nil {
				return err
			}
			mc := NewOpener[ring.Z64](share.KindAstra)
			values, err := mc.Open(p,
				[]share.Share[ring.Z64]{edabit.A})
			if err != nil {
				return err
			}
			arith[p.MyNum()] = values[0]

			bmc := NewOpener[ring.BitVec](share.KindAstra)
			bits, err := bmc.Open(p, edabit.B)
			if err != nil {
				return err
			}
			bools[p.MyNum()] = bits
			return nil
		})

	var composed uint64
	for j, bit := range bools[0] {
		composed |= bit.Uint64() << j
	}
	require.Equal(t, uint64(arith[0]), composed)
	require.Equal(t, arith[0], arith[1])
}

func TestFacilityDaBitsRep3(t *testing.T) {
	opts := facilityOptions(t.TempDir(), true)

	runFacilityPrep(t, opts, 81, func(f *Facility[ring.Z64]) error {
		_, err := f.GetDaBit()
		return err
	})

	arith := make([]ring.Z64, 2)
	bools := make([]ring.BitVec, 2)
	runFacilityOnline(t, opts,
		func(f *Facility[ring.Z64], p *p2p.Player) error {
			dabit, err := f.GetDaBit()
			if err != nil {
				return err
			}
			mc := NewOpener[ring.Z64](share.KindAstra)
			values, err := mc.Open(p,
				[]share.Share[ring.Z64]{dabit.A})
			if err != nil {
				return err
			}
			arith[p.MyNum()] = values[0]

			bmc := NewOpener[ring.BitVec](share.KindAstra)
			bits, err := bmc.Open(p,
				[]share.Share[ring.BitVec]{dabit.B})
			if err != nil {
				return err
			}
			bools[p.MyNum()] = bits[0]
			return nil
		})

	require.Contains(t, []ring.Z64{0, 1}, arith[0])
	require.Equal(t, arith[0], arith[1])
	require.Equal(t, uint64(arith[0]), bools[0].Uint64())
}
