//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

func TestTruncGapSelection(t *testing.T) {
	opts := NewOptions()

	info := TruncPrTuple{DestBase: 1, SourceBase: 0, K: 16, M: 4}
	require.NoError(t, info.check(64))
	require.True(t, info.bigGap(opts, 64))

	info.K = 48
	require.False(t, info.bigGap(opts, 64))

	opts.TruncError = 16
	require.True(t, info.bigGap(opts, 64))

	info.M = 48
	require.Error(t, info.check(64))
}

func TestTruncBigGapConstant(t *testing.T) {
	// Truncating a constant is exact: constants carry no mask.
	opts := testOptions(t.TempDir())
	opts.TruncError = 16
	pairs := seededPairs(t, 31)
	pairs0 := seededPairs(t, 32)

	infos := []TruncPrTuple{{DestBase: 1, SourceBase: 0, K: 48, M: 10}}

	runParties(t, 3, astraPrepPhase(t, opts, pairs, pairs0,
		func(e *PrepEngine[ring.Z64], in *PrepInput[ring.Z64]) error {
			// The preprocessing party accesses both mask slots of
			// the source, including party 0; the mask of a
			// constant is zero.
			S := make([]share.Share[ring.Z64], 2)
			S[0] = e.Funcs().Constant(1<<20, e.Player().MyNum())
			return e.TruncPr(infos, S, 1)
		}))

	results := make([]ring.Z64, 2)
	runParties(t, 2, astraOnlinePhase(t, opts,
		func(e *Engine[ring.Z64], in *Input[ring.Z64],
			mc *Opener[ring.Z64]) error {

			S := make([]share.Share[ring.Z64], 2)
			S[0] = e.Funcs().Constant(1<<20, e.Player().MyNum())
			if err := e.TruncPr(infos, S, 1); err != nil {
				return err
			}
			values, err := mc.Open(e.Player(),
				[]share.Share[ring.Z64]{S[1]})
			if err != nil {
				return err
			}
			results[e.Player().MyNum()] = values[0]
			return nil
		}))

	require.Equal(t, ring.Z64(1024), results[0])
	require.Equal(t, ring.Z64(1024), results[1])
}

func TestTruncBigGapInput(t *testing.T) {
	opts := testOptions(t.TempDir())
	pairs := seededPairs(t, 33)
	pairs0 := seededPairs(t, 34)

	const x = 16389
	infos := []TruncPrTuple{{DestBase: 1, SourceBase: 0, K: 16, M: 4}}

	runParties(t, 3, astraPrepPhase(t, opts, pairs, pairs0,
		func(e *PrepEngine[ring.Z64], in *PrepInput[ring.Z64]) error {
			xs, _, err := inputXY(in, e.Player().MyNum()-1, 0, 0)
			if err != nil {
				return err
			}
			S := make([]share.Share[ring.Z64], 2)
			S[0] = xs
			return e.TruncPr(infos, S, 1)
		}))

	results := make([]ring.Z64, 2)
	runParties(t, 2, astraOnlinePhase(t, opts,
		func(e *Engine[ring.Z64], in *Input[ring.Z64],
			mc *Opener[ring.Z64]) error {

			xs, _, err := inputXY(in, e.Player().MyNum(), x, 0)
			if err != nil {
				return err
			}
			S := make([]share.Share[ring.Z64], 2)
			S[0] = xs
			if err := e.TruncPr(infos, S, 1); err != nil {
				return err
			}
			values, err := mc.Open(e.Player(),
				[]share.Share[ring.Z64]{S[1]})
			if err != nil {
				return err
			}
			results[e.Player().MyNum()] = values[0]
			return nil
		}))

	require.Contains(t, []ring.Z64{x >> 4, x>>4 + 1}, results[0])
	require.Equal(t, results[0], results[1])
}

func TestTruncSmallGap(t *testing.T) {
	// k = 60 with the default truncation error selects the small-gap
	// regime. The input is a multiple of 2^m, so the probabilistic
	// rounding has nothing to round and the result is exact.
	opts := testOptions(t.TempDir())
	pairs := seededPairs(t, 35)
	pairs0 := seededPairs(t, 36)

	infos := []TruncPrTuple{{DestBase: 1, SourceBase: 0, K: 60, M: 10}}

	runParties(t, 3, astraPrepPhase(t, opts, pairs, pairs0,
		func(e *PrepEngine[ring.Z64], in *PrepInput[ring.Z64]) error {
			xs, _, err := inputXY(in, e.Player().MyNum()-1, 0, 0)
			if err != nil {
				return err
			}
			S := make([]share.Share[ring.Z64], 2)
			S[0] = xs
			return e.TruncPr(infos, S, 1)
		}))

	results := make([]ring.Z64, 2)
	runParties(t, 2, astraOnlinePhase(t, opts,
		func(e *Engine[ring.Z64], in *Input[ring.Z64],
			mc *Opener[ring.Z64]) error {

			xs, _, err := inputXY(in, e.Player().MyNum(), 1<<20, 0)
			if err != nil {
				return err
			}
			S := make([]share.Share[ring.Z64], 2)
			S[0] = xs
			if err := e.TruncPr(infos, S, 1); err != nil {
				return err
			}
			values, err := mc.Open(e.Player(),
				[]share.Share[ring.Z64]{S[1]})
			if err != nil {
				return err
			}
			results[e.Player().MyNum()] = values[0]
			return nil
		}))

	require.Equal(t, ring.Z64(1024), results[0])
	require.Equal(t, ring.Z64(1024), results[1])
}

func TestTrioTruncBigGap(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.TruncError = 16

	infos := []TruncPrTuple{{DestBase: 1, SourceBase: 0, K: 48, M: 10}}

	runParties(t, 3, trioPrepPhase(t, opts, 37,
		func(e *TrioPrepEngine[ring.Z64],
			in *PrepInput[ring.Z64]) error {

			S := make([]share.Share[ring.Z64], 2)
			S[0] = e.Funcs().Constant(1<<20, e.Player().MyNum())
			return e.TruncPr(infos, S, 1)
		}))

	results := make([]ring.Z64, 2)
	runParties(t, 2, trioOnlinePhase(t, opts,
		func(e *TrioEngine[ring.Z64], in *Input[ring.Z64],
			mc *Opener[ring.Z64]) error {

			S := make([]share.Share[ring.Z64], 2)
			S[0] = e.Funcs().Constant(1<<20, e.Player().MyNum())
			if err := e.TruncPr(infos, S, 1); err != nil {
				return err
			}
			values, err := mc.Open(e.Player(),
				[]share.Share[ring.Z64]{S[1]})
			if err != nil {
				return err
			}
			results[e.Player().MyNum()] = values[0]
			return nil
		}))

	require.Equal(t, ring.Z64(1024), results[0])
	require.Equal(t, ring.Z64(1024), results[1])
}

func TestTrioTruncSmallGap(t *testing.T) {
	opts := testOptions(t.TempDir())

	infos := []TruncPrTuple{{DestBase: 1, SourceBase: 0, K: 60, M: 10}}

	runParties(t, 3, trioPrepPhase(t, opts, 39,
		func(e *TrioPrepEngine[ring.Z64],
			in *PrepInput[ring.Z64]) error {

			xs, _, err := inputXY(in, e.Player().MyNum()-1, 0, 0)
			if err != nil {
				return err
			}
			S := make([]share.Share[ring.Z64], 2)
			S[0] = xs
			return e.TruncPr(infos, S, 1)
		}))

	results := make([]ring.Z64, 2)
	runParties(t, 2, trioOnlinePhase(t, opts,
		func(e *TrioEngine[ring.Z64], in *Input[ring.Z64],
			mc *Opener[ring.Z64]) error {

			xs, _, err := inputXY(in, e.Player().MyNum(), 1<<20, 0)
			if err != nil {
				return err
			}
			S := make([]share.Share[ring.Z64], 2)
			S[0] = xs
			if err := e.TruncPr(infos, S, 1); err != nil {
				return err
			}
			values, err := mc.Open(e.Player(),
				[]share.Share[ring.Z64]{S[1]})
			if err != nil {
				return err
			}
			results[e.Player().MyNum()] = values[0]
			return nil
		}))

	require.Equal(t, ring.Z64(1024), results[0])
	require.Equal(t, ring.Z64(1024), results[1])
}
