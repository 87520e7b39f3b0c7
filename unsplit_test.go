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

// The test bits are b = (1, 1) behind the Boolean masks lambda1 =
// (1, 0), lambda2 = (0, 0): the common masked bits are m = b ^
// lambda1 ^ lambda2 = (0, 1).
const (
	testLambda1 = ring.BitVec(0b01)
	testLambda2 = ring.BitVec(0b00)
	testMasked  = ring.BitVec(0b10)
)

// prepBitSource returns the preprocessing party's share of the test
// bit vector.
func prepBitSource(myNum int) share.Share[ring.BitVec] {
	switch myNum {
	case 0:
		return share.Share[ring.BitVec]{testLambda1, testLambda2}
	case 1:
		return share.Share[ring.BitVec]{0, testLambda1}
	default:
		return share.Share[ring.BitVec]{0, testLambda2}
	}
}

// onlineBitSource returns the online party's share of the test bit
// vector for variant A.
func onlineBitSource(myNum int) share.Share[ring.BitVec] {
	if myNum == 0 {
		return share.Share[ring.BitVec]{testMasked, testLambda1}
	}
	return share.Share[ring.BitVec]{testMasked, testLambda2}
}

// trioOnlineBitSource returns the online party's share of the test
// bit vector for variant T: slot 0 carries the masked bits combined
// with the party's mask.
func trioOnlineBitSource(myNum int) share.Share[ring.BitVec] {
	if myNum == 0 {
		return share.Share[ring.BitVec]{
			testMasked ^ testLambda1, testLambda1,
		}
	}
	return share.Share[ring.BitVec]{
		testMasked ^ testLambda2, testLambda2,
	}
}

func TestUnsplit1(t *testing.T) {
	opts := testOptions(t.TempDir())
	pairs := seededPairs(t, 41)
	pairs0 := seededPairs(t, 42)

	const nBits = 2

	runParties(t, 3, astraPrepPhase(t, opts, pairs, pairs0,
		func(e *PrepEngine[ring.Z64], in *PrepInput[ring.Z64]) error {
			source := []share.Share[ring.BitVec]{
				prepBitSource(e.Player().MyNum()),
			}
			dest := make([]share.Share[ring.Z64], nBits)
			return e.Unsplit(dest, []int{0}, source, 0, nBits)
		}))

	results := make([][]ring.Z64, 2)
	runParties(t, 2, astraOnlinePhase(t, opts,
		func(e *Engine[ring.Z64], in *Input[ring.Z64],
			mc *Opener[ring.Z64]) error {

			source := []share.Share[ring.BitVec]{
				onlineBitSource(e.Player().MyNum()),
			}
			dest := make([]share.Share[ring.Z64], nBits)
			if err := e.Unsplit(dest, []int{0}, source, 0,
				nBits); err != nil {
				return err
			}
			values, err := mc.Open(e.Player(), dest)
			if err != nil {
				return err
			}
			results[e.Player().MyNum()] = values
			return nil
		}))

	for i := 0; i < 2; i++ {
		require.Equal(t, []ring.Z64{1, 1}, results[i])
	}
}

func TestUnsplit2(t *testing.T) {
	opts := testOptions(t.TempDir())
	pairs := seededPairs(t, 43)
	pairs0 := seededPairs(t, 44)

	const nBits = 2
	starts := []int{0, nBits}

	runParties(t, 3, astraPrepPhase(t, opts, pairs, pairs0,
		func(e *PrepEngine[ring.Z64], in *PrepInput[ring.Z64]) error {
			source := []share.Share[ring.BitVec]{
				prepBitSource(e.Player().MyNum()),
			}
			dest := make([]share.Share[ring.Z64], 2*nBits)
			return e.Unsplit(dest, starts, source, 0, nBits)
		}))

	results := make([][]ring.Z64, 2)
	rawBits := make([][]ring.Z64, 2)
	runParties(t, 2, astraOnlinePhase(t, opts,
		func(e *Engine[ring.Z64], in *Input[ring.Z64],
			mc *Opener[ring.Z64]) error {

			myNum := e.Player().MyNum()
			source := []share.Share[ring.BitVec]{
				onlineBitSource(myNum),
			}
			dest := make([]share.Share[ring.Z64], 2*nBits)
			if err := e.Unsplit(dest, starts, source, 0,
				nBits); err != nil {
				return err
			}
			values, err := mc.Open(e.Player(), dest[:nBits])
			if err != nil {
				return err
			}
			results[myNum] = values
			for j := 0; j < nBits; j++ {
				rawBits[myNum] = append(rawBits[myNum],
					dest[nBits+j][0])
			}
			return nil
		}))

	// The first destination opens to the arithmetic shares of the
	// generator's mask bits; the second carries the raw masked bits.
	for i := 0; i < 2; i++ {
		require.Equal(t, []ring.Z64{1, 0}, results[i])
		require.Equal(t, []ring.Z64{0, 1}, rawBits[i])
	}
}

func TestTrioUnsplit1(t *testing.T) {
	opts := testOptions(t.TempDir())

	const nBits = 2

	runParties(t, 3, trioPrepPhase(t, opts, 45,
		func(e *TrioPrepEngine[ring.Z64],
			in *PrepInput[ring.Z64]) error {

			source := []share.Share[ring.BitVec]{
				prepBitSource(e.Player().MyNum()),
			}
			dest := make([]share.Share[ring.Z64], nBits)
			return e.Unsplit(dest, []int{0}, source, 0, nBits)
		}))

	results := make([][]ring.Z64, 2)
	runParties(t, 2, trioOnlinePhase(t, opts,
		func(e *TrioEngine[ring.Z64], in *Input[ring.Z64],
			mc *Opener[ring.Z64]) error {

			source := []share.Share[ring.BitVec]{
				trioOnlineBitSource(e.Player().MyNum()),
			}
			dest := make([]share.Share[ring.Z64], nBits)
			if err := e.Unsplit(dest, []int{0}, source, 0,
				nBits); err != nil {
				return err
			}
			values, err := mc.Open(e.Player(), dest)
			if err != nil {
				return err
			}
			results[e.Player().MyNum()] = values
			return nil
		}))

	for i := 0; i < 2; i++ {
		require.Equal(t, []ring.Z64{1, 1}, results[i])
	}
}
