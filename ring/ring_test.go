//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZ64(t *testing.T) {
	a := Z64(0x1234567890abcdef)
	b := Z64(42)

	require.Equal(t, a, a.Add(b).Sub(b))
	require.Equal(t, Z64(0), a.Add(a.Neg()))
	require.Equal(t, a.Mul(b), b.Mul(a))
	require.Equal(t, Z64(1<<20), Pow2[Z64](20))
	require.Equal(t, Z64(1024), Z64(1<<20).Rsh(10))
	require.Equal(t, Z64(0), a.Msb())
	require.Equal(t, Z64(1), a.Neg().Msb())
	require.Equal(t, uint(1), Z64(8).Bit(3))

	var buf [8]byte
	a.PutBytes(buf[:])
	require.Equal(t, a, Z64(0).SetBytes(buf[:]))
}

func TestZ64SignedRsh(t *testing.T) {
	require.Equal(t, Z64(0).Sub(1), Z64(0).Sub(1<<20).SignedRsh(20))
	require.Equal(t, Z64(123), Z64(123<<8).SignedRsh(8))
}

func TestZ128(t *testing.T) {
	a := Z128{Lo: 0xffffffffffffffff, Hi: 1}
	b := Z128{Lo: 1}

	require.Equal(t, Z128{Lo: 0, Hi: 2}, a.Add(b))
	require.Equal(t, a, a.Add(b).Sub(b))
	require.Equal(t, Z128{}, a.Add(a.Neg()))

	// (2^64 - 1)^2 = 2^128 - 2^65 + 1
	c := Z128{Lo: 0xffffffffffffffff}
	require.Equal(t, Z128{Lo: 1, Hi: 0xfffffffffffffffe}, c.Mul(c))

	require.Equal(t, Z128{Hi: 1}, b.Lsh(64))
	require.Equal(t, b, b.Lsh(64).Rsh(64))
	require.Equal(t, Z128{Lo: 1}, Z128{Hi: 1 << 63}.Msb())

	neg := Z128{}.Sub(Z128{Lo: 1 << 20})
	require.Equal(t, Z128{}.Sub(Z128{Lo: 1}), neg.SignedRsh(20))

	var buf [16]byte
	a.PutBytes(buf[:])
	require.Equal(t, a, Z128{}.SetBytes(buf[:]))
}

func TestBitVec(t *testing.T) {
	a := BitVec(0b1100)
	b := BitVec(0b1010)

	require.Equal(t, BitVec(0b0110), a.Add(b))
	require.Equal(t, BitVec(0b0110), a.Sub(b))
	require.Equal(t, BitVec(0b1000), a.Mul(b))
	require.Equal(t, a, a.Neg())
	require.Equal(t, uint(1), a.Bit(2))
	require.Equal(t, uint(0), a.Bit(0))
}
