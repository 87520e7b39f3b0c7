//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ring

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Z128 implements a ring element of Z/2^128 as two 64-bit limbs.
type Z128 struct {
	Lo uint64
	Hi uint64
}

var _ Elem[Z128] = Z128{}

func (z Z128) String() string {
	return fmt.Sprintf("%x%016x", z.Hi, z.Lo)
}

// Add returns z+o.
func (z Z128) Add(o Z128) Z128 {
	lo, carry := bits.Add64(z.Lo, o.Lo, 0)
	hi, _ := bits.Add64(z.Hi, o.Hi, carry)
	return Z128{Lo: lo, Hi: hi}
}

// Sub returns z-o.
func (z Z128) Sub(o Z128) Z128 {
	lo, borrow := bits.Sub64(z.Lo, o.Lo, 0)
	hi, _ := bits.Sub64(z.Hi, o.Hi, borrow)
	return Z128{Lo: lo, Hi: hi}
}

// Mul returns z*o modulo 2^128.
func (z Z128) Mul(o Z128) Z128 {
	hi, lo := bits.Mul64(z.Lo, o.Lo)
	hi += z.Lo*o.Hi + z.Hi*o.Lo
	return Z128{Lo: lo, Hi: hi}
}

// Neg returns -z.
func (z Z128) Neg() Z128 {
	return Z128{}.Sub(z)
}

// Lsh returns z<<n.
func (z Z128) Lsh(n uint) Z128 {
	switch {
	case n >= 128:
		return Z128{}
	case n >= 64:
		return Z128{Hi: z.Lo << (n - 64)}
	case n == 0:
		return z
	default:
		return Z128{
			Lo: z.Lo << n,
			Hi: z.Hi<<n | z.Lo>>(64-n),
		}
	}
}

// Rsh returns z>>n without sign extension.
func (z Z128) Rsh(n uint) Z128 {
	switch {
	case n >= 128:
		return Z128{}
	case n >= 64:
		return Z128{Lo: z.Hi >> (n - 64)}
	case n == 0:
		return z
	default:
		return Z128{
			Lo: z.Lo>>n | z.Hi<<(64-n),
			Hi: z.Hi >> n,
		}
	}
}

// SignedRsh returns z>>n with sign extension.
func (z Z128) SignedRsh(n uint) Z128 {
	if n >= 128 {
		n = 127
	}
	if n >= 64 {
		hi := uint64(int64(z.Hi) >> 63)
		return Z128{
			Lo: uint64(int64(z.Hi) >> (n - 64)),
			Hi: hi,
		}
	}
	if n == 0 {
		return z
	}
	return Z128{
		Lo: z.Lo>>n | z.Hi<<(64-n),
		Hi: uint64(int64(z.Hi) >> n),
	}
}

// Msb returns the top bit of z.
func (z Z128) Msb() Z128 {
	return Z128{Lo: z.Hi >> 63}
}

// Bit returns bit n of z.
func (z Z128) Bit(n uint) uint {
	if n >= 64 {
		return uint(z.Hi>>(n-64)) & 1
	}
	return uint(z.Lo>>n) & 1
}

// FromUint64 creates a Z128 from the argument value.
func (z Z128) FromUint64(v uint64) Z128 {
	return Z128{Lo: v}
}

// Uint64 returns the low 64 bits of z.
func (z Z128) Uint64() uint64 {
	return z.Lo
}

// Size returns the serialized size of z in bytes.
func (z Z128) Size() int {
	return 16
}

// NumBits returns the width of the ring in bits.
func (z Z128) NumBits() int {
	return 128
}

// PutBytes serializes z into buf in little-endian byte order.
func (z Z128) PutBytes(buf []byte) {
	binary.LittleEndian.PutUint64(buf, z.Lo)
	binary.LittleEndian.PutUint64(buf[8:], z.Hi)
}

// SetBytes deserializes a Z128 from buf.
func (z Z128) SetBytes(buf []byte) Z128 {
	return Z128{
		Lo: binary.LittleEndian.Uint64(buf),
		Hi: binary.LittleEndian.Uint64(buf[8:]),
	}
}
