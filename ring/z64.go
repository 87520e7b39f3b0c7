//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ring

import (
	"encoding/binary"
	"fmt"
)

// Z64 implements a ring element of Z/2^64.
type Z64 uint64

var _ Elem[Z64] = Z64(0)

func (z Z64) String() string {
	return fmt.Sprintf("%d", uint64(z))
}

// Add returns z+o.
func (z Z64) Add(o Z64) Z64 {
	return z + o
}

// Sub returns z-o.
func (z Z64) Sub(o Z64) Z64 {
	return z - o
}

// Mul returns z*o.
func (z Z64) Mul(o Z64) Z64 {
	return z * o
}

// Neg returns -z.
func (z Z64) Neg() Z64 {
	return -z
}

// Lsh returns z<<n.
func (z Z64) Lsh(n uint) Z64 {
	if n >= 64 {
		return 0
	}
	return z << n
}

// Rsh returns z>>n without sign extension.
func (z Z64) Rsh(n uint) Z64 {
	if n >= 64 {
		return 0
	}
	return z >> n
}

// SignedRsh returns z>>n with sign extension.
func (z Z64) SignedRsh(n uint) Z64 {
	if n >= 64 {
		n = 63
	}
	return Z64(int64(z) >> n)
}

// Msb returns the top bit of z.
func (z Z64) Msb() Z64 {
	return z >> 63
}

// Bit returns bit n of z.
func (z Z64) Bit(n uint) uint {
	return uint(z>>n) & 1
}

// FromUint64 creates a Z64 from the argument value.
func (z Z64) FromUint64(v uint64) Z64 {
	return Z64(v)
}

// Uint64 returns z as uint64.
func (z Z64) Uint64() uint64 {
	return uint64(z)
}

// Size returns the serialized size of z in bytes.
func (z Z64) Size() int {
	return 8
}

// NumBits returns the width of the ring in bits.
func (z Z64) NumBits() int {
	return 64
}

// PutBytes serializes z into buf in little-endian byte order.
func (z Z64) PutBytes(buf []byte) {
	binary.LittleEndian.PutUint64(buf, uint64(z))
}

// SetBytes deserializes a Z64 from buf.
func (z Z64) SetBytes(buf []byte) Z64 {
	return Z64(binary.LittleEndian.Uint64(buf))
}
