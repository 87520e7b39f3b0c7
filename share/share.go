//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package share implements the secret-sharing data model of the
// protocol family. A share of a ring element consists of two ring
// slots per party; the slots are interpreted per variant and per party
// role. The variants are expressed as function tables over a common
// share representation instead of a type hierarchy: the engines pick
// their table at construction time.
package share

import (
	"fmt"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/ring"
)

// Share implements a two-slot share of a ring element.
type Share[T ring.Elem[T]] [2]T

func (s Share[T]) String() string {
	return fmt.Sprintf("{%v,%v}", s[0], s[1])
}

// Add returns the componentwise sum of the share and o.
func (s Share[T]) Add(o Share[T]) Share[T] {
	return Share[T]{s[0].Add(o[0]), s[1].Add(o[1])}
}

// Sub returns the componentwise difference of the share and o.
func (s Share[T]) Sub(o Share[T]) Share[T] {
	return Share[T]{s[0].Sub(o[0]), s[1].Sub(o[1])}
}

// Neg returns the componentwise negation of the share.
func (s Share[T]) Neg() Share[T] {
	return Share[T]{s[0].Neg(), s[1].Neg()}
}

// MulClear returns the share multiplied by the cleartext scalar c.
func (s Share[T]) MulClear(c T) Share[T] {
	return Share[T]{s[0].Mul(c), s[1].Mul(c)}
}

// Lsh returns the share shifted left componentwise by n bits.
func (s Share[T]) Lsh(n uint) Share[T] {
	return Share[T]{s[0].Lsh(n), s[1].Lsh(n)}
}

// Sum returns the sum of the two slots.
func (s Share[T]) Sum() T {
	return s[0].Add(s[1])
}

// Pack writes both slots into the buffer in slot order.
func (s Share[T]) Pack(b *buffer.Buffer) {
	buffer.StoreElem(b, s[0])
	buffer.StoreElem(b, s[1])
}

// Unpack reads both slots from the buffer.
func (s *Share[T]) Unpack(b *buffer.Buffer) error {
	var err error
	if s[0], err = buffer.GetElem[T](b); err != nil {
		return err
	}
	s[1], err = buffer.GetElem[T](b)
	return err
}

// UnpackNoCheck reads both slots from the buffer without bounds
// checks. The caller must have verified availability.
func (s *Share[T]) UnpackNoCheck(b *buffer.Buffer) {
	s[0] = buffer.GetElemNoCheck[T](b)
	s[1] = buffer.GetElemNoCheck[T](b)
}

// Size returns the serialized size of a share in bytes.
func Size[T ring.Elem[T]]() int {
	var zero T
	return 2 * zero.Size()
}
