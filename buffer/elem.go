//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package buffer

import (
	"github.com/markkurossi/astra/ring"
)

// StoreElem appends a ring element.
func StoreElem[T ring.Elem[T]](b *Buffer, v T) {
	v.PutBytes(b.grow(v.Size()))
}

// GetElem consumes a ring element.
func GetElem[T ring.Elem[T]](b *Buffer) (T, error) {
	var zero T
	p, err := b.Consume(zero.Size())
	if err != nil {
		return zero, err
	}
	return zero.SetBytes(p), nil
}

// GetElemNoCheck consumes a ring element without a bounds check. The
// caller must have verified availability with RequireElems.
func GetElemNoCheck[T ring.Elem[T]](b *Buffer) T {
	var zero T
	return zero.SetBytes(b.ConsumeNoCheck(zero.Size()))
}

// RequireElems checks that at least n ring elements are left to read.
func RequireElems[T ring.Elem[T]](b *Buffer, n int) error {
	var zero T
	return b.Require(n * zero.Size())
}

// ReserveElems ensures the buffer has capacity for n more ring
// elements.
func ReserveElems[T ring.Elem[T]](b *Buffer, n int) {
	var zero T
	b.Reserve(n * zero.Size())
}

// ElemsLeft tests if at least n ring elements are left to read.
func ElemsLeft[T ring.Elem[T]](b *Buffer, n int) bool {
	var zero T
	return b.Left() >= n*zero.Size()
}
