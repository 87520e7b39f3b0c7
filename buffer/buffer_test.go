//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package buffer

import (
	"bytes"
	"io"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/astra/ring"
)

func TestInts(t *testing.T) {
	var b Buffer

	b.StoreByte(0x12)
	b.StoreUint32(0xdeadbeef)
	b.StoreUint64(0x0123456789abcdef)

	v8, err := b.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x12), v8)

	v32, err := b.GetUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), v32)

	v64, err := b.GetUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0123456789abcdef), v64)

	require.Equal(t, 0, b.Left())
	_, err = b.GetByte()
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestString(t *testing.T) {
	var b Buffer
	b.StoreString("hello")
	s, err := b.GetString()
	require.NoError(t, err)
	require.Equal(t, "hello", s)
}

func TestBytesLength(t *testing.T) {
	var b Buffer
	b.StoreBytes([]byte{1, 2, 3})

	dst := make([]byte, 4)
	require.Error(t, b.GetBytes(dst))

	b.ResetReadHead()
	dst = dst[:3]
	require.NoError(t, b.GetBytes(dst))
	require.Equal(t, []byte{1, 2, 3}, dst)
}

func TestBigInt(t *testing.T) {
	var b Buffer
	b.StoreBigInt(big.NewInt(-12345))
	x, err := b.GetBigInt()
	require.NoError(t, err)
	require.Equal(t, int64(-12345), x.Int64())

	// Non-0/1 sign byte is a format violation.
	b.ResetWriteHead()
	b.StoreByte(2)
	b.StoreBytes(nil)
	_, err = b.GetBigInt()
	require.Error(t, err)
}

func TestBits(t *testing.T) {
	var b Buffer

	b.StoreBit(1)
	b.StoreBits(0b101, 3)
	b.StoreBits(0b11, 2)
	// Byte-aligned append flushes the partial staging byte.
	b.StoreByte(0xff)
	require.Equal(t, 2, b.Len())

	v, err := b.GetBits(4)
	require.NoError(t, err)
	require.Equal(t, uint64(0b1011), v)
	v, err = b.GetBits(2)
	require.NoError(t, err)
	require.Equal(t, uint64(0b11), v)

	// Byte-aligned consume discards the rest of the staging byte.
	v8, err := b.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xff), v8)
}

func TestElems(t *testing.T) {
	var b Buffer

	StoreElem(&b, ring.Z64(42))
	StoreElem(&b, ring.Z128{Lo: 1, Hi: 2})

	require.NoError(t, RequireElems[ring.Z64](&b, 1))

	v, err := GetElem[ring.Z64](&b)
	require.NoError(t, err)
	require.Equal(t, ring.Z64(42), v)

	w, err := GetElem[ring.Z128](&b)
	require.NoError(t, err)
	require.Equal(t, ring.Z128{Lo: 1, Hi: 2}, w)

	require.Error(t, RequireElems[ring.Z64](&b, 1))
}

func TestHashEqual(t *testing.T) {
	var a, b Buffer
	a.Append([]byte("data"))
	b.Append([]byte("data"))
	require.True(t, a.Equal(&b))
	require.Equal(t, a.Hash(), b.Hash())
	require.Len(t, a.Hash(), 32)

	b.StoreByte(0)
	require.False(t, a.Equal(&b))
}

func TestSendRecv(t *testing.T) {
	var b Buffer
	b.Append([]byte("frame content"))

	var wire bytes.Buffer
	require.NoError(t, b.Send(&wire))

	var r Buffer
	require.NoError(t, r.Recv(&wire))
	require.True(t, b.Equal(&r))
}

func TestExchange(t *testing.T) {
	r0, w0 := io.Pipe()
	r1, w1 := io.Pipe()

	var a, b Buffer
	a.Append([]byte("from a"))
	b.Append([]byte("from b"))

	done := make(chan error, 1)
	var recvB Buffer
	go func() {
		done <- b.Exchange(w1, r0, &recvB)
	}()

	var recvA Buffer
	require.NoError(t, a.Exchange(w0, r1, &recvA))
	require.NoError(t, <-done)

	require.True(t, recvA.Equal(&b))
	require.True(t, recvB.Equal(&a))
}
