//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package buffer implements the octet stream that all protocol
// messages and preprocessing files are built from. A buffer has a
// write head at the end of the data and a separate read cursor;
// consuming never removes data. Integers are little-endian. On sockets
// and preprocessing files, buffers travel as 8-byte little-endian
// length-prefixed frames.
package buffer

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// ErrInsufficientData is returned when a consume operation runs past
// the end of the buffer.
var ErrInsufficientData = errors.New("insufficient data")

// Packable values can serialize themselves into a buffer.
type Packable interface {
	Pack(b *Buffer)
}

// Buffer implements a growable octet stream.
type Buffer struct {
	data  []byte
	ptr   int
	wbits bitBuffer
	rbits bitBuffer
}

type bitBuffer struct {
	buffer byte
	n      int
}

// Len returns the number of bytes written into the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Left returns the number of bytes left to read.
func (b *Buffer) Left() int {
	return len(b.data) - b.ptr
}

// Data returns the buffer content.
func (b *Buffer) Data() []byte {
	return b.data
}

// ResetReadHead moves the read cursor back to the beginning of the
// buffer.
func (b *Buffer) ResetReadHead() {
	b.ptr = 0
	b.rbits = bitBuffer{}
}

// ResetWriteHead empties the buffer.
func (b *Buffer) ResetWriteHead() {
	b.data = b.data[:0]
	b.wbits = bitBuffer{}
	b.ResetReadHead()
}

// Reserve ensures the buffer has capacity for n more bytes.
func (b *Buffer) Reserve(n int) {
	if cap(b.data)-len(b.data) < n {
		data := make([]byte, len(b.data), len(b.data)+n)
		copy(data, b.data)
		b.data = data
	}
}

// Require checks that at least n bytes are left to read.
func (b *Buffer) Require(n int) error {
	if b.Left() < n {
		return ErrInsufficientData
	}
	return nil
}

// Append appends raw bytes to the buffer.
func (b *Buffer) Append(p []byte) {
	b.FlushBits()
	b.data = append(b.data, p...)
}

// AppendNoResize appends raw bytes without growing the buffer. The
// capacity must have been reserved beforehand.
func (b *Buffer) AppendNoResize(p []byte) {
	b.FlushBits()
	if cap(b.data)-len(b.data) < len(p) {
		panic("buffer: append without resize past capacity")
	}
	b.data = append(b.data, p...)
}

// grow extends the buffer by n bytes and returns the new space.
func (b *Buffer) grow(n int) []byte {
	b.FlushBits()
	l := len(b.data)
	if cap(b.data)-l < n {
		data := make([]byte, l+n, 2*(l+n))
		copy(data, b.data)
		b.data = data
	} else {
		b.data = b.data[:l+n]
	}
	return b.data[l:]
}

// StoreByte appends a one-byte integer.
func (b *Buffer) StoreByte(v byte) {
	b.grow(1)[0] = v
}

// StoreUint32 appends a 4-byte little-endian integer.
func (b *Buffer) StoreUint32(v uint32) {
	binary.LittleEndian.PutUint32(b.grow(4), v)
}

// StoreUint64 appends an 8-byte little-endian integer.
func (b *Buffer) StoreUint64(v uint64) {
	binary.LittleEndian.PutUint64(b.grow(8), v)
}

// GetByte consumes a one-byte integer.
func (b *Buffer) GetByte() (byte, error) {
	b.rbits = bitBuffer{}
	if err := b.Require(1); err != nil {
		return 0, err
	}
	v := b.data[b.ptr]
	b.ptr++
	return v, nil
}

// GetUint32 consumes a 4-byte little-endian integer.
func (b *Buffer) GetUint32() (uint32, error) {
	b.rbits = bitBuffer{}
	if err := b.Require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(b.data[b.ptr:])
	b.ptr += 4
	return v, nil
}

// GetUint64 consumes an 8-byte little-endian integer.
func (b *Buffer) GetUint64() (uint64, error) {
	b.rbits = bitBuffer{}
	if err := b.Require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(b.data[b.ptr:])
	b.ptr += 8
	return v, nil
}

// Consume consumes n raw bytes. The returned slice aliases the buffer
// content.
func (b *Buffer) Consume(n int) ([]byte, error) {
	b.rbits = bitBuffer{}
	if err := b.Require(n); err != nil {
		return nil, err
	}
	p := b.data[b.ptr : b.ptr+n]
	b.ptr += n
	return p, nil
}

// ConsumeNoCheck consumes n raw bytes without a bounds check. The
// caller must have verified availability with Require.
func (b *Buffer) ConsumeNoCheck(n int) []byte {
	b.rbits = bitBuffer{}
	p := b.data[b.ptr : b.ptr+n]
	b.ptr += n
	return p
}

// StoreString appends a length-prefixed string.
func (b *Buffer) StoreString(s string) {
	b.StoreUint32(uint32(len(s)))
	b.Append([]byte(s))
}

// GetString consumes a length-prefixed string.
func (b *Buffer) GetString() (string, error) {
	l, err := b.GetUint32()
	if err != nil {
		return "", err
	}
	p, err := b.Consume(int(l))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// StoreBytes appends a length-prefixed byte string.
func (b *Buffer) StoreBytes(p []byte) {
	b.StoreUint32(uint32(len(p)))
	b.Append(p)
}

// GetBytes consumes a length-prefixed byte string into dst. The
// stored length must match len(dst).
func (b *Buffer) GetBytes(dst []byte) error {
	l, err := b.GetUint32()
	if err != nil {
		return err
	}
	if int(l) != len(dst) {
		return errors.Errorf("wrong length in buffer: %d != %d",
			l, len(dst))
	}
	p, err := b.Consume(int(l))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// StoreBigInt appends a sign-and-magnitude encoded big integer.
func (b *Buffer) StoreBigInt(x *big.Int) {
	if x.Sign() < 0 {
		b.StoreByte(1)
	} else {
		b.StoreByte(0)
	}
	b.StoreBytes(x.Bytes())
}

// GetBigInt consumes a sign-and-magnitude encoded big integer.
func (b *Buffer) GetBigInt() (*big.Int, error) {
	sign, err := b.GetByte()
	if err != nil {
		return nil, err
	}
	if sign > 1 {
		return nil, errors.Errorf("invalid sign byte %d", sign)
	}
	l, err := b.GetUint32()
	if err != nil {
		return nil, err
	}
	p, err := b.Consume(int(l))
	if err != nil {
		return nil, err
	}
	x := new(big.Int).SetBytes(p)
	if sign == 1 {
		x.Neg(x)
	}
	return x, nil
}

// Hash returns the BLAKE2b-256 digest of the buffer content.
func (b *Buffer) Hash() []byte {
	digest := blake2b.Sum256(b.data)
	return digest[:]
}

// Equal tests if the buffer content is equal with the argument buffer.
func (b *Buffer) Equal(o *Buffer) bool {
	return bytes.Equal(b.data, o.data)
}

// Send writes the buffer to w as an 8-byte little-endian
// length-prefixed frame. The same framing is used on sockets and on
// preprocessing files.
func (b *Buffer) Send(w io.Writer) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(len(b.data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "send")
	}
	if _, err := w.Write(b.data); err != nil {
		return errors.Wrap(err, "send")
	}
	return nil
}

// Recv replaces the buffer content with one length-prefixed frame read
// from r and rewinds the read cursor.
func (b *Buffer) Recv(r io.Reader) error {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return errors.Wrap(err, "receive")
	}
	l := binary.LittleEndian.Uint64(hdr[:])
	b.ResetWriteHead()
	b.data = append(b.data[:0], make([]byte, l)...)
	if _, err := io.ReadFull(r, b.data); err != nil {
		return errors.Wrap(err, "receive")
	}
	return nil
}

// Exchange sends the buffer on w while receiving a frame from r into
// recv in the same call.
func (b *Buffer) Exchange(w io.Writer, r io.Reader, recv *Buffer) error {
	sent := make(chan error, 1)
	go func() {
		sent <- b.Send(w)
	}()
	err := recv.Recv(r)
	if serr := <-sent; serr != nil {
		return serr
	}
	return err
}

// Flusher is implemented by writers that buffer their output.
type Flusher interface {
	Flush() error
}

// SendFlush sends the buffer to w and flushes the writer.
func (b *Buffer) SendFlush(w io.Writer) error {
	if err := b.Send(w); err != nil {
		return err
	}
	if f, ok := w.(Flusher); ok {
		return errors.Wrap(f.Flush(), "send")
	}
	return nil
}
