//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prng implements the correlated randomness sources of the
// protocol engines. Each party holds a pair of seeded deterministic
// streams: the stream a party seeds itself (Streams[0]) shares its seed
// with the right neighbor's other stream (Streams[1]), so any two
// adjacent parties can produce
// identical pseudorandom ring elements without communication.
package prng

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/chacha20"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/ring"
)

// SeedSize is the seed size in bytes.
const SeedSize = chacha20.KeySize

// Stream implements a deterministic pseudorandom stream over a seed.
type Stream struct {
	seed   [SeedSize]byte
	cipher *chacha20.Cipher
}

// NewStream creates a new stream from the argument seed.
func NewStream(seed []byte) (*Stream, error) {
	if len(seed) != SeedSize {
		return nil, errors.Errorf("invalid seed length %d", len(seed))
	}
	s := new(Stream)
	copy(s.seed[:], seed)

	var nonce [chacha20.NonceSize]byte
	cipher, err := chacha20.NewUnauthenticatedCipher(s.seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	s.cipher = cipher
	return s, nil
}

// NewRandomStream creates a new stream with a fresh random seed.
func NewRandomStream() (*Stream, error) {
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	return NewStream(seed[:])
}

// Seed returns the stream seed.
func (s *Stream) Seed() []byte {
	return s.seed[:]
}

// Read fills p with pseudorandom bytes.
func (s *Stream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	s.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// Get draws one ring element from the stream.
func Get[T ring.Elem[T]](s *Stream) T {
	var zero T
	buf := make([]byte, zero.Size())
	s.Read(buf)
	return zero.SetBytes(buf)
}

// GetPartial draws a ring element with only the low nBits bits set.
func GetPartial[T ring.Elem[T]](s *Stream, nBits int) T {
	v := Get[T](s)
	var zero T
	if nBits >= zero.NumBits() {
		return v
	}
	return v.Lsh(uint(zero.NumBits() - nBits)).
		Rsh(uint(zero.NumBits() - nBits))
}

// Pair implements a party's pair of correlated streams. Streams[0] is
// shared with the right neighbor, Streams[1] with the left one.
type Pair struct {
	Streams [2]*Stream
}

// NewPair bootstraps a correlated stream pair: the party seeds its own
// left stream, sends the seed to the right neighbor in one round of
// pass-around, and seeds the right stream from the received seed.
// Unencrypted channels trigger a warning but do not abort.
func NewPair(p *p2p.Player, log *zap.SugaredLogger) (*Pair, error) {
	if !p.IsEncrypted() {
		log.Warnf("%v: unencrypted communication", p)
	}

	left, err := NewRandomStream()
	if err != nil {
		return nil, err
	}

	var send, recv buffer.Buffer
	send.Append(left.Seed())
	if err := p.PassAround(&send, &recv, 1); err != nil {
		return nil, err
	}
	seed, err := recv.Consume(SeedSize)
	if err != nil {
		return nil, err
	}
	right, err := NewStream(seed)
	if err != nil {
		return nil, err
	}
	return &Pair{
		Streams: [2]*Stream{left, right},
	}, nil
}

// NewSeededPair creates a stream pair from explicit seeds. It is used
// by tests and by deterministic replay.
func NewSeededPair(seed0, seed1 []byte) (*Pair, error) {
	s0, err := NewStream(seed0)
	if err != nil {
		return nil, err
	}
	s1, err := NewStream(seed1)
	if err != nil {
		return nil, err
	}
	return &Pair{
		Streams: [2]*Stream{s0, s1},
	}, nil
}

// Random draws one ring element from both streams of the pair.
func Random[T ring.Elem[T]](p *Pair) [2]T {
	return [2]T{Get[T](p.Streams[0]), Get[T](p.Streams[1])}
}
