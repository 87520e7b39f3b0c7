//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rep3

import (
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// DaBit is a pair of an arithmetic and a Boolean sharing of the same
// uniform bit.
type DaBit[T ring.Elem[T]] struct {
	A share.Share[T]
	B share.Share[ring.BitVec]
}

// RandomBitVec draws a replicated sharing of a uniform bit vector
// from the correlated streams without communication.
func RandomBitVec(b *Base) share.Share[ring.BitVec] {
	return GetRandom[ring.BitVec](b)
}

// bitShare builds the arithmetic replicated sharing of the bit
// contributed by the argument party: the contributing party and its
// right neighbor both know the bit and fill the matching components.
func bitShare[T ring.Elem[T]](me, owner int, bit uint) share.Share[T] {
	var res share.Share[T]
	if me == owner {
		res[0] = ring.FromUint64[T](uint64(bit))
	} else if me == (owner+1)%3 {
		res[1] = ring.FromUint64[T](uint64(bit))
	}
	return res
}

// xorRound composes one XOR layer x + y - 2xy over a batch of
// replicated sharings in one multiplication round.
func xorRound[T ring.Elem[T]](m *Multiplier[T],
	xs, ys []share.Share[T]) ([]share.Share[T], error) {

	if err := m.InitMul(); err != nil {
		return nil, err
	}
	for i := range xs {
		m.PrepareMul(xs[i], ys[i])
	}
	if err := m.Exchange(); err != nil {
		return nil, err
	}
	two := ring.FromUint64[T](2)
	res := make([]share.Share[T], len(xs))
	for i := range xs {
		prod := m.FinalizeMul()
		res[i] = xs[i].Add(ys[i]).Sub(prod.MulClear(two))
	}
	return res, nil
}

// DaBits generates n daBits: the parties draw a Boolean replicated
// bit vector from the correlated streams and compose the arithmetic
// sharings of the same bits with two XOR rounds.
func DaBits[T ring.Elem[T]](b *Base, m *Multiplier[T], n int) (
	[]DaBit[T], error) {

	me := b.P.MyNum()
	result := make([]DaBit[T], 0, n)

	for len(result) < n {
		bits := RandomBitVec(b)
		count := n - len(result)
		if count > ring.BitVecBits {
			count = ring.BitVecBits
		}

		// Party i knows the bits of the stream components it holds:
		// slot 0 is its own contribution, slot 1 the left
		// neighbor's.
		shares := make([][3]share.Share[T], count)
		for j := 0; j < count; j++ {
			for owner := 0; owner < 3; owner++ {
				var bit uint
				if owner == me {
					bit = bits[0].Bit(uint(j))
				} else if (owner+1)%3 == me {
					bit = bits[1].Bit(uint(j))
				}
				shares[j][owner] = bitShare[T](me, owner, bit)
			}
		}

		xs := make([]share.Share[T], count)
		ys := make([]share.Share[T], count)
		for j := 0; j < count; j++ {
			xs[j] = shares[j][0]
			ys[j] = shares[j][1]
		}
		t, err := xorRound(m, xs, ys)
		if err != nil {
			return nil, err
		}
		for j := 0; j < count; j++ {
			ys[j] = shares[j][2]
		}
		t, err = xorRound(m, t, ys)
		if err != nil {
			return nil, err
		}

		for j := 0; j < count; j++ {
			var bool3 share.Share[ring.BitVec]
			bool3[0] = ring.BitVec(bits[0].Bit(uint(j)))
			bool3[1] = ring.BitVec(bits[1].Bit(uint(j)))
			result = append(result, DaBit[T]{
				A: t[j],
				B: bool3,
			})
		}
	}
	return result, nil
}
