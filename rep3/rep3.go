//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package rep3 implements a minimal semi-honest three-party
// replicated secret-sharing protocol. The offline engines use it to
// generate daBits and edaBits under the rep3_prep configuration and
// to define the replicated layout the variant re-encodings translate
// from. Party i holds the pair (v_i, v_{i-1}) of an additive sharing
// v_0 + v_1 + v_2.
package rep3

import (
	"go.uber.org/zap"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/prng"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// Base implements the state shared by the replicated protocol
// primitives: the player and its correlated stream pair.
type Base struct {
	P     *p2p.Player
	Prngs *prng.Pair
}

// NewBase creates a new replicated protocol base, seeding the
// correlated streams with a one-round key exchange.
func NewBase(p *p2p.Player, log *zap.SugaredLogger) (*Base, error) {
	prngs, err := prng.NewPair(p, log)
	if err != nil {
		return nil, err
	}
	return &Base{
		P:     p,
		Prngs: prngs,
	}, nil
}

// NewSeededBase creates a replicated protocol base with an explicit
// stream pair.
func NewSeededBase(p *p2p.Player, prngs *prng.Pair) *Base {
	return &Base{
		P:     p,
		Prngs: prngs,
	}
}

// GetRandom draws a replicated sharing of a random value from the
// correlated streams.
func GetRandom[T ring.Elem[T]](b *Base) share.Share[T] {
	return share.Share[T](prng.Random[T](b.Prngs))
}

// LocalMul returns the party's additive share of the product of two
// replicated sharings.
func LocalMul[T ring.Elem[T]](x, y share.Share[T]) T {
	return x[0].Mul(y[0]).Add(x[0].Mul(y[1])).Add(x[1].Mul(y[0]))
}

// Open reconstructs replicated sharings: every party passes its first
// components two positions around the ring and sums the three
// components.
func Open[T ring.Elem[T]](b *Base, secrets []share.Share[T]) ([]T, error) {
	var os, recv buffer.Buffer
	buffer.ReserveElems[T](&os, len(secrets))
	for _, secret := range secrets {
		buffer.StoreElem(&os, secret[0])
	}
	if err := b.P.PassAround(&os, &recv, 2); err != nil {
		return nil, err
	}
	if err := buffer.RequireElems[T](&recv, len(secrets)); err != nil {
		return nil, err
	}
	values := make([]T, len(secrets))
	for i, secret := range secrets {
		values[i] = secret.Sum().Add(buffer.GetElemNoCheck[T](&recv))
	}
	return values, nil
}
