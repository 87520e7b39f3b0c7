//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rep3

import (
	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/prng"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// Multiplier implements the one-round replicated multiplication
// protocol.
type Multiplier[T ring.Elem[T]] struct {
	b         *Base
	os        [2]buffer.Buffer
	addShares []T
	next      int
	fastMode  bool
}

// NewMultiplier creates a new multiplier over the argument base.
func NewMultiplier[T ring.Elem[T]](b *Base) *Multiplier[T] {
	return &Multiplier[T]{
		b: b,
	}
}

// SetFastMode toggles the fast mode: the fast path skips the reshare
// rerandomization of the additive product shares.
func (m *Multiplier[T]) SetFastMode(fast bool) {
	m.fastMode = fast
}

// InitMul initializes a multiplication round.
func (m *Multiplier[T]) InitMul() error {
	if m.os[1].Left() > 0 || m.next < len(m.addShares) {
		return errors.New("unused data in Rep3")
	}
	m.os[0].ResetWriteHead()
	m.addShares = m.addShares[:0]
	m.next = 0
	return nil
}

// PrepareMul queues one product.
func (m *Multiplier[T]) PrepareMul(x, y share.Share[T]) {
	m.addShares = append(m.addShares, LocalMul(x, y))
}

// PrepareMulFast queues one product exactly like PrepareMul; whether
// Exchange skips the reshare rerandomization is set only by
// SetFastMode.
func (m *Multiplier[T]) PrepareMulFast(x, y share.Share[T]) {
	m.addShares = append(m.addShares, LocalMul(x, y))
}

// Exchange reshares the additive product shares and passes them
// around the ring in one round.
func (m *Multiplier[T]) Exchange() error {
	buffer.ReserveElems[T](&m.os[0], len(m.addShares))
	for i, v := range m.addShares {
		if !m.fastMode {
			r := prng.Random[T](m.b.Prngs)
			v = v.Add(r[0]).Sub(r[1])
		}
		m.addShares[i] = v
		buffer.StoreElem(&m.os[0], v)
	}
	if err := m.b.P.PassAround(&m.os[0], &m.os[1], 1); err != nil {
		return err
	}
	if !buffer.ElemsLeft[T](&m.os[1], len(m.addShares)) {
		return errors.New("insufficient information received in Rep3")
	}
	return nil
}

// FinalizeMul returns the next multiplication result.
func (m *Multiplier[T]) FinalizeMul() share.Share[T] {
	var res share.Share[T]
	res[0] = m.addShares[m.next]
	m.next++
	res[1] = buffer.GetElemNoCheck[T](&m.os[1])
	return res
}
