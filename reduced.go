//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Reduced multiplication multiplies a value known only to the
// generator party by a value known only to the online parties in one
// round, consuming a pre-shared mask from the correlated streams. It
// backs both unsplit and small-gap truncation.

package astra

import (
	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/prng"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// reducedMul is the per-engine part of the reduced multiplication
// round.
type reducedMul[T ring.Elem[T]] interface {
	initReducedMul(n int) error
	preReducedMul(aa, bb T) (a, b, c share.Share[T])
	exchangeReducedMul(n int) error
	postReducedMul() (share.Share[T], T)
}

// initReducedMul reads the pre-shared masks for n reduced
// multiplications.
func (e *Engine[T]) initReducedMul(n int) error {
	if err := e.read(&e.osPrep); err != nil {
		return err
	}
	if !buffer.ElemsLeft[T](&e.osPrep, 2*n) {
		return errors.New("insufficient preprocessing")
	}
	e.os.ResetWriteHead()
	buffer.ReserveElems[T](&e.os, n)
	e.results.clear()
	e.results.reserve(n)
	return nil
}

// preReducedMul queues one reduced multiplication of the generator
// value behind the pre-shared mask and the common value bb.
func (e *Engine[T]) preReducedMul(aa, bb T) (a, b, c share.Share[T]) {
	a[1] = buffer.GetElemNoCheck[T](&e.osPrep)
	c[1] = buffer.GetElemNoCheck[T](&e.osPrep)
	mi := bb.Mul(a[1]).Sub(c[1])
	buffer.StoreElem(&e.os, mi)
	b[0] = bb
	c[0] = mi
	e.results.push(share.Share[T]{})
	return
}

// exchangeReducedMul runs the reduced multiplication round.
func (e *Engine[T]) exchangeReducedMul(n int) error {
	if err := e.p.PassAround(&e.os, &e.recvOS, 1); err != nil {
		return err
	}
	e.rounds++
	if !buffer.ElemsLeft[T](&e.recvOS, n) {
		return errors.New("insufficient data in Astra")
	}
	e.results.reset()
	return nil
}

// postReducedMul returns the next reduced multiplication result and
// the peer's masked product.
func (e *Engine[T]) postReducedMul() (share.Share[T], T) {
	res := e.results.nextItem()
	return res, buffer.GetElemNoCheck[T](&e.recvOS)
}

// initReducedMul prepares the offline side of n reduced
// multiplications: party 2 receives the generator offsets first.
func (e *PrepEngine[T]) initReducedMul(n int) error {
	e.osPrep.ResetWriteHead()
	e.os.ResetWriteHead()
	buffer.ReserveElems[T](&e.os, n)
	buffer.ReserveElems[T](&e.osPrep, 2*n)

	if e.p.MyNum() == 2 {
		if err := e.p.ReceivePlayer(0, &e.os); err != nil {
			return err
		}
		if !buffer.ElemsLeft[T](&e.os, n) {
			return errors.Errorf("insufficient data in %s",
				e.protoName())
		}
	}
	return nil
}

// preReducedMul produces the pre-shared mask of one reduced
// multiplication. The generator splits its value between the online
// parties; parties 1 and 2 append their mask rows to the
// preprocessing files.
func (e *PrepEngine[T]) preReducedMul(aa, bb T) (a, b, c share.Share[T]) {
	switch e.p.MyNum() {
	case 0:
		a[0] = prng.Get[T](e.prngs.Streams[0])
		a[1] = aa.Sub(a[0])
		buffer.StoreElem(&e.os, a[1])
		c = share.Share[T](prng.Random[T](e.prngs))

	case 1:
		g := e.prngs.Streams[1]
		a[1] = prng.Get[T](g)
		c[1] = prng.Get[T](g)
		buffer.StoreElem(&e.osPrep, a[1])
		buffer.StoreElem(&e.osPrep, c[1])

	case 2:
		a[1] = buffer.GetElemNoCheck[T](&e.os)
		c[1] = prng.Get[T](e.prngs.Streams[0])
		buffer.StoreElem(&e.osPrep, a[1])
		buffer.StoreElem(&e.osPrep, c[1])
	}
	return
}

// exchangeReducedMul finishes the offline reduced multiplication:
// party 0 sends the offsets and the others store their rows.
func (e *PrepEngine[T]) exchangeReducedMul(n int) error {
	switch e.p.MyNum() {
	case 0:
		if err := e.p.SendTo(2, &e.os); err != nil {
			return err
		}
	case 2:
		if e.os.Left() > 0 {
			return errors.Errorf("unused data in %s", e.protoName())
		}
	}
	return e.store(&e.osPrep)
}

// postReducedMul returns nothing: the offline phase produces
// correlations only.
func (e *PrepEngine[T]) postReducedMul() (share.Share[T], T) {
	var zero T
	return share.Share[T]{}, zero
}

// initReducedMul reads the pre-shared masks for n reduced
// multiplications.
func (e *TrioEngine[T]) initReducedMul(n int) error {
	if err := e.read(&e.prepOS); err != nil {
		return err
	}
	if !buffer.ElemsLeft[T](&e.prepOS, 2*n) {
		return errors.New("insufficient preprocessing")
	}
	e.os[0].ResetWriteHead()
	buffer.ReserveElems[T](&e.os[0], n)
	e.tuples.clear()
	e.tuples.reserve(n)
	return nil
}

// preReducedMul queues one reduced multiplication. The parties
// contribute their halves of the product of the pre-correlated pair.
func (e *TrioEngine[T]) preReducedMul(aa, bb T) (a, b, c share.Share[T]) {
	a[1] = buffer.GetElemNoCheck[T](&e.prepOS)
	c[1] = buffer.GetElemNoCheck[T](&e.prepOS)
	a[0] = a[1]
	b[0] = bb

	var v T
	if e.num == 1 {
		v = bb.Mul(a[1].Neg())
		buffer.StoreElem(&e.os[0], v.Add(c[1]))
	} else {
		v = a[1].Mul(bb)
		buffer.StoreElem(&e.os[0], v.Sub(c[1]))
	}
	e.tuples.push(preTuple[T]{v: v})
	return
}

// exchangeReducedMul runs the reduced multiplication round.
func (e *TrioEngine[T]) exchangeReducedMul(n int) error {
	if err := e.p.PassAround(&e.os[0], &e.os[1], 1); err != nil {
		return err
	}
	e.rounds++
	if !buffer.ElemsLeft[T](&e.os[1], n) {
		return errors.New("insufficient data in Trio")
	}
	e.tuples.reset()
	return nil
}

// postReducedMul returns the next reduced multiplication result and
// the recovered product share.
func (e *TrioEngine[T]) postReducedMul() (share.Share[T], T) {
	tuple := e.tuples.nextItem()
	peer := buffer.GetElemNoCheck[T](&e.os[1])
	if e.num == 1 {
		return tuple.z, peer.Sub(tuple.v)
	}
	return tuple.z, tuple.v.Sub(peer)
}
