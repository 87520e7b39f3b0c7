//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// preTuple carries a pending multiplication result and the party's
// masked local product through the exchange round.
type preTuple[T ring.Elem[T]] struct {
	z share.Share[T]
	v T
}

// TrioEngine implements the online protocol of variant T. The slot
// layout matches the offline variant at runtime but with the
// transformed common-m convention.
type TrioEngine[T ring.Elem[T]] struct {
	onlineBase[T]

	prepOS buffer.Buffer
	os     [2]buffer.Buffer
	tuples iterVec[preTuple[T]]
}

var _ Protocol[ring.Z64] = &TrioEngine[ring.Z64]{}

// NewTrioEngine creates a new online engine for variant T.
func NewTrioEngine[T ring.Elem[T]](p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, thread int) (*TrioEngine[T], error) {

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &TrioEngine[T]{
		onlineBase: onlineBase[T]{
			base: base[T]{
				p:      p,
				opts:   opts,
				log:    log,
				funcs:  share.Trio[T](),
				num:    p.MyNum() + 1,
				tag:    "trio",
				thread: thread,
			},
		},
	}, nil
}

// InitMul initializes a multiplication round.
func (e *TrioEngine[T]) InitMul() error {
	if e.os[1].Left() > 0 || e.tuples.left() > 0 {
		return errors.New("unused data in Trio")
	}
	e.initMul()
	return nil
}

// InitDotprod initializes a dot product round.
func (e *TrioEngine[T]) InitDotprod() error {
	return e.InitMul()
}

// preCommon reads the next correlation pair and masks the local
// product with it.
func (e *TrioEngine[T]) preCommon(input T) preTuple[T] {
	tmp := input.Add(buffer.GetElemNoCheck[T](&e.prepOS))
	var z share.Share[T]
	z[1] = buffer.GetElemNoCheck[T](&e.prepOS)
	return preTuple[T]{z: z, v: tmp}
}

// preDot queues the party's masked value for the exchange round. The
// sign of the mask share depends on the party.
func (e *TrioEngine[T]) preDot(input T) preTuple[T] {
	tuple := e.preCommon(input)
	if e.num == 1 {
		buffer.StoreElem(&e.os[0], tuple.v.Add(tuple.z[1]))
	} else {
		buffer.StoreElem(&e.os[0], tuple.v.Sub(tuple.z[1]))
	}
	return tuple
}

// Exchange runs the multiplication protocol in one pass-around
// between the online parties.
func (e *TrioEngine[T]) Exchange() error {
	codeLocation(e.opts, e.log)
	e.debug("trio exchange %d", len(e.inputs))

	nMults := e.numMults()

	if err := e.read(&e.prepOS); err != nil {
		return err
	}
	if !buffer.ElemsLeft[T](&e.prepOS, 2*nMults) {
		return errors.New("insufficient preprocessing")
	}

	e.os[0].ResetWriteHead()
	buffer.ReserveElems[T](&e.os[0], nMults)
	e.tuples.clear()
	e.tuples.reserve(nMults)

	for _, input := range e.inputs {
		e.tuples.push(e.preDot(input))
	}
	mul := e.funcs.LocalMul[e.num]
	for _, pair := range e.inputPairs {
		e.tuples.push(e.preDot(mul(pair[0], pair[1])))
	}

	if err := e.p.PassAround(&e.os[0], &e.os[1], 1); err != nil {
		return err
	}
	e.rounds++

	if !buffer.ElemsLeft[T](&e.os[1], nMults) {
		return errors.New("insufficient data in Trio")
	}

	if e.num == 1 {
		for i := range e.tuples.items {
			tuple := &e.tuples.items[i]
			tuple.z[0] = buffer.GetElemNoCheck[T](&e.os[1]).
				Sub(tuple.v)
		}
	} else {
		for i := range e.tuples.items {
			tuple := &e.tuples.items[i]
			tuple.z[0] = tuple.v.
				Sub(buffer.GetElemNoCheck[T](&e.os[1]))
		}
	}

	if e.prepOS.Left() > 0 {
		return errors.New("unused data in Trio")
	}

	e.tuples.reset()
	e.state = stateFinalizing
	e.counter += nMults

	return e.maybeCheck()
}

// FinalizeMul returns the next multiplication result.
func (e *TrioEngine[T]) FinalizeMul() share.Share[T] {
	return e.tuples.nextItem().z
}

// FinalizeDotprod returns the next dot product result.
func (e *TrioEngine[T]) FinalizeDotprod(int) share.Share[T] {
	return e.FinalizeMul()
}
