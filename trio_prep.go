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
	"github.com/markkurossi/astra/prng"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// TrioPrepEngine implements the offline protocol of variant T. Party
// 0 produces the multiplication correlations alone; parties 1 and 2
// only write the online preprocessing files.
type TrioPrepEngine[T ring.Elem[T]] struct {
	PrepEngine[T]
}

var _ Protocol[ring.Z64] = &TrioPrepEngine[ring.Z64]{}

// NewTrioPrepEngine creates a new offline engine for variant T.
func NewTrioPrepEngine[T ring.Elem[T]](p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, thread int) (*TrioPrepEngine[T], error) {

	prep, err := NewPrepEngine[T](p, opts, log, thread)
	if err != nil {
		return nil, err
	}
	e := &TrioPrepEngine[T]{
		PrepEngine: *prep,
	}
	e.funcs = share.TrioPrep[T]()
	e.tag = "trio"
	return e, nil
}

// NewSeededTrioPrepEngine creates an offline engine with explicit
// stream pairs instead of the key exchange.
func NewSeededTrioPrepEngine[T ring.Elem[T]](p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, thread int, prngs, prngsInput0 *prng.Pair) (
	*TrioPrepEngine[T], error) {

	prep, err := NewSeededPrepEngine[T](p, opts, log, thread, prngs,
		prngsInput0)
	if err != nil {
		return nil, err
	}
	e := &TrioPrepEngine[T]{
		PrepEngine: *prep,
	}
	e.funcs = share.TrioPrep[T]()
	e.tag = "trio"
	return e, nil
}

// preP0 masks party 0's local product for party 2.
func (e *TrioPrepEngine[T]) preP0(input T) {
	r01 := prng.Get[T](e.prngs.Streams[0])
	buffer.StoreElem(&e.os, input.Add(r01))
}

// Exchange runs the offline multiplication protocol: party 0 computes
// the products of the mask shares and splits them between the online
// parties.
func (e *TrioPrepEngine[T]) Exchange() error {
	codeLocation(e.opts, e.log)
	e.debug("trio exchange %d", len(e.inputs))

	myNum := e.p.MyNum()
	if e.results.size() != 0 {
		panic("exchange with unfinalized results")
	}

	e.nMults += len(e.inputPairs)
	e.results.reserve(e.nMults)
	e.os.ResetWriteHead()
	buffer.ReserveElems[T](&e.os, 2*e.nMults)

	switch myNum {
	case 0:
		for _, input := range e.inputs {
			e.preP0(input)
			e.results.push(share.Share[T](prng.Random[T](e.prngs)))
		}
		mul := e.funcs.LocalMul[0]
		for _, pair := range e.inputPairs {
			e.preP0(mul(pair[0], pair[1]))
			e.results.push(share.Share[T](prng.Random[T](e.prngs)))
		}
		if err := e.p.SendTo(2, &e.os); err != nil {
			return err
		}

	case 1:
		for i := 0; i < e.nMults; i++ {
			r01 := prng.Get[T](e.prngs.Streams[1])
			var z share.Share[T]
			z[1] = prng.Get[T](e.prngs.Streams[1])
			e.results.push(z)
			buffer.StoreElem(&e.os, r01)
			buffer.StoreElem(&e.os, z[1])
		}
		if err := e.store(&e.os); err != nil {
			return err
		}

	case 2:
		if err := e.p.ReceivePlayer(0, &e.os); err != nil {
			return err
		}
		var prepOS buffer.Buffer
		buffer.ReserveElems[T](&prepOS, 2*e.nMults)
		if !buffer.ElemsLeft[T](&e.os, e.nMults) {
			return errors.New("insufficient data in multiplication")
		}
		for i := 0; i < e.nMults; i++ {
			buffer.StoreElem(&prepOS,
				buffer.GetElemNoCheck[T](&e.os))
			var z share.Share[T]
			z[1] = prng.Get[T](e.prngs.Streams[0])
			buffer.StoreElem(&prepOS, z[1])
			e.results.push(z)
		}
		if err := e.store(&prepOS); err != nil {
			return err
		}
	}
	e.rounds++

	e.results.reset()
	e.state = stateFinalizing
	e.counter += e.nMults

	return e.maybeCheck()
}
