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

// Engine implements the online protocol of variant A. The engine runs
// between the two online parties; party 0 is absent after
// preprocessing. Every operation consumes the correlations the
// party's preprocessing file provides in protocol order.
type Engine[T ring.Elem[T]] struct {
	onlineBase[T]

	os     buffer.Buffer
	osPrep buffer.Buffer
	recvOS buffer.Buffer
}

var _ Protocol[ring.Z64] = &Engine[ring.Z64]{}

// NewEngine creates a new online engine for variant A. The player
// must be one of the two online parties.
func NewEngine[T ring.Elem[T]](p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, thread int) (*Engine[T], error) {

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine[T]{
		onlineBase: onlineBase[T]{
			base: base[T]{
				p:      p,
				opts:   opts,
				log:    log,
				funcs:  share.Astra[T](),
				num:    p.MyNum() + 1,
				tag:    "astra",
				thread: thread,
			},
		},
	}, nil
}

// NewBitEngine creates the bit-domain sibling of an online engine.
// The bit engine has its own preprocessing file; its share thread
// registration guards that at most one exists per thread.
func NewBitEngine(p *p2p.Player, opts *Options, log *zap.SugaredLogger,
	st *ShareThread) (*Engine[ring.BitVec], error) {

	e, err := NewEngine[ring.BitVec](p, opts, log, st.Thread)
	if err != nil {
		return nil, err
	}
	e.tag = "astra-bit"
	return e, nil
}

// InitMul initializes a multiplication round.
func (e *Engine[T]) InitMul() error {
	if e.recvOS.Left() > 0 || e.results.left() > 0 {
		return errors.New("unused data in Astra")
	}
	e.initMul()
	return nil
}

// InitDotprod initializes a dot product round.
func (e *Engine[T]) InitDotprod() error {
	return e.InitMul()
}

// pre computes the party's share of one masked product from the input
// correction and the next preprocessing row.
func (e *Engine[T]) pre(input T) share.Share[T] {
	gamma := buffer.GetElemNoCheck[T](&e.osPrep)
	var res share.Share[T]
	res[1] = buffer.GetElemNoCheck[T](&e.osPrep)
	mz := input.Sub(res[1]).Add(gamma)
	buffer.StoreElem(&e.os, mz)
	res[0] = mz
	return res
}

// Exchange runs the multiplication protocol. The queued dot products
// are emitted before the queued multiplications, and the round sends
// exactly one message batch between the online parties.
func (e *Engine[T]) Exchange() error {
	codeLocation(e.opts, e.log)
	e.debug("astra exchange %d", len(e.inputs))

	if e.results.size() != 0 {
		panic("exchange with unfinalized results")
	}
	nMults := e.numMults()

	if err := e.read(&e.osPrep); err != nil {
		return err
	}
	e.os.ResetWriteHead()
	buffer.ReserveElems[T](&e.os, nMults)

	if !buffer.ElemsLeft[T](&e.osPrep, 2*nMults) {
		return errors.New("insufficient preprocessing")
	}

	for _, input := range e.inputs {
		e.results.push(e.pre(input))
	}
	mul := e.funcs.LocalMul[e.num]
	for _, pair := range e.inputPairs {
		e.results.push(e.pre(mul(pair[0], pair[1])))
	}

	if err := e.p.Exchange(1-e.p.MyNum(), &e.os, &e.recvOS); err != nil {
		return err
	}
	e.rounds++

	if !buffer.ElemsLeft[T](&e.recvOS, e.results.size()) {
		return errors.New("insufficient data in Astra")
	}
	for i := range e.results.items {
		res := &e.results.items[i]
		res[0] = res[0].Add(buffer.GetElemNoCheck[T](&e.recvOS))
	}

	if e.osPrep.Left() > 0 {
		return errors.New("unused data in Astra")
	}

	e.results.reset()
	e.state = stateFinalizing
	e.counter += nMults

	return e.maybeCheck()
}

// FinalizeMul returns the next multiplication result.
func (e *Engine[T]) FinalizeMul() share.Share[T] {
	return e.results.nextItem()
}

// FinalizeDotprod returns the next dot product result.
func (e *Engine[T]) FinalizeDotprod(int) share.Share[T] {
	return e.FinalizeMul()
}
