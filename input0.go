//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// The generator-input path shares values known only to the offline
// generator as fresh online shares. It backs small-gap truncation.

package astra

import (
	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/prng"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// initInput0 prepares the generator-input batch.
func (e *PrepEngine[T]) initInput0(n int) {
	e.cs.ResetWriteHead()
	buffer.ReserveElems[T](&e.cs, n)
}

// addGen splits a generator value between the online parties.
func (e *PrepEngine[T]) addGen(value T) {
	var res share.Share[T]
	res[1] = prng.Get[T](e.prngsInput0.Streams[1])
	res[0] = value.Sub(res[1])
	e.genValues.push(res)
	buffer.StoreElem(&e.cs, res[0])
}

// preInput0 queues a generator value. Only party 0 has values to
// queue.
func (e *PrepEngine[T]) preInput0(input T) {
	if e.p.MyNum() != 0 {
		panic("should not be called")
	}
	e.addGen(input)
}

// exchangeInput0 moves the generator offsets to party 1.
func (e *PrepEngine[T]) exchangeInput0(n int) error {
	switch e.p.MyNum() {
	case 0:
		if err := e.p.SendTo(1, &e.cs); err != nil {
			return err
		}
		e.genValues.reset()
		if e.genValues.left() < n {
			return errors.New("insufficient data in input")
		}
	case 1:
		if err := e.p.ReceivePlayer(0, &e.cs); err != nil {
			return err
		}
		if !buffer.ElemsLeft[T](&e.cs, n) {
			return errors.New("insufficient data in input")
		}
	}
	return nil
}

// postInput0 returns the party's share of the next generator value.
// Party 2 draws its component from the stream it shares with the
// generator and records it for its online counterpart.
func (e *PrepEngine[T]) postInput0() (share.Share[T], error) {
	var res share.Share[T]
	switch e.p.MyNum() {
	case 0:
		return e.genValues.nextItem(), nil
	case 1:
		var err error
		res[1], err = buffer.GetElem[T](&e.cs)
		if err != nil {
			return res, errors.Wrap(err, "input")
		}
	case 2:
		res[1] = prng.Get[T](e.prngsInput0.Streams[0])
		buffer.StoreElem(&e.cs, res[1])
	}
	return res, nil
}

// finalizeInput0 stores the input components on the preprocessing
// files.
func (e *PrepEngine[T]) finalizeInput0(n int) error {
	if e.p.MyNum() != 0 {
		e.cs.ResetReadHead()
		if !buffer.ElemsLeft[T](&e.cs, n) {
			return errors.New("insufficient data in input")
		}
		if err := e.store(&e.cs); err != nil {
			return err
		}
	}
	if e.genValues.left() > 0 {
		return errors.Errorf("unused data in %s", e.protoName())
	}
	return nil
}

var _ truncProtocol[ring.Z64] = &Engine[ring.Z64]{}
var _ truncProtocol[ring.Z64] = &PrepEngine[ring.Z64]{}
var _ truncProtocol[ring.Z64] = &TrioEngine[ring.Z64]{}
var _ truncProtocol[ring.Z64] = &TrioPrepEngine[ring.Z64]{}
