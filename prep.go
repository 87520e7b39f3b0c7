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
	"github.com/markkurossi/astra/rep3"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// PrepEngine implements the offline protocol of variant A. The three
// preprocessing parties produce the correlated randomness the online
// parties consume: parties 1 and 2 write the preprocessing files of
// their online counterparts.
type PrepEngine[T ring.Elem[T]] struct {
	base[T]

	prepW   *prepWriter
	outputs *prepReader

	// prngs is the engine's correlated stream pair; prngsInput0
	// backs the generator-input path of small-gap truncation.
	prngs       *prng.Pair
	prngsInput0 *prng.Pair

	os     buffer.Buffer
	osPrep buffer.Buffer
	cs     buffer.Buffer
	csPrep buffer.Buffer

	unsplitInput *rep3.Input[T]
}

var _ Protocol[ring.Z64] = &PrepEngine[ring.Z64]{}

// NewPrepEngine creates a new offline engine for variant A. The
// constructor seeds the engine's correlated randomness with a
// one-round key exchange between the three parties.
func NewPrepEngine[T ring.Elem[T]](p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, thread int) (*PrepEngine[T], error) {

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	prngs, err := prng.NewPair(p, log)
	if err != nil {
		return nil, err
	}
	prngsInput0, err := prng.NewPair(p, log)
	if err != nil {
		return nil, err
	}
	e := &PrepEngine[T]{
		base: base[T]{
			p:      p,
			opts:   opts,
			log:    log,
			funcs:  share.AstraPrep[T](),
			num:    p.MyNum(),
			tag:    "astra",
			thread: thread,
		},
		prngs:       prngs,
		prngsInput0: prngsInput0,
	}
	return e, nil
}

// NewSeededPrepEngine creates an offline engine with explicit stream
// pairs instead of the key exchange. It is used by tests and by
// deterministic replay.
func NewSeededPrepEngine[T ring.Elem[T]](p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, thread int, prngs, prngsInput0 *prng.Pair) (
	*PrepEngine[T], error) {

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	e := &PrepEngine[T]{
		base: base[T]{
			p:      p,
			opts:   opts,
			log:    log,
			funcs:  share.AstraPrep[T](),
			num:    p.MyNum(),
			tag:    "astra",
			thread: thread,
		},
		prngs:       prngs,
		prngsInput0: prngsInput0,
	}
	return e, nil
}

// filename returns the engine's preprocessing file path.
func (e *PrepEngine[T]) filename(name string) string {
	res := prepFilename(e.opts, e.tag, name, e.suffix, true,
		e.p.MyNum(), e.thread)
	e.debug("astra filename %s", res)
	return res
}

// store appends the buffer to the party's preprocessing file as one
// frame. Party 0 produces no file.
func (e *PrepEngine[T]) store(os *buffer.Buffer) error {
	if e.p.MyNum() == 0 {
		return nil
	}
	if e.prepW == nil {
		prepW, err := createPrepFile(e.filename("Protocol"))
		if err != nil {
			return err
		}
		e.prepW = prepW
	}
	e.debug("astra comm %s %s", e.tag, e.suffix)
	e.p.AddComm("Preprocessing transmission", os.Len())
	return e.prepW.store(os)
}

// storeShare stores one packed share as its own frame.
func (e *PrepEngine[T]) storeShare(v share.Share[T]) error {
	if e.p.MyNum() == 0 {
		return nil
	}
	var os buffer.Buffer
	v.Pack(&os)
	return e.store(&os)
}

// InitMul initializes a multiplication round.
func (e *PrepEngine[T]) InitMul() error {
	if e.results.left() > 0 {
		return errors.Errorf("unused data in %s", e.protoName())
	}
	e.initMul()
	return nil
}

// InitDotprod initializes a dot product round.
func (e *PrepEngine[T]) InitDotprod() error {
	return e.InitMul()
}

// preElement draws the mask share of one result. Party 0 holds both
// mask components; the other parties hold the component they share
// with party 0.
func (e *PrepEngine[T]) preElement(res *share.Share[T]) {
	myNum := e.p.MyNum()
	if myNum == 0 {
		res[0] = prng.Get[T](e.prngs.Streams[0])
		res[1] = prng.Get[T](e.prngs.Streams[1])
	} else {
		res[1] = prng.Get[T](e.prngs.Streams[2-myNum])
	}
}

// preGamma draws the input correction. Parties 0 and 1 share the
// correction; party 0 sends the offset batch to party 2 and parties 1
// and 2 append their rows to the preprocessing files.
func (e *PrepEngine[T]) preGamma(res *share.Share[T], input T) {
	myNum := e.p.MyNum()
	if myNum < 2 {
		gamma := prng.Get[T](e.prngs.Streams[myNum])
		if myNum == 0 {
			buffer.StoreElem(&e.os, input.Sub(gamma))
		} else {
			e.post(res, gamma)
		}
	}
}

// post appends one preprocessing row: the correction followed by the
// party's mask component.
func (e *PrepEngine[T]) post(res *share.Share[T], gamma T) {
	buffer.StoreElem(&e.osPrep, gamma)
	buffer.StoreElem(&e.osPrep, res[1])
}

// Exchange runs the offline multiplication protocol.
func (e *PrepEngine[T]) Exchange() error {
	codeLocation(e.opts, e.log)
	e.debug("astra exchange %d", len(e.inputs))

	myNum := e.p.MyNum()
	if e.results.size() != 0 {
		panic("exchange with unfinalized results")
	}

	e.nMults += len(e.inputPairs)
	e.results.reserve(e.nMults)

	if myNum == 0 {
		e.os.ResetWriteHead()
		buffer.ReserveElems[T](&e.os, e.nMults)
	} else {
		e.osPrep.ResetWriteHead()
		buffer.ReserveElems[T](&e.osPrep, 2*e.nMults)
	}

	for _, input := range e.inputs {
		var res share.Share[T]
		e.preElement(&res)
		e.preGamma(&res, input)
		e.results.push(res)
	}
	mul := e.funcs.LocalMul[myNum]
	for _, pair := range e.inputPairs {
		input := mul(pair[0], pair[1])
		var res share.Share[T]
		e.preElement(&res)
		e.preGamma(&res, input)
		e.results.push(res)
	}

	if myNum == 0 {
		if err := e.p.SendTo(2, &e.os); err != nil {
			return err
		}
	} else if myNum == 2 {
		if err := e.p.ReceivePlayer(0, &e.os); err != nil {
			return err
		}
	}
	e.rounds++

	if myNum == 2 {
		if !buffer.ElemsLeft[T](&e.os, e.results.size()) {
			return errors.Errorf("insufficient data in %s",
				e.protoName())
		}
		for i := range e.results.items {
			e.post(&e.results.items[i],
				buffer.GetElemNoCheck[T](&e.os))
		}
	}

	if err := e.store(&e.osPrep); err != nil {
		return err
	}
	e.results.reset()
	e.state = stateFinalizing
	e.counter += e.nMults

	return e.maybeCheck()
}

// FinalizeMul returns the next multiplication result.
func (e *PrepEngine[T]) FinalizeMul() share.Share[T] {
	return e.results.nextItem()
}

// FinalizeDotprod returns the next dot product result.
func (e *PrepEngine[T]) FinalizeDotprod(int) share.Share[T] {
	return e.FinalizeMul()
}

// FromRep3 re-encodes a replicated pair into the variant's slot
// layout.
func (e *PrepEngine[T]) FromRep3(x share.Share[T]) share.Share[T] {
	return e.funcs.FromRep3(x, e.p.MyNum())
}

// GetRandom draws a secret random share from the correlated streams
// and stores it for the online party.
func (e *PrepEngine[T]) GetRandom() (share.Share[T], error) {
	raw := prng.Random[T](e.prngs)
	res := e.FromRep3(share.Share[T](raw))
	if err := e.storeShare(res); err != nil {
		return res, err
	}
	return res, nil
}

// RandomShares fills dest with secret random shares of nBits-bit
// values and stores the batch for the online party.
func (e *PrepEngine[T]) RandomShares(dest []share.Share[T],
	nBits int) error {

	var os buffer.Buffer
	for i := range dest {
		var raw share.Share[T]
		raw[0] = prng.GetPartial[T](e.prngs.Streams[0], nBits)
		raw[1] = prng.GetPartial[T](e.prngs.Streams[1], nBits)
		dest[i] = e.FromRep3(raw)
		dest[i].Pack(&os)
	}
	return e.store(&os)
}

// Sync replays opened values from the outputs file the online party 0
// wrote: party 1 reads the file and broadcasts, the others receive.
func (e *PrepEngine[T]) Sync(n int) ([]T, error) {
	var os buffer.Buffer
	if e.p.MyNum() == 1 {
		if e.outputs == nil {
			outputs, err := openPrepFile(
				prepFilename(e.opts, e.tag, "Outputs", e.suffix,
					false, 0, e.thread))
			if err != nil {
				return nil, err
			}
			e.outputs = outputs
		}
		if err := e.outputs.read(&os); err != nil {
			return nil, err
		}
		e.p.AddComm("Output transmission", os.Len())
		if err := e.p.SendAll(&os); err != nil {
			return nil, err
		}
	} else {
		if err := e.p.ReceivePlayer(1, &os); err != nil {
			return nil, err
		}
	}
	count, err := os.GetUint64()
	if err != nil {
		return nil, err
	}
	if int(count) != n {
		return nil, errors.New("wrong vector length")
	}
	values := make([]T, n)
	for i := range values {
		if values[i], err = buffer.GetElem[T](&os); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// ForwardSync stores values on the preprocessing file for the online
// party to read.
func (e *PrepEngine[T]) ForwardSync(values []T) error {
	var os buffer.Buffer
	os.StoreUint64(uint64(len(values)))
	for _, v := range values {
		buffer.StoreElem(&os, v)
	}
	return e.store(&os)
}

// Close releases the engine's preprocessing files.
func (e *PrepEngine[T]) Close() error {
	var firstErr error
	if e.prepW != nil {
		if err := e.prepW.close(); err != nil {
			firstErr = err
		}
		e.prepW = nil
	}
	if e.outputs != nil {
		if err := e.outputs.close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.outputs = nil
	}
	return firstErr
}
