//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// onlineBase implements the state shared by the online engines: the
// preprocessing file reader, the outputs file, and the
// generator-input path of small-gap truncation.
type onlineBase[T ring.Elem[T]] struct {
	base[T]

	prep    *prepReader
	outputs *prepWriter
	csPrep  buffer.Buffer
}

// protoName returns the protocol name for error messages.
func (b *base[T]) protoName() string {
	if b.funcs.Kind == share.KindTrio || b.funcs.Kind == share.KindTrioPrep {
		return "Trio"
	}
	return "Astra"
}

// filename returns the engine's preprocessing file path.
func (e *onlineBase[T]) filename(name string) string {
	res := prepFilename(e.opts, e.tag, name, e.suffix, false,
		e.p.MyNum(), e.thread)
	e.debug("astra filename %s", res)
	return res
}

// read reads the next preprocessing frame into os.
func (e *onlineBase[T]) read(os *buffer.Buffer) error {
	if e.prep == nil {
		prep, err := openPrepFile(e.filename("Protocol"))
		if err != nil {
			return err
		}
		e.prep = prep
	}
	e.debug("astra comm %s %s", e.tag, e.suffix)
	if err := e.prep.read(os); err != nil {
		return err
	}
	e.p.AddComm("Preprocessing transmission", os.Len())
	return nil
}

// GetRandom returns the next secret random share from the
// preprocessing file.
func (e *onlineBase[T]) GetRandom() (share.Share[T], error) {
	var os buffer.Buffer
	if err := e.read(&os); err != nil {
		return share.Share[T]{}, err
	}
	var res share.Share[T]
	if err := res.Unpack(&os); err != nil {
		return res, err
	}
	if os.Left() > 0 {
		return res, errors.Errorf("unused data in %s", e.protoName())
	}
	return res, nil
}

// RandomShares fills dest with secret random shares of nBits-bit
// values from the preprocessing file.
func (e *onlineBase[T]) RandomShares(dest []share.Share[T],
	nBits int) error {

	var os buffer.Buffer
	if err := e.read(&os); err != nil {
		return err
	}
	for i := range dest {
		if err := dest[i].Unpack(&os); err != nil {
			return err
		}
	}
	if os.Left() > 0 {
		return errors.Errorf("unused data in %s", e.protoName())
	}
	return nil
}

// Sync stores opened values into the outputs file for the offline
// phase to replay.
func (e *onlineBase[T]) Sync(values []T) error {
	if e.p.MyNum() != 0 {
		return nil
	}
	if e.outputs == nil {
		outputs, err := createPrepFile(e.filename("Outputs"))
		if err != nil {
			return err
		}
		e.outputs = outputs
	}
	var os buffer.Buffer
	os.StoreUint64(uint64(len(values)))
	for _, v := range values {
		buffer.StoreElem(&os, v)
	}
	e.p.AddComm("Output transmission", os.Len())
	return e.outputs.store(&os)
}

// ForwardSync reads values the offline phase forwarded on the
// preprocessing file.
func (e *onlineBase[T]) ForwardSync(n int) ([]T, error) {
	var os buffer.Buffer
	if err := e.read(&os); err != nil {
		return nil, err
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

// initInput0 initializes the generator-input path. The online side
// has nothing to prepare.
func (e *onlineBase[T]) initInput0(n int) {
}

// exchangeInput0 reads the generator-input masks from the
// preprocessing file.
func (e *onlineBase[T]) exchangeInput0(n int) error {
	if err := e.read(&e.csPrep); err != nil {
		return err
	}
	if !buffer.ElemsLeft[T](&e.csPrep, n) {
		return errors.New("insufficient data in input")
	}
	return nil
}

// finalizeInput0 finishes the generator-input path.
func (e *onlineBase[T]) finalizeInput0(n int) error {
	return nil
}

// preInput0 queues a generator value. Only the offline generator has
// values to queue.
func (e *onlineBase[T]) preInput0(input T) {
}

// postInput0 returns the party's share of the next generator input.
func (e *onlineBase[T]) postInput0() (share.Share[T], error) {
	var res share.Share[T]
	res[1] = buffer.GetElemNoCheck[T](&e.csPrep)
	return e.funcs.FromRep3(res, e.p.MyNum()), nil
}

// Close releases the engine's preprocessing files.
func (e *onlineBase[T]) Close() error {
	var firstErr error
	if e.prep != nil {
		if err := e.prep.close(); err != nil {
			firstErr = err
		}
		e.prep = nil
	}
	if e.outputs != nil {
		if err := e.outputs.close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.outputs = nil
	}
	return firstErr
}
