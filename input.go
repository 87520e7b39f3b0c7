//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/prng"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// InputProtocol defines the private-input protocol: a cleartext owned
// by one party becomes a share held by all. Parties are addressed by
// their online player numbers.
type InputProtocol[T ring.Elem[T]] interface {
	// Reset clears the pending inputs of the argument player.
	Reset(player int)

	// ResetAll clears the pending inputs of all players.
	ResetAll()

	// AddMine queues the party's own cleartext input.
	AddMine(input T)

	// AddOther marks a pending input from the argument player.
	AddOther(player int)

	// Exchange runs the input protocol round.
	Exchange() error

	// Finalize returns the next share of the argument player's
	// inputs in the order they were queued.
	Finalize(player int) (share.Share[T], error)
}

// onlineProtocol is the view the input protocol needs from an online
// engine.
type onlineProtocol[T ring.Elem[T]] interface {
	Protocol[T]
	read(os *buffer.Buffer) error
	options() *Options
	debug(format string, args ...interface{})
}

// Input implements the online input protocol. The owner reads one
// mask per input from its preprocessing file, sends the masked
// cleartext to its peer, and both parties reconstruct the same masked
// value.
type Input[T ring.Elem[T]] struct {
	proto     onlineProtocol[T]
	trio      bool
	sendOS    buffer.Buffer
	recvOS    buffer.Buffer
	inputs    []T
	results   iterVec[share.Share[T]]
	myResults iterVec[share.Share[T]]
}

var _ InputProtocol[ring.Z64] = &Input[ring.Z64]{}

// NewInput creates a new input protocol instance for the online
// engine.
func NewInput[T ring.Elem[T]](e *Engine[T]) *Input[T] {
	return &Input[T]{
		proto: e,
	}
}

// NewTrioInput creates a new input protocol instance for the online
// engine of variant T. The owner's share carries the common-m
// correction.
func NewTrioInput[T ring.Elem[T]](e *TrioEngine[T]) *Input[T] {
	return &Input[T]{
		proto: e,
		trio:  true,
	}
}

// Reset clears the pending inputs of the argument player.
func (in *Input[T]) Reset(player int) {
	if in.proto.Player().MyNum() == player {
		in.sendOS.ResetWriteHead()
		in.inputs = in.inputs[:0]
		in.myResults.clear()
	}
	in.results.clear()
}

// ResetAll clears the pending inputs of all players.
func (in *Input[T]) ResetAll() {
	for i := 0; i < in.proto.Player().NumPlayers(); i++ {
		in.Reset(i)
	}
}

// AddMine queues the party's own cleartext input.
func (in *Input[T]) AddMine(input T) {
	in.inputs = append(in.inputs, input)
}

// AddOther marks a pending input from the argument player.
func (in *Input[T]) AddOther(player int) {
	in.results.push(share.Share[T]{})
}

// Exchange runs the input protocol round.
func (in *Input[T]) Exchange() error {
	in.proto.debug("astra input exchange %d", len(in.inputs))

	var prepOS buffer.Buffer
	if err := in.proto.read(&prepOS); err != nil {
		return err
	}
	in.myResults.reserve(len(in.inputs))
	in.sendOS.ResetWriteHead()
	buffer.ReserveElems[T](&in.sendOS, len(in.inputs))

	if !buffer.ElemsLeft[T](&prepOS, len(in.inputs)) {
		return errors.New("insufficient data in input")
	}

	for _, input := range in.inputs {
		gamma := buffer.GetElemNoCheck[T](&prepOS)
		buffer.StoreElem(&in.sendOS, input.Sub(gamma))
		var res share.Share[T]
		res[1] = gamma
		in.myResults.push(res)
	}

	p := in.proto.Player()
	if err := p.PassAround(&in.sendOS, &in.recvOS, 1); err != nil {
		return err
	}

	if !buffer.ElemsLeft[T](&in.recvOS, in.results.size()) {
		return errors.New("insufficient data in Astra input")
	}
	if prepOS.Left() > 0 {
		return errors.New("unused data in input")
	}

	in.results.reset()
	in.myResults.reset()
	return nil
}

// Finalize returns the next share of the argument player's inputs.
func (in *Input[T]) Finalize(player int) (share.Share[T], error) {
	return in.FinalizeOffset(player - in.proto.Player().MyNum())
}

// FinalizeOffset returns the next share of the player the argument
// offset positions from this party.
func (in *Input[T]) FinalizeOffset(offset int) (share.Share[T], error) {
	var res share.Share[T]
	var o *buffer.Buffer
	if offset == 0 {
		res = in.myResults.nextItem()
		o = &in.sendOS
	} else {
		res = in.results.nextItem()
		o = &in.recvOS
	}
	val, err := buffer.GetElem[T](o)
	if err != nil {
		return res, errors.New("insufficient data in Astra input")
	}
	if in.trio && offset == 0 {
		// The common-m convention carries the mask in slot 0.
		res[0] = val.Add(res[1])
	} else {
		res[0] = val
	}
	return res, nil
}

// PrepInput implements the offline input protocol. No cleartext
// leaves a party in the preprocessing phase: the protocol only
// produces the input masks and stores them for the online owners.
type PrepInput[T ring.Elem[T]] struct {
	proto   *PrepEngine[T]
	results [3]iterVec[share.Share[T]]
	prepOS  buffer.Buffer
	nInputs [3]int
}

var _ InputProtocol[ring.Z64] = &PrepInput[ring.Z64]{}

// NewPrepInput creates a new input protocol instance for the offline
// engine.
func NewPrepInput[T ring.Elem[T]](e *PrepEngine[T]) *PrepInput[T] {
	return &PrepInput[T]{
		proto: e,
	}
}

func (in *PrepInput[T]) isMe(player int) bool {
	return player+1 == in.proto.Player().MyNum()
}

// Reset clears the pending inputs of the argument player.
func (in *PrepInput[T]) Reset(player int) {
	if in.isMe(player) {
		in.prepOS.ResetWriteHead()
	}
	in.nInputs[player] = 0
}

// ResetAll clears the pending inputs of all players.
func (in *PrepInput[T]) ResetAll() {
	for i := 0; i < 2; i++ {
		in.Reset(i)
	}
}

// AddMine queues an input of the party's online counterpart. The
// cleartext is not available in the preprocessing phase; only the
// count matters.
func (in *PrepInput[T]) AddMine(input T) {
	in.AddOther(in.proto.Player().MyNum() - 1)
}

// AddOther marks a pending input from the argument online player.
func (in *PrepInput[T]) AddOther(player int) {
	if player == 2 {
		panic("should not be called")
	}
	in.nInputs[player]++
}

// Exchange generates the input masks. Party 0 draws its mask
// components from the streams it shares with the online owners; the
// owners draw the same masks and store them to their preprocessing
// files.
func (in *PrepInput[T]) Exchange() error {
	e := in.proto
	codeLocation(e.opts, e.log)
	if e.opts.VerboseAstra {
		for i := 0; i < 3; i++ {
			e.log.Debugf("astra input from %d exchange %d", i,
				in.nInputs[i])
		}
	}

	p := e.Player()
	for i := range in.results {
		in.results[i].clear()
	}

	if p.MyNum() == 0 {
		for i := 0; i < 2; i++ {
			n := in.nInputs[i]
			in.results[1+i].reserve(n)
			for j := 0; j < n; j++ {
				var res share.Share[T]
				res[i] = prng.Get[T](e.prngs.Streams[i])
				in.results[1+i].push(res)
			}
		}
	} else {
		// The other online player.
		other := 0
		if p.MyNum() == 1 {
			other = 1
		}
		offset := 1
		if p.MyNum() == 2 {
			offset = 2
		}
		for j := 0; j < in.nInputs[other]; j++ {
			in.results[offset].push(share.Share[T]{})
		}

		// My inputs.
		myNum := p.MyNum() - 1
		n := in.nInputs[myNum]
		buffer.ReserveElems[T](&in.prepOS, n)
		in.results[0].reserve(n)
		for j := 0; j < n; j++ {
			gamma := prng.Get[T](e.prngs.Streams[other])
			buffer.StoreElem(&in.prepOS, gamma)
			var res share.Share[T]
			res[1] = gamma
			in.results[0].push(res)
		}
	}

	if err := e.store(&in.prepOS); err != nil {
		return err
	}

	for i := range in.results {
		in.results[i].reset()
	}
	return nil
}

// Finalize returns the next mask share of the argument online
// player's inputs.
func (in *PrepInput[T]) Finalize(player int) (share.Share[T], error) {
	myNum := in.proto.Player().MyNum()
	return in.FinalizeOffset((player - (myNum - 1) + 3) % 3)
}

// FinalizeOffset returns the next mask share of the player the
// argument offset positions from this party.
func (in *PrepInput[T]) FinalizeOffset(offset int) (share.Share[T], error) {
	return in.results[offset].nextItem(), nil
}
