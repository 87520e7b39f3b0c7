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

// Input implements the replicated input protocol. The owner draws the
// component it shares with its left neighbor from the correlated
// streams and sends the remaining component to its right neighbor in
// one message.
type Input[T ring.Elem[T]] struct {
	b       *Base
	counts  [3]int
	mine    []T
	sendOS  buffer.Buffer
	results [3]iterVec[share.Share[T]]
}

type iterVec[T any] struct {
	items []T
	next  int
}

func (v *iterVec[T]) clear() {
	v.items = v.items[:0]
	v.next = 0
}

func (v *iterVec[T]) push(item T) {
	v.items = append(v.items, item)
}

func (v *iterVec[T]) nextItem() T {
	item := v.items[v.next]
	v.next++
	return item
}

// NewInput creates a new input protocol instance over the argument
// base.
func NewInput[T ring.Elem[T]](b *Base) *Input[T] {
	return &Input[T]{
		b: b,
	}
}

// Reset clears the pending inputs of the argument player.
func (in *Input[T]) Reset(player int) {
	if player == in.b.P.MyNum() {
		in.mine = in.mine[:0]
		in.sendOS.ResetWriteHead()
	}
	in.counts[player] = 0
	in.results[(player-in.b.P.MyNum()+3)%3].clear()
}

// ResetAll clears the pending inputs of all players.
func (in *Input[T]) ResetAll() {
	for i := 0; i < 3; i++ {
		in.Reset(i)
	}
}

// AddMine queues the party's own cleartext input.
func (in *Input[T]) AddMine(input T) {
	in.mine = append(in.mine, input)
	in.counts[in.b.P.MyNum()]++
}

// AddOther marks a pending input from the argument player.
func (in *Input[T]) AddOther(player int) {
	in.counts[player]++
}

// Exchange runs the input protocol round.
func (in *Input[T]) Exchange() error {
	me := in.b.P.MyNum()

	for owner := 0; owner < 3; owner++ {
		if in.counts[owner] == 0 {
			continue
		}
		switch {
		case owner == me:
			buffer.ReserveElems[T](&in.sendOS, len(in.mine))
			for _, x := range in.mine {
				r := prng.Get[T](in.b.Prngs.Streams[1])
				vo := x.Sub(r)
				in.results[0].push(share.Share[T]{vo, r})
				buffer.StoreElem(&in.sendOS, vo)
			}
			if err := in.b.P.SendTo((me+1)%3, &in.sendOS); err != nil {
				return err
			}

		case me == (owner+1)%3:
			var recv buffer.Buffer
			if err := in.b.P.ReceivePlayer(owner, &recv); err != nil {
				return err
			}
			if !buffer.ElemsLeft[T](&recv, in.counts[owner]) {
				return errors.New(
					"insufficient information received in Rep3")
			}
			for j := 0; j < in.counts[owner]; j++ {
				var res share.Share[T]
				res[1] = buffer.GetElemNoCheck[T](&recv)
				in.results[(owner-me+3)%3].push(res)
			}

		default:
			// The owner's left neighbor draws its component from
			// the shared stream.
			for j := 0; j < in.counts[owner]; j++ {
				var res share.Share[T]
				res[0] = prng.Get[T](in.b.Prngs.Streams[0])
				in.results[(owner-me+3)%3].push(res)
			}
		}
	}
	return nil
}

// Finalize returns the next share of the argument player's inputs.
func (in *Input[T]) Finalize(player int) (share.Share[T], error) {
	return in.FinalizeOffset(player - in.b.P.MyNum())
}

// FinalizeOffset returns the next share of the player the argument
// offset positions from this party.
func (in *Input[T]) FinalizeOffset(offset int) (share.Share[T], error) {
	return in.results[(offset+3)%3].nextItem(), nil
}
