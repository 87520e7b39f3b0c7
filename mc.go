//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// Opener implements public reconstruction of shares. Each party
// prepares a per-party summand and the opener sums the summands
// across parties in one all-to-all pass, batching all pending secrets
// into a single round.
type Opener[T ring.Elem[T]] struct {
	kind    share.Kind
	secrets []share.Share[T]
	values  iterVec[T]
}

// NewOpener creates a new opener for the argument variant.
func NewOpener[T ring.Elem[T]](kind share.Kind) *Opener[T] {
	if kind.Prep() {
		panic("should not be called")
	}
	return &Opener[T]{
		kind: kind,
	}
}

// InitOpen initializes an opening round.
func (mc *Opener[T]) InitOpen(n int) {
	mc.secrets = mc.secrets[:0]
	mc.values.clear()
	mc.values.reserve(n)
}

// PrepareOpen queues a share for opening.
func (mc *Opener[T]) PrepareOpen(secret share.Share[T]) {
	mc.secrets = append(mc.secrets, secret)
}

// prepareSummand returns the party's additive contribution to the
// cleartext value.
func (mc *Opener[T]) prepareSummand(secret share.Share[T], myNum int) T {
	if mc.kind == share.KindTrio {
		return secret[myNum-1]
	}
	if myNum == 1 {
		// m - lambda
		return secret[0].Add(secret[1])
	}
	// -lambda
	return secret[1]
}

// Exchange sums the summands across parties in one all-to-all pass.
func (mc *Opener[T]) Exchange(p *p2p.Player) error {
	myNum := p.MyNum() + 1

	var os buffer.Buffer
	buffer.ReserveElems[T](&os, len(mc.secrets))
	sums := make([]T, len(mc.secrets))
	for i, secret := range mc.secrets {
		sums[i] = mc.prepareSummand(secret, myNum)
		buffer.StoreElem(&os, sums[i])
	}

	var recv buffer.Buffer
	for peer := 0; peer < p.NumPlayers(); peer++ {
		if peer == p.MyNum() {
			continue
		}
		os.ResetReadHead()
		if err := p.Exchange(peer, &os, &recv); err != nil {
			return err
		}
		if !buffer.ElemsLeft[T](&recv, len(mc.secrets)) {
			return errors.New("insufficient data in opening")
		}
		for i := range sums {
			sums[i] = sums[i].Add(buffer.GetElemNoCheck[T](&recv))
		}
	}

	for _, sum := range sums {
		mc.values.push(sum)
	}
	return nil
}

// FinalizeOpen returns the next opened value.
func (mc *Opener[T]) FinalizeOpen() T {
	return mc.values.nextItem()
}

// Check runs the opening check hook. Semi-honest security has nothing
// to verify.
func (mc *Opener[T]) Check() error {
	return nil
}

// Open opens the argument shares in one round.
func (mc *Opener[T]) Open(p *p2p.Player, secrets []share.Share[T]) (
	[]T, error) {

	mc.InitOpen(len(secrets))
	for _, secret := range secrets {
		mc.PrepareOpen(secret)
	}
	if err := mc.Exchange(p); err != nil {
		return nil, err
	}
	values := make([]T, len(secrets))
	for i := range values {
		values[i] = mc.FinalizeOpen()
	}
	return values, nil
}
