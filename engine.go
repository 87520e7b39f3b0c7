//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"go.uber.org/zap"

	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// Fixed party roles of the truncation protocol.
const (
	genPlayer  = 0
	compPlayer = 1
)

// state implements the multiplication state machine.
type state int

const (
	stateIdle state = iota
	stateCollecting
	stateExchanging
	stateFinalizing
)

// Protocol defines the operations all four protocol engines implement.
// The multiplication engine is a state machine: InitMul moves it to
// collecting, Exchange performs exactly one network round and moves it
// to finalizing, and the finalize calls pop results in the order the
// operations were queued.
type Protocol[T ring.Elem[T]] interface {
	// Player returns the engine's network player.
	Player() *p2p.Player

	// MyNum returns the party's protocol number.
	MyNum() int

	// Funcs returns the variant function table.
	Funcs() share.Funcs[T]

	// InitMul initializes a multiplication round.
	InitMul() error

	// PrepareMul queues one product.
	PrepareMul(x, y share.Share[T])

	// PrepareMulFast queues one product, hinting that the
	// implementation may skip a reshare step.
	PrepareMulFast(x, y share.Share[T])

	// InitDotprod initializes a dot product round.
	InitDotprod() error

	// PrepareDotprod adds an operand pair to the current dot product.
	PrepareDotprod(x, y share.Share[T])

	// NextDotprod finishes the current dot product.
	NextDotprod()

	// Exchange runs the multiplication protocol round.
	Exchange() error

	// FinalizeMul returns the next multiplication result.
	FinalizeMul() share.Share[T]

	// FinalizeDotprod returns the next dot product result.
	FinalizeDotprod(length int) share.Share[T]

	// GetRandom returns the next secret random share.
	GetRandom() (share.Share[T], error)

	// RandomShares fills dest with secret random shares of nBits-bit
	// values.
	RandomShares(dest []share.Share[T], nBits int) error

	// Check runs the multiplication check hook. It is a no-op in the
	// semi-honest setting.
	Check() error
}

// base implements the state shared by all protocol engines.
type base[T ring.Elem[T]] struct {
	p     *p2p.Player
	opts  *Options
	log   *zap.SugaredLogger
	funcs share.Funcs[T]

	// num is the party's protocol number. The online parties are
	// numbered 1 and 2; party 0 exists only in the offline phase.
	num int

	// tag names the preprocessing storage location of this domain.
	tag    string
	thread int
	suffix string

	state      state
	inputs     []T
	inputPairs [][2]share.Share[T]
	results    iterVec[share.Share[T]]
	nMults     int

	// genValues carries the generator party's values through the
	// small-gap truncation round.
	genValues iterVec[share.Share[T]]

	rounds         int
	truncRounds    int
	counter        int
	dotCounter     int
	truncPrCounter int
}

// Player returns the engine's network player.
func (b *base[T]) Player() *p2p.Player {
	return b.p
}

// MyNum returns the party's protocol number.
func (b *base[T]) MyNum() int {
	return b.num
}

// Funcs returns the variant function table.
func (b *base[T]) Funcs() share.Funcs[T] {
	return b.funcs
}

// Rounds returns the number of multiplication rounds run.
func (b *base[T]) Rounds() int {
	return b.rounds
}

// SetSuffix names the engine instance. The suffix selects the
// preprocessing files so that multiple engines can share a thread.
func (b *base[T]) SetSuffix(suffix string) {
	b.suffix = "-" + suffix
}

func (b *base[T]) options() *Options {
	return b.opts
}

func (b *base[T]) debug(format string, args ...interface{}) {
	if b.opts.VerboseAstra {
		b.log.Debugf(format, args...)
	}
}

func (b *base[T]) initMul() {
	b.inputPairs = b.inputPairs[:0]
	b.inputs = b.inputs[:0]
	b.results.clear()
	b.nMults = 0
	b.state = stateCollecting
}

// PrepareMul queues one product.
func (b *base[T]) PrepareMul(x, y share.Share[T]) {
	b.inputPairs = append(b.inputPairs, [2]share.Share[T]{x, y})
}

// PrepareMulFast queues one product. The engine has no reshare step to
// skip; the fast path exists only in the replicated protocol layer.
func (b *base[T]) PrepareMulFast(x, y share.Share[T]) {
	b.PrepareMul(x, y)
}

// PrepareDotprod adds an operand pair to the current dot product.
func (b *base[T]) PrepareDotprod(x, y share.Share[T]) {
	b.PrepareMul(x, y)
}

// NextDotprod flushes the accumulated local products of the pending
// pairs into the inputs list as a single pseudo-input.
func (b *base[T]) NextDotprod() {
	var sum T
	mul := b.funcs.LocalMul[b.num]
	for _, pair := range b.inputPairs {
		sum = sum.Add(mul(pair[0], pair[1]))
	}
	b.inputs = append(b.inputs, sum)
	b.nMults++
	b.dotCounter++
	b.inputPairs = b.inputPairs[:0]
}

// numMults returns the number of results the pending round produces.
func (b *base[T]) numMults() int {
	return len(b.inputs) + len(b.inputPairs)
}

// Check runs the multiplication check hook. Semi-honest security has
// nothing to verify.
func (b *base[T]) Check() error {
	return nil
}

func (b *base[T]) maybeCheck() error {
	if b.opts.AlwaysCheck {
		return b.Check()
	}
	return nil
}
