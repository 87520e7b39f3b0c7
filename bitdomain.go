//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// The bit-domain engines run the same protocols over Boolean bit
// vectors. Each engine thread hosts at most one bit-domain instance
// per variant, guarded by the share thread registration.

package astra

import (
	"go.uber.org/zap"

	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/prng"
	"github.com/markkurossi/astra/ring"
)

// NewTrioBitEngine creates the bit-domain sibling of an online engine
// of variant T.
func NewTrioBitEngine(p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, st *ShareThread) (
	*TrioEngine[ring.BitVec], error) {

	e, err := NewTrioEngine[ring.BitVec](p, opts, log, st.Thread)
	if err != nil {
		return nil, err
	}
	e.tag = "trio-bit"
	return e, nil
}

// NewBitPrepEngine creates the bit-domain sibling of an offline
// engine of variant A.
func NewBitPrepEngine(p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, st *ShareThread) (
	*PrepEngine[ring.BitVec], error) {

	e, err := NewPrepEngine[ring.BitVec](p, opts, log, st.Thread)
	if err != nil {
		return nil, err
	}
	e.tag = "astra-bit"
	return e, nil
}

// NewSeededBitPrepEngine creates a bit-domain offline engine of
// variant A with explicit stream pairs.
func NewSeededBitPrepEngine(p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, st *ShareThread,
	prngs, prngsInput0 *prng.Pair) (*PrepEngine[ring.BitVec], error) {

	e, err := NewSeededPrepEngine[ring.BitVec](p, opts, log, st.Thread,
		prngs, prngsInput0)
	if err != nil {
		return nil, err
	}
	e.tag = "astra-bit"
	return e, nil
}

// NewTrioBitPrepEngine creates the bit-domain sibling of an offline
// engine of variant T.
func NewTrioBitPrepEngine(p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, st *ShareThread) (
	*TrioPrepEngine[ring.BitVec], error) {

	e, err := NewTrioPrepEngine[ring.BitVec](p, opts, log, st.Thread)
	if err != nil {
		return nil, err
	}
	e.tag = "trio-bit"
	return e, nil
}

// NewSeededTrioBitPrepEngine creates a bit-domain offline engine of
// variant T with explicit stream pairs.
func NewSeededTrioBitPrepEngine(p *p2p.Player, opts *Options,
	log *zap.SugaredLogger, st *ShareThread,
	prngs, prngsInput0 *prng.Pair) (*TrioPrepEngine[ring.BitVec], error) {

	e, err := NewSeededTrioPrepEngine[ring.BitVec](p, opts, log,
		st.Thread, prngs, prngsInput0)
	if err != nil {
		return nil, err
	}
	e.tag = "trio-bit"
	return e, nil
}
