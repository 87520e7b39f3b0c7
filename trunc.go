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

// TruncPrTuple describes one probabilistic truncation: the shares at
// SourceBase are right-shifted by M bits with an unbiased rounding
// correction and placed at DestBase. K is the cleartext bit width of
// the values.
type TruncPrTuple struct {
	DestBase   int
	SourceBase int
	K          int
	M          int
}

// check validates the tuple for the argument ring width.
func (t TruncPrTuple) check(nBits int) error {
	if t.K <= 0 || t.M <= 0 || t.M >= t.K || t.K > nBits {
		return errors.Errorf("invalid truncation: k=%d, m=%d",
			t.K, t.M)
	}
	return nil
}

// bigGap tests if the tuple is in the big-gap regime: the gap between
// the value width and the ring width covers the truncation error.
func (t TruncPrTuple) bigGap(opts *Options, nBits int) bool {
	return t.K <= nBits-opts.TruncError
}

// addBefore returns 2^{k-1}, the offset masking the sign of the
// value.
func addBefore[T ring.Elem[T]](t TruncPrTuple) T {
	return ring.Pow2[T](uint(t.K - 1))
}

// subtractAfter returns 2^{k-m-1}, the offset removed from the
// truncated value.
func subtractAfter[T ring.Elem[T]](t TruncPrTuple) T {
	return ring.Pow2[T](uint(t.K - t.M - 1))
}

// correctionShift shifts a wrap-correction bit to the position where
// it cancels the wrap of the truncated mask.
func correctionShift[T ring.Elem[T]](t TruncPrTuple, bit T) T {
	var zero T
	return bit.Lsh(uint(zero.NumBits() - t.M))
}

// truncProtocol is the engine interface the truncation rounds drive.
type truncProtocol[T ring.Elem[T]] interface {
	Protocol[T]
	reducedMul[T]

	initInput0(n int)
	exchangeInput0(n int) error
	finalizeInput0(n int) error
	preInput0(input T)
	postInput0() (share.Share[T], error)

	genVals() *iterVec[share.Share[T]]
	realShares() bool
	addTruncPr(n, rounds int)

	truncPrBigGap(infos []TruncPrTuple, S []share.Share[T],
		size int) error
}

func (b *base[T]) genVals() *iterVec[share.Share[T]] {
	return &b.genValues
}

func (b *base[T]) realShares() bool {
	return b.funcs.RealShares
}

func (b *base[T]) addTruncPr(n, rounds int) {
	b.truncPrCounter += n
	b.truncRounds += rounds
}

// splitGap splits the tuples into the big-gap and small-gap regimes.
func splitGap[T ring.Elem[T]](opts *Options, infos []TruncPrTuple) (
	big, small []TruncPrTuple, err error) {

	var zero T
	nBits := zero.NumBits()
	for _, info := range infos {
		if err := info.check(nBits); err != nil {
			return nil, nil, err
		}
		if info.bigGap(opts, nBits) {
			big = append(big, info)
		} else {
			small = append(small, info)
		}
	}
	return big, small, nil
}

// truncPr runs one batch of truncations, dispatching each tuple to
// its regime.
func truncPr[T ring.Elem[T]](e truncProtocol[T], opts *Options,
	infos []TruncPrTuple, S []share.Share[T], size int) error {

	big, small, err := splitGap[T](opts, infos)
	if err != nil {
		return err
	}
	if len(big) > 0 {
		if err := e.truncPrBigGap(big, S, size); err != nil {
			return err
		}
	}
	if len(small) > 0 {
		if err := truncPrSmallGap(e, small, S, size); err != nil {
			return err
		}
	}
	return nil
}

// TruncPr truncates the argument tuples over the online engine.
func (e *Engine[T]) TruncPr(infos []TruncPrTuple, S []share.Share[T],
	size int) error {
	return truncPr[T](e, e.opts, infos, S, size)
}

// TruncPr truncates the argument tuples over the online engine.
func (e *TrioEngine[T]) TruncPr(infos []TruncPrTuple,
	S []share.Share[T], size int) error {
	return truncPr[T](e, e.opts, infos, S, size)
}

// TruncPr truncates the argument tuples over the offline engine.
func (e *PrepEngine[T]) TruncPr(infos []TruncPrTuple,
	S []share.Share[T], size int) error {
	return truncPr[T](e, e.opts, infos, S, size)
}

// TruncPr truncates the argument tuples over the offline engine.
func (e *TrioPrepEngine[T]) TruncPr(infos []TruncPrTuple,
	S []share.Share[T], size int) error {
	return truncPr[T](e, e.opts, infos, S, size)
}

// truncPrBigGap implements the online big-gap regime: the party reads
// its shifted mask shares from the preprocessing file and shifts the
// common masked value locally.
func (e *onlineBase[T]) truncPrBigGap(infos []TruncPrTuple,
	S []share.Share[T], size int) error {

	codeLocation(e.opts, e.log)
	e.addTruncPr(len(infos)*size, 1)

	var cs buffer.Buffer
	if err := e.read(&cs); err != nil {
		return err
	}
	if !buffer.ElemsLeft[T](&cs, len(infos)*size) {
		return errors.New("insufficient data in trunc_pr")
	}

	for _, info := range infos {
		for i := 0; i < size; i++ {
			x := S[info.SourceBase+i]
			y := &S[info.DestBase+i]
			y[1] = buffer.GetElemNoCheck[T](&cs)
			e.funcs.SetCommonM(y,
				e.funcs.CommonM(x).Rsh(uint(info.M)))
		}
	}
	if cs.Left() > 0 {
		return errors.Errorf("unused data in %s", e.protoName())
	}
	return nil
}

// truncPrBigGap implements the offline big-gap regime. The generator
// splits the shifted mask between the online parties; the pure party
// draws its share from the stream it shares with the generator.
func (e *PrepEngine[T]) truncPrBigGap(infos []TruncPrTuple,
	S []share.Share[T], size int) error {

	codeLocation(e.opts, e.log)
	e.addTruncPr(len(infos)*size, 1)

	var cs buffer.Buffer
	myNum := e.p.MyNum()

	switch myNum {
	case genPlayer:
		for _, info := range infos {
			for i := 0; i < size; i++ {
				x := S[info.SourceBase+i]
				y := &S[info.DestBase+i]
				r := prng.Get[T](e.prngs.Streams[1])
				y[0] = x.Sum().Neg().SignedRsh(uint(info.M)).
					Neg().Sub(r)
				buffer.StoreElem(&cs, y[0])
				y[1] = r
			}
		}
		return e.p.SendTo(compPlayer, &cs)

	case compPlayer:
		if err := e.p.ReceivePlayer(genPlayer, &cs); err != nil {
			return err
		}
		var os buffer.Buffer
		for _, info := range infos {
			if !buffer.ElemsLeft[T](&cs, size) {
				return errors.New("insufficient data in trunc_pr")
			}
			for i := 0; i < size; i++ {
				y := &S[info.DestBase+i]
				y[1] = buffer.GetElemNoCheck[T](&cs)
				buffer.StoreElem(&os, y[1])
			}
		}
		return e.store(&os)

	default:
		for _, info := range infos {
			for i := 0; i < size; i++ {
				y := &S[info.DestBase+i]
				y[1] = prng.Get[T](e.prngs.Streams[0])
				buffer.StoreElem(&cs, y[1])
			}
		}
		return e.store(&cs)
	}
}

// truncPrSmallGap implements the small-gap regime: the generator
// masks and shares the shifted mask as a fresh input while a reduced
// multiplication of the two sign bits yields the wrap correction.
func truncPrSmallGap[T ring.Elem[T]](e truncProtocol[T],
	infos []TruncPrTuple, S []share.Share[T], size int) error {

	e.addTruncPr(len(infos)*size, 1)

	funcs := e.Funcs()
	myNum := e.MyNum()
	generate := myNum == genPlayer
	one := ring.One[T]()

	gen := e.genVals()
	gen.clear()
	gen.reset()

	if err := e.InitMul(); err != nil {
		return err
	}

	n := size * len(infos)
	if err := e.initReducedMul(n); err != nil {
		return err
	}
	e.initInput0(n)

	for _, info := range infos {
		for i := 0; i < size; i++ {
			y := S[info.SourceBase+i]

			var cPrime share.Share[T]
			var cMsb, rMsb T

			if generate && !e.realShares() {
				r := y.Sum().Add(addBefore[T](info)).Sub(one)
				rMsb = r.Msb()
				e.preInput0(r.Rsh(uint(info.M)))
			}
			if !generate && e.realShares() {
				c := funcs.CommonM(y)
				cPrime[0] = c.Rsh(uint(info.M))
				cMsb = c.Msb()
			}

			rDprime, cDprime, prod := e.preReducedMul(rMsb, cMsb)

			x := cPrime.Add(
				prod.Sub(rDprime.Add(cDprime)).
					Lsh(uint(one.NumBits() - info.M)))
			S[info.DestBase+i] = x
		}
	}

	if err := e.exchangeReducedMul(n); err != nil {
		return err
	}
	if err := e.exchangeInput0(n); err != nil {
		return err
	}

	for _, info := range infos {
		sub := funcs.Constant(subtractAfter[T](info).Sub(one), myNum)
		for i := 0; i < size; i++ {
			x := &S[info.DestBase+i]
			rPrime, err := e.postInput0()
			if err != nil {
				return err
			}
			_, second := e.postReducedMul()
			*x = x.Add(rPrime).Sub(sub)
			x[0] = x[0].Add(correctionShift(info, second))
		}
	}

	return e.finalizeInput0(n)
}
