//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/rep3"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// Unsplit composes Boolean-shared bits into arithmetic shares. The
// source vector packs up to ring.BitVecBits bits per element starting
// at sourceBase. With one destination start, the bits become
// arithmetic shares of their values; with two starts, the first
// destination receives the arithmetic share of the mask bit and the
// second the raw masked-bit slot.
func (e *Engine[T]) Unsplit(dest []share.Share[T], starts []int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	if len(starts) == 1 {
		return e.unsplit1(dest, starts[0], source, sourceBase, nBits)
	}
	return e.unsplit2(dest, starts, source, sourceBase, nBits)
}

// Unsplit composes Boolean-shared bits into arithmetic shares.
func (e *TrioEngine[T]) Unsplit(dest []share.Share[T], starts []int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	if len(starts) == 1 {
		return e.unsplit1(dest, starts[0], source, sourceBase, nBits)
	}
	return e.unsplit2(dest, starts, source, sourceBase, nBits)
}

// unsplit2 implements the two-destination pattern on the online side:
// the arithmetic shares come from the preprocessing file and the raw
// masked bits from the source slots.
func (e *onlineBase[T]) unsplit2(dest []share.Share[T], starts []int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	codeLocation(e.opts, e.log)
	if len(starts) != 2 {
		return errors.New("number of split summands not implemented")
	}
	unit := ring.BitVecBits
	bitFuncs := share.Table[ring.BitVec](e.funcs.Kind)
	myNum := e.p.MyNum()

	var os buffer.Buffer
	if err := e.read(&os); err != nil {
		return err
	}
	if os.Left() < nBits*share.Size[T]() {
		return errors.Errorf("insufficient data in %s", e.protoName())
	}

	for i := 0; i*unit < nBits; i++ {
		// The conversion is symmetric in binary.
		x := bitFuncs.FromRep3(source[sourceBase+i], myNum)
		left := nBits - i*unit
		if left > unit {
			left = unit
		}
		for j := 0; j < left; j++ {
			y := &dest[starts[0]+i*unit+j]
			y.UnpackNoCheck(&os)
			*y = e.funcs.FromRep3(*y, myNum)
			dest[starts[1]+i*unit+j][0] =
				ring.FromUint64[T](uint64(x[0].Bit(uint(j))))
		}
	}
	return nil
}

// unsplit1 implements the single-destination pattern on the online
// side: a reduced multiplication composes the generator and online
// halves of each bit into a + b - 2ab.
func (e *Engine[T]) unsplit1(dest []share.Share[T], start int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	codeLocation(e.opts, e.log)
	bitFuncs := share.Table[ring.BitVec](e.funcs.Kind)
	two := ring.FromUint64[T](2)
	var zero T

	if err := e.initReducedMul(nBits); err != nil {
		return err
	}

	done := 0
	for i := 0; done < nBits; i++ {
		x := source[sourceBase+i]
		m := bitFuncs.CommonM(x)
		for j := 0; j < ring.BitVecBits && done < nBits; j++ {
			bb := ring.FromUint64[T](uint64(m.Bit(uint(j))))
			a, b, c := e.preReducedMul(zero, bb)
			*e.results.back() = a.Add(b).Sub(c.MulClear(two))
			done++
		}
	}

	if err := e.exchangeReducedMul(nBits); err != nil {
		return err
	}

	for j := 0; j < nBits; j++ {
		res, second := e.postReducedMul()
		res[0] = res[0].Sub(second.Mul(two))
		dest[start+j] = res
	}

	if e.recvOS.Left() > 0 || e.osPrep.Left() > 0 {
		return errors.New("unused data in Astra")
	}
	return nil
}

// unsplit1 implements the single-destination pattern for variant T.
func (e *TrioEngine[T]) unsplit1(dest []share.Share[T], start int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	codeLocation(e.opts, e.log)
	bitFuncs := share.Table[ring.BitVec](e.funcs.Kind)
	two := ring.FromUint64[T](2)
	var zero T

	if err := e.initReducedMul(nBits); err != nil {
		return err
	}

	done := 0
	for i := 0; done < nBits; i++ {
		x := source[sourceBase+i]
		m := bitFuncs.CommonM(x)
		for j := 0; j < ring.BitVecBits && done < nBits; j++ {
			bb := ring.FromUint64[T](uint64(m.Bit(uint(j))))
			a, b, c := e.preReducedMul(zero, bb)
			e.tuples.back().z = a.Add(b).Sub(c.MulClear(two))
			done++
		}
	}

	if err := e.exchangeReducedMul(nBits); err != nil {
		return err
	}

	for j := 0; j < nBits; j++ {
		res, second := e.postReducedMul()
		res[0] = res[0].Sub(second.Mul(two))
		dest[start+j] = res
	}

	if e.os[1].Left() > 0 || e.prepOS.Left() > 0 {
		return errors.New("unused data in Trio")
	}
	return nil
}

// Unsplit produces the offline correlations for the online unsplit.
func (e *PrepEngine[T]) Unsplit(dest []share.Share[T], starts []int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	if len(starts) == 1 {
		return e.unsplit1(dest, starts[0], source, sourceBase, nBits)
	}
	return e.unsplit2(dest, starts, source, sourceBase, nBits)
}

// Unsplit produces the offline correlations for the online unsplit.
func (e *TrioPrepEngine[T]) Unsplit(dest []share.Share[T], starts []int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	if len(starts) == 1 {
		return e.unsplit1(dest, starts[0], source, sourceBase, nBits)
	}
	return e.unsplit2(dest, starts, source, sourceBase, nBits)
}

// unsplit2 implements the two-destination pattern on the offline
// side: party 0 inputs its mask bits through the replicated input
// protocol and every party re-encodes and stores the resulting
// shares.
func (e *PrepEngine[T]) unsplit2(dest []share.Share[T], starts []int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	codeLocation(e.opts, e.log)
	if len(starts) != 2 {
		return errors.New("number of split summands not implemented")
	}
	unit := ring.BitVecBits
	p := e.p

	if e.unsplitInput == nil {
		// The helper input runs over its own correlated streams so
		// that its draws do not skew the engine's streams.
		base, err := rep3.NewBase(p, e.log)
		if err != nil {
			return err
		}
		e.unsplitInput = rep3.NewInput[T](base)
	}
	input := e.unsplitInput
	input.ResetAll()

	if p.MyNum() == 0 {
		done := 0
		for i := 0; done < nBits; i++ {
			x := source[sourceBase+i].Sum()
			for j := 0; j < unit && done < nBits; j++ {
				input.AddMine(
					ring.FromUint64[T](uint64(x.Bit(uint(j)))))
				done++
			}
		}
	} else {
		for i := 0; i < nBits; i++ {
			input.AddOther(0)
		}
	}

	if err := input.Exchange(); err != nil {
		return err
	}

	e.os.ResetWriteHead()
	e.os.Reserve(nBits * share.Size[T]())

	myNum := p.MyNum()
	for j := 0; j < nBits; j++ {
		res, err := input.FinalizeOffset(-myNum)
		if err != nil {
			return err
		}
		x := e.funcs.FromRep3(res, myNum)
		dest[starts[0]+j] = x
		x.Pack(&e.os)
		dest[starts[1]+j] = share.Share[T]{}
	}

	return e.store(&e.os)
}

// unsplit1 implements the single-destination pattern on the offline
// side.
func (e *PrepEngine[T]) unsplit1(dest []share.Share[T], start int,
	source []share.Share[ring.BitVec], sourceBase, nBits int) error {

	codeLocation(e.opts, e.log)
	two := ring.FromUint64[T](2)
	var zero T

	if err := e.initReducedMul(nBits); err != nil {
		return err
	}

	switch e.p.MyNum() {
	case 0:
		done := 0
		for i := 0; done < nBits; i++ {
			x := source[sourceBase+i].Sum()
			for j := 0; j < ring.BitVecBits && done < nBits; j++ {
				aa := ring.FromUint64[T](uint64(x.Bit(uint(j))))
				a, _, c := e.preReducedMul(aa, zero)
				dest[start+done] = a.Sub(c.MulClear(two))
				done++
			}
		}

	default:
		for j := 0; j < nBits; j++ {
			a, _, c := e.preReducedMul(zero, zero)
			var x share.Share[T]
			x[1] = a[1].Sub(c[1].Mul(two))
			dest[start+j] = x
		}
	}

	return e.exchangeReducedMul(nBits)
}
