//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/rep3"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

// DaBit is a pair of an arithmetic and a Boolean sharing of the same
// uniform bit.
type DaBit[T ring.Elem[T]] struct {
	A share.Share[T]
	B share.Share[ring.BitVec]
}

// EdaBit is an arithmetic sharing of a value together with the
// Boolean sharings of its bits.
type EdaBit[T ring.Elem[T]] struct {
	A share.Share[T]
	B []share.Share[ring.BitVec]
}

// Facility implements the preprocessing buffers feeding the
// high-level operations: random bits, daBits, and edaBits. The same
// facility runs over the online and offline engines; the two phases
// mirror each other's schedules so that the offline run produces
// exactly the correlations the online run consumes.
type Facility[T ring.Elem[T]] struct {
	opts     *Options
	log      *zap.SugaredLogger
	proto    Protocol[T]
	input    InputProtocol[T]
	bitInput InputProtocol[ring.BitVec]

	// myInputNum is the party's online player number, -1 for the
	// prep-only party.
	myInputNum int

	// prepSide facilities store generated batches; online ones read
	// them.
	read  func(*buffer.Buffer) error
	store func(*buffer.Buffer) error

	r3     *rep3.Base
	r3Mult *rep3.Multiplier[T]

	bits    []share.Share[T]
	dabits  []DaBit[T]
	edabits map[int][]EdaBit[T]
}

// NewFacility creates the preprocessing facility of an online engine
// of variant A.
func NewFacility[T ring.Elem[T]](e *Engine[T],
	bit *Engine[ring.BitVec]) *Facility[T] {

	return &Facility[T]{
		opts:       e.opts,
		log:        e.log,
		proto:      e,
		input:      NewInput(e),
		bitInput:   NewInput(bit),
		myInputNum: e.p.MyNum(),
		read:       e.read,
		edabits:    make(map[int][]EdaBit[T]),
	}
}

// NewTrioFacility creates the preprocessing facility of an online
// engine of variant T.
func NewTrioFacility[T ring.Elem[T]](e *TrioEngine[T],
	bit *TrioEngine[ring.BitVec]) *Facility[T] {

	return &Facility[T]{
		opts:       e.opts,
		log:        e.log,
		proto:      e,
		input:      NewTrioInput(e),
		bitInput:   NewTrioInput(bit),
		myInputNum: e.p.MyNum(),
		read:       e.read,
		edabits:    make(map[int][]EdaBit[T]),
	}
}

// NewPrepFacility creates the preprocessing facility of an offline
// engine of variant A.
func NewPrepFacility[T ring.Elem[T]](e *PrepEngine[T],
	bit *PrepEngine[ring.BitVec]) *Facility[T] {

	return &Facility[T]{
		opts:       e.opts,
		log:        e.log,
		proto:      e,
		input:      NewPrepInput(e),
		bitInput:   NewPrepInput(bit),
		myInputNum: e.p.MyNum() - 1,
		store:      e.store,
		edabits:    make(map[int][]EdaBit[T]),
	}
}

// NewTrioPrepFacility creates the preprocessing facility of an
// offline engine of variant T.
func NewTrioPrepFacility[T ring.Elem[T]](e *TrioPrepEngine[T],
	bit *TrioPrepEngine[ring.BitVec]) *Facility[T] {

	return &Facility[T]{
		opts:       e.opts,
		log:        e.log,
		proto:      e,
		input:      NewPrepInput(&e.PrepEngine),
		bitInput:   NewPrepInput(&bit.PrepEngine),
		myInputNum: e.p.MyNum() - 1,
		store:      e.store,
		edabits:    make(map[int][]EdaBit[T]),
	}
}

// GetBit returns the next secret random bit share.
func (f *Facility[T]) GetBit() (share.Share[T], error) {
	if len(f.bits) == 0 {
		if err := f.bufferBits(f.batchSize()); err != nil {
			return share.Share[T]{}, err
		}
	}
	bit := f.bits[len(f.bits)-1]
	f.bits = f.bits[:len(f.bits)-1]
	return bit, nil
}

// GetDaBit returns the next daBit.
func (f *Facility[T]) GetDaBit() (DaBit[T], error) {
	if len(f.dabits) == 0 {
		if err := f.bufferDaBits(f.batchSize()); err != nil {
			return DaBit[T]{}, err
		}
	}
	dabit := f.dabits[len(f.dabits)-1]
	f.dabits = f.dabits[:len(f.dabits)-1]
	return dabit, nil
}

// GetEdaBit returns the next edaBit of the argument bit length.
func (f *Facility[T]) GetEdaBit(nBits int) (EdaBit[T], error) {
	if len(f.edabits[nBits]) == 0 {
		if err := f.bufferEdaBits(f.batchSize(), nBits); err != nil {
			return EdaBit[T]{}, err
		}
	}
	buf := f.edabits[nBits]
	edabit := buf[len(buf)-1]
	f.edabits[nBits] = buf[:len(buf)-1]
	return edabit, nil
}

// batchSize bounds the preprocessing batches: the bit vector unit
// keeps the replicated generator's batches aligned.
func (f *Facility[T]) batchSize() int {
	n := f.opts.BatchSize
	if n > ring.BitVecBits {
		n = ring.BitVecBits
	}
	if n < 1 {
		n = 1
	}
	return n
}

func randomBit() uint {
	var buf [1]byte
	rand.Read(buf[:])
	return uint(buf[0] & 1)
}

// bufferBits fills the random bit buffer: the online parties input
// fresh random bits and one multiplication composes their XOR.
func (f *Facility[T]) bufferBits(n int) error {
	if f.opts.VerboseAnd {
		f.log.Debugf("buffering %d bits", n)
	}
	shares, _, err := f.inputBits(n, false)
	if err != nil {
		return err
	}
	bits, err := f.xorShares(shares)
	if err != nil {
		return err
	}
	f.bits = append(f.bits, bits...)
	return nil
}

// inputBits queues n random bits from both online parties into the
// arithmetic and, optionally, the Boolean domain and returns the
// per-owner shares.
func (f *Facility[T]) inputBits(n int, withBool bool) (
	[2][]share.Share[T], [2][]share.Share[ring.BitVec], error) {

	var shares [2][]share.Share[T]
	var bools [2][]share.Share[ring.BitVec]

	mine := make([]uint, n)
	for j := range mine {
		mine[j] = randomBit()
	}

	f.input.ResetAll()
	for owner := 0; owner < 2; owner++ {
		for j := 0; j < n; j++ {
			if f.myInputNum == owner {
				f.input.AddMine(ring.FromUint64[T](uint64(mine[j])))
			} else {
				f.input.AddOther(owner)
			}
		}
	}
	if err := f.input.Exchange(); err != nil {
		return shares, bools, err
	}
	for owner := 0; owner < 2; owner++ {
		shares[owner] = make([]share.Share[T], n)
		for j := 0; j < n; j++ {
			res, err := f.input.Finalize(owner)
			if err != nil {
				return shares, bools, err
			}
			shares[owner][j] = res
		}
	}

	if !withBool {
		return shares, bools, nil
	}

	f.bitInput.ResetAll()
	for owner := 0; owner < 2; owner++ {
		for j := 0; j < n; j++ {
			if f.myInputNum == owner {
				f.bitInput.AddMine(ring.BitVec(mine[j]))
			} else {
				f.bitInput.AddOther(owner)
			}
		}
	}
	if err := f.bitInput.Exchange(); err != nil {
		return shares, bools, err
	}
	for owner := 0; owner < 2; owner++ {
		bools[owner] = make([]share.Share[ring.BitVec], n)
		for j := 0; j < n; j++ {
			res, err := f.bitInput.Finalize(owner)
			if err != nil {
				return shares, bools, err
			}
			bools[owner][j] = res
		}
	}
	return shares, bools, nil
}

// xorShares composes the XOR of the two owners' bit shares with one
// multiplication round: x + y - 2xy.
func (f *Facility[T]) xorShares(shares [2][]share.Share[T]) (
	[]share.Share[T], error) {

	if err := f.proto.InitMul(); err != nil {
		return nil, err
	}
	n := len(shares[0])
	for j := 0; j < n; j++ {
		f.proto.PrepareMul(shares[0][j], shares[1][j])
	}
	if err := f.proto.Exchange(); err != nil {
		return nil, err
	}
	two := ring.FromUint64[T](2)
	bits := make([]share.Share[T], n)
	for j := 0; j < n; j++ {
		prod := f.proto.FinalizeMul()
		bits[j] = shares[0][j].Add(shares[1][j]).
			Sub(prod.MulClear(two))
	}
	return bits, nil
}

// bufferDaBits fills the daBit buffer. Under rep3_prep the offline
// side generates the daBits with the replicated generator and
// re-encodes them; otherwise both sides build them from input and
// multiplication primitives.
func (f *Facility[T]) bufferDaBits(n int) error {
	if f.opts.Rep3Prep {
		return f.bufferDaBitsRep3(n)
	}
	shares, bools, err := f.inputBits(n, true)
	if err != nil {
		return err
	}
	bits, err := f.xorShares(shares)
	if err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		f.dabits = append(f.dabits, DaBit[T]{
			A: bits[j],
			B: bools[0][j].Add(bools[1][j]),
		})
	}
	return nil
}

func (f *Facility[T]) bufferDaBitsRep3(n int) error {
	if f.read != nil {
		// The online side reads the batch the offline run stored.
		var os buffer.Buffer
		if err := f.read(&os); err != nil {
			return err
		}
		count, err := os.GetUint64()
		if err != nil {
			return err
		}
		for i := 0; i < int(count); i++ {
			var dabit DaBit[T]
			if err := dabit.A.Unpack(&os); err != nil {
				return err
			}
			if err := dabit.B.Unpack(&os); err != nil {
				return err
			}
			f.dabits = append(f.dabits, dabit)
		}
		if os.Left() > 0 {
			return errors.New("unused data in daBit batch")
		}
		return nil
	}

	if f.r3 == nil {
		// The replicated generator runs over its own correlated
		// streams so that its draws do not skew the engine's
		// streams.
		r3, err := rep3.NewBase(f.proto.Player(), f.log)
		if err != nil {
			return err
		}
		f.r3 = r3
		f.r3Mult = rep3.NewMultiplier[T](f.r3)
	}
	raw, err := rep3.DaBits(f.r3, f.r3Mult, n)
	if err != nil {
		return err
	}

	funcs := f.proto.Funcs()
	bitFuncs := share.Table[ring.BitVec](funcs.Kind)
	myNum := f.proto.Player().MyNum()

	var os buffer.Buffer
	os.StoreUint64(uint64(len(raw)))
	for _, d := range raw {
		dabit := DaBit[T]{
			A: funcs.FromRep3(d.A, myNum),
			B: bitFuncs.FromRep3(d.B, myNum),
		}
		dabit.A.Pack(&os)
		dabit.B.Pack(&os)
		f.dabits = append(f.dabits, dabit)
	}
	return f.store(&os)
}

// bufferEdaBits fills the edaBit buffer of the argument bit length by
// composing daBits.
func (f *Facility[T]) bufferEdaBits(n, nBits int) error {
	for i := 0; i < n; i++ {
		edabit := EdaBit[T]{
			B: make([]share.Share[ring.BitVec], nBits),
		}
		for j := 0; j < nBits; j++ {
			dabit, err := f.GetDaBit()
			if err != nil {
				return err
			}
			edabit.A = edabit.A.Add(dabit.A.Lsh(uint(j)))
			edabit.B[j] = dabit.B
		}
		f.edabits[nBits] = append(f.edabits[nBits], edabit)
	}
	return nil
}
