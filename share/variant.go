//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"github.com/markkurossi/astra/ring"
)

// Kind identifies a protocol variant.
type Kind int

// Protocol variants.
const (
	KindAstra Kind = iota
	KindAstraPrep
	KindTrio
	KindTrioPrep
)

var kinds = map[Kind]string{
	KindAstra:     "astra",
	KindAstraPrep: "astra",
	KindTrio:      "trio",
	KindTrioPrep:  "trio",
}

func (k Kind) String() string {
	return kinds[k]
}

// Prep tests if the variant is an offline (preprocessing) variant.
func (k Kind) Prep() bool {
	return k == KindAstraPrep || k == KindTrioPrep
}

// Funcs implements the variant-specific share operations. The local
// multiplication kernels are indexed by the party's protocol number;
// they are the only per-party operation producing a ring element from
// a pair of shares, and their sum across parties yields the correction
// that the network round exchanges.
type Funcs[T ring.Elem[T]] struct {
	Kind Kind

	// LocalMul is indexed by the party's protocol number.
	LocalMul [3]func(x, y Share[T]) T

	// Constant creates a sharing of the cleartext c.
	Constant func(c T, myNum int) Share[T]

	// CommonM returns the masked-value component that is identical
	// across the online parties.
	CommonM func(x Share[T]) T

	// SetCommonM updates the share to carry the argument common m.
	SetCommonM func(x *Share[T], v T)

	// RepIndex maps a replicated slot index into this variant's slot
	// indexing for the argument party.
	RepIndex func(i, myNum int) int

	// FromRep3 re-encodes a replicated-secret-sharing pair into this
	// variant's slot layout.
	FromRep3 func(x Share[T], myNum int) Share[T]

	// ToRep3 re-encodes the share into a standard replicated pair.
	ToRep3 func(x Share[T], myNum int) Share[T]

	// SplitIndex maps a three-way replicated share at wire index
	// 0/1/2 into this variant's slot indexing.
	SplitIndex func(arithIndex, myNum int) int

	// MattersForSplit tests if wire index i contributes to the
	// argument party's split share.
	MattersForSplit func(i, myNum int) bool

	// RealShares tests if the variant carries real shares: the
	// offline variants produce correlations only.
	RealShares bool
}

// Astra returns the function table of the online variant A. Party 0 is
// absent after preprocessing; invoking its kernel is an error.
func Astra[T ring.Elem[T]]() Funcs[T] {
	return Funcs[T]{
		Kind: KindAstra,
		LocalMul: [3]func(x, y Share[T]) T{
			func(x, y Share[T]) T {
				panic("P0 should be absent")
			},
			astraLocalMulP1[T],
			func(x, y Share[T]) T {
				return x[0].Mul(y[0]).Add(astraLocalMulP1(x, y))
			},
		},
		Constant:        onlineConstant[T],
		CommonM:         func(x Share[T]) T { return x[0] },
		SetCommonM:      func(x *Share[T], v T) { x[0] = v },
		RepIndex:        identityIndex,
		FromRep3:        func(x Share[T], myNum int) Share[T] { return x },
		ToRep3:          func(x Share[T], myNum int) Share[T] { return x },
		SplitIndex:      astraSplitIndex,
		MattersForSplit: func(i, myNum int) bool { return true },
		RealShares:      true,
	}
}

// AstraPrep returns the function table of the offline variant A-Prep.
func AstraPrep[T ring.Elem[T]]() Funcs[T] {
	return Funcs[T]{
		Kind: KindAstraPrep,
		LocalMul: [3]func(x, y Share[T]) T{
			prepLocalMulSum[T],
			prepLocalMulSum[T],
			func(x, y Share[T]) T {
				var zero T
				return zero
			},
		},
		Constant: func(c T, myNum int) Share[T] {
			// Constants carry no mask offset.
			return Share[T]{}
		},
		CommonM: func(x Share[T]) T {
			panic("should not be called")
		},
		SetCommonM: func(x *Share[T], v T) {
			panic("should not be called")
		},
		RepIndex: prepRepIndex,
		FromRep3: func(x Share[T], myNum int) Share[T] {
			return Share[T]{
				x[prepRepIndex(0, myNum)],
				x[prepRepIndex(1, myNum)],
			}
		},
		ToRep3:          func(x Share[T], myNum int) Share[T] { return x },
		SplitIndex:      prepSplitIndex,
		MattersForSplit: prepMattersForSplit,
	}
}

// Trio returns the function table of the online variant T. The slot
// layout matches A-Prep at runtime but with the transformed common-m
// convention common_m = slot0 - slot1.
func Trio[T ring.Elem[T]]() Funcs[T] {
	return Funcs[T]{
		Kind: KindTrio,
		LocalMul: [3]func(x, y Share[T]) T{
			func(x, y Share[T]) T {
				panic("P0 should be absent")
			},
			func(x, y Share[T]) T {
				return x[0].Mul(y[1].Neg()).Add(y[0].Mul(x[1].Neg()))
			},
			func(x, y Share[T]) T {
				return x[0].Mul(y[0])
			},
		},
		Constant:   onlineConstant[T],
		CommonM:    func(x Share[T]) T { return x[0].Sub(x[1]) },
		SetCommonM: func(x *Share[T], v T) { x[0] = v.Add(x[1]) },
		RepIndex:   identityIndex,
		FromRep3: func(x Share[T], myNum int) Share[T] {
			return Share[T]{x[0].Add(x[1]), x[1]}
		},
		ToRep3: func(x Share[T], myNum int) Share[T] {
			return Share[T]{x[0].Sub(x[1]), x[1]}
		},
		SplitIndex:      astraSplitIndex,
		MattersForSplit: func(i, myNum int) bool { return true },
		RealShares:      true,
	}
}

// TrioPrep returns the function table of the offline variant T-Prep.
// Party 0 combines both slot differences; parties 1 and 2 are pure
// correlation producers.
func TrioPrep[T ring.Elem[T]]() Funcs[T] {
	zeroMul := func(x, y Share[T]) T {
		var zero T
		return zero
	}
	return Funcs[T]{
		Kind: KindTrioPrep,
		LocalMul: [3]func(x, y Share[T]) T{
			func(x, y Share[T]) T {
				return x[1].Mul(y[1]).
					Sub(x[0].Sub(x[1]).Mul(y[0].Sub(y[1])))
			},
			zeroMul,
			zeroMul,
		},
		Constant: func(c T, myNum int) Share[T] {
			return Share[T]{}
		},
		CommonM: func(x Share[T]) T {
			panic("should not be called")
		},
		SetCommonM: func(x *Share[T], v T) {
			panic("should not be called")
		},
		RepIndex: prepRepIndex,
		FromRep3: func(x Share[T], myNum int) Share[T] {
			res := Share[T]{
				x[prepRepIndex(0, myNum)],
				x[prepRepIndex(1, myNum)],
			}
			if myNum > 0 {
				res[0] = res[0].Add(res[1])
			}
			return res
		},
		ToRep3:          func(x Share[T], myNum int) Share[T] { return x },
		SplitIndex:      prepSplitIndex,
		MattersForSplit: prepMattersForSplit,
	}
}

// Table returns the function table of the argument variant.
func Table[T ring.Elem[T]](kind Kind) Funcs[T] {
	switch kind {
	case KindAstra:
		return Astra[T]()
	case KindAstraPrep:
		return AstraPrep[T]()
	case KindTrio:
		return Trio[T]()
	case KindTrioPrep:
		return TrioPrep[T]()
	default:
		panic("unknown share kind")
	}
}

func astraLocalMulP1[T ring.Elem[T]](x, y Share[T]) T {
	return x[0].Mul(y[1]).Add(y[0].Mul(x[1]))
}

func prepLocalMulSum[T ring.Elem[T]](x, y Share[T]) T {
	return x.Sum().Mul(y.Sum())
}

func onlineConstant[T ring.Elem[T]](c T, myNum int) Share[T] {
	var res Share[T]
	res[0] = c
	return res
}

func identityIndex(i, myNum int) int {
	return i
}

func prepRepIndex(i, myNum int) int {
	if myNum == 0 {
		return i
	}
	if i == 0 {
		// m
		return myNum - 1
	}
	// lambda
	return 2 - myNum
}

func astraSplitIndex(arithIndex, myNum int) int {
	switch arithIndex {
	case 0:
		// m
		return 0
	case 1:
		// my lambda
		return myNum + 1
	default:
		// other lambda
		return 2 - myNum
	}
}

func prepSplitIndex(arithIndex, myNum int) int {
	if myNum > 0 {
		return astraSplitIndex(arithIndex, myNum-1)
	}
	return (arithIndex + 1) % 3
}

func prepMattersForSplit(i, myNum int) bool {
	return myNum == 0 || i == 0
}
