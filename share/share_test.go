//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/astra/buffer"
	"github.com/markkurossi/astra/ring"
)

func TestShareOps(t *testing.T) {
	x := Share[ring.Z64]{3, 5}
	y := Share[ring.Z64]{10, 20}

	require.Equal(t, Share[ring.Z64]{13, 25}, x.Add(y))
	require.Equal(t, Share[ring.Z64]{7, 15}, y.Sub(x))
	require.Equal(t, Share[ring.Z64]{6, 10}, x.MulClear(2))
	require.Equal(t, ring.Z64(8), x.Sum())
	require.Equal(t, Share[ring.Z64]{}, x.Add(x.Neg()))
	require.Equal(t, Share[ring.Z64]{12, 20}, x.Lsh(2))
}

func TestSharePackUnpack(t *testing.T) {
	x := Share[ring.Z64]{0x1122334455667788, 42}

	var b buffer.Buffer
	x.Pack(&b)
	require.Equal(t, Size[ring.Z64](), b.Len())

	var y Share[ring.Z64]
	require.NoError(t, y.Unpack(&b))
	require.Equal(t, x, y)

	require.Error(t, y.Unpack(&b))
}

func TestConstants(t *testing.T) {
	for _, kind := range []Kind{KindAstra, KindTrio} {
		funcs := Table[ring.Z64](kind)
		for myNum := 0; myNum < 2; myNum++ {
			c := funcs.Constant(7, myNum)
			require.Equal(t, ring.Z64(7), funcs.CommonM(c))
			require.Equal(t, ring.Z64(0), c[1])
		}
	}
	for _, kind := range []Kind{KindAstraPrep, KindTrioPrep} {
		funcs := Table[ring.Z64](kind)
		require.Equal(t, Share[ring.Z64]{}, funcs.Constant(7, 0))
	}
}

func TestTrioCommonM(t *testing.T) {
	funcs := Trio[ring.Z64]()

	x := Share[ring.Z64]{10, 3}
	require.Equal(t, ring.Z64(7), funcs.CommonM(x))

	funcs.SetCommonM(&x, 100)
	require.Equal(t, ring.Z64(100), funcs.CommonM(x))
	require.Equal(t, ring.Z64(3), x[1])
}

func TestTrioRep3RoundTrip(t *testing.T) {
	funcs := Trio[ring.Z64]()

	x := Share[ring.Z64]{0x123456789, 0xabcdef}
	for myNum := 0; myNum < 3; myNum++ {
		require.Equal(t, x,
			funcs.FromRep3(funcs.ToRep3(x, myNum), myNum))
	}
}

func TestRepIndex(t *testing.T) {
	funcs := AstraPrep[ring.Z64]()

	// Party 0 keeps the replicated order; the online counterparts
	// map the masked value first.
	require.Equal(t, 0, funcs.RepIndex(0, 0))
	require.Equal(t, 1, funcs.RepIndex(1, 0))
	require.Equal(t, 0, funcs.RepIndex(0, 1))
	require.Equal(t, 1, funcs.RepIndex(1, 1))
	require.Equal(t, 1, funcs.RepIndex(0, 2))
	require.Equal(t, 0, funcs.RepIndex(1, 2))
}

func TestSplitIndex(t *testing.T) {
	astra := Astra[ring.Z64]()
	for myNum := 0; myNum < 2; myNum++ {
		require.Equal(t, 0, astra.SplitIndex(0, myNum))
		require.Equal(t, myNum+1, astra.SplitIndex(1, myNum))
		require.Equal(t, 2-myNum, astra.SplitIndex(2, myNum))
		require.True(t, astra.MattersForSplit(1, myNum))
	}

	prep := AstraPrep[ring.Z64]()
	require.Equal(t, 1, prep.SplitIndex(0, 0))
	require.Equal(t, 2, prep.SplitIndex(1, 0))
	require.Equal(t, 0, prep.SplitIndex(2, 0))
	require.True(t, prep.MattersForSplit(1, 0))
	require.True(t, prep.MattersForSplit(0, 1))
	require.False(t, prep.MattersForSplit(1, 1))
}

func TestPrepCommonMisuse(t *testing.T) {
	funcs := AstraPrep[ring.Z64]()
	require.PanicsWithValue(t, "should not be called", func() {
		funcs.CommonM(Share[ring.Z64]{})
	})
}
