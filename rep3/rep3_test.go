//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rep3

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/prng"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

func seededBases(t *testing.T, players []*p2p.Player, tag byte) []*Base {
	t.Helper()

	seeds := make([][]byte, 3)
	for i := 0; i < 3; i++ {
		seed := make([]byte, prng.SeedSize)
		seed[0] = tag
		seed[1] = byte(i)
		seeds[i] = seed
	}
	bases := make([]*Base, 3)
	for i := 0; i < 3; i++ {
		pair, err := prng.NewSeededPair(seeds[i], seeds[(i+2)%3])
		require.NoError(t, err)
		bases[i] = NewSeededBase(players[i], pair)
	}
	return bases
}

func runParties(t *testing.T, players []*p2p.Player,
	fn func(i int) error) {
	t.Helper()

	errs := make(chan error, len(players))
	for i := range players {
		go func(i int) {
			errs <- fn(i)
		}(i)
	}
	for range players {
		require.NoError(t, <-errs)
	}
}

func TestGetRandomConsistency(t *testing.T) {
	players := p2p.LocalPlayers(3)
	bases := seededBases(t, players, 1)

	shares := make([]share.Share[ring.Z64], 3)
	for i, b := range bases {
		shares[i] = GetRandom[ring.Z64](b)
	}
	// Replicated consistency: slot 1 of party i equals slot 0 of its
	// left neighbor.
	for i := 0; i < 3; i++ {
		require.Equal(t, shares[(i+2)%3][0], shares[i][1])
	}
	for _, p := range players {
		p.Close()
	}
}

func TestInputMulOpen(t *testing.T) {
	players := p2p.LocalPlayers(3)
	bases := seededBases(t, players, 2)

	results := make([]ring.Z64, 3)
	runParties(t, players, func(i int) error {
		b := bases[i]
		in := NewInput[ring.Z64](b)

		in.ResetAll()
		if i == 0 {
			in.AddMine(9)
		} else {
			in.AddOther(0)
		}
		if i == 1 {
			in.AddMine(7)
		} else {
			in.AddOther(1)
		}
		if err := in.Exchange(); err != nil {
			return err
		}
		x, err := in.Finalize(0)
		if err != nil {
			return err
		}
		y, err := in.Finalize(1)
		if err != nil {
			return err
		}

		m := NewMultiplier[ring.Z64](b)
		if err := m.InitMul(); err != nil {
			return err
		}
		m.PrepareMul(x, y)
		if err := m.Exchange(); err != nil {
			return err
		}
		z := m.FinalizeMul()

		values, err := Open(b, []share.Share[ring.Z64]{x, y, z})
		if err != nil {
			return err
		}
		if values[0] != 9 || values[1] != 7 {
			t.Errorf("inputs opened to %v, %v", values[0], values[1])
		}
		results[i] = values[2]
		return nil
	})

	for i := 0; i < 3; i++ {
		require.Equal(t, ring.Z64(63), results[i])
	}
	for _, p := range players {
		p.Close()
	}
}

func TestDaBits(t *testing.T) {
	players := p2p.LocalPlayers(3)
	bases := seededBases(t, players, 3)

	const n = 5
	arith := make([][]ring.Z64, 3)
	bools := make([][]ring.BitVec, 3)

	runParties(t, players, func(i int) error {
		b := bases[i]
		m := NewMultiplier[ring.Z64](b)
		dabits, err := DaBits(b, m, n)
		if err != nil {
			return err
		}
		var as []share.Share[ring.Z64]
		var bs []share.Share[ring.BitVec]
		for _, d := range dabits {
			as = append(as, d.A)
			bs = append(bs, d.B)
		}
		arith[i], err = Open(b, as)
		if err != nil {
			return err
		}
		bools[i], err = Open(b, bs)
		return err
	})

	for j := 0; j < n; j++ {
		require.Contains(t, []ring.Z64{0, 1}, arith[0][j])
		require.Equal(t, uint64(arith[0][j]), bools[0][j].Uint64())
	}
	for _, p := range players {
		p.Close()
	}
}
