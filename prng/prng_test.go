//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prng

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/ring"
)

func TestStreamDeterminism(t *testing.T) {
	seed := make([]byte, SeedSize)
	seed[0] = 42

	a, err := NewStream(seed)
	require.NoError(t, err)
	b, err := NewStream(seed)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		require.Equal(t, Get[ring.Z64](a), Get[ring.Z64](b))
	}
}

func TestGetPartial(t *testing.T) {
	a, err := NewRandomStream()
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		v := GetPartial[ring.Z64](a, 8)
		require.Less(t, v.Uint64(), uint64(256))
	}
}

func TestPairBootstrap(t *testing.T) {
	players := p2p.LocalPlayers(3)
	log := zap.NewNop().Sugar()

	pairs := make([]*Pair, 3)
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func(i int) {
			var err error
			pairs[i], err = NewPair(players[i], log)
			errs <- err
		}(i)
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, <-errs)
	}

	// P_i's Streams[0] shares its seed with P_{i+1}'s Streams[1].
	for i := 0; i < 3; i++ {
		next := (i + 1) % 3
		require.Equal(t, pairs[i].Streams[0].Seed(),
			pairs[next].Streams[1].Seed())
		require.Equal(t,
			Get[ring.Z64](pairs[i].Streams[0]),
			Get[ring.Z64](pairs[next].Streams[1]))
	}
}
