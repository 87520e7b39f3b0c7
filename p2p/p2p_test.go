//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/astra/buffer"
)

func TestSendReceive(t *testing.T) {
	players := LocalPlayers(3)

	done := make(chan error, 1)
	go func() {
		var b buffer.Buffer
		b.Append([]byte("hello"))
		done <- players[0].SendTo(1, &b)
	}()

	var b buffer.Buffer
	require.NoError(t, players[1].ReceivePlayer(0, &b))
	require.NoError(t, <-done)
	require.Equal(t, []byte("hello"), b.Data())

	for _, p := range players {
		p.Close()
	}
}

func TestPassAround(t *testing.T) {
	players := LocalPlayers(3)

	recv := make([]byte, 3)
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func(i int) {
			var send, r buffer.Buffer
			send.StoreByte(byte(i))
			if err := players[i].PassAround(&send, &r, 1); err != nil {
				errs <- err
				return
			}
			v, err := r.GetByte()
			recv[i] = v
			errs <- err
		}(i)
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, <-errs)
	}

	// Every party receives from its left neighbor.
	for i := 0; i < 3; i++ {
		require.Equal(t, byte((i+2)%3), recv[i])
	}

	for _, p := range players {
		p.Close()
	}
}

func TestExchange(t *testing.T) {
	players := LocalPlayers(2)

	recv := make([]byte, 2)
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			var send, r buffer.Buffer
			send.StoreByte(byte(0x10 + i))
			if err := players[i].Exchange(1-i, &send, &r); err != nil {
				errs <- err
				return
			}
			v, err := r.GetByte()
			recv[i] = v
			errs <- err
		}(i)
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
	}
	require.Equal(t, byte(0x11), recv[0])
	require.Equal(t, byte(0x10), recv[1])

	for _, p := range players {
		p.Close()
	}
}

func TestCommStats(t *testing.T) {
	players := LocalPlayers(2)

	players[0].AddComm("Preprocessing transmission", 100)
	players[0].AddComm("Preprocessing transmission", 50)

	comm := players[0].Comm()
	require.Equal(t, uint64(150), comm["Preprocessing transmission"].Data)
	require.Equal(t, uint64(2), comm["Preprocessing transmission"].Rounds)

	for _, p := range players {
		p.Close()
	}
}
