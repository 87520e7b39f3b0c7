//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const dialRetryDelay = 5 * time.Second

// NewNetwork connects a full mesh of n players over TCP and returns
// the local player. The addrs argument lists the listen addresses of
// all players; id is the local player number. A player dials the peers
// with higher IDs and accepts connections from the peers with lower
// IDs, retrying dials until the peer is up.
func NewNetwork(addrs []string, id, n int, log *zap.SugaredLogger) (
	*Player, error) {

	if n < 2 || n > NumPlayers || id < 0 || id >= n || len(addrs) < n {
		return nil, errors.Errorf("invalid network: %d players, id %d",
			n, id)
	}

	listener, err := net.Listen("tcp", addrs[id])
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	var conns [NumPlayers]*Conn

	for peer := id + 1; peer < n; peer++ {
		for {
			log.Debugf("%d: connecting to peer %d at %s", id, peer,
				addrs[peer])
			nc, err := net.Dial("tcp", addrs[peer])
			if err != nil {
				log.Debugf("%d: connect to %s failed, retrying in %s",
					id, addrs[peer], dialRetryDelay)
				time.Sleep(dialRetryDelay)
				continue
			}
			if _, err := nc.Write([]byte{byte(id)}); err != nil {
				nc.Close()
				return nil, err
			}
			conns[peer] = NewConn(nc)
			break
		}
	}

	for peer := 0; peer < id; peer++ {
		nc, err := listener.Accept()
		if err != nil {
			return nil, err
		}
		var hdr [1]byte
		if _, err := nc.Read(hdr[:]); err != nil {
			nc.Close()
			return nil, err
		}
		from := int(hdr[0])
		if from >= id || conns[from] != nil {
			nc.Close()
			return nil, errors.Errorf("unexpected connection from %d",
				from)
		}
		conns[from] = NewConn(nc)
	}

	log.Debugf("%d: all %d peers connected", id, n-1)

	return NewPlayer(id, n, conns), nil
}
