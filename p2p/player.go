//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"
	"sync"

	"github.com/markkurossi/text/superscript"
	"github.com/pkg/errors"

	"github.com/markkurossi/astra/buffer"
)

// NumPlayers is the number of parties in the protocol family.
const NumPlayers = 3

// Player implements one of the protocol parties. The prep phase runs
// with three players; the online phase runs with two, party 0 being
// absent. The player holds a connection to each peer; connections are
// nil for the player itself.
type Player struct {
	id        int
	n         int
	conns     [NumPlayers]*Conn
	encrypted bool

	m    sync.Mutex
	comm map[string]*CommStats
}

// CommStats counts labeled communication.
type CommStats struct {
	Data   uint64
	Rounds uint64
}

// NewPlayer creates a new player with the argument ID, total player
// count, and peer connections. The conns array is indexed by peer ID;
// the player's own slot must be nil.
func NewPlayer(id, n int, conns [NumPlayers]*Conn) *Player {
	return &Player{
		id:    id,
		n:     n,
		conns: conns,
		comm:  make(map[string]*CommStats),
	}
}

func (p *Player) String() string {
	return fmt.Sprintf("P%s", superscript.Itoa(p.id))
}

// MyNum returns the player's party number.
func (p *Player) MyNum() int {
	return p.id
}

// NumPlayers returns the number of parties in this phase.
func (p *Player) NumPlayers() int {
	return p.n
}

// IsEncrypted tests if the peer connections are encrypted.
func (p *Player) IsEncrypted() bool {
	return p.encrypted
}

// AddComm adds n bytes to the labeled communication counter.
func (p *Player) AddComm(label string, n int) {
	p.m.Lock()
	defer p.m.Unlock()

	stats, ok := p.comm[label]
	if !ok {
		stats = new(CommStats)
		p.comm[label] = stats
	}
	stats.Data += uint64(n)
	stats.Rounds++
}

// Comm returns the labeled communication counters.
func (p *Player) Comm() map[string]*CommStats {
	p.m.Lock()
	defer p.m.Unlock()

	result := make(map[string]*CommStats)
	for k, v := range p.comm {
		c := *v
		result[k] = &c
	}
	return result
}

// Stats returns the sum of the I/O statistics of all peer connections.
func (p *Player) Stats() IOStats {
	stats := NewIOStats()
	for _, c := range p.conns {
		if c != nil {
			stats = stats.Add(c.Stats)
		}
	}
	return stats
}

func (p *Player) conn(player int) (*Conn, error) {
	if player < 0 || player >= NumPlayers || player == p.id ||
		p.conns[player] == nil {
		return nil, errors.Errorf("no connection to player %d", player)
	}
	return p.conns[player], nil
}

// SendTo sends the buffer to the argument player.
func (p *Player) SendTo(player int, b *buffer.Buffer) error {
	conn, err := p.conn(player)
	if err != nil {
		return err
	}
	if err := b.Send(conn); err != nil {
		return err
	}
	return conn.Flush()
}

// ReceivePlayer receives a buffer from the argument player.
func (p *Player) ReceivePlayer(player int, b *buffer.Buffer) error {
	conn, err := p.conn(player)
	if err != nil {
		return err
	}
	return b.Recv(conn)
}

// Exchange sends the send buffer to the argument player while
// receiving a buffer from the same player.
func (p *Player) Exchange(player int, send, recv *buffer.Buffer) error {
	conn, err := p.conn(player)
	if err != nil {
		return err
	}
	sent := make(chan error, 1)
	go func() {
		if err := send.Send(conn); err != nil {
			sent <- err
			return
		}
		sent <- conn.Flush()
	}()
	err = recv.Recv(conn)
	if serr := <-sent; serr != nil {
		return serr
	}
	return err
}

// PassAround sends the send buffer to the player offset positions to
// the right while receiving a buffer from the player the same number
// of positions to the left.
func (p *Player) PassAround(send, recv *buffer.Buffer, offset int) error {
	to := (p.id + offset + p.n) % p.n
	from := (p.id - offset + 2*p.n) % p.n

	toConn, err := p.conn(to)
	if err != nil {
		return err
	}
	fromConn, err := p.conn(from)
	if err != nil {
		return err
	}
	sent := make(chan error, 1)
	go func() {
		if err := send.Send(toConn); err != nil {
			sent <- err
			return
		}
		sent <- toConn.Flush()
	}()
	err = recv.Recv(fromConn)
	if serr := <-sent; serr != nil {
		return serr
	}
	return err
}

// SendAll sends the buffer to all connected peers.
func (p *Player) SendAll(b *buffer.Buffer) error {
	for i, conn := range p.conns {
		if i == p.id || conn == nil {
			continue
		}
		if err := b.Send(conn); err != nil {
			return err
		}
		if err := conn.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all peer connections.
func (p *Player) Close() error {
	var firstErr error
	for _, conn := range p.conns {
		if conn != nil {
			if err := conn.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// LocalPlayers creates a full mesh of n players connected with
// in-memory pipes. The argument n must be 2 or 3: a two-player mesh
// models the online phase where party 0 is absent.
func LocalPlayers(n int) []*Player {
	conns := make([][NumPlayers]*Conn, NumPlayers)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ci, cj := Pipe()
			conns[i][j] = ci
			conns[j][i] = cj
		}
	}
	players := make([]*Player, n)
	for i := 0; i < n; i++ {
		players[i] = NewPlayer(i, n, conns[i])
	}
	return players
}
