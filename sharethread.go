//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package astra

import (
	"sync"

	"github.com/markkurossi/astra/share"
)

// shareThreads registers the live share threads per (variant, party,
// thread number).
var shareThreads struct {
	sync.Mutex
	active map[shareThreadKey]bool
}

type shareThreadKey struct {
	kind   share.Kind
	player int
	thread int
}

// ShareThread guards the bit-domain protocol instance of one engine
// thread. At most one share thread per variant may exist per party
// and thread number; constructing a second aborts.
type ShareThread struct {
	Kind   share.Kind
	Player int
	Thread int
}

// NewShareThread registers a new share thread.
func NewShareThread(kind share.Kind, player, thread int) *ShareThread {
	shareThreads.Lock()
	defer shareThreads.Unlock()

	if shareThreads.active == nil {
		shareThreads.active = make(map[shareThreadKey]bool)
	}
	key := shareThreadKey{kind: kind, player: player, thread: thread}
	if shareThreads.active[key] {
		panic("there can only be one")
	}
	shareThreads.active[key] = true

	return &ShareThread{
		Kind:   kind,
		Player: player,
		Thread: thread,
	}
}

// Release releases the share thread registration.
func (st *ShareThread) Release() {
	shareThreads.Lock()
	defer shareThreads.Unlock()

	delete(shareThreads.active, shareThreadKey{
		kind:   st.Kind,
		player: st.Player,
		thread: st.Thread,
	})
}
