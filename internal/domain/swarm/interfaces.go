package swarm

import "context"

// Network is the consumed peer-to-peer transport contract. Implementations
// handle discovery, connection management and delivery; the session only
// cares about joining a topic, broadcasting, and the two callback streams.
type Network interface {
	// Join attaches the local node to the topic's peer network. It blocks
	// until the node is attached or the context is done.
	Join(ctx context.Context, topic string) error

	// Broadcast sends payload to all currently connected peers, best effort.
	Broadcast(payload []byte) error

	// OnPeersChanged registers a callback invoked with the full current peer
	// set whenever it changes.
	OnPeersChanged(fn func(peers []Peer))

	// OnPeerData registers a callback invoked once per inbound payload, in
	// arrival order.
	OnPeerData(fn func(peer Peer, payload []byte))
}
