package swarm

import (
	"context"
	"fmt"
	"sync"
)

// MemoryHub connects MemoryNetwork nodes in process. It implements the
// transport semantics the session relies on: join attaches a node to a
// topic, every membership change delivers the full peer set to every
// member, and broadcast delivers to all other members in order.
type MemoryHub struct {
	mu     sync.Mutex
	topics map[string][]*MemoryNetwork
}

// NewMemoryHub creates an empty hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{topics: make(map[string][]*MemoryNetwork)}
}

// Node creates a network endpoint identified by pubKey.
func (h *MemoryHub) Node(pubKey string) *MemoryNetwork {
	return &MemoryNetwork{hub: h, self: Peer{PubKey: pubKey}}
}

// MemoryNetwork is an in-process Network implementation, one per peer.
type MemoryNetwork struct {
	hub  *MemoryHub
	self Peer

	mu       sync.Mutex
	topic    string
	peersFns []func([]Peer)
	dataFns  []func(Peer, []byte)
}

// Join attaches this node to the topic and notifies all members.
func (n *MemoryNetwork) Join(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.hub.mu.Lock()
	members := append(n.hub.topics[topic], n)
	n.hub.topics[topic] = members
	snapshot := make([]*MemoryNetwork, len(members))
	copy(snapshot, members)
	n.hub.mu.Unlock()

	n.mu.Lock()
	n.topic = topic
	n.mu.Unlock()

	for _, member := range snapshot {
		member.notifyPeers(snapshot)
	}
	return nil
}

// Leave detaches the node from its topic and notifies remaining members.
func (n *MemoryNetwork) Leave() {
	n.mu.Lock()
	topic := n.topic
	n.topic = ""
	n.mu.Unlock()
	if topic == "" {
		return
	}

	n.hub.mu.Lock()
	members := n.hub.topics[topic]
	remaining := members[:0]
	for _, member := range members {
		if member != n {
			remaining = append(remaining, member)
		}
	}
	n.hub.topics[topic] = remaining
	snapshot := make([]*MemoryNetwork, len(remaining))
	copy(snapshot, remaining)
	n.hub.mu.Unlock()

	for _, member := range snapshot {
		member.notifyPeers(snapshot)
	}
}

// Broadcast delivers payload to every other member of the topic.
func (n *MemoryNetwork) Broadcast(payload []byte) error {
	n.mu.Lock()
	topic := n.topic
	n.mu.Unlock()
	if topic == "" {
		return fmt.Errorf("not joined to a topic")
	}

	n.hub.mu.Lock()
	members := make([]*MemoryNetwork, len(n.hub.topics[topic]))
	copy(members, n.hub.topics[topic])
	n.hub.mu.Unlock()

	for _, member := range members {
		if member == n {
			continue
		}
		member.deliver(n.self, payload)
	}
	return nil
}

// OnPeersChanged registers a peer-set callback.
func (n *MemoryNetwork) OnPeersChanged(fn func([]Peer)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.peersFns = append(n.peersFns, fn)
}

// OnPeerData registers an inbound payload callback.
func (n *MemoryNetwork) OnPeerData(fn func(Peer, []byte)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dataFns = append(n.dataFns, fn)
}

func (n *MemoryNetwork) notifyPeers(members []*MemoryNetwork) {
	peers := make([]Peer, 0, len(members)-1)
	for _, member := range members {
		if member != n {
			peers = append(peers, member.self)
		}
	}
	n.mu.Lock()
	fns := make([]func([]Peer), len(n.peersFns))
	copy(fns, n.peersFns)
	n.mu.Unlock()
	for _, fn := range fns {
		fn(peers)
	}
}

func (n *MemoryNetwork) deliver(from Peer, payload []byte) {
	n.mu.Lock()
	fns := make([]func(Peer, []byte), len(n.dataFns))
	copy(fns, n.dataFns)
	n.mu.Unlock()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	for _, fn := range fns {
		fn(from, buf)
	}
}
