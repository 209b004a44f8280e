package swarm

// SessionState is the lifecycle state of a topic session.
type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateJoining SessionState = "joining"
	StateActive  SessionState = "active"
	StateFailed  SessionState = "failed"
)

// Peer is a remote participant in the current topic. The public key is an
// opaque identifier supplied by the transport; it is used for display and
// set membership only.
type Peer struct {
	PubKey string `json:"pub_key"`
}

// ShortKey returns the display form of the peer key (first four characters).
func (p Peer) ShortKey() string {
	if len(p.PubKey) <= 4 {
		return p.PubKey
	}
	return p.PubKey[:4]
}

// LocalSender is the attribution used for messages sent by this node.
const LocalSender = "me"

// Message is one entry in a chat session's append-only log.
type Message struct {
	From string `json:"from"`
	Text string `json:"text"`
}
