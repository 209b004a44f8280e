package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ganot/swarmdo/internal/events"
)

// JoinPolicy bounds the retry behavior of Session.Join. The transport's join
// has no cancellation of its own, so a failed attempt is simply retried up
// to Attempts times with a linear backoff between attempts.
type JoinPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultJoinPolicy is used when no policy is configured.
var DefaultJoinPolicy = JoinPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}

type inbound struct {
	peer Peer
	env  Envelope
}

// Session wraps the peer-to-peer transport for one topic. It owns the join
// state machine (Idle -> Joining -> Active, Failed on error), the live peer
// set snapshot, and the ordered fan-out of inbound payloads to subscribers.
type Session struct {
	network Network
	policy  JoinPolicy
	logger  *slog.Logger
	bus     *events.Bus[inbound]

	mu    sync.Mutex
	state SessionState
	topic string
	peers []Peer
}

// NewSession creates a session over the given transport. Callbacks are
// registered immediately; subscribers that attach later do not see earlier
// payloads.
func NewSession(network Network, policy JoinPolicy, logger *slog.Logger) *Session {
	if policy.Attempts <= 0 {
		policy = DefaultJoinPolicy
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		network: network,
		policy:  policy,
		logger:  logger,
		bus:     events.NewBus[inbound](),
		state:   StateIdle,
	}
	network.OnPeersChanged(s.setPeers)
	network.OnPeerData(func(peer Peer, payload []byte) {
		s.bus.Publish(inbound{peer: peer, env: DecodeEnvelope(payload)})
	})
	return s
}

// Join validates the topic and attaches to its peer network, retrying per
// the join policy. A second Join while one is pending returns
// ErrJoinInProgress. Exhausted retries leave the session in StateFailed.
func (s *Session) Join(ctx context.Context, topic string) error {
	if !ValidTopic(topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}

	s.mu.Lock()
	if s.state == StateJoining {
		s.mu.Unlock()
		return ErrJoinInProgress
	}
	s.state = StateJoining
	s.mu.Unlock()

	var err error
	for attempt := 1; attempt <= s.policy.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				err = ctx.Err()
			case <-time.After(time.Duration(attempt-1) * s.policy.Backoff):
			}
			if ctx.Err() != nil {
				break
			}
		}
		if err = s.network.Join(ctx, topic); err == nil {
			s.mu.Lock()
			s.state = StateActive
			s.topic = topic
			s.mu.Unlock()
			s.logger.Info("joined topic", "topic", topic, "attempt", attempt)
			return nil
		}
		s.logger.Warn("topic join failed", "topic", topic, "attempt", attempt, "error", err)
	}

	s.mu.Lock()
	s.state = StateFailed
	s.mu.Unlock()
	return fmt.Errorf("joining topic: %w", err)
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsJoining reports whether a join is in flight.
func (s *Session) IsJoining() bool {
	return s.State() == StateJoining
}

// Topic returns the active topic, or "" when the session is not active.
func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// PeerCount is the cardinality of the most recent connection-set snapshot.
func (s *Session) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// Peers returns a copy of the current peer set.
func (s *Session) Peers() []Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Peer, len(s.peers))
	copy(out, s.peers)
	return out
}

// Broadcast sends an envelope to all connected peers. The session must be
// active.
func (s *Session) Broadcast(env Envelope) error {
	if s.State() != StateActive {
		return ErrNotActive
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}
	if err := s.network.Broadcast(payload); err != nil {
		return fmt.Errorf("broadcasting: %w", err)
	}
	return nil
}

// Subscribe registers fn for inbound envelopes, delivered in arrival order.
// The returned cancel function detaches the subscriber.
func (s *Session) Subscribe(fn func(peer Peer, env Envelope)) func() {
	return s.bus.Subscribe(func(in inbound) {
		fn(in.peer, in.env)
	})
}

func (s *Session) setPeers(peers []Peer) {
	s.mu.Lock()
	s.peers = make([]Peer, len(peers))
	copy(s.peers, peers)
	count := len(s.peers)
	s.mu.Unlock()
	s.logger.Debug("peer set updated", "count", count)
}
