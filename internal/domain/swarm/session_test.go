package swarm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeNetwork scripts join results and lets tests drive the callbacks.
type fakeNetwork struct {
	mu       sync.Mutex
	joinErrs []error
	joinGate chan struct{}
	joins    int
	sent     [][]byte
	peersFns []func([]Peer)
	dataFns  []func(Peer, []byte)
}

func (f *fakeNetwork) Join(ctx context.Context, topic string) error {
	f.mu.Lock()
	f.joins++
	gate := f.joinGate
	var err error
	if len(f.joinErrs) > 0 {
		err = f.joinErrs[0]
		f.joinErrs = f.joinErrs[1:]
	}
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeNetwork) Broadcast(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeNetwork) OnPeersChanged(fn func([]Peer)) {
	f.peersFns = append(f.peersFns, fn)
}

func (f *fakeNetwork) OnPeerData(fn func(Peer, []byte)) {
	f.dataFns = append(f.dataFns, fn)
}

func (f *fakeNetwork) pushPeers(peers []Peer) {
	for _, fn := range f.peersFns {
		fn(peers)
	}
}

func (f *fakeNetwork) pushData(peer Peer, payload []byte) {
	for _, fn := range f.dataFns {
		fn(peer, payload)
	}
}

func fastPolicy() JoinPolicy {
	return JoinPolicy{Attempts: 2, Backoff: time.Millisecond}
}

func TestSession_JoinFlow(t *testing.T) {
	network := &fakeNetwork{}
	session := NewSession(network, fastPolicy(), nil)
	require.Equal(t, StateIdle, session.State())

	topic := NewTopic()
	require.NoError(t, session.Join(context.Background(), topic))
	require.Equal(t, StateActive, session.State())
	require.Equal(t, topic, session.Topic())
	require.Equal(t, 0, session.PeerCount())

	// A peer connecting updates the count without any re-join.
	network.pushPeers([]Peer{{PubKey: "abcd1234"}})
	require.Equal(t, 1, session.PeerCount())
	require.Equal(t, 1, network.joins)
}

func TestSession_JoinRejectsInvalidTopic(t *testing.T) {
	session := NewSession(&fakeNetwork{}, fastPolicy(), nil)

	err := session.Join(context.Background(), "abc")
	require.ErrorIs(t, err, ErrInvalidTopic)
	require.Equal(t, StateIdle, session.State())
}

func TestSession_JoinRetriesThenFails(t *testing.T) {
	network := &fakeNetwork{joinErrs: []error{context.DeadlineExceeded, context.DeadlineExceeded}}
	session := NewSession(network, fastPolicy(), nil)

	err := session.Join(context.Background(), NewTopic())
	require.Error(t, err)
	require.Equal(t, StateFailed, session.State())
	require.Equal(t, 2, network.joins)
	require.Empty(t, session.Topic())
}

func TestSession_JoinRetriesThenSucceeds(t *testing.T) {
	network := &fakeNetwork{joinErrs: []error{context.DeadlineExceeded}}
	session := NewSession(network, fastPolicy(), nil)

	require.NoError(t, session.Join(context.Background(), NewTopic()))
	require.Equal(t, StateActive, session.State())
	require.Equal(t, 2, network.joins)
}

func TestSession_ConcurrentJoinRejected(t *testing.T) {
	network := &fakeNetwork{joinGate: make(chan struct{})}
	session := NewSession(network, fastPolicy(), nil)

	done := make(chan error, 1)
	go func() {
		done <- session.Join(context.Background(), NewTopic())
	}()

	require.Eventually(t, session.IsJoining, time.Second, time.Millisecond)

	err := session.Join(context.Background(), NewTopic())
	require.ErrorIs(t, err, ErrJoinInProgress)

	close(network.joinGate)
	require.NoError(t, <-done)
	require.Equal(t, StateActive, session.State())
}

func TestSession_PeerCountReflectsDisconnects(t *testing.T) {
	network := &fakeNetwork{}
	session := NewSession(network, fastPolicy(), nil)

	network.pushPeers([]Peer{{PubKey: "a"}, {PubKey: "b"}, {PubKey: "c"}})
	require.Equal(t, 3, session.PeerCount())

	network.pushPeers([]Peer{{PubKey: "a"}})
	require.Equal(t, 1, session.PeerCount())

	network.pushPeers(nil)
	require.Equal(t, 0, session.PeerCount())
}

func TestSession_BroadcastRequiresActive(t *testing.T) {
	session := NewSession(&fakeNetwork{}, fastPolicy(), nil)

	env, err := ChatEnvelope("hello")
	require.NoError(t, err)
	require.ErrorIs(t, session.Broadcast(env), ErrNotActive)
}

func TestSession_BroadcastSendsEnvelope(t *testing.T) {
	network := &fakeNetwork{}
	session := NewSession(network, fastPolicy(), nil)
	require.NoError(t, session.Join(context.Background(), NewTopic()))

	env, err := ChatEnvelope("hello")
	require.NoError(t, err)
	require.NoError(t, session.Broadcast(env))

	require.Len(t, network.sent, 1)
	var decoded Envelope
	require.NoError(t, json.Unmarshal(network.sent[0], &decoded))
	require.Equal(t, PayloadChat, decoded.Type)
	text, err := decoded.ChatText()
	require.NoError(t, err)
	require.Equal(t, "hello", text)
}

func TestSession_SubscribeFanOutInOrder(t *testing.T) {
	network := &fakeNetwork{}
	session := NewSession(network, fastPolicy(), nil)

	var first, second []string
	session.Subscribe(func(peer Peer, env Envelope) {
		text, _ := env.ChatText()
		first = append(first, text)
	})
	session.Subscribe(func(peer Peer, env Envelope) {
		text, _ := env.ChatText()
		second = append(second, text)
	})

	peer := Peer{PubKey: "abcd9999"}
	for _, text := range []string{"one", "two", "three"} {
		env, err := ChatEnvelope(text)
		require.NoError(t, err)
		payload, err := json.Marshal(env)
		require.NoError(t, err)
		network.pushData(peer, payload)
	}

	require.Equal(t, []string{"one", "two", "three"}, first)
	require.Equal(t, []string{"one", "two", "three"}, second)
}

func TestSession_SubscribeCancelStopsDelivery(t *testing.T) {
	network := &fakeNetwork{}
	session := NewSession(network, fastPolicy(), nil)

	var count int
	cancel := session.Subscribe(func(Peer, Envelope) { count++ })

	payload, err := json.Marshal(Envelope{Type: PayloadChat, Body: json.RawMessage(`"x"`)})
	require.NoError(t, err)
	network.pushData(Peer{PubKey: "p"}, payload)
	cancel()
	network.pushData(Peer{PubKey: "p"}, payload)

	require.Equal(t, 1, count)
}

func TestDecodeEnvelope_BarePayloadBecomesChat(t *testing.T) {
	env := DecodeEnvelope([]byte("plain old text"))
	require.Equal(t, PayloadChat, env.Type)
	text, err := env.ChatText()
	require.NoError(t, err)
	require.Equal(t, "plain old text", text)
}

func TestPeer_ShortKey(t *testing.T) {
	require.Equal(t, "abcd", Peer{PubKey: "abcdef0123"}.ShortKey())
	require.Equal(t, "ab", Peer{PubKey: "ab"}.ShortKey())
	require.Equal(t, strings.Repeat("f", 4), Peer{PubKey: strings.Repeat("f", 64)}.ShortKey())
}
