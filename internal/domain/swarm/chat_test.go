package swarm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func activeChat(t *testing.T) (*Chat, *fakeNetwork) {
	t.Helper()
	network := &fakeNetwork{}
	session := NewSession(network, fastPolicy(), nil)
	require.NoError(t, session.Join(context.Background(), NewTopic()))
	chat := NewChat(session, nil)
	t.Cleanup(chat.Close)
	return chat, network
}

func TestChat_LocalMessagesInSendOrder(t *testing.T) {
	chat, network := activeChat(t)

	require.NoError(t, chat.Send("foo"))
	require.NoError(t, chat.Send("bar"))
	require.NoError(t, chat.Send("baz"))

	require.Equal(t, []Message{
		{From: LocalSender, Text: "foo"},
		{From: LocalSender, Text: "bar"},
		{From: LocalSender, Text: "baz"},
	}, chat.Messages())
	require.Len(t, network.sent, 3)
}

func TestChat_LocalEchoPrecedesBroadcast(t *testing.T) {
	network := &fakeNetwork{}
	session := NewSession(network, fastPolicy(), nil)
	chat := NewChat(session, nil)
	defer chat.Close()

	// Session is idle, so the broadcast fails, but the local echo already
	// happened.
	err := chat.Send("hello")
	require.ErrorIs(t, err, ErrNotActive)
	require.Equal(t, []Message{{From: LocalSender, Text: "hello"}}, chat.Messages())
}

func TestChat_InboundAttributedToShortKey(t *testing.T) {
	chat, network := activeChat(t)

	env, err := ChatEnvelope("hi there")
	require.NoError(t, err)
	payload, err := json.Marshal(env)
	require.NoError(t, err)
	network.pushData(Peer{PubKey: "deadbeef0123"}, payload)

	require.Equal(t, []Message{{From: "dead", Text: "hi there"}}, chat.Messages())
}

func TestChat_IgnoresTaskEventPayloads(t *testing.T) {
	chat, network := activeChat(t)

	payload, err := json.Marshal(TaskEventEnvelope([]byte(`{"kind":"task-add"}`)))
	require.NoError(t, err)
	network.pushData(Peer{PubKey: "peer"}, payload)

	require.Empty(t, chat.Messages())
}

func TestChat_BarePayloadInterop(t *testing.T) {
	chat, network := activeChat(t)

	network.pushData(Peer{PubKey: "cafe0000"}, []byte("legacy chat line"))

	require.Equal(t, []Message{{From: "cafe", Text: "legacy chat line"}}, chat.Messages())
}

func TestChat_InterleavedOrdering(t *testing.T) {
	chat, network := activeChat(t)

	require.NoError(t, chat.Send("mine 1"))
	env, err := ChatEnvelope("theirs 1")
	require.NoError(t, err)
	payload, err := json.Marshal(env)
	require.NoError(t, err)
	network.pushData(Peer{PubKey: "aaaa1111"}, payload)
	require.NoError(t, chat.Send("mine 2"))

	require.Equal(t, []Message{
		{From: LocalSender, Text: "mine 1"},
		{From: "aaaa", Text: "theirs 1"},
		{From: LocalSender, Text: "mine 2"},
	}, chat.Messages())
}

func TestChat_CloseDetaches(t *testing.T) {
	chat, network := activeChat(t)
	chat.Close()

	env, err := ChatEnvelope("after close")
	require.NoError(t, err)
	payload, err := json.Marshal(env)
	require.NoError(t, err)
	network.pushData(Peer{PubKey: "peer"}, payload)

	require.Empty(t, chat.Messages())
}
