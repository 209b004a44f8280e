package swarm

import (
	"log/slog"
	"sync"
)

// Chat is the message log for one topic session: own sends plus received
// chat payloads, append-only, ordered by arrival. The log lives and dies
// with the session; nothing is persisted.
type Chat struct {
	session *Session
	logger  *slog.Logger
	cancel  func()

	mu       sync.Mutex
	messages []Message
}

// NewChat attaches a chat log to the session's inbound stream.
func NewChat(session *Session, logger *slog.Logger) *Chat {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Chat{session: session, logger: logger}
	c.cancel = session.Subscribe(func(peer Peer, env Envelope) {
		if env.Type != PayloadChat {
			return
		}
		text, err := env.ChatText()
		if err != nil {
			c.logger.Debug("dropping undecodable chat payload", "peer", peer.ShortKey(), "error", err)
			return
		}
		c.append(Message{From: peer.ShortKey(), Text: text})
	})
	return c
}

// Send appends the message to the local log, then broadcasts it. The local
// echo never waits on the network; a broadcast failure is returned but the
// message stays in the log.
func (c *Chat) Send(text string) error {
	c.append(Message{From: LocalSender, Text: text})
	env, err := ChatEnvelope(text)
	if err != nil {
		return err
	}
	return c.session.Broadcast(env)
}

// Messages returns a copy of the log in arrival order.
func (c *Chat) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Close detaches the chat from the session's inbound stream.
func (c *Chat) Close() {
	c.cancel()
}

func (c *Chat) append(msg Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}
