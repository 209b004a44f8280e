// Package bridge connects the replication engine to a topic session: local
// task events go out as task-event envelopes, inbound task-event envelopes
// are applied silently so they are never echoed back.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ganot/swarmdo/internal/domain/project"
	"github.com/ganot/swarmdo/internal/domain/swarm"
)

// Bridge forwards events between one engine and one session. Close detaches
// both subscriptions.
type Bridge struct {
	engine  *project.Service
	session *swarm.Session
	logger  *slog.Logger

	cancelLocal   func()
	cancelInbound func()
}

// New attaches a bridge to the engine's bus and the session's inbound
// stream.
func New(engine *project.Service, session *swarm.Session, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Bridge{engine: engine, session: session, logger: logger}
	b.cancelLocal = engine.Events().Subscribe(b.forwardLocal)
	b.cancelInbound = session.Subscribe(b.applyInbound)
	return b
}

// Close detaches the bridge from both sides.
func (b *Bridge) Close() {
	b.cancelLocal()
	b.cancelInbound()
}

func (b *Bridge) forwardLocal(event project.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("encoding task event failed", "kind", event.Kind, "error", err)
		return
	}
	if err := b.session.Broadcast(swarm.TaskEventEnvelope(body)); err != nil {
		if errors.Is(err, swarm.ErrNotActive) {
			b.logger.Debug("dropping task event, session not active", "kind", event.Kind)
			return
		}
		b.logger.Warn("broadcasting task event failed", "kind", event.Kind, "error", err)
	}
}

func (b *Bridge) applyInbound(peer swarm.Peer, env swarm.Envelope) {
	if env.Type != swarm.PayloadTaskEvent {
		return
	}
	var event project.Event
	if err := json.Unmarshal(env.Body, &event); err != nil {
		b.logger.Debug("dropping undecodable task event", "peer", peer.ShortKey(), "error", err)
		return
	}
	if err := b.engine.Apply(context.Background(), event); err != nil {
		b.logger.Warn("applying remote task event failed", "peer", peer.ShortKey(), "kind", event.Kind, "error", err)
	}
}
