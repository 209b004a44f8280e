// Package mcp exposes the task, session and chat operations as MCP tools.
package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/swarmdo/internal/domain/project"
	"github.com/ganot/swarmdo/internal/domain/swarm"
)

const serverInstructions = `swarmdo manages personal task lists ("projects") and can turn a
project into a live shared session: peers joining the same topic replicate task changes to
each other and can exchange chat messages.

Typical flows:
- Private use: create_project, add_task, toggle_task, list_tasks.
- Hosting: share_project generates a topic, marks the project as shared, and joins it.
  Give the topic (and a project snapshot) to peers out of band.
- Joining: join_session with the host's topic, then receive_shared_project with the
  snapshot the host gave you. From then on task changes flow both ways.
- Chat: send_message / list_messages once a session is active.`

// Services contains the domain components the tools operate on.
type Services struct {
	Engine  *project.Service
	Session *swarm.Session
	Chat    *swarm.Chat
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "swarmdo",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerTools(server, cfg.Services)

	return server
}
