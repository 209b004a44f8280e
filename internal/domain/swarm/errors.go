package swarm

import "errors"

var (
	// ErrInvalidTopic indicates the topic string is not a valid topic id.
	ErrInvalidTopic = errors.New("invalid topic")
	// ErrJoinInProgress indicates a join was requested while another join is pending.
	ErrJoinInProgress = errors.New("join already in progress")
	// ErrNotActive indicates an operation that requires an active session.
	ErrNotActive = errors.New("session not active")
)
