package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist in either partition.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound indicates the task doesn't exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidInput indicates invalid mutation input.
	ErrInvalidInput = errors.New("invalid input")
)
