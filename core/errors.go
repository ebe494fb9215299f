package core

import "errors"

var (
	// ErrNilListener is returned when a listen or stop operation is given a nil listener.
	ErrNilListener = errors.New("gridmux: listener is nil")

	// ErrNilMessage is returned when a send operation is given a nil message or message slice.
	ErrNilMessage = errors.New("gridmux: message is nil")

	// ErrNoTarget is returned when a facade is created without a target.
	ErrNoTarget = errors.New("gridmux: target is nil")

	// ErrNoRegistry is returned when a facade is created without a handle registry.
	ErrNoRegistry = errors.New("gridmux: handle registry is nil")

	// ErrMissingListenID is returned when a synchronous remote listen
	// response carries no correlation id. An absent id is legal only
	// under asynchronous dispatch.
	ErrMissingListenID = errors.New("gridmux: remote listen response carries no listen id")

	// ErrTargetClosed is returned when operations are attempted on a closed target.
	ErrTargetClosed = errors.New("gridmux: target is closed")
)
