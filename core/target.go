package core

import (
	"context"

	"github.com/google/uuid"
)

// OpCode identifies a messaging operation on the wire.
type OpCode int16

const (
	OpLocalListen      OpCode = 1
	OpRemoteListen     OpCode = 2
	OpSend             OpCode = 3
	OpSendMulti        OpCode = 4
	OpSendOrdered      OpCode = 5
	OpStopLocalListen  OpCode = 6
	OpStopRemoteListen OpCode = 7
)

// PayloadWriter encodes an outgoing operation payload field by field.
// The wire package provides the buffer-backed implementation used by
// target plugins.
type PayloadWriter interface {
	WriteInt64(v int64) error

	WriteUUID(id uuid.UUID) error

	// WriteObject encodes an arbitrary value. A nil value encodes the
	// explicit absence marker, used for the "no topic" case.
	WriteObject(v any) error
}

// RawReader decodes a response without schema information.
type RawReader interface {
	// ReadUUID reads a 128-bit identifier. ok is false when the
	// response carries no identifier at all.
	ReadUUID() (id uuid.UUID, ok bool, err error)
}

// PayloadFunc writes one operation payload into w.
type PayloadFunc func(w PayloadWriter) error

// Target is the opaque request/response channel to the remote messaging
// engine. Each target plugin adapts one transport (NATS, RabbitMQ,
// Kafka) to this contract.
type Target interface {
	// Dispatch sends a fire-and-forget request, blocking until the
	// request has been handed to the engine.
	Dispatch(ctx context.Context, op OpCode, payload PayloadFunc) error

	// DispatchAsync sends a fire-and-forget request without blocking.
	// The returned future completes once the engine has accepted it.
	DispatchAsync(ctx context.Context, op OpCode, payload PayloadFunc) (*Future, error)

	// Call sends a request and blocks until the raw response arrives.
	Call(ctx context.Context, op OpCode, payload PayloadFunc) (RawReader, error)

	// CallAsync sends a request without blocking. The immediate reader
	// may be empty; the future completes with the full response.
	CallAsync(ctx context.Context, op OpCode, payload PayloadFunc) (RawReader, *Future, error)

	// Close releases the underlying transport.
	Close() error
}
