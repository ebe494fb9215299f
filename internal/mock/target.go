package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/miladsoleymani/gridmux/core"
	"github.com/miladsoleymani/gridmux/wire"
)

// Target is a test double for core.Target. It records every operation
// that reaches the transport together with its rendered payload.
type Target struct {
	mu  sync.Mutex
	ops []Op

	// DispatchErr fails Dispatch/DispatchAsync before anything is sent.
	DispatchErr error

	// CallErr fails Call/CallAsync before anything is sent.
	CallErr error

	// AsyncErr is delivered through the future after the request was
	// accepted, simulating a deferred transport failure.
	AsyncErr error

	// ResponseID is the identifier carried by Call/CallAsync responses.
	ResponseID uuid.UUID

	// EmptyResponse makes responses carry no identifier at all.
	EmptyResponse bool

	// TruncatedResponse makes responses carry a malformed identifier.
	TruncatedResponse bool

	// ImmediateID makes CallAsync return the identifier in the
	// immediate response instead of deferring it.
	ImmediateID bool

	closed bool
}

// Op records one operation sent through the target.
type Op struct {
	Code    core.OpCode
	Payload []byte
}

func NewTarget() *Target {
	return &Target{}
}

func (t *Target) record(op core.OpCode, payload core.PayloadFunc) error {
	data, err := wire.Render(payload, nil)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.ops = append(t.ops, Op{Code: op, Payload: data})
	t.mu.Unlock()
	return nil
}

func (t *Target) response() core.RawReader {
	if t.EmptyResponse {
		return wire.NewReader(nil, nil)
	}
	if t.TruncatedResponse {
		return wire.NewReader([]byte{0x01, 0x02, 0x03}, nil)
	}
	w := wire.NewWriter(nil)
	_ = w.WriteUUID(t.ResponseID)
	return wire.NewReader(w.Bytes(), nil)
}

func (t *Target) Dispatch(_ context.Context, op core.OpCode, payload core.PayloadFunc) error {
	if t.DispatchErr != nil {
		return t.DispatchErr
	}
	return t.record(op, payload)
}

func (t *Target) DispatchAsync(_ context.Context, op core.OpCode, payload core.PayloadFunc) (*core.Future, error) {
	if t.DispatchErr != nil {
		return nil, t.DispatchErr
	}
	if err := t.record(op, payload); err != nil {
		return nil, err
	}
	return core.CompletedFuture(nil, t.AsyncErr), nil
}

func (t *Target) Call(_ context.Context, op core.OpCode, payload core.PayloadFunc) (core.RawReader, error) {
	if t.CallErr != nil {
		return nil, t.CallErr
	}
	if err := t.record(op, payload); err != nil {
		return nil, err
	}
	return t.response(), nil
}

func (t *Target) CallAsync(_ context.Context, op core.OpCode, payload core.PayloadFunc) (core.RawReader, *core.Future, error) {
	if t.CallErr != nil {
		return nil, nil, t.CallErr
	}
	if err := t.record(op, payload); err != nil {
		return nil, nil, err
	}
	if t.ImmediateID {
		return t.response(), core.CompletedFuture(t.response(), nil), nil
	}
	return wire.NewReader(nil, nil), core.CompletedFuture(t.response(), t.AsyncErr), nil
}

func (t *Target) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

// Ops returns all operations sent through the target.
func (t *Target) Ops() []Op {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Op, len(t.ops))
	copy(out, t.ops)
	return out
}

// CountOps returns how many operations with the given opcode were sent.
func (t *Target) CountOps(code core.OpCode) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, op := range t.ops {
		if op.Code == code {
			n++
		}
	}
	return n
}

// IsClosed reports whether Close was called.
func (t *Target) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
