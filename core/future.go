package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Future is the completion handle for an asynchronous dispatch. It is
// resolved by the target's transport layer when the deferred response
// (or its failure) arrives.
type Future struct {
	done   chan struct{}
	once   sync.Once
	reader RawReader
	err    error
}

// NewFuture creates an unresolved Future. Target implementations call
// Complete when the deferred response arrives.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// CompletedFuture returns a future already resolved with r and err.
func CompletedFuture(r RawReader, err error) *Future {
	f := NewFuture()
	f.Complete(r, err)
	return f
}

// Complete resolves the future. Only the first call has any effect.
func (f *Future) Complete(r RawReader, err error) {
	f.once.Do(func() {
		f.reader = r
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed once the future has resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the failure, if any. It reports nil while the future is
// still pending.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Await blocks until the future resolves or ctx is cancelled.
func (f *Future) Await(ctx context.Context) (RawReader, error) {
	select {
	case <-f.done:
		return f.reader, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ListenFuture is the pending result of an asynchronous remote listen
// registration. It resolves to the correlation id assigned by the
// remote engine.
type ListenFuture struct {
	fut *Future

	// id from the immediate response, when the engine returned one
	// without deferring.
	id uuid.UUID
	ok bool

	// The deferred response is decoded at most once; the result is
	// shared between Result and the facade's rollback watcher.
	decode    sync.Once
	decodedID uuid.UUID
	decodeErr error
}

// Done returns a channel that is closed once the registration has resolved.
func (lf *ListenFuture) Done() <-chan struct{} {
	return lf.fut.Done()
}

// Result blocks until the registration completes and returns the
// correlation id assigned by the remote engine.
func (lf *ListenFuture) Result(ctx context.Context) (uuid.UUID, error) {
	if lf.ok {
		return lf.id, nil
	}
	select {
	case <-lf.fut.Done():
		return lf.resolve()
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	}
}

// resolve decodes the deferred response. The future must have resolved
// already; the decode consumes the response reader, so it runs once and
// every caller sees the same outcome.
func (lf *ListenFuture) resolve() (uuid.UUID, error) {
	lf.decode.Do(func() {
		r, err := lf.fut.Await(context.Background())
		if err != nil {
			lf.decodeErr = err
			return
		}
		if r == nil {
			lf.decodeErr = ErrMissingListenID
			return
		}
		id, ok, err := r.ReadUUID()
		if err != nil {
			lf.decodeErr = fmt.Errorf("gridmux: remote listen response: %w", err)
			return
		}
		if !ok {
			lf.decodeErr = ErrMissingListenID
			return
		}
		lf.decodedID = id
	})
	return lf.decodedID, lf.decodeErr
}
