package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoTopic is the designated "no topic" value. Messages sent without a
// topic reach listeners registered without one.
const NoTopic = ""

// Messaging is the client-side facade for topic-based cluster
// messaging. It sends messages on named topics through an opaque
// request/response target and registers listeners — local (this node)
// or remote (cluster-wide) — against an injected handle registry.
//
// Every operation has a non-blocking twin reached through the facade's
// async sibling (see Async); the twins share all payload construction
// and validation with the synchronous paths.
type Messaging struct {
	target   Target
	registry HandleRegistry
	cluster  Cluster
	group    string
	table    *listenTable

	async     bool
	asyncOnce sync.Once
	sibling   *Messaging
}

// Option configures a Messaging facade.
type Option func(*Messaging)

// WithCluster attaches the owning cluster context. It is injected into
// ClusterAware listeners on registration.
func WithCluster(c Cluster) Option {
	return func(m *Messaging) { m.cluster = c }
}

// WithGroup scopes the facade to a cluster group.
func WithGroup(group string) Option {
	return func(m *Messaging) { m.group = group }
}

// New creates a Messaging facade over the given target and handle registry.
func New(t Target, r HandleRegistry, fns ...Option) (*Messaging, error) {
	if t == nil {
		return nil, ErrNoTarget
	}
	if r == nil {
		return nil, ErrNoRegistry
	}
	m := &Messaging{target: t, registry: r, table: newListenTable()}
	for _, fn := range fns {
		fn(m)
	}
	return m, nil
}

// Group returns the cluster-group scope, if any.
func (m *Messaging) Group() string { return m.group }

// Async returns the asynchronous sibling of this facade. The sibling
// shares the target, registry, cluster context, group scope and
// correlation table, but dispatches through deferred results instead
// of blocking. It is constructed at most once, however many goroutines
// race here on first use. The sibling of an async facade is itself.
func (m *Messaging) Async() *Messaging {
	if m.async {
		return m
	}
	m.asyncOnce.Do(func() {
		m.sibling = &Messaging{
			target:   m.target,
			registry: m.registry,
			cluster:  m.cluster,
			group:    m.group,
			table:    m.table,
			async:    true,
		}
	})
	return m.sibling
}

// ---------------------------------------------------------------------------
// Send operations
// ---------------------------------------------------------------------------

// Send delivers msg to listeners subscribed to topic anywhere in the
// cluster group.
func (m *Messaging) Send(ctx context.Context, topic string, msg any) error {
	_, err := m.send(ctx, topic, msg)
	return err
}

// SendAsync is the non-blocking twin of Send.
func (m *Messaging) SendAsync(ctx context.Context, topic string, msg any) (*Future, error) {
	return m.Async().send(ctx, topic, msg)
}

func (m *Messaging) send(ctx context.Context, topic string, msg any) (*Future, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	return m.dispatch(ctx, OpSend, func(w PayloadWriter) error {
		if err := writeTopic(w, topic); err != nil {
			return err
		}
		return w.WriteObject(msg)
	})
}

// SendAll delivers every message in msgs to topic, preserving order.
// The slice is consumed exactly once.
func (m *Messaging) SendAll(ctx context.Context, topic string, msgs []any) error {
	_, err := m.sendAll(ctx, topic, msgs)
	return err
}

// SendAllAsync is the non-blocking twin of SendAll.
func (m *Messaging) SendAllAsync(ctx context.Context, topic string, msgs []any) (*Future, error) {
	return m.Async().sendAll(ctx, topic, msgs)
}

func (m *Messaging) sendAll(ctx context.Context, topic string, msgs []any) (*Future, error) {
	if msgs == nil {
		return nil, ErrNilMessage
	}
	return m.dispatch(ctx, OpSendMulti, func(w PayloadWriter) error {
		if err := writeTopic(w, topic); err != nil {
			return err
		}
		if err := w.WriteInt64(int64(len(msgs))); err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := w.WriteObject(msg); err != nil {
				return err
			}
		}
		return nil
	})
}

// SendOrdered delivers msg to topic with ordered-delivery semantics
// relative to other ordered sends on the same topic. Ordering is a
// contract of the remote engine, not enforced locally. A zero timeout
// requests the engine default.
func (m *Messaging) SendOrdered(ctx context.Context, topic string, msg any, timeout time.Duration) error {
	_, err := m.sendOrdered(ctx, topic, msg, timeout)
	return err
}

// SendOrderedAsync is the non-blocking twin of SendOrdered.
func (m *Messaging) SendOrderedAsync(ctx context.Context, topic string, msg any, timeout time.Duration) (*Future, error) {
	return m.Async().sendOrdered(ctx, topic, msg, timeout)
}

func (m *Messaging) sendOrdered(ctx context.Context, topic string, msg any, timeout time.Duration) (*Future, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	return m.dispatch(ctx, OpSendOrdered, func(w PayloadWriter) error {
		if err := writeTopic(w, topic); err != nil {
			return err
		}
		if err := w.WriteObject(msg); err != nil {
			return err
		}
		return w.WriteInt64(timeout.Milliseconds())
	})
}

// ---------------------------------------------------------------------------
// Local listeners
// ---------------------------------------------------------------------------

// LocalListen registers listener for messages sent to topic on this
// node. Registration is atomic with respect to concurrent stops and
// duplicate registrations on the same key: the correlation table's
// lock is held from handle allocation through the registration
// request. A transport failure releases the allocated handle; no
// handle is ever left allocated but unregistered.
func (m *Messaging) LocalListen(ctx context.Context, listener MessageListener, topic string) error {
	_, err := m.localListen(ctx, listener, topic)
	return err
}

// LocalListenAsync is the non-blocking twin of LocalListen. The handle
// is allocated and recorded synchronously; if the deferred dispatch
// fails, both are rolled back when the future completes.
func (m *Messaging) LocalListenAsync(ctx context.Context, listener MessageListener, topic string) (*Future, error) {
	return m.Async().localListen(ctx, listener, topic)
}

func (m *Messaging) localListen(ctx context.Context, listener MessageListener, topic string) (*Future, error) {
	if listener == nil {
		return nil, ErrNilListener
	}
	m.injectCluster(listener)

	key := keyFor(listener, topic)
	holder := NewHolder(listener, topic)

	m.table.mu.Lock()
	handle, err := m.registry.Allocate(holder)
	if err != nil {
		m.table.mu.Unlock()
		return nil, fmt.Errorf("gridmux: allocate handle: %w", err)
	}
	// If the registry tears the handle down from its side, keep the
	// table consistent from that direction too.
	holder.OnDestroy(func() { m.table.remove(key, handle) })

	payload := func(w PayloadWriter) error {
		if err := w.WriteInt64(handle); err != nil {
			return err
		}
		return writeTopic(w, topic)
	}

	if m.async {
		fut, err := m.target.DispatchAsync(ctx, OpLocalListen, payload)
		if err != nil {
			m.table.mu.Unlock()
			m.registry.Release(handle)
			return nil, fmt.Errorf("gridmux: local listen: %w", err)
		}
		m.table.addLocked(key, handle)
		m.table.mu.Unlock()
		go func() {
			<-fut.Done()
			if fut.Err() != nil {
				m.table.remove(key, handle)
				m.registry.Release(handle)
			}
		}()
		return fut, nil
	}

	if err := m.target.Dispatch(ctx, OpLocalListen, payload); err != nil {
		m.table.mu.Unlock()
		m.registry.Release(handle)
		return nil, fmt.Errorf("gridmux: local listen: %w", err)
	}
	m.table.addLocked(key, handle)
	m.table.mu.Unlock()
	return nil, nil
}

// StopLocalListen unregisters one prior LocalListen registration for
// the (listener, topic) pair. Each registration requires its own stop
// call; stopping an unknown pair is a silent no-op. The table entry is
// removed before the network stop request, and a failed request does
// not resurrect it: local bookkeeping reflects the caller's intent
// even when the remote acknowledgement fails.
func (m *Messaging) StopLocalListen(ctx context.Context, listener MessageListener, topic string) error {
	_, err := m.stopLocalListen(ctx, listener, topic)
	return err
}

// StopLocalListenAsync is the non-blocking twin of StopLocalListen.
func (m *Messaging) StopLocalListenAsync(ctx context.Context, listener MessageListener, topic string) (*Future, error) {
	return m.Async().stopLocalListen(ctx, listener, topic)
}

func (m *Messaging) stopLocalListen(ctx context.Context, listener MessageListener, topic string) (*Future, error) {
	if listener == nil {
		return nil, ErrNilListener
	}
	handle, ok := m.table.tryRemoveAny(keyFor(listener, topic))
	if !ok {
		if m.async {
			return CompletedFuture(nil, nil), nil
		}
		return nil, nil
	}
	// The network stop happens outside the table lock; the handle is
	// already gone from the table, so there is nothing left to guard.
	return m.dispatch(ctx, OpStopLocalListen, func(w PayloadWriter) error {
		if err := w.WriteInt64(handle); err != nil {
			return err
		}
		return writeTopic(w, topic)
	})
}

// ---------------------------------------------------------------------------
// Remote listeners
// ---------------------------------------------------------------------------

// RemoteListen registers listener on every node of the cluster group
// and returns the correlation id assigned by the remote engine. The id
// is the sole handle the caller needs for a later StopRemoteListen; no
// local correlation-table entry is created.
func (m *Messaging) RemoteListen(ctx context.Context, listener MessageListener, topic string) (uuid.UUID, error) {
	id, _, err := m.remoteListen(ctx, listener, topic)
	return id, err
}

// RemoteListenAsync is the non-blocking twin of RemoteListen. The
// correlation id is obtained from the returned ListenFuture; the
// immediate response may legally carry no id.
func (m *Messaging) RemoteListenAsync(ctx context.Context, listener MessageListener, topic string) (*ListenFuture, error) {
	_, lf, err := m.Async().remoteListen(ctx, listener, topic)
	return lf, err
}

func (m *Messaging) remoteListen(ctx context.Context, listener MessageListener, topic string) (uuid.UUID, *ListenFuture, error) {
	if listener == nil {
		return uuid.Nil, nil, ErrNilListener
	}
	holder := NewHolder(listener, topic)
	handle, err := m.registry.AllocateSafe(holder)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("gridmux: allocate handle: %w", err)
	}

	payload := func(w PayloadWriter) error {
		if err := w.WriteObject(holder); err != nil {
			return err
		}
		if err := w.WriteInt64(handle); err != nil {
			return err
		}
		return writeTopic(w, topic)
	}

	if m.async {
		r, fut, err := m.target.CallAsync(ctx, OpRemoteListen, payload)
		if err != nil {
			m.registry.Release(handle)
			return uuid.Nil, nil, fmt.Errorf("gridmux: remote listen: %w", err)
		}
		// The engine may answer inline; otherwise the id arrives with
		// the deferred result.
		if r != nil {
			id, ok, err := r.ReadUUID()
			if err != nil {
				m.registry.Release(handle)
				return uuid.Nil, nil, fmt.Errorf("gridmux: remote listen response: %w", err)
			}
			if ok {
				return id, &ListenFuture{fut: CompletedFuture(r, nil), id: id, ok: true}, nil
			}
		}
		lf := &ListenFuture{fut: fut}
		go func() {
			<-fut.Done()
			if _, err := lf.resolve(); err != nil {
				m.registry.Release(handle)
			}
		}()
		return uuid.Nil, lf, nil
	}

	r, err := m.target.Call(ctx, OpRemoteListen, payload)
	if err != nil {
		m.registry.Release(handle)
		return uuid.Nil, nil, fmt.Errorf("gridmux: remote listen: %w", err)
	}
	id, ok, err := readListenID(r)
	if err != nil {
		m.registry.Release(handle)
		return uuid.Nil, nil, fmt.Errorf("gridmux: remote listen response: %w", err)
	}
	if !ok {
		m.registry.Release(handle)
		return uuid.Nil, nil, ErrMissingListenID
	}
	return id, nil, nil
}

// StopRemoteListen asks the remote engine to remove the remote
// registration identified by id. No local state is consulted: the
// request is sent unconditionally.
func (m *Messaging) StopRemoteListen(ctx context.Context, id uuid.UUID) error {
	_, err := m.stopRemoteListen(ctx, id)
	return err
}

// StopRemoteListenAsync is the non-blocking twin of StopRemoteListen.
func (m *Messaging) StopRemoteListenAsync(ctx context.Context, id uuid.UUID) (*Future, error) {
	return m.Async().stopRemoteListen(ctx, id)
}

func (m *Messaging) stopRemoteListen(ctx context.Context, id uuid.UUID) (*Future, error) {
	return m.dispatch(ctx, OpStopRemoteListen, func(w PayloadWriter) error {
		return w.WriteUUID(id)
	})
}

// ---------------------------------------------------------------------------
// Shared dispatch path
// ---------------------------------------------------------------------------

// dispatch routes a fire-and-forget payload through the target,
// switching on the facade's dispatch mode. Synchronous facades return
// a nil future.
func (m *Messaging) dispatch(ctx context.Context, op OpCode, payload PayloadFunc) (*Future, error) {
	if m.async {
		fut, err := m.target.DispatchAsync(ctx, op, payload)
		if err != nil {
			return nil, fmt.Errorf("gridmux: dispatch op %d: %w", op, err)
		}
		return fut, nil
	}
	if err := m.target.Dispatch(ctx, op, payload); err != nil {
		return nil, fmt.Errorf("gridmux: dispatch op %d: %w", op, err)
	}
	return nil, nil
}

func (m *Messaging) injectCluster(listener MessageListener) {
	if m.cluster == nil {
		return
	}
	if ca, ok := listener.(ClusterAware); ok {
		ca.SetCluster(m.cluster)
	}
}

// writeTopic encodes topic, mapping NoTopic to the absence marker.
func writeTopic(w PayloadWriter, topic string) error {
	if topic == NoTopic {
		return w.WriteObject(nil)
	}
	return w.WriteObject(topic)
}

func readListenID(r RawReader) (uuid.UUID, bool, error) {
	if r == nil {
		return uuid.Nil, false, nil
	}
	return r.ReadUUID()
}
