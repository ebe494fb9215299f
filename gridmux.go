// Package gridmux provides the top-level API for the gridmux cluster
// messaging facade. It re-exports core types for convenience, so users
// can write:
//
//	m, _ := gridmux.New(tgt, registry)
//	m.LocalListen(ctx, listener, "orders")
//	m.Send(ctx, "orders", order)
package gridmux

import (
	"github.com/miladsoleymani/gridmux/core"
)

// Re-export core types at the package level for ergonomic usage.
type (
	Messaging       = core.Messaging
	Target          = core.Target
	HandleRegistry  = core.HandleRegistry
	MessageListener = core.MessageListener
	ListenerFunc    = core.ListenerFunc
	Middleware      = core.Middleware
	Holder          = core.Holder
	Future          = core.Future
	ListenFuture    = core.ListenFuture
	Cluster         = core.Cluster
	OpCode          = core.OpCode
	Option          = core.Option
)

// New creates a Messaging facade over the given target and handle registry.
func New(t Target, r HandleRegistry, fns ...Option) (*Messaging, error) {
	return core.New(t, r, fns...)
}
