package mock

import (
	"context"
	"sync"

	"github.com/miladsoleymani/gridmux/core"
)

// Listener is a recording core.MessageListener. It also implements
// core.ClusterAware so injection can be observed.
type Listener struct {
	mu      sync.Mutex
	msgs    []any
	cluster core.Cluster

	// Result is returned from OnMessage.
	Result bool
}

func NewListener() *Listener {
	return &Listener{Result: true}
}

func (l *Listener) OnMessage(_ context.Context, _ string, msg any) bool {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
	return l.Result
}

func (l *Listener) SetCluster(c core.Cluster) {
	l.mu.Lock()
	l.cluster = c
	l.mu.Unlock()
}

// Cluster returns the injected cluster context, if any.
func (l *Listener) Cluster() core.Cluster {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cluster
}

// Messages returns every message delivered so far.
func (l *Listener) Messages() []any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]any, len(l.msgs))
	copy(out, l.msgs)
	return out
}
