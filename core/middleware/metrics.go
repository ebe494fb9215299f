package middleware

import (
	"context"
	"time"

	"github.com/miladsoleymani/gridmux/core"
)

// MetricsCollector is the interface that metrics backends must implement.
// This keeps the middleware decoupled from any specific metrics library.
type MetricsCollector interface {
	// MessageObserved records that a listener processed a message.
	// keep reports whether the listener retained its subscription.
	MessageObserved(topic string, duration time.Duration, keep bool)
}

// Metrics returns middleware that reports listener invocations to the
// given collector.
func Metrics(collector MetricsCollector) core.Middleware {
	return func(next core.MessageListener) core.MessageListener {
		return core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
			start := time.Now()
			keep := next.OnMessage(ctx, topic, msg)
			collector.MessageObserved(topic, time.Since(start), keep)
			return keep
		})
	}
}

// Apply wraps listener with middleware; the first middleware is outermost.
func Apply(listener core.MessageListener, mws ...core.Middleware) core.MessageListener {
	for i := len(mws) - 1; i >= 0; i-- {
		listener = mws[i](listener)
	}
	return listener
}
