package middleware

import (
	"context"
	"log"
	"time"

	"github.com/miladsoleymani/gridmux/core"
)

// Logging returns middleware that logs every listener invocation with
// its duration and whether the listener keeps its subscription.
func Logging() core.Middleware {
	return func(next core.MessageListener) core.MessageListener {
		return core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
			start := time.Now()
			keep := next.OnMessage(ctx, topic, msg)
			log.Printf("[gridmux] OK    topic=%s elapsed=%s keep=%v",
				topic, time.Since(start), keep)
			return keep
		})
	}
}
