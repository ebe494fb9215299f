package middleware

import (
	"context"
	"log"
	"runtime"

	"github.com/miladsoleymani/gridmux/core"
)

// Recovery returns middleware that recovers from panics in listeners,
// logs the stack trace, and keeps the subscription alive.
func Recovery() core.Middleware {
	return func(next core.MessageListener) core.MessageListener {
		return core.ListenerFunc(func(ctx context.Context, topic string, msg any) (keep bool) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)
					log.Printf("[gridmux] PANIC recovered: %v\n%s", r, buf[:n])
					keep = true
				}
			}()
			return next.OnMessage(ctx, topic, msg)
		})
	}
}
