package middleware_test

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/miladsoleymani/gridmux/core"
	"github.com/miladsoleymani/gridmux/core/middleware"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer log.SetOutput(os.Stderr)

	l := middleware.Logging()(core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
		return true
	}))

	if keep := l.OnMessage(context.Background(), "orders.created", "payload"); !keep {
		t.Fatal("expected keep=true")
	}

	if !strings.Contains(buf.String(), "OK") {
		t.Errorf("expected OK log, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "orders.created") {
		t.Errorf("expected topic in log, got: %s", buf.String())
	}
}

func TestLogging_PropagatesUnsubscribe(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := middleware.Logging()(core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
		return false
	}))

	if keep := l.OnMessage(context.Background(), "t", "v"); keep {
		t.Error("keep=false must pass through the middleware")
	}
	if !strings.Contains(buf.String(), "keep=false") {
		t.Errorf("expected keep=false in log, got: %s", buf.String())
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := middleware.Recovery()(core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
		panic("test panic")
	}))

	keep := l.OnMessage(context.Background(), "t", "v")
	if !keep {
		t.Error("a recovered panic must keep the subscription alive")
	}
	if !strings.Contains(buf.String(), "PANIC recovered") {
		t.Errorf("expected panic log, got: %s", buf.String())
	}
}

func TestRecovery_NoPanic(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := middleware.Recovery()(core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
		return false
	}))

	if keep := l.OnMessage(context.Background(), "t", "v"); keep {
		t.Error("keep=false must pass through when nothing panics")
	}
}

type collector struct {
	topic    string
	duration time.Duration
	keep     bool
	calls    int
}

func (c *collector) MessageObserved(topic string, duration time.Duration, keep bool) {
	c.topic = topic
	c.duration = duration
	c.keep = keep
	c.calls++
}

func TestMetrics(t *testing.T) {
	c := &collector{}
	l := middleware.Metrics(c)(core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
		return true
	}))

	l.OnMessage(context.Background(), "orders", "v")

	if c.calls != 1 {
		t.Fatalf("collector called %d times, want 1", c.calls)
	}
	if c.topic != "orders" || !c.keep {
		t.Errorf("observed topic=%q keep=%v, want orders/true", c.topic, c.keep)
	}
}

func TestApply_Order(t *testing.T) {
	var order []string

	mw := func(name string) core.Middleware {
		return func(next core.MessageListener) core.MessageListener {
			return core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
				order = append(order, name+":before")
				keep := next.OnMessage(ctx, topic, msg)
				order = append(order, name+":after")
				return keep
			})
		}
	}

	l := middleware.Apply(core.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
		order = append(order, "listener")
		return true
	}), mw("A"), mw("B"))

	l.OnMessage(context.Background(), "t", "v")

	// The first middleware is outermost: A -> B -> listener
	expected := []string{"A:before", "B:before", "listener", "B:after", "A:after"}
	if len(order) != len(expected) {
		t.Fatalf("got %v, want %v", order, expected)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("order[%d] = %q, want %q", i, order[i], v)
		}
	}
}
