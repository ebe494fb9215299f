package core

import "context"

// MessageListener consumes messages delivered on a topic. Returning
// false unsubscribes the listener.
//
// Unsubscription is keyed by the listener's identity: register pointer
// (or other reference-shaped) listeners when the same callback must be
// stoppable later. Two distinct listener instances with equal content
// never collide.
type MessageListener interface {
	OnMessage(ctx context.Context, topic string, msg any) bool
}

// ListenerFunc adapts a plain function to MessageListener.
//
//	m.LocalListen(ctx, gridmux.ListenerFunc(func(ctx context.Context, topic string, msg any) bool {
//	    fmt.Println(topic, msg)
//	    return true
//	}), "orders")
type ListenerFunc func(ctx context.Context, topic string, msg any) bool

func (f ListenerFunc) OnMessage(ctx context.Context, topic string, msg any) bool {
	return f(ctx, topic, msg)
}

// Middleware wraps a MessageListener with cross-cutting behavior.
// See the middleware package for stock implementations.
type Middleware func(MessageListener) MessageListener

// Holder adapts a registered listener to the handle registry's
// invocation contract. For remote registrations the holder itself is
// serialized into the registration payload.
type Holder struct {
	Listener MessageListener
	Topic    string

	destroy func()
}

// NewHolder wraps listener for registration under topic.
func NewHolder(listener MessageListener, topic string) *Holder {
	return &Holder{Listener: listener, Topic: topic}
}

// OnDestroy registers a callback the registry runs when it tears the
// holder's handle down from its side (e.g. registry-wide shutdown).
func (h *Holder) OnDestroy(fn func()) {
	h.destroy = fn
}

// Destroy runs the destroy callback, if any. Called by the registry,
// never by the facade's own stop path.
func (h *Holder) Destroy() {
	if h.destroy != nil {
		h.destroy()
	}
}

// Invoke delivers one message to the held listener.
func (h *Holder) Invoke(ctx context.Context, topic string, msg any) bool {
	return h.Listener.OnMessage(ctx, topic, msg)
}
