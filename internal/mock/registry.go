package mock

import (
	"context"
	"sync"

	"github.com/miladsoleymani/gridmux/core"
)

// Registry is a test double for core.HandleRegistry. Handles are
// sequential starting at 1.
type Registry struct {
	mu       sync.Mutex
	next     int64
	holders  map[int64]*core.Holder
	released []int64

	AllocateErr error
}

func NewRegistry() *Registry {
	return &Registry{holders: make(map[int64]*core.Holder)}
}

func (r *Registry) Allocate(holder *core.Holder) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.AllocateErr != nil {
		return 0, r.AllocateErr
	}
	r.next++
	r.holders[r.next] = holder
	return r.next, nil
}

func (r *Registry) AllocateSafe(holder *core.Holder) (int64, error) {
	return r.Allocate(holder)
}

// Release frees the handle without running the holder's destroy
// callback, matching the rollback contract.
func (r *Registry) Release(handle int64) {
	r.mu.Lock()
	delete(r.holders, handle)
	r.released = append(r.released, handle)
	r.mu.Unlock()
}

// Destroy simulates the registry tearing a handle down from its own
// side, running the holder's destroy callback.
func (r *Registry) Destroy(handle int64) {
	r.mu.Lock()
	holder, ok := r.holders[handle]
	delete(r.holders, handle)
	r.mu.Unlock()
	if ok {
		holder.Destroy()
	}
}

// Deliver invokes the holder bound to handle, simulating an incoming
// event from the engine.
func (r *Registry) Deliver(ctx context.Context, handle int64, topic string, msg any) bool {
	r.mu.Lock()
	holder, ok := r.holders[handle]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return holder.Invoke(ctx, topic, msg)
}

// Released returns the handles released so far.
func (r *Registry) Released() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.released))
	copy(out, r.released)
	return out
}

// Active returns the number of live handles.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.holders)
}

// Holder returns the holder bound to handle, if any.
func (r *Registry) Holder(handle int64) *core.Holder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.holders[handle]
}
