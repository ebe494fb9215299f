package core

// HandleRegistry mints integer handles bound to listener holders and
// invokes them when events arrive from the engine. It is an injected
// collaborator; this package never implements it.
type HandleRegistry interface {
	// Allocate binds holder to a fresh handle.
	Allocate(holder *Holder) (int64, error)

	// AllocateSafe is like Allocate but guarantees no partially
	// registered state is observable when it fails.
	AllocateSafe(holder *Holder) (int64, error)

	// Release frees a handle without invoking the holder's destroy
	// callback. Safe to call on rollback paths.
	Release(handle int64)
}
