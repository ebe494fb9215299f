package core

import (
	"reflect"
	"sync"
)

// listenKey identifies one (listener, topic) registration. The listener
// component is an identity value, not the listener itself, so that two
// distinct instances with equal content never collide.
type listenKey struct {
	listener any
	topic    string
}

// keyFor builds the correlation key for a listener/topic pair.
func keyFor(listener MessageListener, topic string) listenKey {
	return listenKey{listener: listenerIdentity(listener), topic: topic}
}

// listenerIdentity produces the map-key component for a listener.
// Reference-shaped listeners are keyed by their pointer so identity
// semantics hold; comparable value listeners fall back to value
// identity.
func listenerIdentity(listener MessageListener) any {
	v := reflect.ValueOf(listener)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Chan, reflect.Map, reflect.UnsafePointer:
		return v.Pointer()
	default:
		if v.Comparable() {
			return listener
		}
		// Non-comparable value listeners carry no stable identity.
		// Keying by type at least keeps the map usable; callers should
		// register such listeners by pointer.
		return v.Type()
	}
}

// listenTable maps a listenKey to the set of currently active handles.
// Repeated registration under the same key is legal, so the mapping is
// multi-valued. A single mutex serializes every operation; removal
// order among handles sharing a key is unspecified.
type listenTable struct {
	mu sync.Mutex
	m  map[listenKey][]int64
}

func newListenTable() *listenTable {
	return &listenTable{m: make(map[listenKey][]int64)}
}

func (t *listenTable) add(k listenKey, handle int64) {
	t.mu.Lock()
	t.addLocked(k, handle)
	t.mu.Unlock()
}

func (t *listenTable) addLocked(k listenKey, handle int64) {
	t.m[k] = append(t.m[k], handle)
}

// remove deletes one occurrence of handle from the key's set.
func (t *listenTable) remove(k listenKey, handle int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeLocked(k, handle)
}

func (t *listenTable) removeLocked(k listenKey, handle int64) bool {
	handles, ok := t.m[k]
	if !ok {
		return false
	}
	for i, h := range handles {
		if h == handle {
			handles[i] = handles[len(handles)-1]
			handles = handles[:len(handles)-1]
			if len(handles) == 0 {
				delete(t.m, k)
			} else {
				t.m[k] = handles
			}
			return true
		}
	}
	return false
}

// tryRemoveAny removes and returns one arbitrary handle for the key.
func (t *listenTable) tryRemoveAny(k listenKey) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tryRemoveAnyLocked(k)
}

func (t *listenTable) tryRemoveAnyLocked(k listenKey) (int64, bool) {
	handles, ok := t.m[k]
	if !ok || len(handles) == 0 {
		return 0, false
	}
	h := handles[len(handles)-1]
	handles = handles[:len(handles)-1]
	if len(handles) == 0 {
		delete(t.m, k)
	} else {
		t.m[k] = handles
	}
	return h, true
}
