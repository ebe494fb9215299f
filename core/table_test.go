package core

import (
	"context"
	"sync"
	"testing"
)

type tableListener struct{ name string }

func (l *tableListener) OnMessage(context.Context, string, any) bool { return true }

func TestListenTable_AddAndTryRemoveAny(t *testing.T) {
	tb := newListenTable()
	l := &tableListener{}
	k := keyFor(l, "orders")

	tb.add(k, 1)
	tb.add(k, 2)

	got := map[int64]bool{}
	for i := 0; i < 2; i++ {
		h, ok := tb.tryRemoveAny(k)
		if !ok {
			t.Fatalf("tryRemoveAny #%d: expected a handle", i+1)
		}
		got[h] = true
	}
	if !got[1] || !got[2] {
		t.Errorf("expected handles 1 and 2, got %v", got)
	}

	if _, ok := tb.tryRemoveAny(k); ok {
		t.Error("tryRemoveAny on empty key should report absence")
	}
}

func TestListenTable_DuplicateHandles(t *testing.T) {
	tb := newListenTable()
	k := keyFor(&tableListener{}, "orders")

	// The same handle may appear twice under one key; each removal
	// takes exactly one occurrence.
	tb.add(k, 7)
	tb.add(k, 7)

	if ok := tb.remove(k, 7); !ok {
		t.Fatal("first remove should succeed")
	}
	if ok := tb.remove(k, 7); !ok {
		t.Fatal("second remove should succeed")
	}
	if ok := tb.remove(k, 7); ok {
		t.Error("third remove should report absence")
	}
}

func TestListenTable_RemoveSpecific(t *testing.T) {
	tb := newListenTable()
	k := keyFor(&tableListener{}, "orders")

	tb.add(k, 1)
	tb.add(k, 2)
	tb.add(k, 3)

	if ok := tb.remove(k, 2); !ok {
		t.Fatal("remove(2) should succeed")
	}
	if ok := tb.remove(k, 2); ok {
		t.Error("remove(2) twice should report absence")
	}

	rest := map[int64]bool{}
	for {
		h, ok := tb.tryRemoveAny(k)
		if !ok {
			break
		}
		rest[h] = true
	}
	if !rest[1] || !rest[3] || len(rest) != 2 {
		t.Errorf("expected remaining handles {1,3}, got %v", rest)
	}
}

func TestListenTable_DistinctListenersDoNotCollide(t *testing.T) {
	tb := newListenTable()
	a := &tableListener{name: "same"}
	b := &tableListener{name: "same"}

	tb.add(keyFor(a, "orders"), 1)
	tb.add(keyFor(b, "orders"), 2)

	h, ok := tb.tryRemoveAny(keyFor(a, "orders"))
	if !ok || h != 1 {
		t.Fatalf("listener a: got (%d, %v), want (1, true)", h, ok)
	}
	h, ok = tb.tryRemoveAny(keyFor(b, "orders"))
	if !ok || h != 2 {
		t.Fatalf("listener b: got (%d, %v), want (2, true)", h, ok)
	}
}

func TestListenTable_TopicSeparatesKeys(t *testing.T) {
	tb := newListenTable()
	l := &tableListener{}

	tb.add(keyFor(l, "orders"), 1)
	tb.add(keyFor(l, NoTopic), 2)

	if _, ok := tb.tryRemoveAny(keyFor(l, "payments")); ok {
		t.Error("unrelated topic should find nothing")
	}
	if h, ok := tb.tryRemoveAny(keyFor(l, NoTopic)); !ok || h != 2 {
		t.Errorf("no-topic key: got (%d, %v), want (2, true)", h, ok)
	}
}

func TestListenTable_ConcurrentMutation(t *testing.T) {
	tb := newListenTable()
	listeners := make([]*tableListener, 8)
	for i := range listeners {
		listeners[i] = &tableListener{}
	}

	var wg sync.WaitGroup
	for i, l := range listeners {
		wg.Add(1)
		go func(i int, l *tableListener) {
			defer wg.Done()
			k := keyFor(l, "topic")
			for j := 0; j < 100; j++ {
				tb.add(k, int64(j))
			}
			for j := 0; j < 100; j++ {
				if _, ok := tb.tryRemoveAny(k); !ok {
					t.Errorf("listener %d: handle %d missing", i, j)
					return
				}
			}
		}(i, l)
	}
	wg.Wait()

	for _, l := range listeners {
		if _, ok := tb.tryRemoveAny(keyFor(l, "topic")); ok {
			t.Error("table should be empty after balanced add/remove")
		}
	}
}
