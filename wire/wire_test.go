package wire_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/miladsoleymani/gridmux/wire"
)

func TestWriterReader_MixedPayload(t *testing.T) {
	id := uuid.New()

	w := wire.NewWriter(nil)
	if err := w.WriteObject("orders"); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}
	if err := w.WriteInt64(-5000); err != nil {
		t.Fatalf("WriteInt64: %v", err)
	}
	if err := w.WriteUUID(id); err != nil {
		t.Fatalf("WriteUUID: %v", err)
	}

	r := wire.NewReader(w.Bytes(), nil)
	var topic string
	ok, err := r.ReadObject(&topic)
	if err != nil || !ok || topic != "orders" {
		t.Errorf("topic = %q (ok=%v err=%v), want %q", topic, ok, err, "orders")
	}
	n, err := r.ReadInt64()
	if err != nil || n != -5000 {
		t.Errorf("int64 = %d (err=%v), want -5000", n, err)
	}
	got, ok, err := r.ReadUUID()
	if err != nil || !ok || got != id {
		t.Errorf("uuid = %s (ok=%v err=%v), want %s", got, ok, err, id)
	}
	if r.Len() != 0 {
		t.Errorf("trailing bytes: %d", r.Len())
	}
}

func TestObject_AbsenceMarker(t *testing.T) {
	w := wire.NewWriter(nil)
	if err := w.WriteObject(nil); err != nil {
		t.Fatalf("WriteObject(nil): %v", err)
	}
	if err := w.WriteObject("present"); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}

	r := wire.NewReader(w.Bytes(), nil)
	var s string
	ok, err := r.ReadObject(&s)
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if ok {
		t.Error("absence marker must decode as ok=false")
	}
	ok, err = r.ReadObject(&s)
	if err != nil || !ok || s != "present" {
		t.Errorf("second object = %q (ok=%v err=%v), want %q", s, ok, err, "present")
	}
}

func TestReadUUID_Absent(t *testing.T) {
	r := wire.NewReader(nil, nil)
	id, ok, err := r.ReadUUID()
	if err != nil {
		t.Fatalf("ReadUUID: %v", err)
	}
	if ok || id != uuid.Nil {
		t.Errorf("empty buffer: got (%s, %v), want (Nil, false)", id, ok)
	}
}

func TestReadUUID_Truncated(t *testing.T) {
	r := wire.NewReader([]byte{1, 2, 3}, nil)
	if _, _, err := r.ReadUUID(); err == nil {
		t.Error("truncated identifier must fail")
	}
}

func TestRender_NilPayload(t *testing.T) {
	data, err := wire.Render(nil, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("nil payload must render empty, got %d bytes", len(data))
	}
}

func TestWriteObject_Struct(t *testing.T) {
	type order struct {
		ID    int     `json:"id"`
		Total float64 `json:"total"`
	}

	w := wire.NewWriter(nil)
	if err := w.WriteObject(order{ID: 42, Total: 9.99}); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}

	var got order
	ok, err := wire.NewReader(w.Bytes(), nil).ReadObject(&got)
	if err != nil || !ok {
		t.Fatalf("ReadObject: ok=%v err=%v", ok, err)
	}
	if got.ID != 42 || got.Total != 9.99 {
		t.Errorf("got %+v", got)
	}
}
